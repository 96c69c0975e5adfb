package metrics

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/pixoolab/divoom-bridge/internal/domain"
	"github.com/pixoolab/divoom-bridge/internal/sidecar"
)

type fakeSidecar struct {
	payload *sidecar.Payload
	err     error
}

func (f *fakeSidecar) Metrics(context.Context) (*sidecar.Payload, error) {
	return f.payload, f.err
}

type fakeProbe struct {
	cpuUsage float64
	memTotal uint64
	memUsed  uint64
	disks    []domain.DiskUsage
	cpuTemp  *float64
	gpuTemp  *float64
	gpuUsage *float64
}

func (f *fakeProbe) CPUUsage(context.Context, time.Duration) float64 { return f.cpuUsage }
func (f *fakeProbe) Memory(context.Context) (uint64, uint64)         { return f.memTotal, f.memUsed }
func (f *fakeProbe) Disks(context.Context) []domain.DiskUsage        { return f.disks }
func (f *fakeProbe) CPUTemperature(context.Context) *float64         { return f.cpuTemp }
func (f *fakeProbe) GPUTemperature(context.Context) *float64         { return f.gpuTemp }
func (f *fakeProbe) GPUUsage(context.Context) *float64               { return f.gpuUsage }

func newAggregator(source SidecarSource, probe SensorProbe) *Aggregator {
	return NewAggregator(source, probe, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestCollectKeepsSidecarBaselineAndFillsGaps(t *testing.T) {
	t.Parallel()

	side := &fakeSidecar{payload: &sidecar.Payload{
		CPUTemperature: domain.Float(45.2),
		GPUTemperature: nil,
	}}
	probe := &fakeProbe{
		cpuUsage: 33.0,
		gpuTemp:  domain.Float(61.0),
	}

	m := newAggregator(side, probe).Collect(context.Background())

	if m.CPUTemperature == nil || *m.CPUTemperature != 45.2 {
		t.Errorf("expected sidecar cpu temperature kept, got %v", m.CPUTemperature)
	}
	if m.GPUTemperature == nil || *m.GPUTemperature != 61.0 {
		t.Errorf("expected gpu temperature filled from probe, got %v", m.GPUTemperature)
	}
	if m.CPUUsage != 33.0 {
		t.Errorf("cpu usage must come from the probe, got %v", m.CPUUsage)
	}
}

func TestCollectDiscardsOutOfRangeSidecarReading(t *testing.T) {
	t.Parallel()

	side := &fakeSidecar{payload: &sidecar.Payload{
		CPUTemperature: domain.Float(500.0),
	}}
	probe := &fakeProbe{cpuTemp: domain.Float(52.5)}

	m := newAggregator(side, probe).Collect(context.Background())

	if m.CPUTemperature == nil || *m.CPUTemperature != 52.5 {
		t.Errorf("out-of-range sidecar value must fall back to the probe, got %v", m.CPUTemperature)
	}
}

func TestCollectDiscardsOutOfRangeProbeReading(t *testing.T) {
	t.Parallel()

	side := &fakeSidecar{err: errors.New("connection refused")}
	probe := &fakeProbe{gpuTemp: domain.Float(-120.0)}

	m := newAggregator(side, probe).Collect(context.Background())

	if m.GPUTemperature != nil {
		t.Errorf("implausible probe reading must stay absent, got %v", *m.GPUTemperature)
	}
}

func TestCollectSurvivesSidecarAbsence(t *testing.T) {
	t.Parallel()

	side := &fakeSidecar{err: errors.New("connection refused")}
	probe := &fakeProbe{
		cpuUsage: 40.0,
		memTotal: 16 << 30,
		memUsed:  8 << 30,
		disks: []domain.DiskUsage{
			{Name: "sda1", MountPoint: "/", TotalSpace: 100, UsedSpace: 50},
		},
	}

	m := newAggregator(side, probe).Collect(context.Background())

	if m.CPUUsage != 40.0 {
		t.Errorf("expected cpu usage from probe, got %v", m.CPUUsage)
	}
	if m.MemoryTotal != 16<<30 || m.MemoryUsed != 8<<30 {
		t.Errorf("expected memory from probe, got %d/%d", m.MemoryUsed, m.MemoryTotal)
	}
	if len(m.Disks) != 1 {
		t.Fatalf("expected disks from probe, got %d", len(m.Disks))
	}
	// No source had temperatures: fields stay absent, not zero.
	if m.CPUTemperature != nil || m.GPUTemperature != nil || m.GPUUsage != nil {
		t.Error("optional fields must be absent when no source supplies them")
	}
}

func TestCollectFillsGPUUsageFromProbe(t *testing.T) {
	t.Parallel()

	side := &fakeSidecar{payload: &sidecar.Payload{}}
	probe := &fakeProbe{gpuUsage: domain.Float(38.0)}

	m := newAggregator(side, probe).Collect(context.Background())

	if m.GPUUsage == nil || *m.GPUUsage != 38.0 {
		t.Errorf("expected gpu usage filled from probe, got %v", m.GPUUsage)
	}
}

func TestCollectPrefersSidecarGPUUsage(t *testing.T) {
	t.Parallel()

	side := &fakeSidecar{payload: &sidecar.Payload{GPUUsage: domain.Float(77.0)}}
	probe := &fakeProbe{gpuUsage: domain.Float(38.0)}

	m := newAggregator(side, probe).Collect(context.Background())

	if m.GPUUsage == nil || *m.GPUUsage != 77.0 {
		t.Errorf("sidecar gpu usage must win over the probe, got %v", m.GPUUsage)
	}
}
