package metrics

import (
	"context"
	"log/slog"
	"time"

	"github.com/pixoolab/divoom-bridge/internal/domain"
	"github.com/pixoolab/divoom-bridge/internal/sidecar"
)

// cpuSampleWindow separates the two CPU counter reads of one collection.
const cpuSampleWindow = 200 * time.Millisecond

// SensorProbe is the local fallback source for fields the sidecar omits.
// Every method reports absence instead of erroring.
type SensorProbe interface {
	CPUUsage(ctx context.Context, window time.Duration) float64
	Memory(ctx context.Context) (total, used uint64)
	Disks(ctx context.Context) []domain.DiskUsage
	CPUTemperature(ctx context.Context) *float64
	GPUTemperature(ctx context.Context) *float64
	GPUUsage(ctx context.Context) *float64
}

// SidecarSource fetches the telemetry baseline from the sidecar endpoint.
type SidecarSource interface {
	Metrics(ctx context.Context) (*sidecar.Payload, error)
}

// Aggregator merges sidecar telemetry with locally probed counters into one
// consistent snapshot. Priority for temperatures and GPU usage: sidecar
// first, then vendor API, then generic keyword-matched sensors (the probe
// applies the last two internally).
type Aggregator struct {
	logger  *slog.Logger
	sidecar SidecarSource
	probe   SensorProbe
}

func NewAggregator(source SidecarSource, probe SensorProbe, logger *slog.Logger) *Aggregator {
	return &Aggregator{logger: logger, sidecar: source, probe: probe}
}

// Collect returns a best-effort snapshot. It never fails outward: a
// degraded source only reduces field completeness, and optional fields stay
// nil when no source supplied a valid reading.
func (a *Aggregator) Collect(ctx context.Context) domain.Metrics {
	baseline, err := a.sidecar.Metrics(ctx)
	if err != nil {
		a.logger.Debug("sidecar unavailable, using local sensors", "err", err)
		baseline = &sidecar.Payload{}
	}

	m := domain.Metrics{
		CPUTemperature: NormalizeTemperature(baseline.CPUTemperature),
		GPUTemperature: NormalizeTemperature(baseline.GPUTemperature),
		GPUUsage:       baseline.GPUUsage,
	}

	// CPU usage, memory and disks always come from the local probe; the
	// sidecar schema is temperature/GPU focused.
	m.CPUUsage = a.probe.CPUUsage(ctx, cpuSampleWindow)
	m.MemoryTotal, m.MemoryUsed = a.probe.Memory(ctx)
	m.Disks = a.probe.Disks(ctx)

	if m.CPUTemperature == nil {
		m.CPUTemperature = NormalizeTemperature(a.probe.CPUTemperature(ctx))
	}
	if m.GPUTemperature == nil {
		m.GPUTemperature = NormalizeTemperature(a.probe.GPUTemperature(ctx))
	}
	if m.GPUUsage == nil {
		m.GPUUsage = a.probe.GPUUsage(ctx)
	}

	return m
}
