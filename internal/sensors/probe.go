package sensors

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/pixoolab/divoom-bridge/internal/domain"
)

var (
	cpuKeywords = []string{"cpu", "package", "k10temp", "tctl"}
	gpuKeywords = []string{"gpu", "graphics", "amdgpu"}
)

// Probe reads instantaneous hardware counters from whatever OS facilities
// are available. Every reader returns absent (nil or zero value) rather
// than erroring when the underlying facility is missing.
type Probe struct {
	logger *slog.Logger
}

func NewProbe(logger *slog.Logger) *Probe {
	return &Probe{logger: logger}
}

// CPUUsage samples aggregate CPU utilization over the given window by
// taking two successive counter reads. This is a blocking call for the
// duration of the window.
func (p *Probe) CPUUsage(ctx context.Context, window time.Duration) float64 {
	percents, err := cpu.PercentWithContext(ctx, window, false)
	if err != nil || len(percents) == 0 {
		p.logger.Debug("cpu usage unavailable", "err", err)
		return 0
	}
	return percents[0]
}

// Memory returns total and used physical memory in bytes.
func (p *Probe) Memory(ctx context.Context) (total, used uint64) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		p.logger.Debug("memory stats unavailable", "err", err)
		return 0, 0
	}
	return vm.Total, vm.Used
}

// Disks returns usage for every mounted physical partition. Partitions
// whose usage cannot be read (pseudo filesystems, permission denied) are
// skipped.
func (p *Probe) Disks(ctx context.Context) []domain.DiskUsage {
	partitions, err := disk.PartitionsWithContext(ctx, false)
	if err != nil {
		p.logger.Debug("disk partitions unavailable", "err", err)
		return nil
	}

	disks := make([]domain.DiskUsage, 0, len(partitions))
	for _, part := range partitions {
		usage, err := disk.UsageWithContext(ctx, part.Mountpoint)
		if err != nil || usage.Total == 0 {
			continue
		}
		disks = append(disks, domain.DiskUsage{
			Name:           part.Device,
			MountPoint:     part.Mountpoint,
			TotalSpace:     usage.Total,
			AvailableSpace: usage.Free,
			UsedSpace:      usage.Total - usage.Free,
			UsagePercent:   usage.UsedPercent,
		})
	}
	return disks
}

// Readings returns every temperature sensor the host exposes, classified
// into a physical domain by keyword-matching its label.
func (p *Probe) Readings(ctx context.Context) []domain.SensorReading {
	temps, err := host.SensorsTemperaturesWithContext(ctx)
	if err != nil && len(temps) == 0 {
		p.logger.Debug("temperature sensors unavailable", "err", err)
		return nil
	}

	readings := make([]domain.SensorReading, 0, len(temps))
	for _, t := range temps {
		readings = append(readings, domain.SensorReading{
			Label:       t.SensorKey,
			Domain:      classifyLabel(t.SensorKey),
			Temperature: t.Temperature,
		})
	}
	return readings
}

// CPUTemperature tries the vendor interface first, then the generic
// keyword-matched sensors. Returns nil when no source has a reading.
func (p *Probe) CPUTemperature(ctx context.Context) *float64 {
	if v := vendorCPUTemperature(); v != nil {
		return v
	}
	return maxTemperature(p.Readings(ctx), domain.SensorCPU)
}

// GPUTemperature tries the NVIDIA management interface first, then the
// generic keyword-matched sensors.
func (p *Probe) GPUTemperature(ctx context.Context) *float64 {
	if v := nvidiaGPUTemperature(ctx); v != nil {
		return v
	}
	return maxTemperature(p.Readings(ctx), domain.SensorGPU)
}

// GPUUsage has no generic fallback; only the vendor interface reports it.
func (p *Probe) GPUUsage(ctx context.Context) *float64 {
	return nvidiaGPUUsage(ctx)
}

// classifyLabel maps a sensor label onto a physical domain. Labels like
// "coretemp_package_id_0" land in the CPU domain, "amdgpu_edge" in the GPU
// domain.
func classifyLabel(label string) domain.SensorDomain {
	lower := strings.ToLower(label)
	for _, kw := range cpuKeywords {
		if strings.Contains(lower, kw) {
			return domain.SensorCPU
		}
	}
	for _, kw := range gpuKeywords {
		if strings.Contains(lower, kw) {
			return domain.SensorGPU
		}
	}
	return domain.SensorOther
}

// maxTemperature takes the maximum across duplicate sensors of one domain.
func maxTemperature(readings []domain.SensorReading, d domain.SensorDomain) *float64 {
	var best *float64
	for _, r := range readings {
		if r.Domain != d {
			continue
		}
		if best == nil || r.Temperature > *best {
			t := r.Temperature
			best = &t
		}
	}
	return best
}
