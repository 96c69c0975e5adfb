package push

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pixoolab/divoom-bridge/internal/domain"
	"github.com/pixoolab/divoom-bridge/internal/settings"
)

// MetricsSource produces the snapshot rendered onto the device.
type MetricsSource interface {
	Collect(ctx context.Context) domain.Metrics
}

// DeviceSink receives the rendered metric strings.
type DeviceSink interface {
	SendPCMetrics(ctx context.Context, ip string, lcdIndex int, dispData []string) error
}

// SettingsSource tells the loop where and whether to push.
type SettingsSource interface {
	Get() settings.Settings
}

// Publisher periodically renders the current metrics onto the PC Monitor
// clock of the configured device. A tick with pushing disabled or no device
// selected is skipped silently.
type Publisher struct {
	logger   *slog.Logger
	source   MetricsSource
	device   DeviceSink
	settings SettingsSource
	interval time.Duration
}

func NewPublisher(source MetricsSource, device DeviceSink, settings SettingsSource, interval time.Duration, logger *slog.Logger) *Publisher {
	return &Publisher{
		logger:   logger,
		source:   source,
		device:   device,
		settings: settings,
		interval: interval,
	}
}

func (p *Publisher) Start(ctx context.Context) {
	go p.loop(ctx)
}

func (p *Publisher) loop(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cfg := p.settings.Get()
			if !cfg.PushEnabled || cfg.DeviceIP == "" {
				continue
			}

			m := p.source.Collect(ctx)
			if err := p.device.SendPCMetrics(ctx, cfg.DeviceIP, cfg.PushScreen, RenderDispData(m)); err != nil {
				p.logger.Warn("failed to push metrics to device", "device", cfg.DeviceIP, "err", err)
			}
		}
	}
}

// RenderDispData formats a snapshot into the five strings the PC Monitor
// clock displays: CPU usage, CPU temperature, GPU usage, GPU temperature
// and memory usage. Absent fields render as "--".
func RenderDispData(m domain.Metrics) []string {
	memPercent := "--"
	if m.MemoryTotal > 0 {
		memPercent = fmt.Sprintf("%.0f%%", float64(m.MemoryUsed)/float64(m.MemoryTotal)*100)
	}

	return []string{
		fmt.Sprintf("%.0f%%", m.CPUUsage),
		renderTemp(m.CPUTemperature),
		renderPercent(m.GPUUsage),
		renderTemp(m.GPUTemperature),
		memPercent,
	}
}

func renderTemp(v *float64) string {
	if v == nil {
		return "--"
	}
	return fmt.Sprintf("%.0fC", *v)
}

func renderPercent(v *float64) string {
	if v == nil {
		return "--"
	}
	return fmt.Sprintf("%.0f%%", *v)
}
