package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pixoolab/divoom-bridge/internal/adapter/httpserver"
	"github.com/pixoolab/divoom-bridge/internal/config"
	"github.com/pixoolab/divoom-bridge/internal/divoom"
	"github.com/pixoolab/divoom-bridge/internal/sensors"
	"github.com/pixoolab/divoom-bridge/internal/settings"
	"github.com/pixoolab/divoom-bridge/internal/sidecar"
	metricsuc "github.com/pixoolab/divoom-bridge/internal/usecase/metrics"
	pushuc "github.com/pixoolab/divoom-bridge/internal/usecase/push"
)

// Application wires the supervisor, aggregator, device clients and HTTP API
// together and drives their lifecycles.
type Application struct {
	logger     *slog.Logger
	cfg        *config.Config
	supervisor *sidecar.Supervisor
	publisher  *pushuc.Publisher
	server     *httpserver.Server
}

func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	store, err := settings.NewStore(cfg.DataDir, logger)
	if err != nil {
		return nil, fmt.Errorf("init settings store: %w", err)
	}

	if cfg.DeviceIP != "" {
		err := store.Update(func(s *settings.Settings) {
			s.DeviceIP = cfg.DeviceIP
			s.PushEnabled = true
		})
		if err != nil {
			return nil, fmt.Errorf("apply configured device: %w", err)
		}
	}

	sidecarClient := sidecar.NewClient(cfg.SidecarPort)
	supervisor := sidecar.NewSupervisor(sidecar.NewResolver(cfg.SidecarPath), sidecarClient, logger)

	probe := sensors.NewProbe(logger)
	aggregator := metricsuc.NewAggregator(sidecarClient, probe, logger)

	device := divoom.NewClient(logger)
	cloud := divoom.NewCloud(logger)

	publisher := pushuc.NewPublisher(aggregator, device, store, cfg.PushInterval, logger)

	api := httpserver.NewAPI(aggregator, supervisor, device, cloud, store, logger)
	server := httpserver.NewServer(cfg.APIPort, api, logger)

	return &Application{
		logger:     logger,
		cfg:        cfg,
		supervisor: supervisor,
		publisher:  publisher,
		server:     server,
	}, nil
}

// Run starts the sidecar supervisor and the push loop, then serves the API
// until ctx is cancelled. The supervisor is stopped on every exit path,
// including an API server failure.
func (a *Application) Run(ctx context.Context) error {
	a.supervisor.Start()
	defer a.supervisor.Stop()

	a.publisher.Start(ctx)

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.server.Run()
	}()

	a.logger.Info("api listening", "addr", fmt.Sprintf("127.0.0.1:%d", a.cfg.APIPort))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.logger.Warn("api shutdown", "err", err)
		}
		return nil
	case err := <-errCh:
		return err
	}
}

// StopSidecar is the abnormal-termination hook: it only tears the sidecar
// down and skips the rest of the shutdown sequence.
func (a *Application) StopSidecar() {
	a.supervisor.Stop()
}
