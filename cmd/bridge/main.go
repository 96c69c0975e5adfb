package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pixoolab/divoom-bridge/internal/app"
	"github.com/pixoolab/divoom-bridge/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logger, err := config.NewLogger(cfg, "bridge")
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		os.Exit(1)
	}

	logger.Info("starting divoom-bridge",
		"version", config.Version,
		"build_time", config.BuildTime,
		"debug", cfg.Debug,
	)

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM,
	)
	defer cancel()

	a, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create application", "err", err)
		os.Exit(1)
	}

	// The sidecar must not outlive the bridge even when Run dies abnormally.
	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic", "panic", r)
			a.StopSidecar()
			os.Exit(1)
		}
	}()

	if err := a.Run(ctx); err != nil {
		logger.Error("bridge exited with error", "err", err)
		a.StopSidecar()
		os.Exit(1)
	}

	logger.Info("bridge stopped cleanly")
}
