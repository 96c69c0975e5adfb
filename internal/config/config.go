package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Build-time variables injected via -ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// Config holds all bridge configuration loaded from environment variables.
type Config struct {
	// SidecarPath overrides sidecar executable discovery. Absolute, or
	// relative to the working directory / the bridge executable directory.
	SidecarPath string

	// SidecarPort is the loopback port the sidecar serves telemetry on.
	SidecarPort int

	// APIPort is the port the bridge HTTP API listens on for the GUI shell.
	APIPort int

	// DeviceIP is the Divoom device the metrics push loop targets. Empty
	// disables pushing until a device is selected through the API.
	DeviceIP string

	// PushInterval is how often the push loop sends metrics to the device.
	PushInterval time.Duration

	// DataDir is the directory for persisted settings.
	DataDir string

	// LogDir is the directory for log files.
	LogDir string

	// Debug enables verbose logging and logger output to stderr.
	Debug bool
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	dataDir := "."
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		dataDir = filepath.Join(home, ".divoom-bridge")
	}

	return &Config{
		SidecarPort:  8765,
		APIPort:      9120,
		PushInterval: 3 * time.Second,
		DataDir:      dataDir,
		LogDir:       filepath.Join(dataDir, "logs"),
	}
}

// Load reads configuration from environment variables, applying defaults
// for anything not explicitly set.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	cfg.SidecarPath = os.Getenv("BRIDGE_SIDECAR_PATH")

	if v := os.Getenv("BRIDGE_SIDECAR_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return nil, fmt.Errorf("invalid BRIDGE_SIDECAR_PORT %q", v)
		}
		cfg.SidecarPort = port
	}

	if v := os.Getenv("BRIDGE_API_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return nil, fmt.Errorf("invalid BRIDGE_API_PORT %q", v)
		}
		cfg.APIPort = port
	}

	cfg.DeviceIP = os.Getenv("BRIDGE_DEVICE_IP")

	if v := os.Getenv("BRIDGE_PUSH_INTERVAL"); v != "" {
		interval, err := time.ParseDuration(v)
		if err != nil || interval <= 0 {
			return nil, fmt.Errorf("invalid BRIDGE_PUSH_INTERVAL %q", v)
		}
		cfg.PushInterval = interval
	}

	if v := os.Getenv("BRIDGE_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}

	if v := os.Getenv("BRIDGE_LOG_DIR"); v != "" {
		cfg.LogDir = v
	}

	cfg.Debug = os.Getenv("BRIDGE_DEBUG") == "true"

	return cfg, nil
}

// NewLogger creates a structured logger writing to a file under LogDir.
// In debug mode it also mirrors records to stderr.
func NewLogger(cfg *Config, name string) (*slog.Logger, error) {
	if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	logPath := filepath.Join(cfg.LogDir, name+".log")
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", logPath, err)
	}

	level := slog.LevelInfo
	var out io.Writer = file
	if cfg.Debug {
		level = slog.LevelDebug
		out = io.MultiWriter(file, os.Stderr)
	}

	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})
	return slog.New(handler), nil
}
