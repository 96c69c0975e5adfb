package settings

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewStoreCreatesDefaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, err := NewStore(dir, testLogger())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	cfg := s.Get()
	if cfg.InstallationID == "" {
		t.Error("expected a generated installation id")
	}
	if !cfg.CloseToTray {
		t.Error("expected close-to-tray to default on")
	}
	if cfg.PushEnabled {
		t.Error("expected push disabled by default")
	}

	if _, err := os.Stat(filepath.Join(dir, "settings.json")); err != nil {
		t.Errorf("settings file not written: %v", err)
	}
}

func TestStoreRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, err := NewStore(dir, testLogger())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	err = s.Update(func(cfg *Settings) {
		cfg.DeviceIP = "192.168.1.50"
		cfg.PushEnabled = true
		cfg.PushScreen = 3
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	reloaded, err := NewStore(dir, testLogger())
	if err != nil {
		t.Fatalf("reload store: %v", err)
	}

	cfg := reloaded.Get()
	if cfg.DeviceIP != "192.168.1.50" {
		t.Errorf("device ip = %q", cfg.DeviceIP)
	}
	if !cfg.PushEnabled {
		t.Error("push enabled flag lost")
	}
	if cfg.PushScreen != 3 {
		t.Errorf("push screen = %d", cfg.PushScreen)
	}
}

func TestInstallationIDSurvivesReloadAndUpdate(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, err := NewStore(dir, testLogger())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	id := s.Get().InstallationID

	err = s.Update(func(cfg *Settings) {
		cfg.InstallationID = "overwritten"
		cfg.DeviceIP = "10.0.0.1"
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := s.Get().InstallationID; got != id {
		t.Errorf("installation id changed through Update: %q", got)
	}

	reloaded, err := NewStore(dir, testLogger())
	if err != nil {
		t.Fatalf("reload store: %v", err)
	}
	if got := reloaded.Get().InstallationID; got != id {
		t.Errorf("installation id changed across reload: %q != %q", got, id)
	}
}

func TestCorruptFileFallsBackToDefaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("seed corrupt file: %v", err)
	}

	s, err := NewStore(dir, testLogger())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	cfg := s.Get()
	if cfg.InstallationID == "" {
		t.Error("expected a fresh installation id")
	}
	if !cfg.CloseToTray {
		t.Error("expected defaults after corrupt file")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read rewritten file: %v", err)
	}
	if string(data) == "{not json" {
		t.Error("corrupt file was not rewritten")
	}
}
