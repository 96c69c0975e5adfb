//go:build !windows

package sidecar

import (
	"bytes"
	"log/slog"
	"os/exec"
	"path/filepath"

	"github.com/pixoolab/divoom-bridge/internal/domain"
)

const executableName = "HardwareMonitorCli"

// spawnSidecar launches the sidecar directly. No elevation is needed
// outside Windows, so the supervisor keeps a killable handle.
func spawnSidecar(path string) (*handle, error) {
	var stderr bytes.Buffer

	cmd := exec.Command(path)
	cmd.Dir = filepath.Dir(path)
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, domain.ErrSpawnFailed{Path: path, Err: err}
	}

	return newHandle(cmd, &stderr), nil
}

// killSidecarByName force-terminates any sidecar left in the process table.
// A non-zero exit simply means nothing matched.
func killSidecarByName(logger *slog.Logger) {
	if err := exec.Command("pkill", "-f", executableName).Run(); err != nil {
		logger.Debug("pkill found no sidecar process", "err", err)
		return
	}
	logger.Info("sidecar force-killed by name")
}
