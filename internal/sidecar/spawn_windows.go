//go:build windows

package sidecar

import (
	"bytes"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"syscall"

	"github.com/pixoolab/divoom-bridge/internal/domain"
)

const executableName = "HardwareMonitorCli.exe"

const createNoWindow = 0x08000000

// spawnSidecar launches the sidecar through the OS elevation prompt. The
// UAC intermediary owns the real child, so no handle can be retained; the
// caller gets nil and must rely on port-based liveness from here on.
func spawnSidecar(path string) (*handle, error) {
	workingDir := filepath.Dir(path)

	script := fmt.Sprintf(
		"Start-Process -FilePath '%s' -WorkingDirectory '%s' -Verb RunAs -WindowStyle Hidden",
		path, workingDir,
	)

	var stderr bytes.Buffer
	cmd := exec.Command("powershell", "-NoProfile", "-WindowStyle", "Hidden", "-Command", script)
	cmd.SysProcAttr = &syscall.SysProcAttr{CreationFlags: createNoWindow}
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, domain.ErrSpawnFailed{
			Path: path,
			Err:  fmt.Errorf("elevated launch: %w (stderr: %s)", err, trimStderr(stderr.Bytes())),
		}
	}

	return nil, nil
}

// killSidecarByName force-terminates the sidecar at the process-table level.
// Used when no handle is held and the graceful shutdown did not go through.
func killSidecarByName(logger *slog.Logger) {
	cmd := exec.Command("taskkill", "/F", "/IM", executableName)
	cmd.SysProcAttr = &syscall.SysProcAttr{CreationFlags: createNoWindow}
	if err := cmd.Run(); err != nil {
		logger.Debug("taskkill found no sidecar process", "err", err)
		return
	}
	logger.Info("sidecar force-killed by name")
}
