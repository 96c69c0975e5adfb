package domain

import (
	"fmt"
	"strings"
)

// ErrSidecarNotFound reports that the telemetry sidecar executable could not
// be located. Attempted lists every path that was checked.
type ErrSidecarNotFound struct {
	Name      string
	Attempted []string
}

func (e ErrSidecarNotFound) Error() string {
	if len(e.Attempted) == 0 {
		return fmt.Sprintf("sidecar %q not found", e.Name)
	}
	return fmt.Sprintf("sidecar %q not found (tried %s)", e.Name, strings.Join(e.Attempted, ", "))
}

// ErrSpawnFailed reports that the OS refused to create the sidecar process.
type ErrSpawnFailed struct {
	Path string
	Err  error
}

func (e ErrSpawnFailed) Error() string {
	return fmt.Sprintf("sidecar spawn %s: %v", e.Path, e.Err)
}

func (e ErrSpawnFailed) Unwrap() error {
	return e.Err
}

// ErrCrashedImmediately reports that the sidecar exited before it became
// live. Stderr carries whatever the process wrote before dying.
type ErrCrashedImmediately struct {
	ExitCode int
	Stderr   string
}

func (e ErrCrashedImmediately) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("sidecar exited immediately with code %d", e.ExitCode)
	}
	return fmt.Sprintf("sidecar exited immediately with code %d: %s", e.ExitCode, e.Stderr)
}

// ErrLivenessTimeout reports that a spawned sidecar never answered on its
// port within the retry budget.
type ErrLivenessTimeout struct {
	Port     int
	Attempts int
}

func (e ErrLivenessTimeout) Error() string {
	return fmt.Sprintf("sidecar did not respond on port %d after %d attempts", e.Port, e.Attempts)
}

// ErrDeviceCommand reports a failed command exchange with a Divoom device.
type ErrDeviceCommand struct {
	Command string
	Err     error
}

func (e ErrDeviceCommand) Error() string {
	return fmt.Sprintf("device command %s: %v", e.Command, e.Err)
}

func (e ErrDeviceCommand) Unwrap() error {
	return e.Err
}

// ErrDeviceNotFound reports that discovery did not return the requested device.
type ErrDeviceNotFound struct {
	IP string
}

func (e ErrDeviceNotFound) Error() string {
	return fmt.Sprintf("device with IP %s not found", e.IP)
}
