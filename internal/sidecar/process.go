package sidecar

import (
	"bytes"
	"os/exec"

	"github.com/pixoolab/divoom-bridge/internal/domain"
)

// handle wraps a directly spawned sidecar process. It exists from a
// successful spawn until Stop takes it or the process is observed to have
// exited; it is never shared outside the supervisor.
type handle struct {
	cmd    *exec.Cmd
	stderr *bytes.Buffer
	done   chan struct{}
}

// newHandle starts a reaper goroutine so the child never becomes a zombie.
// done is closed once the process has exited.
func newHandle(cmd *exec.Cmd, stderr *bytes.Buffer) *handle {
	h := &handle{cmd: cmd, stderr: stderr, done: make(chan struct{})}
	go func() {
		_ = cmd.Wait()
		close(h.done)
	}()
	return h
}

// crashError captures the exit code and stderr of a process that died
// before becoming live. Only valid after done is closed.
func (h *handle) crashError() error {
	code := -1
	if h.cmd.ProcessState != nil {
		code = h.cmd.ProcessState.ExitCode()
	}
	return domain.ErrCrashedImmediately{ExitCode: code, Stderr: trimStderr(h.stderr.Bytes())}
}

// kill terminates the process without waiting for exit confirmation; the
// reaper goroutine collects the exit status.
func (h *handle) kill() {
	if h.cmd.Process != nil {
		_ = h.cmd.Process.Kill()
	}
}
