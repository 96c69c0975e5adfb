package sidecar

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/pixoolab/divoom-bridge/internal/domain"
)

// State reflects the supervisor's view of the sidecar lifecycle.
type State string

const (
	StateIdle     State = "idle"
	StateStarting State = "starting"
	StateRunning  State = "running"
	StateStopping State = "stopping"
)

const (
	// probeTimeout bounds the pre-spawn liveness check.
	probeTimeout = 100 * time.Millisecond

	// crashWindow is how long a freshly spawned process is observed for an
	// immediate exit before it is considered launched.
	crashWindow = 500 * time.Millisecond

	livenessAttempts = 10
	livenessInterval = 500 * time.Millisecond
)

// PathResolver locates the sidecar executable. Resolution runs on every
// start attempt; results are never cached across restarts.
type PathResolver interface {
	Resolve() (string, error)
}

// Supervisor owns the sidecar process lifecycle: idempotent asynchronous
// start, liveness probing and idempotent stop. A fault anywhere inside
// supervision is logged and absorbed; it never propagates to the caller.
type Supervisor struct {
	logger   *slog.Logger
	resolver PathResolver
	client   *Client

	// startMu guards the start-in-flight flag and the observable state.
	startMu  sync.Mutex
	starting bool
	state    State

	// procMu guards the process handle. Held only for the handle swap
	// itself, never across a blocking call.
	procMu   sync.Mutex
	proc     *handle
	elevated bool
}

func NewSupervisor(resolver PathResolver, client *Client, logger *slog.Logger) *Supervisor {
	return &Supervisor{
		logger:   logger,
		resolver: resolver,
		client:   client,
		state:    StateIdle,
	}
}

// State returns the current lifecycle state.
func (s *Supervisor) State() State {
	s.startMu.Lock()
	defer s.startMu.Unlock()
	return s.state
}

// Start launches the sidecar in a background goroutine and returns
// immediately. A second call while an attempt is in flight is a no-op.
func (s *Supervisor) Start() {
	s.startMu.Lock()
	if s.starting {
		s.startMu.Unlock()
		return
	}
	s.starting = true
	s.state = StateStarting
	s.startMu.Unlock()

	go s.runStart()
}

// runStart executes one start attempt behind a fault barrier. The start
// guard is released on every exit path; a stuck guard would permanently
// disable future start attempts.
func (s *Supervisor) runStart() {
	running := false

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic during sidecar start", "panic", r)
		}
		s.startMu.Lock()
		s.starting = false
		if running {
			s.state = StateRunning
		} else {
			s.state = StateIdle
		}
		s.startMu.Unlock()
	}()

	if err := s.startOnce(); err != nil {
		s.logger.Error("sidecar start failed", "err", err)
		return
	}

	running = true
	s.logger.Info("sidecar is ready", "port", s.client.Port())
}

func (s *Supervisor) startOnce() error {
	path, err := s.resolver.Resolve()
	if err != nil {
		return err
	}

	// A previous bridge run may have left the sidecar alive. An answering
	// port means there is nothing to spawn.
	if s.client.Alive(probeTimeout) {
		s.logger.Info("sidecar already running", "port", s.client.Port())
		return nil
	}

	h, err := spawnSidecar(path)
	if err != nil {
		return err
	}

	if h == nil {
		// Elevated launch: the OS intermediary owns the real child, so no
		// handle can be retained. Stop falls back to port-based shutdown
		// for this process.
		s.procMu.Lock()
		s.elevated = true
		s.procMu.Unlock()
	} else {
		select {
		case <-h.done:
			return h.crashError()
		case <-time.After(crashWindow):
		}

		s.procMu.Lock()
		s.proc = h
		s.procMu.Unlock()
	}

	return s.awaitLiveness()
}

func (s *Supervisor) awaitLiveness() error {
	for i := 0; i < livenessAttempts; i++ {
		time.Sleep(livenessInterval)
		if s.client.Alive(200 * time.Millisecond) {
			s.logger.Info("sidecar answered", "after", time.Duration(i+1)*livenessInterval)
			return nil
		}
	}
	return domain.ErrLivenessTimeout{Port: s.client.Port(), Attempts: livenessAttempts}
}

// Stop shuts the sidecar down: graceful HTTP shutdown first, then a direct
// kill of the held handle, then a name-based force kill for processes the
// supervisor never owned (elevated launch, previous run). Stop never waits
// for exit confirmation and is a no-op when nothing is running.
func (s *Supervisor) Stop() {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic during sidecar stop", "panic", r)
		}
		s.startMu.Lock()
		s.state = StateIdle
		s.startMu.Unlock()
	}()

	s.startMu.Lock()
	s.state = StateStopping
	s.startMu.Unlock()

	// Connection failure here means "already stopped", not an error.
	listening := s.client.Alive(probeTimeout)
	gracefulOK := false
	if listening {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		gracefulOK = s.client.Shutdown(ctx) == nil
		cancel()
		if gracefulOK {
			s.logger.Info("sidecar graceful shutdown requested")
		}
	}

	s.procMu.Lock()
	h := s.proc
	s.proc = nil
	elevated := s.elevated
	s.elevated = false
	s.procMu.Unlock()

	// A held handle is authoritative regardless of the graceful outcome.
	if h != nil {
		h.kill()
		s.logger.Info("sidecar process killed")
		return
	}

	if listening && !gracefulOK {
		if elevated {
			s.logger.Info("no handle for elevated sidecar, force killing by name")
		}
		killSidecarByName(s.logger)
	}
}

func trimStderr(b []byte) string {
	return strings.TrimSpace(string(b))
}
