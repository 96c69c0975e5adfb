package settings

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// Settings are the UI-boundary preferences the bridge persists between runs.
type Settings struct {
	// InstallationID identifies this bridge installation in logs and API
	// responses. Generated once and kept for the lifetime of the data dir.
	InstallationID string `json:"installation_id"`

	// CloseToTray keeps the application alive in the tray on window close.
	CloseToTray bool `json:"close_to_tray"`

	// DeviceIP is the display the metrics push loop targets.
	DeviceIP string `json:"device_ip,omitempty"`

	// PushEnabled toggles the metrics push loop.
	PushEnabled bool `json:"push_enabled"`

	// PushScreen is the panel index the PC Monitor clock runs on.
	PushScreen int `json:"push_screen"`
}

// Store persists Settings as a JSON file under the data directory. All
// access goes through the store; the file is rewritten on every update.
type Store struct {
	logger *slog.Logger
	path   string

	mu      sync.Mutex
	current Settings
}

// NewStore loads settings.json from dataDir, creating it with defaults and
// a fresh installation ID when missing or unreadable.
func NewStore(dataDir string, logger *slog.Logger) (*Store, error) {
	s := &Store{
		logger: logger,
		path:   filepath.Join(dataDir, "settings.json"),
		current: Settings{
			CloseToTray: true,
		},
	}

	data, err := os.ReadFile(s.path)
	if err == nil {
		if err := json.Unmarshal(data, &s.current); err != nil {
			logger.Warn("settings file is corrupt, rewriting with defaults", "path", s.path, "err", err)
			s.current = Settings{CloseToTray: true}
		}
	}

	if s.current.InstallationID == "" {
		s.current.InstallationID = uuid.NewString()
	}

	if err := s.persist(); err != nil {
		return nil, err
	}
	return s, nil
}

// Get returns a copy of the current settings.
func (s *Store) Get() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Update applies fn to the current settings and persists the result. The
// installation ID cannot be changed through Update.
func (s *Store) Update(fn func(*Settings)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.current.InstallationID
	fn(&s.current)
	s.current.InstallationID = id

	return s.persist()
}

// persist writes the settings file. Callers must hold mu or be the
// constructor.
func (s *Store) persist() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}

	data, err := json.MarshalIndent(s.current, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}
