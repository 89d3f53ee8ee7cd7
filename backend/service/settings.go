package service

import (
	"log/slog"
	"sync"

	"github.com/rrb-ragini/AIAP-15-AI-Powered-Contract-Risk-Management/backend/model"
)

// SettingsStore owns the persisted settings object. Reads return copies;
// writes replace the whole object and persist immediately.
type SettingsStore struct {
	mu       sync.RWMutex
	settings model.Settings
	disk     *DiskStore
}

func NewSettingsStore(disk *DiskStore) *SettingsStore {
	return &SettingsStore{
		settings: disk.LoadSettings(),
		disk:     disk,
	}
}

func (s *SettingsStore) Get() model.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

func (s *SettingsStore) Save(settings model.Settings) {
	s.mu.Lock()
	s.settings = settings
	s.mu.Unlock()

	if err := s.disk.SaveSettings(settings); err != nil {
		slog.Warn("failed to persist settings", "error", err)
	}
}
