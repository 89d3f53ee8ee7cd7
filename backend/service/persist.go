package service

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/rrb-ragini/AIAP-15-AI-Powered-Contract-Risk-Management/backend/model"
)

// DiskStore holds the durable local state: the snapshot of jobs still
// analyzing (so a restart during a long-running analysis does not lose
// sight of it) and the user's settings. Corrupt files are discarded and
// logged, never surfaced.
type DiskStore struct {
	dir string
}

const (
	analyzingFile = "analyzing_jobs.json"
	settingsFile  = "settings.json"
)

func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

// SaveAnalyzing writes the analyzing-jobs snapshot. File bytes are not
// persisted; they are re-fetched from the backend when needed.
func (d *DiskStore) SaveAnalyzing(jobs []*model.AnalysisJob) error {
	byID := make(map[string]*model.AnalysisJob, len(jobs))
	for _, job := range jobs {
		byID[job.ID] = job
	}
	return d.writeJSON(analyzingFile, byID)
}

// LoadAnalyzing reads the persisted analyzing-jobs snapshot. A missing or
// corrupt file yields nil.
func (d *DiskStore) LoadAnalyzing() []*model.AnalysisJob {
	var byID map[string]*model.AnalysisJob
	if !d.readJSON(analyzingFile, &byID) {
		return nil
	}
	result := make([]*model.AnalysisJob, 0, len(byID))
	for id, job := range byID {
		if job == nil || id == "" {
			continue
		}
		job.ID = id
		result = append(result, job)
	}
	return result
}

// SaveSettings persists the settings object.
func (d *DiskStore) SaveSettings(settings model.Settings) error {
	return d.writeJSON(settingsFile, settings)
}

// LoadSettings reads the persisted settings, falling back to defaults on
// any parse failure.
func (d *DiskStore) LoadSettings() model.Settings {
	var settings model.Settings
	if !d.readJSON(settingsFile, &settings) {
		return model.DefaultSettings()
	}
	if !model.ValidSensitivity(settings.RiskSensitivity) {
		settings.RiskSensitivity = model.SensitivityMedium
	}
	return settings
}

// writeJSON writes atomically via a temp file so a crash mid-write never
// leaves a truncated snapshot behind.
func (d *DiskStore) writeJSON(name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}

	path := filepath.Join(d.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", name, err)
	}
	return nil
}

func (d *DiskStore) readJSON(name string, v any) bool {
	path := filepath.Join(d.dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("failed to read persisted state", "file", name, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		slog.Warn("discarding corrupt persisted state", "file", name, "error", err)
		return false
	}
	return true
}
