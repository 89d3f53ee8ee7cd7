package service

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/rrb-ragini/AIAP-15-AI-Powered-Contract-Risk-Management/backend/model"
)

// JobStore owns the analysis job map. All mutation goes through the
// enumerated operations below, each applied as a whole-entry merge under a
// single lock, so concurrent completions and reconciliations never
// interleave at the key level. Views get cloned snapshots only.
type JobStore struct {
	mu   sync.RWMutex
	jobs map[string]*model.AnalysisJob

	// persist receives a snapshot of all jobs still analyzing after every
	// change to the map. Only those jobs survive a restart.
	persist func(analyzing []*model.AnalysisJob)
}

func NewJobStore(persist func(analyzing []*model.AnalysisJob)) *JobStore {
	return &JobStore{
		jobs:    make(map[string]*model.AnalysisJob),
		persist: persist,
	}
}

// Save inserts or replaces a job entry.
func (s *JobStore) Save(job *model.AnalysisJob) {
	s.mu.Lock()
	s.jobs[job.ID] = job.Clone()
	snapshot := s.analyzingLocked()
	s.mu.Unlock()

	s.flush(snapshot)
}

// Get returns a snapshot of a job, or nil.
func (s *JobStore) Get(id string) *model.AnalysisJob {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if job, ok := s.jobs[id]; ok {
		return job.Clone()
	}
	return nil
}

// List returns snapshots of all jobs, most recent first.
func (s *JobStore) List() []*model.AnalysisJob {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*model.AnalysisJob, 0, len(s.jobs))
	for _, job := range s.jobs {
		result = append(result, job.Clone())
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Timestamp.After(result[j].Timestamp)
	})
	return result
}

// Completed returns snapshots of completed jobs, most recent first.
func (s *JobStore) Completed() []*model.AnalysisJob {
	all := s.List()
	result := all[:0]
	for _, job := range all {
		if job.Status == model.StatusCompleted {
			result = append(result, job)
		}
	}
	return result
}

// Complete transitions an analyzing job to completed, migrating the entry
// from the client-generated id to the backend-assigned id when they differ.
// The retained file handle carries over to the new key.
func (s *JobStore) Complete(clientID, serverID string, results []model.ClauseResult, contractText string) {
	s.mu.Lock()
	job, ok := s.jobs[clientID]
	if !ok {
		// Job was deleted while analyzing; file the results anyway so the
		// completed report is not lost.
		job = &model.AnalysisJob{ID: clientID, Timestamp: time.Now()}
	}

	updated := job.Clone()
	updated.Status = model.StatusCompleted
	updated.Results = results
	updated.ContractText = contractText
	updated.ErrorMsg = ""
	updated.Timestamp = time.Now()
	if serverID != "" {
		updated.ID = serverID
	}

	if updated.ID != clientID {
		delete(s.jobs, clientID)
	}
	s.jobs[updated.ID] = updated
	snapshot := s.analyzingLocked()
	s.mu.Unlock()

	s.flush(snapshot)
}

// Fail transitions an analyzing job to error, keeping its original id.
func (s *JobStore) Fail(id, errMsg string) {
	s.mu.Lock()
	if job, ok := s.jobs[id]; ok {
		updated := job.Clone()
		updated.Status = model.StatusError
		updated.ErrorMsg = errMsg
		s.jobs[id] = updated
	}
	snapshot := s.analyzingLocked()
	s.mu.Unlock()

	s.flush(snapshot)
}

// MergeReports merges the backend's authoritative completed reports into the
// map. A local entry still analyzing is superseded (removed) when a server
// report exists for the same filename: that job finished on the backend
// while we lost track of it, typically across a reload. Existing completed
// entries keep their full payload and retained file when the incoming
// report is only a summary.
func (s *JobStore) MergeReports(reports []*model.AnalysisJob) {
	s.mu.Lock()
	byFilename := make(map[string]bool, len(reports))
	for _, r := range reports {
		byFilename[r.Filename] = true
	}

	for id, job := range s.jobs {
		if job.Status == model.StatusAnalyzing && byFilename[job.Filename] {
			slog.Info("local analyzing job superseded by server report",
				"job_id", id,
				"filename", job.Filename,
			)
			delete(s.jobs, id)
		}
	}

	for _, r := range reports {
		incoming := r.Clone()
		incoming.Status = model.StatusCompleted
		if existing, ok := s.jobs[incoming.ID]; ok {
			// Never downgrade a full report to a summary.
			if incoming.Results == nil {
				incoming.Results = existing.Results
			}
			if incoming.ContractText == "" {
				incoming.ContractText = existing.ContractText
			}
			if incoming.File == nil {
				incoming.File = existing.File
			}
			if incoming.Timestamp.IsZero() {
				incoming.Timestamp = existing.Timestamp
			}
		}
		if incoming.Timestamp.IsZero() {
			incoming.Timestamp = time.Now()
		}
		s.jobs[incoming.ID] = incoming
	}
	snapshot := s.analyzingLocked()
	s.mu.Unlock()

	s.flush(snapshot)
}

// Restore merges persisted analyzing jobs back into the map at startup.
// Existing entries are never overwritten; the authoritative report refresh
// runs afterwards and supersedes whatever actually finished.
func (s *JobStore) Restore(jobs []*model.AnalysisJob) {
	s.mu.Lock()
	for _, job := range jobs {
		if _, ok := s.jobs[job.ID]; ok {
			continue
		}
		restored := job.Clone()
		restored.Status = model.StatusAnalyzing
		s.jobs[restored.ID] = restored
	}
	snapshot := s.analyzingLocked()
	s.mu.Unlock()

	s.flush(snapshot)
}

// Delete removes one job.
func (s *JobStore) Delete(id string) {
	s.mu.Lock()
	delete(s.jobs, id)
	snapshot := s.analyzingLocked()
	s.mu.Unlock()

	s.flush(snapshot)
}

// Clear removes all jobs.
func (s *JobStore) Clear() {
	s.mu.Lock()
	s.jobs = make(map[string]*model.AnalysisJob)
	s.mu.Unlock()

	s.flush(nil)
}

// Count returns the number of jobs in the store.
func (s *JobStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}

// analyzingLocked snapshots jobs still in the analyzing state.
// Must be called with the lock held.
func (s *JobStore) analyzingLocked() []*model.AnalysisJob {
	var result []*model.AnalysisJob
	for _, job := range s.jobs {
		if job.Status == model.StatusAnalyzing {
			result = append(result, job.Clone())
		}
	}
	return result
}

func (s *JobStore) flush(analyzing []*model.AnalysisJob) {
	if s.persist != nil {
		s.persist(analyzing)
	}
}
