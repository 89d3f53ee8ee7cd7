package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rrb-ragini/AIAP-15-AI-Powered-Contract-Risk-Management/backend/model"
	"github.com/rrb-ragini/AIAP-15-AI-Powered-Contract-Risk-Management/backend/pkg/logger"
)

var (
	// ErrReportNotFound means neither the local map nor the backend knows
	// the report.
	ErrReportNotFound = errors.New("report not found")
	// ErrNoRetainedFile means the original upload is gone everywhere an
	// annotated export could source it from.
	ErrNoRetainedFile = errors.New("original file not retained")
)

// JobManager owns the analysis job lifecycle: it submits uploads to the
// council backend, merges locally tracked state with server-reported state,
// and recovers in-flight jobs across restarts. It is the only writer of
// the job map.
type JobManager struct {
	store     *JobStore
	council   *CouncilService
	retention *RetentionService // nil when retention is not configured

	statsMu   sync.Mutex
	lastStats *model.DashboardStats
}

func NewJobManager(store *JobStore, council *CouncilService, retention *RetentionService) *JobManager {
	return &JobManager{
		store:     store,
		council:   council,
		retention: retention,
	}
}

// Recover restores persisted analyzing jobs into the map, then reconciles
// against the backend's authoritative report list. Restore first, refresh
// second: the optimistic local state is never allowed to shadow a report
// the backend has already completed.
func (m *JobManager) Recover(ctx context.Context, disk *DiskStore) {
	restored := disk.LoadAnalyzing()
	if len(restored) > 0 {
		m.store.Restore(restored)
		logger.Info(ctx, "restored in-flight jobs", "count", len(restored))
	}

	if err := m.RefreshReports(ctx); err != nil {
		logger.Warn(ctx, "initial report reconciliation failed", "error", err)
	}
}

// StartAnalysis creates a job in the analyzing state and returns it
// immediately; the upload to the backend happens in the background so the
// caller stays interactive. The job id is a client-generated token until
// the backend assigns its canonical id.
func (m *JobManager) StartAnalysis(filename string, file []byte, sensitivity string) *model.AnalysisJob {
	job := &model.AnalysisJob{
		ID:        fmt.Sprintf("job-%d", time.Now().UnixNano()),
		Filename:  filename,
		Status:    model.StatusAnalyzing,
		Timestamp: time.Now(),
		File:      file,
	}
	m.store.Save(job)

	go m.runAnalysis(job.ID, filename, file, sensitivity)

	return job.Clone()
}

// runAnalysis submits the upload and files the outcome, whenever it
// arrives. There is no cancellation: once issued, the request runs to
// completion and its resolution still lands in the job map even if the
// initiating view is long gone.
func (m *JobManager) runAnalysis(clientID, filename string, file []byte, sensitivity string) {
	ctx := context.WithValue(context.Background(), logger.JobIDKey, clientID)
	logger.Info(ctx, "analysis submitted", "filename", filename, "sensitivity", sensitivity)

	// Retain the upload before analysis so the original survives even
	// when the backend rejects it.
	if m.retention != nil {
		if err := m.retention.Store(ctx, clientID, file, "application/pdf"); err != nil {
			logger.Warn(ctx, "failed to retain upload", "error", err)
		}
	}

	report, err := m.council.Analyze(ctx, filename, file, sensitivity)
	if err != nil {
		logger.Error(ctx, "analysis failed", "error", err)
		m.store.Fail(clientID, err.Error())
		return
	}

	m.store.Complete(clientID, report.ID, report.Results, report.ContractText)
	logger.Info(ctx, "analysis completed",
		"server_id", report.ID,
		"clauses", len(report.Results),
	)

	if m.retention != nil && report.ID != "" && report.ID != clientID {
		if err := m.retention.Rename(ctx, clientID, report.ID); err != nil {
			logger.Warn(ctx, "failed to re-key retained upload", "server_id", report.ID, "error", err)
		}
	}
}

// Reports returns snapshots of all tracked jobs, most recent first.
func (m *JobManager) Reports() []*model.AnalysisJob {
	return m.store.List()
}

// RefreshReports pulls the backend's completed report list and merges it
// into the job map. Local analyzing jobs superseded by a completed server
// report are removed; everything else is left alone. A failure preserves
// prior state.
func (m *JobManager) RefreshReports(ctx context.Context) error {
	reports, err := m.council.FetchReports(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh reports: %w", err)
	}

	merged := make([]*model.AnalysisJob, 0, len(reports))
	for _, r := range reports {
		merged = append(merged, reportToJob(r))
	}
	m.store.MergeReports(merged)
	return nil
}

// OpenReport returns the full report for review. Missing pieces (result
// payload after a reload, the original file bytes) are fetched from the
// backend; the file fetch is best-effort. An unknown report is an error
// and changes nothing.
func (m *JobManager) OpenReport(ctx context.Context, id string) (*model.AnalysisJob, error) {
	job := m.store.Get(id)
	if job != nil && job.Status == model.StatusError {
		return job, nil
	}
	if job != nil && job.Status == model.StatusAnalyzing {
		return job, nil
	}

	needsPayload := job == nil || job.Results == nil
	if needsPayload {
		report, err := m.council.FetchReport(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrReportNotFound, id)
		}
		refreshed := reportToJob(report)
		if job != nil {
			refreshed.File = job.File
			if refreshed.Timestamp.IsZero() {
				refreshed.Timestamp = job.Timestamp
			}
		}
		job = refreshed
	}

	if job.File == nil {
		job.File = m.fetchRetainedFile(ctx, id)
	}

	m.store.Save(job)
	return job.Clone(), nil
}

// fetchRetainedFile tries local object storage first, then the backend.
// Both are best-effort; a nil result just means no annotated export until
// the file resurfaces.
func (m *JobManager) fetchRetainedFile(ctx context.Context, id string) []byte {
	if m.retention != nil {
		if data, err := m.retention.Fetch(ctx, id); err == nil {
			return data
		}
	}
	data, err := m.council.FetchReportFile(ctx, id)
	if err != nil {
		logger.Debug(ctx, "original file unavailable", "job_id", id, "error", err)
		return nil
	}
	return data
}

// Stats returns dashboard statistics: the backend's numbers overlaid on a
// locally derived aggregate. When the backend is unreachable the last
// successful stats stand; no stats at all falls back to the local
// aggregate alone. Failures are logged, never surfaced.
func (m *JobManager) Stats(ctx context.Context) model.DashboardStats {
	local := Aggregate(m.store.Completed())

	server, err := m.council.FetchStats(ctx)
	if err != nil {
		logger.Warn(ctx, "stats fetch failed, keeping previous stats", "error", err)
		m.statsMu.Lock()
		defer m.statsMu.Unlock()
		if m.lastStats != nil {
			return *m.lastStats
		}
		return local
	}

	merged := MergeStats(server, local)
	m.statsMu.Lock()
	m.lastStats = &merged
	m.statsMu.Unlock()
	return merged
}

// DeleteReport removes a report, backend first. Local state only changes
// on confirmed success.
func (m *JobManager) DeleteReport(ctx context.Context, id string) error {
	if err := m.council.DeleteReport(ctx, id); err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	m.store.Delete(id)
	if m.retention != nil {
		if err := m.retention.Delete(ctx, id); err != nil {
			logger.Warn(ctx, "failed to delete retained upload", "job_id", id, "error", err)
		}
	}
	return nil
}

// ClearReports removes every report, backend first.
func (m *JobManager) ClearReports(ctx context.Context) error {
	if err := m.council.DeleteAllReports(ctx); err != nil {
		return fmt.Errorf("failed to clear reports: %w", err)
	}
	m.store.Clear()
	return nil
}

// AnnotatedReport renders the annotated copy of a report's original PDF.
func (m *JobManager) AnnotatedReport(ctx context.Context, id string) ([]byte, string, error) {
	job, err := m.OpenReport(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if job.File == nil {
		return nil, "", ErrNoRetainedFile
	}

	annotated, err := AnnotatePDF(job.File, job.Results)
	if err != nil {
		return nil, "", fmt.Errorf("failed to annotate %s: %w", job.Filename, err)
	}
	return annotated, job.Filename, nil
}

// HighlightedText renders the plain-text fallback view with clause
// highlight markers, for documents without a usable PDF.
func (m *JobManager) HighlightedText(ctx context.Context, id string) (string, error) {
	job, err := m.OpenReport(ctx, id)
	if err != nil {
		return "", err
	}
	if job.ContractText == "" {
		return "", fmt.Errorf("no contract text for %s", id)
	}
	return HighlightOccurrences(job.ContractText, job.Results), nil
}

func reportToJob(r *AnalysisReport) *model.AnalysisJob {
	return &model.AnalysisJob{
		ID:           r.ID,
		Filename:     r.Filename,
		Status:       model.StatusCompleted,
		Results:      r.Results,
		ContractText: r.ContractText,
		Timestamp:    r.Timestamp,
	}
}
