package model

import (
	"time"
)

// AnalysisJob represents one contract submitted for analysis, tracked from
// upload through completion. Jobs start under a client-generated id and are
// re-keyed to the backend's canonical id once results arrive.
type AnalysisJob struct {
	ID           string         `json:"id"`
	Filename     string         `json:"filename"`
	Status       string         `json:"status"` // analyzing, completed, error
	Results      []ClauseResult `json:"results,omitempty"`
	ContractText string         `json:"contract_text,omitempty"`
	ErrorMsg     string         `json:"error_msg,omitempty"`
	Timestamp    time.Time      `json:"timestamp"`

	// File holds the raw uploaded bytes while they are retained locally.
	// Absent after a restart unless re-fetched from the backend.
	File []byte `json:"-"`
}

// Job status constants
const (
	StatusAnalyzing = "analyzing"
	StatusCompleted = "completed"
	StatusError     = "error"
)

// OverallRisk is the job's worst clause level: high if any clause is high,
// else medium if any is medium, else low.
func (j *AnalysisJob) OverallRisk() RiskLevel {
	overall := RiskLow
	for i := range j.Results {
		switch j.Results[i].RiskLevel {
		case RiskHigh:
			return RiskHigh
		case RiskMedium:
			overall = RiskMedium
		}
	}
	return overall
}

// RiskyClauseCount counts clauses with any risk flagged.
func (j *AnalysisJob) RiskyClauseCount() int {
	n := 0
	for i := range j.Results {
		if j.Results[i].RiskLevel.Risky() {
			n++
		}
	}
	return n
}

// MaxRiskScore is the job's overall score: its worst clause, not an average.
func (j *AnalysisJob) MaxRiskScore() float64 {
	max := 0.0
	for i := range j.Results {
		if j.Results[i].FinalRiskScore > max {
			max = j.Results[i].FinalRiskScore
		}
	}
	return max
}

// Clone returns a deep enough copy for handing to views: the results slice
// is copied so callers can never mutate the stored job through a snapshot.
func (j *AnalysisJob) Clone() *AnalysisJob {
	cp := *j
	if j.Results != nil {
		cp.Results = make([]ClauseResult, len(j.Results))
		copy(cp.Results, j.Results)
	}
	if j.File != nil {
		cp.File = make([]byte, len(j.File))
		copy(cp.File, j.File)
	}
	return &cp
}
