package model

import (
	"testing"
	"time"
)

func TestJobOverallRisk(t *testing.T) {
	cases := []struct {
		name    string
		results []ClauseResult
		want    RiskLevel
	}{
		{"no results", nil, RiskLow},
		{"only low", []ClauseResult{{RiskLevel: RiskLow}}, RiskLow},
		{"medium beats low", []ClauseResult{{RiskLevel: RiskLow}, {RiskLevel: RiskMedium}}, RiskMedium},
		{"high beats all", []ClauseResult{{RiskLevel: RiskMedium}, {RiskLevel: RiskHigh}, {RiskLevel: RiskLow}}, RiskHigh},
	}

	for _, tc := range cases {
		job := &AnalysisJob{Results: tc.results}
		if got := job.OverallRisk(); got != tc.want {
			t.Errorf("%s: OverallRisk() = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestJobMaxRiskScore(t *testing.T) {
	job := &AnalysisJob{Results: []ClauseResult{
		{FinalRiskScore: 2.0},
		{FinalRiskScore: 8.0},
		{FinalRiskScore: 4.5},
	}}

	if got := job.MaxRiskScore(); got != 8.0 {
		t.Errorf("MaxRiskScore() = %f, want 8.0", got)
	}
}

func TestJobRiskyClauseCount(t *testing.T) {
	job := &AnalysisJob{Results: []ClauseResult{
		{RiskLevel: RiskNone},
		{RiskLevel: RiskLow},
		{RiskLevel: RiskHigh},
	}}

	if got := job.RiskyClauseCount(); got != 2 {
		t.Errorf("RiskyClauseCount() = %d, want 2", got)
	}
}

func TestJobClone(t *testing.T) {
	job := &AnalysisJob{
		ID:        "job-1",
		Filename:  "msa.pdf",
		Status:    StatusCompleted,
		Results:   []ClauseResult{{ClauseID: 1, RiskLevel: RiskHigh}},
		File:      []byte("%PDF-1.4"),
		Timestamp: time.Now(),
	}

	cp := job.Clone()
	cp.Results[0].RiskLevel = RiskLow
	cp.File[0] = 'x'

	if job.Results[0].RiskLevel != RiskHigh {
		t.Error("Clone should not share the results slice")
	}
	if job.File[0] != '%' {
		t.Error("Clone should not share the file bytes")
	}
}
