package model

// ClauseResult is one clause identified by the analysis backend within a
// contract. The backend reports no character offsets, only the literal
// clause text; all correlation back onto the document is re-derived by
// text matching.
type ClauseResult struct {
	ClauseID              int       `json:"clause_id"`
	ClauseText            string    `json:"clause_text"`
	RiskLevel             RiskLevel `json:"risk_level"`
	GoldenClauseDetected  bool      `json:"golden_clause_detected"`
	GoldenClauseType      string    `json:"golden_clause_type,omitempty"`
	Justification         string    `json:"justification"`
	BusinessRiskIfIgnored string    `json:"business_risk_if_ignored"`
	FinalRiskScore        float64   `json:"final_risk_score"` // 0-10
	Confidence            float64   `json:"confidence"`       // 0-1
	SuggestedCorrection   string    `json:"suggested_correction,omitempty"`
}

// Flagged reports whether the clause carries any risk worth surfacing.
func (c *ClauseResult) Flagged() bool {
	return c.RiskLevel.Risky() && c.ClauseText != ""
}
