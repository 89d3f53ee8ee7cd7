package model

// RiskDistribution buckets risky clauses by level. Moderate counts as medium.
type RiskDistribution struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// BusinessImpact buckets risky clauses by the business area they touch.
// Derived by keyword classification, so it is a heuristic, not a guarantee.
type BusinessImpact struct {
	CashFlow int `json:"cashFlow"`
	Legal    int `json:"legal"`
	Ops      int `json:"ops"`
}

// DashboardStats are the aggregate numbers shown on the dashboard.
type DashboardStats struct {
	ContractsAnalyzed int              `json:"contracts_analyzed"`
	HighRiskContracts int              `json:"high_risk_contracts"`
	TotalRiskyClauses int              `json:"total_risky_clauses"`
	AvgRiskScore      float64          `json:"avg_risk_score"`
	RiskDistribution  RiskDistribution `json:"risk_distribution"`
	BusinessImpact    BusinessImpact   `json:"business_impact"`
}

// ServerStats is the backend's stats payload. Fields are pointers because
// the backend may supply any subset; supplied fields take precedence over
// locally derived ones field-by-field.
type ServerStats struct {
	ContractsAnalyzed *int              `json:"contracts_analyzed"`
	HighRiskContracts *int              `json:"high_risk_contracts"`
	TotalRiskyClauses *int              `json:"total_risky_clauses"`
	AvgRiskScore      *float64          `json:"avg_risk_score"`
	RiskDistribution  *RiskDistribution `json:"risk_distribution"`
	BusinessImpact    *BusinessImpact   `json:"business_impact"`
}
