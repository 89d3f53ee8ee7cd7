package model

import (
	"encoding/json"
	"strings"
)

// RiskLevel is the backend-assigned severity for a clause. Wire values are
// case-insensitive and "moderate" is accepted as an alias of medium.
type RiskLevel string

const (
	RiskNone   RiskLevel = "none"
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// ParseRiskLevel normalizes a wire risk level. Unknown values map to none so
// that a garbled level never flags a clause by accident.
func ParseRiskLevel(s string) RiskLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return RiskHigh
	case "medium", "moderate":
		return RiskMedium
	case "low":
		return RiskLow
	default:
		return RiskNone
	}
}

func (r *RiskLevel) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*r = ParseRiskLevel(s)
	return nil
}

// Risky reports whether the level flags the clause at all.
func (r RiskLevel) Risky() bool {
	return r == RiskLow || r == RiskMedium || r == RiskHigh
}
