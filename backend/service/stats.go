package service

import (
	"math"
	"strings"

	"github.com/rrb-ragini/AIAP-15-AI-Powered-Contract-Risk-Management/backend/model"
)

// ImpactRule maps clause-text keywords to a business-impact category.
// Rules are ordered; the first rule with any keyword present wins.
type ImpactRule struct {
	Category string
	Keywords []string
}

// ImpactRules is the keyword classifier behind the business-impact
// distribution. It is a heuristic over clause wording, not a guarantee;
// clauses matching no rule stay uncategorized.
var ImpactRules = []ImpactRule{
	{Category: "cashFlow", Keywords: []string{"payment", "fee", "price"}},
	{Category: "legal", Keywords: []string{"termination", "liability", "indemnity"}},
	{Category: "ops", Keywords: []string{"delivery", "service", "timeline"}},
}

// ClassifyImpact returns the business-impact category for a clause text,
// or "" when no rule matches.
func ClassifyImpact(clauseText string) string {
	text := strings.ToLower(clauseText)
	for _, rule := range ImpactRules {
		for _, kw := range rule.Keywords {
			if strings.Contains(text, kw) {
				return rule.Category
			}
		}
	}
	return ""
}

// Aggregate derives dashboard statistics from the completed job set. Used
// when the backend supplies no precomputed aggregates. A job's overall
// score is its worst clause, not an average of its clauses.
func Aggregate(jobs []*model.AnalysisJob) model.DashboardStats {
	var stats model.DashboardStats
	var scoreSum float64

	for _, job := range jobs {
		if job.Status != model.StatusCompleted {
			continue
		}
		stats.ContractsAnalyzed++
		scoreSum += job.MaxRiskScore()

		highRisk := false
		for i := range job.Results {
			clause := &job.Results[i]
			switch clause.RiskLevel {
			case model.RiskHigh:
				highRisk = true
				stats.RiskDistribution.High++
			case model.RiskMedium:
				stats.RiskDistribution.Medium++
			case model.RiskLow:
				stats.RiskDistribution.Low++
			default:
				continue
			}
			stats.TotalRiskyClauses++

			switch ClassifyImpact(clause.ClauseText) {
			case "cashFlow":
				stats.BusinessImpact.CashFlow++
			case "legal":
				stats.BusinessImpact.Legal++
			case "ops":
				stats.BusinessImpact.Ops++
			}
		}
		if highRisk {
			stats.HighRiskContracts++
		}
	}

	if stats.ContractsAnalyzed > 0 {
		avg := scoreSum / float64(stats.ContractsAnalyzed)
		stats.AvgRiskScore = math.Round(avg*10) / 10
	}
	return stats
}

// MergeStats overlays server-supplied aggregates onto locally derived ones.
// Supplied fields always take precedence, field by field.
func MergeStats(server *model.ServerStats, local model.DashboardStats) model.DashboardStats {
	if server == nil {
		return local
	}
	merged := local
	if server.ContractsAnalyzed != nil {
		merged.ContractsAnalyzed = *server.ContractsAnalyzed
	}
	if server.HighRiskContracts != nil {
		merged.HighRiskContracts = *server.HighRiskContracts
	}
	if server.TotalRiskyClauses != nil {
		merged.TotalRiskyClauses = *server.TotalRiskyClauses
	}
	if server.AvgRiskScore != nil {
		merged.AvgRiskScore = *server.AvgRiskScore
	}
	if server.RiskDistribution != nil {
		merged.RiskDistribution = *server.RiskDistribution
	}
	if server.BusinessImpact != nil {
		merged.BusinessImpact = *server.BusinessImpact
	}
	return merged
}
