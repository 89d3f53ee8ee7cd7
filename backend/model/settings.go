package model

// Sensitivity levels accepted by the analysis backend.
const (
	SensitivityLow    = "low"
	SensitivityMedium = "medium"
	SensitivityStrict = "strict"
)

// Settings are the user's analysis preferences, persisted across restarts.
type Settings struct {
	RiskSensitivity     string `json:"risk_sensitivity"`
	AutoFlag            bool   `json:"auto_flag"`
	RiskAlerts          bool   `json:"risk_alerts"`
	DefaultIndustry     string `json:"default_industry"`
	DefaultContractType string `json:"default_contract_type"`
	CustomLibrary       bool   `json:"custom_library"`
	AllowSuggestions    bool   `json:"allow_suggestions"`
}

// DefaultSettings are used on first run and whenever the persisted settings
// fail to parse.
func DefaultSettings() Settings {
	return Settings{
		RiskSensitivity:     SensitivityMedium,
		AutoFlag:            true,
		RiskAlerts:          true,
		DefaultIndustry:     "technology",
		DefaultContractType: "service",
		CustomLibrary:       false,
		AllowSuggestions:    true,
	}
}

// ValidSensitivity reports whether s is a sensitivity the backend accepts.
func ValidSensitivity(s string) bool {
	switch s {
	case SensitivityLow, SensitivityMedium, SensitivityStrict:
		return true
	}
	return false
}
