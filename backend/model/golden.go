package model

// GoldenClause is a recognized clause type with its preferred model wording.
type GoldenClause struct {
	Type       string `json:"type"`
	Definition string `json:"definition"`
	Example    string `json:"example"`
	Category   string `json:"category"`
}

// GoldenClauseLibrary returns the built-in clause library.
func GoldenClauseLibrary() []GoldenClause {
	return []GoldenClause{
		{
			Type:       "Indemnity",
			Definition: "Clause defining indemnification obligations and liability shifting.",
			Example:    "Vendor shall indemnify and hold harmless the Client against all claims arising from negligence.",
			Category:   "legal",
		},
		{
			Type:       "Payment",
			Definition: "Clause governing payment timelines, late fees, and invoicing structure.",
			Example:    "Invoices must be paid within 30 days of receipt.",
			Category:   "commercial",
		},
		{
			Type:       "Data Security",
			Definition: "Clause defining data protection, breach notification, and cybersecurity obligations.",
			Example:    "Service provider must implement industry-standard encryption.",
			Category:   "compliance",
		},
	}
}
