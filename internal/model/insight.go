package model

// InsightSeverity ranks how urgently an insight deserves attention.
type InsightSeverity int

const (
	SeverityInfo InsightSeverity = iota
	SeverityWarning
	SeverityAlert
)

func (s InsightSeverity) String() string {
	switch s {
	case SeverityAlert:
		return "alert"
	case SeverityWarning:
		return "warning"
	default:
		return "info"
	}
}

// InsightAction references the corrective step an insight suggests.
type InsightAction string

const (
	ActionNone           InsightAction = ""
	ActionReviewSpending InsightAction = "review-spending"
	ActionAdjustBudget   InsightAction = "adjust-budget"
	ActionEditRules      InsightAction = "edit-rules"
)

// Insight is one heuristic observation about the current period.
type Insight struct {
	Severity InsightSeverity
	Message  string
	Action   InsightAction
	Target   string // category or payee the action applies to, when any
}
