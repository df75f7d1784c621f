package models

// Action sequence tiers, ordered by presentation priority.
const (
	SequencePrimary     = "Primary"
	SequenceSecondary   = "Secondary"
	SequenceAlternative = "Alternative"
)

// Action represents a recommended legal action tied to one or more sections.
// Sequence is the tier of the section-to-action relation that produced it.
type Action struct {
	ActionID          string `json:"action_id"`
	ActionName        string `json:"action_name"`
	ActionType        string `json:"action_type"`
	AuthorityInvolved string `json:"authority_involved"`
	CostMin           *int   `json:"cost_min"`
	CostMax           *int   `json:"cost_max"`
	OnlinePossible    string `json:"online_possible"`
	RiskLevel         string `json:"risk_level"`
	ProcedureSteps    string `json:"procedure_steps"`
	Sequence          string `json:"sequence"`
	Conditions        string `json:"conditions"`
}

// SequenceRank maps the action sequence tier to its sort rank:
// Primary=1, Secondary=2, Alternative=3, anything else 4.
func (a Action) SequenceRank() int {
	switch a.Sequence {
	case SequencePrimary:
		return 1
	case SequenceSecondary:
		return 2
	case SequenceAlternative:
		return 3
	default:
		return 4
	}
}
