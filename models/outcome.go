package models

// Outcome represents a probabilistic outcome tied to one or more actions.
// Probability is an integer percentage (0-100) from the action-to-outcome
// relation, used to rank outcomes descending.
type Outcome struct {
	OutcomeID          string `json:"outcome_id"`
	OutcomeDescription string `json:"outcome_description"`
	OutcomeType        string `json:"outcome_type"`
	TimelineMonths     *int   `json:"timeline_months"`
	AppealPossible     string `json:"appeal_possible"`
	PrecedentCases     string `json:"precedent_cases"`
	Probability        int    `json:"probability"`
	InfluencingFactors string `json:"influencing_factors"`
}
