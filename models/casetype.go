package models

// CaseType is the metadata surfaced for a case type that contributed matched
// sections. Resolved only for case types discovered through the
// case-type-driven query path.
type CaseType struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Duration    *int   `json:"duration"`
	Mistakes    string `json:"mistakes"`
}
