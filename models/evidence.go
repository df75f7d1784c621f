package models

// Evidence necessity tiers, ordered by presentation priority.
const (
	NecessityMustHave   = "Must-have"
	NecessityGoodToHave = "Good-to-have"
)

// EvidenceItem represents an evidence requirement tied to one or more
// sections. NecessityLevel comes from the section-to-evidence relation.
type EvidenceItem struct {
	EvidenceID          string `json:"evidence_id"`
	EvidenceName        string `json:"evidence_name"`
	EvidenceType        string `json:"evidence_type"`
	Description         string `json:"description"`
	LegalWeight         string `json:"legal_weight"`
	EvidenceSource      string `json:"evidence_source"`
	StorageRequirements string `json:"storage_requirements"`
	TamperRisk          string `json:"tamper_risk"`
	NecessityLevel      string `json:"necessity_level"`
	HowItProves         string `json:"how_it_proves"`
}

// NecessityRank maps the necessity tier to its sort rank:
// Must-have=1, Good-to-have=2, anything else 3.
func (e EvidenceItem) NecessityRank() int {
	switch e.NecessityLevel {
	case NecessityMustHave:
		return 1
	case NecessityGoodToHave:
		return 2
	default:
		return 3
	}
}
