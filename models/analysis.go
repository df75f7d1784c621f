package models

// StepType tags a reasoning step with the kind of inference it performed.
type StepType string

const (
	StepSymbolic       StepType = "symbolic"
	StepNeural         StepType = "neural"
	StepGraphTraversal StepType = "graph_traversal"
)

// ReasoningStep is one entry of an analysis audit trail. Steps are numbered
// from 1 in strictly increasing order with no gaps, and are never reordered
// or mutated once appended.
type ReasoningStep struct {
	Step        int      `json:"step"`
	Type        StepType `json:"type"`
	Description string   `json:"description"`
	Result      string   `json:"result"`
}

// AnalysisResult is the terminal aggregate of one case analysis. All slices
// are non-nil so empty results serialize as [] rather than null.
type AnalysisResult struct {
	CaseDescription      string          `json:"case_description"`
	MatchedSections      []SectionMatch  `json:"matched_sections"`
	CaseTypes            []CaseType      `json:"case_types"`
	ActionPlan           []Action        `json:"action_plan"`
	EvidenceChecklist    []EvidenceItem  `json:"evidence_checklist"`
	OutcomeProbabilities []Outcome       `json:"outcome_probabilities"`
	ReasoningTrace       []ReasoningStep `json:"reasoning_trace"`
	ConfidenceScore      float64         `json:"confidence_score"`
}
