package models

// Section represents a statutory provision node with every property stored in
// the graph. Returned by the section detail endpoint.
type Section struct {
	SectionID          string `json:"section_id"`
	SectionNumber      string `json:"section_number"`
	ActName            string `json:"act_name"`
	ChapterName        string `json:"chapter_name"`
	SectionTitle       string `json:"section_title"`
	FullText           string `json:"full_text"`
	LaymanExplanation  string `json:"layman_explanation"`
	Category           string `json:"category"`
	SeverityLevel      string `json:"severity_level"`
	PunishmentSummary  string `json:"punishment_summary"`
	MaxPunishmentYears *int   `json:"max_punishment_years"`
	Cognizable         string `json:"cognizable"`
	Bailable           string `json:"bailable"`
	ApplicableStates   string `json:"applicable_states"`
	IsCompoundable     string `json:"is_compoundable"`
	EmbeddingText      string `json:"embedding_text"`
}

// SectionMatch is the analysis projection of a section: the subset of
// properties surfaced in a result bundle plus the relevance score attached by
// whichever query produced it. Identity is SectionID regardless of source.
// Matches found through the fulltext path carry no case type id and no
// maximum punishment years.
type SectionMatch struct {
	SectionID          string  `json:"section_id"`
	SectionNumber      string  `json:"section_number"`
	SectionTitle       string  `json:"section_title"`
	LaymanExplanation  string  `json:"layman_explanation"`
	SeverityLevel      string  `json:"severity_level"`
	Cognizable         string  `json:"cognizable"`
	Bailable           string  `json:"bailable"`
	PunishmentSummary  string  `json:"punishment_summary"`
	MaxPunishmentYears *int    `json:"max_punishment_years,omitempty"`
	RelevanceScore     float64 `json:"relevance_score"`
	CaseTypeID         string  `json:"case_type_id,omitempty"`
}

// SearchResult is a ranked hit from the standalone fulltext search endpoint.
type SearchResult struct {
	SectionID         string  `json:"section_id"`
	SectionNumber     string  `json:"section_number"`
	SectionTitle      string  `json:"section_title"`
	LaymanExplanation string  `json:"layman_explanation"`
	SeverityLevel     string  `json:"severity_level"`
	Score             float64 `json:"score"`
}
