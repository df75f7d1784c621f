package service

import "lawgraph-backend/models"

// mergeSections concatenates match groups and deduplicates by section id,
// keeping the first occurrence of each section untouched. Callers pass the
// case-type-driven group before the fulltext group so a section found by both
// paths keeps its case type attribution and relevance score; scores are never
// combined across paths.
func mergeSections(groups ...[]models.SectionMatch) []models.SectionMatch {
	merged := make([]models.SectionMatch, 0)
	seen := make(map[string]bool)
	for _, group := range groups {
		for _, m := range group {
			if seen[m.SectionID] {
				continue
			}
			seen[m.SectionID] = true
			merged = append(merged, m)
		}
	}
	return merged
}
