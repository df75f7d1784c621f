package repository

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"lawgraph-backend/dataset"
	"lawgraph-backend/internalerr"
	"lawgraph-backend/models"
)

var _ GraphStore = (*MemoryStore)(nil)

// MemoryStore is an in-process GraphStore backed by the parsed CSV dataset.
// It serves as the development backend (GRAPH_BACKEND=memory) and as the
// orchestrator's test double. Seed it fully before serving queries; queries
// never mutate state, so concurrent reads are safe.
type MemoryStore struct {
	sections     map[string]models.Section
	sectionOrder []string
	actions      map[string]dataset.ActionRow
	caseTypes    map[string]dataset.CaseTypeRow
	evidence     map[string]dataset.EvidenceRow
	outcomes     map[string]dataset.OutcomeRow

	sectionRelations []dataset.SectionRelationRow
	sectionActions   []dataset.SectionActionRow
	sectionEvidence  []dataset.SectionEvidenceRow
	sectionCaseTypes []dataset.SectionCaseTypeRow
	actionOutcomes   []dataset.ActionOutcomeRow
}

// NewMemoryStore creates an empty in-memory graph store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sections:  make(map[string]models.Section),
		actions:   make(map[string]dataset.ActionRow),
		caseTypes: make(map[string]dataset.CaseTypeRow),
		evidence:  make(map[string]dataset.EvidenceRow),
		outcomes:  make(map[string]dataset.OutcomeRow),
	}
}

// LoadDataset seeds the store with a parsed dataset.
func (m *MemoryStore) LoadDataset(ds *dataset.Dataset) {
	for _, s := range ds.Sections {
		m.AddSection(s)
	}
	for _, a := range ds.Actions {
		m.AddAction(a)
	}
	for _, ct := range ds.CaseTypes {
		m.AddCaseType(ct)
	}
	for _, e := range ds.Evidence {
		m.AddEvidence(e)
	}
	for _, o := range ds.Outcomes {
		m.AddOutcome(o)
	}
	m.sectionRelations = append(m.sectionRelations, ds.SectionRelations...)
	m.sectionActions = append(m.sectionActions, ds.SectionActions...)
	m.sectionEvidence = append(m.sectionEvidence, ds.SectionEvidence...)
	m.sectionCaseTypes = append(m.sectionCaseTypes, ds.SectionCaseTypes...)
	m.actionOutcomes = append(m.actionOutcomes, ds.ActionOutcomes...)
}

// AddSection upserts a section node.
func (m *MemoryStore) AddSection(s models.Section) {
	if _, exists := m.sections[s.SectionID]; !exists {
		m.sectionOrder = append(m.sectionOrder, s.SectionID)
	}
	m.sections[s.SectionID] = s
}

// AddAction upserts an action node.
func (m *MemoryStore) AddAction(a dataset.ActionRow) {
	m.actions[a.ActionID] = a
}

// AddCaseType upserts a case type node.
func (m *MemoryStore) AddCaseType(ct dataset.CaseTypeRow) {
	m.caseTypes[ct.CaseTypeID] = ct
}

// AddEvidence upserts an evidence node.
func (m *MemoryStore) AddEvidence(e dataset.EvidenceRow) {
	m.evidence[e.EvidenceID] = e
}

// AddOutcome upserts an outcome node.
func (m *MemoryStore) AddOutcome(o dataset.OutcomeRow) {
	m.outcomes[o.OutcomeID] = o
}

// RelateSections adds a section-to-section relation.
func (m *MemoryStore) RelateSections(rel dataset.SectionRelationRow) {
	m.sectionRelations = append(m.sectionRelations, rel)
}

// LinkAction adds a section-to-action relation.
func (m *MemoryStore) LinkAction(link dataset.SectionActionRow) {
	m.sectionActions = append(m.sectionActions, link)
}

// LinkEvidence adds a section-to-evidence relation.
func (m *MemoryStore) LinkEvidence(link dataset.SectionEvidenceRow) {
	m.sectionEvidence = append(m.sectionEvidence, link)
}

// LinkCaseType adds a section-to-case-type relation.
func (m *MemoryStore) LinkCaseType(link dataset.SectionCaseTypeRow) {
	m.sectionCaseTypes = append(m.sectionCaseTypes, link)
}

// LinkOutcome adds an action-to-outcome relation.
func (m *MemoryStore) LinkOutcome(link dataset.ActionOutcomeRow) {
	m.actionOutcomes = append(m.actionOutcomes, link)
}

// SectionsByCaseTypes returns sections mapped to the given case types, ranked
// by mapping relevance descending, capped at 10.
func (m *MemoryStore) SectionsByCaseTypes(ctx context.Context, caseTypeIDs []string) ([]models.SectionMatch, error) {
	if len(caseTypeIDs) == 0 {
		return nil, nil
	}

	var matches []models.SectionMatch
	seen := make(map[string]bool)
	for _, ctID := range caseTypeIDs {
		for _, link := range m.sectionCaseTypes {
			if link.CaseTypeID != ctID {
				continue
			}
			s, ok := m.sections[link.SectionID]
			if !ok {
				continue
			}
			key := link.SectionID + "\x00" + ctID
			if seen[key] {
				continue
			}
			seen[key] = true

			var relevance float64
			if link.RelevanceScore != nil {
				relevance = *link.RelevanceScore
			}
			matches = append(matches, models.SectionMatch{
				SectionID:          s.SectionID,
				SectionNumber:      s.SectionNumber,
				SectionTitle:       s.SectionTitle,
				LaymanExplanation:  s.LaymanExplanation,
				SeverityLevel:      s.SeverityLevel,
				Cognizable:         s.Cognizable,
				Bailable:           s.Bailable,
				PunishmentSummary:  s.PunishmentSummary,
				MaxPunishmentYears: s.MaxPunishmentYears,
				RelevanceScore:     relevance,
				CaseTypeID:         ctID,
			})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].RelevanceScore > matches[j].RelevanceScore
	})
	if len(matches) > 10 {
		matches = matches[:10]
	}
	return matches, nil
}

// SectionsByFulltext scores sections by how many of the query tokens appear
// in their title, explanation, or embedding text, ranked descending, capped
// at 5.
func (m *MemoryStore) SectionsByFulltext(ctx context.Context, text string) ([]models.SectionMatch, error) {
	tokens := fulltextTokens(text)
	if len(tokens) == 0 {
		return nil, nil
	}

	var matches []models.SectionMatch
	for _, id := range m.sectionOrder {
		s := m.sections[id]
		score := tokenHits(m.fulltextDoc(s), tokens)
		if score == 0 {
			continue
		}
		matches = append(matches, models.SectionMatch{
			SectionID:         s.SectionID,
			SectionNumber:     s.SectionNumber,
			SectionTitle:      s.SectionTitle,
			LaymanExplanation: s.LaymanExplanation,
			SeverityLevel:     s.SeverityLevel,
			Cognizable:        s.Cognizable,
			Bailable:          s.Bailable,
			PunishmentSummary: s.PunishmentSummary,
			RelevanceScore:    float64(score),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].RelevanceScore > matches[j].RelevanceScore
	})
	if len(matches) > 5 {
		matches = matches[:5]
	}
	return matches, nil
}

// ActionsForSections returns the actions linked to the given sections,
// ordered by sequence tier.
func (m *MemoryStore) ActionsForSections(ctx context.Context, sectionIDs []string) ([]models.Action, error) {
	var actions []models.Action
	seen := make(map[string]bool)
	for _, sid := range sectionIDs {
		for _, link := range m.sectionActions {
			if link.SectionID != sid {
				continue
			}
			a, ok := m.actions[link.ActionID]
			if !ok {
				continue
			}
			key := a.ActionID + "\x00" + link.ActionSequence + "\x00" + link.ConditionsRequired
			if seen[key] {
				continue
			}
			seen[key] = true

			actions = append(actions, models.Action{
				ActionID:          a.ActionID,
				ActionName:        a.ActionName,
				ActionType:        a.ActionType,
				AuthorityInvolved: a.AuthorityInvolved,
				CostMin:           a.CostEstimateMin,
				CostMax:           a.CostEstimateMax,
				OnlinePossible:    a.OnlinePossible,
				RiskLevel:         a.RiskLevel,
				ProcedureSteps:    a.ProcedureSteps,
				Sequence:          link.ActionSequence,
				Conditions:        link.ConditionsRequired,
			})
		}
	}

	sort.SliceStable(actions, func(i, j int) bool {
		return actions[i].SequenceRank() < actions[j].SequenceRank()
	})
	return actions, nil
}

// EvidenceForSections returns the evidence linked to the given sections,
// ordered by necessity tier.
func (m *MemoryStore) EvidenceForSections(ctx context.Context, sectionIDs []string) ([]models.EvidenceItem, error) {
	var items []models.EvidenceItem
	seen := make(map[string]bool)
	for _, sid := range sectionIDs {
		for _, link := range m.sectionEvidence {
			if link.SectionID != sid {
				continue
			}
			e, ok := m.evidence[link.EvidenceID]
			if !ok {
				continue
			}
			key := e.EvidenceID + "\x00" + link.NecessityLevel + "\x00" + link.HowItProves
			if seen[key] {
				continue
			}
			seen[key] = true

			items = append(items, models.EvidenceItem{
				EvidenceID:          e.EvidenceID,
				EvidenceName:        e.EvidenceName,
				EvidenceType:        e.EvidenceType,
				Description:         e.Description,
				LegalWeight:         e.LegalWeight,
				EvidenceSource:      e.EvidenceSource,
				StorageRequirements: e.StorageRequirements,
				TamperRisk:          e.TamperRisk,
				NecessityLevel:      link.NecessityLevel,
				HowItProves:         link.HowItProves,
			})
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].NecessityRank() < items[j].NecessityRank()
	})
	return items, nil
}

// OutcomesForActions returns the outcomes linked to the given actions,
// ranked by probability descending, capped at 8.
func (m *MemoryStore) OutcomesForActions(ctx context.Context, actionIDs []string) ([]models.Outcome, error) {
	if len(actionIDs) == 0 {
		return nil, nil
	}

	var outcomes []models.Outcome
	seen := make(map[string]bool)
	for _, aid := range actionIDs {
		for _, link := range m.actionOutcomes {
			if link.ActionID != aid {
				continue
			}
			o, ok := m.outcomes[link.OutcomeID]
			if !ok {
				continue
			}
			var probability int
			if link.ProbabilityPercentage != nil {
				probability = *link.ProbabilityPercentage
			}
			key := fmt.Sprintf("%s\x00%d\x00%s", o.OutcomeID, probability, link.InfluencingFactors)
			if seen[key] {
				continue
			}
			seen[key] = true

			outcomes = append(outcomes, models.Outcome{
				OutcomeID:          o.OutcomeID,
				OutcomeDescription: o.OutcomeDescription,
				OutcomeType:        o.OutcomeType,
				TimelineMonths:     o.TypicalTimelineMonths,
				AppealPossible:     o.AppealPossible,
				PrecedentCases:     o.PrecedentCases,
				Probability:        probability,
				InfluencingFactors: link.InfluencingFactors,
			})
		}
	}

	sort.SliceStable(outcomes, func(i, j int) bool {
		return outcomes[i].Probability > outcomes[j].Probability
	})
	if len(outcomes) > 8 {
		outcomes = outcomes[:8]
	}
	return outcomes, nil
}

// CaseTypesByID resolves case type metadata in input order. Unknown ids are
// skipped.
func (m *MemoryStore) CaseTypesByID(ctx context.Context, caseTypeIDs []string) ([]models.CaseType, error) {
	var out []models.CaseType
	for _, id := range caseTypeIDs {
		ct, ok := m.caseTypes[id]
		if !ok {
			continue
		}
		out = append(out, models.CaseType{
			ID:          ct.CaseTypeID,
			Description: ct.ScenarioDescription,
			Duration:    ct.TypicalDurationMonths,
			Mistakes:    ct.CommonMistakes,
		})
	}
	return out, nil
}

// SectionByID returns the full section node.
func (m *MemoryStore) SectionByID(ctx context.Context, sectionID string) (*models.Section, error) {
	s, ok := m.sections[sectionID]
	if !ok {
		return nil, fmt.Errorf("%w: section %s", internalerr.ErrNotFound, sectionID)
	}
	return &s, nil
}

// SectionNeighborhood returns the one-hop fan-out around a section.
func (m *MemoryStore) SectionNeighborhood(ctx context.Context, sectionID string) (*models.SectionNeighborhood, error) {
	root, ok := m.sections[sectionID]
	if !ok {
		return nil, fmt.Errorf("%w: section %s", internalerr.ErrNotFound, sectionID)
	}

	n := &models.SectionNeighborhood{Root: sectionProps(root)}

	for _, rel := range m.sectionRelations {
		if rel.ParentSectionID != sectionID {
			continue
		}
		child, ok := m.sections[rel.ChildSectionID]
		if !ok {
			continue
		}
		n.Related = append(n.Related, models.Neighbor{
			Node: sectionProps(child),
			Rel: map[string]any{
				"relationship_type": rel.RelationshipType,
				"explanation":       rel.Explanation,
			},
		})
	}

	for _, link := range m.sectionActions {
		if link.SectionID != sectionID {
			continue
		}
		a, ok := m.actions[link.ActionID]
		if !ok {
			continue
		}
		n.Actions = append(n.Actions, models.Neighbor{
			Node: actionProps(a),
			Rel: map[string]any{
				"action_sequence":     link.ActionSequence,
				"conditions_required": link.ConditionsRequired,
			},
		})

		for _, ao := range m.actionOutcomes {
			if ao.ActionID != link.ActionID {
				continue
			}
			o, ok := m.outcomes[ao.OutcomeID]
			if !ok {
				continue
			}
			rel := map[string]any{
				"influencing_factors": ao.InfluencingFactors,
			}
			if ao.ProbabilityPercentage != nil {
				rel["probability_percentage"] = *ao.ProbabilityPercentage
			}
			n.Outcomes = append(n.Outcomes, models.OutcomeNeighbor{
				Neighbor: models.Neighbor{Node: outcomeProps(o), Rel: rel},
				ActionID: ao.ActionID,
			})
		}
	}

	for _, link := range m.sectionEvidence {
		if link.SectionID != sectionID {
			continue
		}
		e, ok := m.evidence[link.EvidenceID]
		if !ok {
			continue
		}
		n.Evidence = append(n.Evidence, models.Neighbor{
			Node: evidenceProps(e),
			Rel: map[string]any{
				"necessity_level": link.NecessityLevel,
				"how_it_proves":   link.HowItProves,
			},
		})
	}

	for _, link := range m.sectionCaseTypes {
		if link.SectionID != sectionID {
			continue
		}
		ct, ok := m.caseTypes[link.CaseTypeID]
		if !ok {
			continue
		}
		rel := map[string]any{
			"section_id":   link.SectionID,
			"case_type_id": link.CaseTypeID,
			"conditions":   link.Conditions,
			"exceptions":   link.Exceptions,
		}
		if link.RelevanceScore != nil {
			rel["relevance_score"] = *link.RelevanceScore
		}
		n.CaseTypes = append(n.CaseTypes, models.Neighbor{
			Node: caseTypeProps(ct),
			Rel:  rel,
		})
	}

	return n, nil
}

var searchWordPattern = regexp.MustCompile(`[a-zA-Z]+`)

// SearchSections scores sections against the raw query words, ranked
// descending, capped at 10.
func (m *MemoryStore) SearchSections(ctx context.Context, query string) ([]models.SearchResult, error) {
	words := searchWordPattern.FindAllString(strings.ToLower(query), -1)
	if len(words) == 0 {
		return nil, nil
	}

	var results []models.SearchResult
	for _, id := range m.sectionOrder {
		s := m.sections[id]
		score := tokenHits(m.fulltextDoc(s), words)
		if score == 0 {
			continue
		}
		results = append(results, models.SearchResult{
			SectionID:         s.SectionID,
			SectionNumber:     s.SectionNumber,
			SectionTitle:      s.SectionTitle,
			LaymanExplanation: s.LaymanExplanation,
			SeverityLevel:     s.SeverityLevel,
			Score:             float64(score),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > 10 {
		results = results[:10]
	}
	return results, nil
}

// Ping always succeeds for the in-memory backend.
func (m *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op for the in-memory backend.
func (m *MemoryStore) Close(ctx context.Context) error {
	return nil
}

// fulltextDoc is the lowercased text the fulltext queries match against,
// mirroring the fields of the sectionFulltext index.
func (m *MemoryStore) fulltextDoc(s models.Section) string {
	return strings.ToLower(s.SectionTitle + " " + s.LaymanExplanation + " " + s.EmbeddingText)
}

// tokenHits counts how many distinct tokens occur in doc.
func tokenHits(doc string, tokens []string) int {
	hits := 0
	counted := make(map[string]bool, len(tokens))
	for _, tok := range tokens {
		if counted[tok] {
			continue
		}
		counted[tok] = true
		if strings.Contains(doc, tok) {
			hits++
		}
	}
	return hits
}
