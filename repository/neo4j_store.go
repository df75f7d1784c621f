package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"lawgraph-backend/internalerr"
	"lawgraph-backend/models"
)

var _ GraphStore = (*Neo4jStore)(nil)

// Neo4jStore is the production GraphStore backed by a Neo4j database. Ranking
// and caps are pushed into Cypher so the driver only materializes the rows
// the caller will keep.
type Neo4jStore struct {
	driver neo4j.DriverWithContext
}

// NewNeo4jStore connects to Neo4j and verifies connectivity before returning.
func NewNeo4jStore(ctx context.Context, uri, user, password string) (*Neo4jStore, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}
	return &Neo4jStore{driver: driver}, nil
}

// readQuery runs a read transaction and collects all records. Driver and
// server failures surface as ErrStoreUnavailable.
func (s *Neo4jStore) readQuery(ctx context.Context, cypher string, params map[string]any) ([]*neo4j.Record, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}
	return out.([]*neo4j.Record), nil
}

// SectionsByCaseTypes returns sections mapped to the given case types, ranked
// by mapping relevance descending, capped at 10.
func (s *Neo4jStore) SectionsByCaseTypes(ctx context.Context, caseTypeIDs []string) ([]models.SectionMatch, error) {
	if len(caseTypeIDs) == 0 {
		return nil, nil
	}

	records, err := s.readQuery(ctx, `
		UNWIND $case_type_ids AS ct_id
		MATCH (ct:CaseType {case_type_id: ct_id})<-[m:MAPS_TO_CASE_TYPE]-(s:LegalSection)
		RETURN DISTINCT s.section_id AS section_id, s.section_number AS section_number,
		       s.section_title AS section_title, s.layman_explanation AS layman_explanation,
		       s.severity_level AS severity_level, s.cognizable AS cognizable,
		       s.bailable AS bailable, s.punishment_summary AS punishment_summary,
		       s.max_punishment_years AS max_punishment_years,
		       m.relevance_score AS relevance, ct.case_type_id AS case_type_id
		ORDER BY relevance DESC
		LIMIT 10`,
		map[string]any{"case_type_ids": caseTypeIDs})
	if err != nil {
		return nil, err
	}

	matches := make([]models.SectionMatch, 0, len(records))
	for _, rec := range records {
		matches = append(matches, models.SectionMatch{
			SectionID:          recordString(rec, "section_id"),
			SectionNumber:      recordString(rec, "section_number"),
			SectionTitle:       recordString(rec, "section_title"),
			LaymanExplanation:  recordString(rec, "layman_explanation"),
			SeverityLevel:      recordString(rec, "severity_level"),
			Cognizable:         recordString(rec, "cognizable"),
			Bailable:           recordString(rec, "bailable"),
			PunishmentSummary:  recordString(rec, "punishment_summary"),
			MaxPunishmentYears: recordIntPtr(rec, "max_punishment_years"),
			RelevanceScore:     recordFloat(rec, "relevance"),
			CaseTypeID:         recordString(rec, "case_type_id"),
		})
	}
	return matches, nil
}

// SectionsByFulltext tokenizes the text and runs an OR query against the
// sectionFulltext index, capped at 5. Texts that yield no tokens return
// empty without hitting the database.
func (s *Neo4jStore) SectionsByFulltext(ctx context.Context, text string) ([]models.SectionMatch, error) {
	tokens := fulltextTokens(text)
	if len(tokens) == 0 {
		return nil, nil
	}

	records, err := s.readQuery(ctx, `
		CALL db.index.fulltext.queryNodes('sectionFulltext', $query) YIELD node, score
		RETURN node.section_id AS section_id, node.section_number AS section_number,
		       node.section_title AS section_title, node.layman_explanation AS layman_explanation,
		       node.severity_level AS severity_level, node.cognizable AS cognizable,
		       node.bailable AS bailable, node.punishment_summary AS punishment_summary,
		       score
		ORDER BY score DESC
		LIMIT 5`,
		map[string]any{"query": strings.Join(tokens, " OR ")})
	if err != nil {
		return nil, err
	}

	matches := make([]models.SectionMatch, 0, len(records))
	for _, rec := range records {
		matches = append(matches, models.SectionMatch{
			SectionID:         recordString(rec, "section_id"),
			SectionNumber:     recordString(rec, "section_number"),
			SectionTitle:      recordString(rec, "section_title"),
			LaymanExplanation: recordString(rec, "layman_explanation"),
			SeverityLevel:     recordString(rec, "severity_level"),
			Cognizable:        recordString(rec, "cognizable"),
			Bailable:          recordString(rec, "bailable"),
			PunishmentSummary: recordString(rec, "punishment_summary"),
			RelevanceScore:    recordFloat(rec, "score"),
		})
	}
	return matches, nil
}

// ActionsForSections returns the actions linked to the given sections,
// ordered by sequence tier.
func (s *Neo4jStore) ActionsForSections(ctx context.Context, sectionIDs []string) ([]models.Action, error) {
	records, err := s.readQuery(ctx, `
		UNWIND $section_ids AS sid
		MATCH (s:LegalSection {section_id: sid})-[r:HAS_ACTION]->(a:LegalAction)
		RETURN DISTINCT a.action_id AS action_id, a.action_name AS action_name,
		       a.action_type AS action_type, a.authority_involved AS authority_involved,
		       a.cost_estimate_min AS cost_min, a.cost_estimate_max AS cost_max,
		       a.online_possible AS online_possible, a.risk_level AS risk_level,
		       a.procedure_steps AS procedure_steps,
		       r.action_sequence AS sequence, r.conditions_required AS conditions
		ORDER BY CASE r.action_sequence
		         WHEN 'Primary' THEN 1
		         WHEN 'Secondary' THEN 2
		         WHEN 'Alternative' THEN 3
		         ELSE 4 END`,
		map[string]any{"section_ids": sectionIDs})
	if err != nil {
		return nil, err
	}

	actions := make([]models.Action, 0, len(records))
	for _, rec := range records {
		actions = append(actions, models.Action{
			ActionID:          recordString(rec, "action_id"),
			ActionName:        recordString(rec, "action_name"),
			ActionType:        recordString(rec, "action_type"),
			AuthorityInvolved: recordString(rec, "authority_involved"),
			CostMin:           recordIntPtr(rec, "cost_min"),
			CostMax:           recordIntPtr(rec, "cost_max"),
			OnlinePossible:    recordString(rec, "online_possible"),
			RiskLevel:         recordString(rec, "risk_level"),
			ProcedureSteps:    recordString(rec, "procedure_steps"),
			Sequence:          recordString(rec, "sequence"),
			Conditions:        recordString(rec, "conditions"),
		})
	}
	return actions, nil
}

// EvidenceForSections returns the evidence linked to the given sections,
// ordered by necessity tier.
func (s *Neo4jStore) EvidenceForSections(ctx context.Context, sectionIDs []string) ([]models.EvidenceItem, error) {
	records, err := s.readQuery(ctx, `
		UNWIND $section_ids AS sid
		MATCH (s:LegalSection {section_id: sid})-[r:REQUIRES_EVIDENCE]->(e:Evidence)
		RETURN DISTINCT e.evidence_id AS evidence_id, e.evidence_name AS evidence_name,
		       e.evidence_type AS evidence_type, e.description AS description,
		       e.legal_weight AS legal_weight, e.evidence_source AS evidence_source,
		       e.storage_requirements AS storage_requirements, e.tamper_risk AS tamper_risk,
		       r.necessity_level AS necessity_level, r.how_it_proves AS how_it_proves
		ORDER BY CASE r.necessity_level
		         WHEN 'Must-have' THEN 1
		         WHEN 'Good-to-have' THEN 2
		         ELSE 3 END`,
		map[string]any{"section_ids": sectionIDs})
	if err != nil {
		return nil, err
	}

	items := make([]models.EvidenceItem, 0, len(records))
	for _, rec := range records {
		items = append(items, models.EvidenceItem{
			EvidenceID:          recordString(rec, "evidence_id"),
			EvidenceName:        recordString(rec, "evidence_name"),
			EvidenceType:        recordString(rec, "evidence_type"),
			Description:         recordString(rec, "description"),
			LegalWeight:         recordString(rec, "legal_weight"),
			EvidenceSource:      recordString(rec, "evidence_source"),
			StorageRequirements: recordString(rec, "storage_requirements"),
			TamperRisk:          recordString(rec, "tamper_risk"),
			NecessityLevel:      recordString(rec, "necessity_level"),
			HowItProves:         recordString(rec, "how_it_proves"),
		})
	}
	return items, nil
}

// OutcomesForActions returns the outcomes linked to the given actions, ranked
// by probability descending, capped at 8.
func (s *Neo4jStore) OutcomesForActions(ctx context.Context, actionIDs []string) ([]models.Outcome, error) {
	if len(actionIDs) == 0 {
		return nil, nil
	}

	records, err := s.readQuery(ctx, `
		UNWIND $action_ids AS aid
		MATCH (a:LegalAction {action_id: aid})-[r:LEADS_TO_OUTCOME]->(o:Outcome)
		RETURN DISTINCT o.outcome_id AS outcome_id, o.outcome_description AS outcome_description,
		       o.outcome_type AS outcome_type, o.typical_timeline_months AS timeline_months,
		       o.appeal_possible AS appeal_possible, o.precedent_cases AS precedent_cases,
		       r.probability_percentage AS probability, r.influencing_factors AS influencing_factors
		ORDER BY probability DESC
		LIMIT 8`,
		map[string]any{"action_ids": actionIDs})
	if err != nil {
		return nil, err
	}

	outcomes := make([]models.Outcome, 0, len(records))
	for _, rec := range records {
		outcomes = append(outcomes, models.Outcome{
			OutcomeID:          recordString(rec, "outcome_id"),
			OutcomeDescription: recordString(rec, "outcome_description"),
			OutcomeType:        recordString(rec, "outcome_type"),
			TimelineMonths:     recordIntPtr(rec, "timeline_months"),
			AppealPossible:     recordString(rec, "appeal_possible"),
			PrecedentCases:     recordString(rec, "precedent_cases"),
			Probability:        recordInt(rec, "probability"),
			InfluencingFactors: recordString(rec, "influencing_factors"),
		})
	}
	return outcomes, nil
}

// CaseTypesByID resolves case type metadata in input order.
func (s *Neo4jStore) CaseTypesByID(ctx context.Context, caseTypeIDs []string) ([]models.CaseType, error) {
	if len(caseTypeIDs) == 0 {
		return nil, nil
	}

	records, err := s.readQuery(ctx, `
		UNWIND $case_type_ids AS ct_id
		MATCH (ct:CaseType {case_type_id: ct_id})
		RETURN ct.case_type_id AS id, ct.scenario_description AS description,
		       ct.typical_duration_months AS duration, ct.common_mistakes AS mistakes`,
		map[string]any{"case_type_ids": caseTypeIDs})
	if err != nil {
		return nil, err
	}

	out := make([]models.CaseType, 0, len(records))
	for _, rec := range records {
		out = append(out, models.CaseType{
			ID:          recordString(rec, "id"),
			Description: recordString(rec, "description"),
			Duration:    recordIntPtr(rec, "duration"),
			Mistakes:    recordString(rec, "mistakes"),
		})
	}
	return out, nil
}

// SectionByID returns the full section node.
func (s *Neo4jStore) SectionByID(ctx context.Context, sectionID string) (*models.Section, error) {
	records, err := s.readQuery(ctx, `
		MATCH (s:LegalSection {section_id: $section_id})
		RETURN s`,
		map[string]any{"section_id": sectionID})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: section %s", internalerr.ErrNotFound, sectionID)
	}

	section := sectionFromProps(recordNodeProps(records[0], "s"))
	return &section, nil
}

// SectionNeighborhood returns the one-hop fan-out around a section in a
// single round trip. Outcome entries carry the id of the action they hang
// off so the caller can attach their edges.
func (s *Neo4jStore) SectionNeighborhood(ctx context.Context, sectionID string) (*models.SectionNeighborhood, error) {
	records, err := s.readQuery(ctx, `
		MATCH (s:LegalSection {section_id: $section_id})
		OPTIONAL MATCH (s)-[r1:RELATED_TO]->(rs:LegalSection)
		OPTIONAL MATCH (s)-[r2:HAS_ACTION]->(a:LegalAction)
		OPTIONAL MATCH (a)-[r3:LEADS_TO_OUTCOME]->(o:Outcome)
		OPTIONAL MATCH (s)-[r4:REQUIRES_EVIDENCE]->(e:Evidence)
		OPTIONAL MATCH (s)-[r5:MAPS_TO_CASE_TYPE]->(ct:CaseType)
		RETURN s,
		       collect(DISTINCT {node: rs, rel: r1}) AS related,
		       collect(DISTINCT {node: a, rel: r2}) AS actions,
		       collect(DISTINCT {node: o, rel: r3, action_id: a.action_id}) AS outcomes,
		       collect(DISTINCT {node: e, rel: r4}) AS evidence,
		       collect(DISTINCT {node: ct, rel: r5}) AS case_types`,
		map[string]any{"section_id": sectionID})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: section %s", internalerr.ErrNotFound, sectionID)
	}

	rec := records[0]
	n := &models.SectionNeighborhood{Root: recordNodeProps(rec, "s")}
	n.Related = collectNeighbors(rec, "related")
	n.Actions = collectNeighbors(rec, "actions")
	n.Evidence = collectNeighbors(rec, "evidence")
	n.CaseTypes = collectNeighbors(rec, "case_types")

	for _, entry := range collectEntries(rec, "outcomes") {
		nb, ok := neighborFromEntry(entry)
		if !ok {
			continue
		}
		actionID, _ := entry["action_id"].(string)
		n.Outcomes = append(n.Outcomes, models.OutcomeNeighbor{
			Neighbor: nb,
			ActionID: actionID,
		})
	}
	return n, nil
}

// SearchSections runs the raw query against the sectionFulltext index,
// capped at 10.
func (s *Neo4jStore) SearchSections(ctx context.Context, query string) ([]models.SearchResult, error) {
	records, err := s.readQuery(ctx, `
		CALL db.index.fulltext.queryNodes('sectionFulltext', $query) YIELD node, score
		RETURN node.section_id AS section_id, node.section_number AS section_number,
		       node.section_title AS section_title, node.layman_explanation AS layman_explanation,
		       node.severity_level AS severity_level, score
		ORDER BY score DESC
		LIMIT 10`,
		map[string]any{"query": query})
	if err != nil {
		return nil, err
	}

	results := make([]models.SearchResult, 0, len(records))
	for _, rec := range records {
		results = append(results, models.SearchResult{
			SectionID:         recordString(rec, "section_id"),
			SectionNumber:     recordString(rec, "section_number"),
			SectionTitle:      recordString(rec, "section_title"),
			LaymanExplanation: recordString(rec, "layman_explanation"),
			SeverityLevel:     recordString(rec, "severity_level"),
			Score:             recordFloat(rec, "score"),
		})
	}
	return results, nil
}

// Ping verifies the database answers a trivial query.
func (s *Neo4jStore) Ping(ctx context.Context) error {
	_, err := s.readQuery(ctx, "RETURN 1", nil)
	return err
}

// Close releases the underlying driver.
func (s *Neo4jStore) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

func recordString(rec *neo4j.Record, key string) string {
	v, _ := rec.Get(key)
	str, _ := v.(string)
	return str
}

func recordInt(rec *neo4j.Record, key string) int {
	v, _ := rec.Get(key)
	switch n := v.(type) {
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

func recordIntPtr(rec *neo4j.Record, key string) *int {
	v, _ := rec.Get(key)
	switch n := v.(type) {
	case int64:
		i := int(n)
		return &i
	case float64:
		i := int(n)
		return &i
	}
	return nil
}

func recordFloat(rec *neo4j.Record, key string) float64 {
	v, _ := rec.Get(key)
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	}
	return 0
}

func recordNodeProps(rec *neo4j.Record, key string) map[string]any {
	v, _ := rec.Get(key)
	node, ok := v.(neo4j.Node)
	if !ok {
		return nil
	}
	return node.Props
}

// collectEntries unpacks a collect(DISTINCT {...}) column into its entry
// maps. OPTIONAL MATCH misses collect a single all-nil entry, which callers
// filter via neighborFromEntry.
func collectEntries(rec *neo4j.Record, key string) []map[string]any {
	v, _ := rec.Get(key)
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	entries := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		if entry, ok := item.(map[string]any); ok {
			entries = append(entries, entry)
		}
	}
	return entries
}

func neighborFromEntry(entry map[string]any) (models.Neighbor, bool) {
	node, ok := entry["node"].(neo4j.Node)
	if !ok {
		return models.Neighbor{}, false
	}
	nb := models.Neighbor{Node: node.Props}
	if rel, ok := entry["rel"].(neo4j.Relationship); ok {
		nb.Rel = rel.Props
	}
	return nb, true
}

func collectNeighbors(rec *neo4j.Record, key string) []models.Neighbor {
	var neighbors []models.Neighbor
	for _, entry := range collectEntries(rec, key) {
		if nb, ok := neighborFromEntry(entry); ok {
			neighbors = append(neighbors, nb)
		}
	}
	return neighbors
}

// sectionFromProps rebuilds a Section from its node property map.
func sectionFromProps(props map[string]any) models.Section {
	return models.Section{
		SectionID:          propString(props, "section_id"),
		ActName:            propString(props, "act_name"),
		SectionNumber:      propString(props, "section_number"),
		SectionTitle:       propString(props, "section_title"),
		ChapterName:        propString(props, "chapter_name"),
		FullText:           propString(props, "full_text"),
		LaymanExplanation:  propString(props, "layman_explanation"),
		Category:           propString(props, "category"),
		SeverityLevel:      propString(props, "severity_level"),
		Cognizable:         propString(props, "cognizable"),
		Bailable:           propString(props, "bailable"),
		IsCompoundable:     propString(props, "is_compoundable"),
		PunishmentSummary:  propString(props, "punishment_summary"),
		MaxPunishmentYears: propIntPtr(props, "max_punishment_years"),
		ApplicableStates:   propString(props, "applicable_states"),
		EmbeddingText:      propString(props, "embedding_text"),
	}
}

func propString(props map[string]any, key string) string {
	str, _ := props[key].(string)
	return str
}

func propIntPtr(props map[string]any, key string) *int {
	switch n := props[key].(type) {
	case int64:
		i := int(n)
		return &i
	case float64:
		i := int(n)
		return &i
	case int:
		i := n
		return &i
	}
	return nil
}
