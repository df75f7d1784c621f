package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lawgraph-backend/dataset"
	"lawgraph-backend/internalerr"
	"lawgraph-backend/models"
)

var _ GraphStore = (*PostgresStore)(nil)

// PostgresStore is a GraphStore over the relational mirror of the legal
// graph. Nodes live in one table per label and relations in one table per
// relation family, so every traversal becomes a join. Fulltext queries use
// the generated tsvector column instead of a Lucene index.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to Postgres and verifies connectivity before
// returning.
func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}
	return &PostgresStore{pool: pool}, nil
}

// SectionsByCaseTypes returns sections mapped to the given case types, ranked
// by mapping relevance descending, capped at 10.
func (s *PostgresStore) SectionsByCaseTypes(ctx context.Context, caseTypeIDs []string) ([]models.SectionMatch, error) {
	if len(caseTypeIDs) == 0 {
		return nil, nil
	}

	rows, err := s.pool.Query(ctx, `
		SELECT DISTINCT s.section_id, s.section_number, s.section_title,
		       s.layman_explanation, s.severity_level, s.cognizable, s.bailable,
		       s.punishment_summary, s.max_punishment_years,
		       COALESCE(m.relevance_score, 0) AS relevance, m.case_type_id
		FROM section_case_types m
		JOIN legal_sections s ON s.section_id = m.section_id
		WHERE m.case_type_id = ANY($1)
		ORDER BY relevance DESC, s.section_id
		LIMIT 10`, caseTypeIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: query sections by case types: %v", internalerr.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var matches []models.SectionMatch
	for rows.Next() {
		var m models.SectionMatch
		if err := rows.Scan(&m.SectionID, &m.SectionNumber, &m.SectionTitle,
			&m.LaymanExplanation, &m.SeverityLevel, &m.Cognizable, &m.Bailable,
			&m.PunishmentSummary, &m.MaxPunishmentYears,
			&m.RelevanceScore, &m.CaseTypeID); err != nil {
			return nil, fmt.Errorf("failed to scan section match: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// SectionsByFulltext tokenizes the text and runs an OR tsquery against the
// section fulltext column, capped at 5. Texts that yield no tokens return
// empty without hitting the database.
func (s *PostgresStore) SectionsByFulltext(ctx context.Context, text string) ([]models.SectionMatch, error) {
	tokens := fulltextTokens(text)
	if len(tokens) == 0 {
		return nil, nil
	}

	rows, err := s.pool.Query(ctx, `
		SELECT s.section_id, s.section_number, s.section_title,
		       s.layman_explanation, s.severity_level, s.cognizable, s.bailable,
		       s.punishment_summary, ts_rank(s.fulltext, q)::float8 AS score
		FROM legal_sections s, to_tsquery('english', $1) q
		WHERE s.fulltext @@ q
		ORDER BY score DESC, s.section_id
		LIMIT 5`, strings.Join(tokens, " | "))
	if err != nil {
		return nil, fmt.Errorf("%w: query sections by fulltext: %v", internalerr.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var matches []models.SectionMatch
	for rows.Next() {
		var m models.SectionMatch
		if err := rows.Scan(&m.SectionID, &m.SectionNumber, &m.SectionTitle,
			&m.LaymanExplanation, &m.SeverityLevel, &m.Cognizable, &m.Bailable,
			&m.PunishmentSummary, &m.RelevanceScore); err != nil {
			return nil, fmt.Errorf("failed to scan section match: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// ActionsForSections returns the actions linked to the given sections,
// ordered by sequence tier.
func (s *PostgresStore) ActionsForSections(ctx context.Context, sectionIDs []string) ([]models.Action, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT DISTINCT a.action_id, a.action_name, a.action_type,
		       a.authority_involved, a.cost_estimate_min, a.cost_estimate_max,
		       a.online_possible, a.risk_level, a.procedure_steps,
		       r.action_sequence, r.conditions_required,
		       CASE r.action_sequence
		       WHEN 'Primary' THEN 1
		       WHEN 'Secondary' THEN 2
		       WHEN 'Alternative' THEN 3
		       ELSE 4 END AS tier
		FROM section_actions r
		JOIN legal_actions a ON a.action_id = r.action_id
		WHERE r.section_id = ANY($1)
		ORDER BY tier, a.action_id`, sectionIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: query actions for sections: %v", internalerr.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var actions []models.Action
	for rows.Next() {
		var (
			a    models.Action
			tier int
		)
		if err := rows.Scan(&a.ActionID, &a.ActionName, &a.ActionType,
			&a.AuthorityInvolved, &a.CostMin, &a.CostMax,
			&a.OnlinePossible, &a.RiskLevel, &a.ProcedureSteps,
			&a.Sequence, &a.Conditions, &tier); err != nil {
			return nil, fmt.Errorf("failed to scan action: %w", err)
		}
		actions = append(actions, a)
	}
	return actions, rows.Err()
}

// EvidenceForSections returns the evidence linked to the given sections,
// ordered by necessity tier.
func (s *PostgresStore) EvidenceForSections(ctx context.Context, sectionIDs []string) ([]models.EvidenceItem, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT DISTINCT e.evidence_id, e.evidence_name, e.evidence_type,
		       e.description, e.legal_weight, e.evidence_source,
		       e.storage_requirements, e.tamper_risk,
		       r.necessity_level, r.how_it_proves,
		       CASE r.necessity_level
		       WHEN 'Must-have' THEN 1
		       WHEN 'Good-to-have' THEN 2
		       ELSE 3 END AS tier
		FROM section_evidence r
		JOIN evidence e ON e.evidence_id = r.evidence_id
		WHERE r.section_id = ANY($1)
		ORDER BY tier, e.evidence_id`, sectionIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: query evidence for sections: %v", internalerr.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var items []models.EvidenceItem
	for rows.Next() {
		var (
			e    models.EvidenceItem
			tier int
		)
		if err := rows.Scan(&e.EvidenceID, &e.EvidenceName, &e.EvidenceType,
			&e.Description, &e.LegalWeight, &e.EvidenceSource,
			&e.StorageRequirements, &e.TamperRisk,
			&e.NecessityLevel, &e.HowItProves, &tier); err != nil {
			return nil, fmt.Errorf("failed to scan evidence item: %w", err)
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

// OutcomesForActions returns the outcomes linked to the given actions, ranked
// by probability descending, capped at 8.
func (s *PostgresStore) OutcomesForActions(ctx context.Context, actionIDs []string) ([]models.Outcome, error) {
	if len(actionIDs) == 0 {
		return nil, nil
	}

	rows, err := s.pool.Query(ctx, `
		SELECT DISTINCT o.outcome_id, o.outcome_description, o.outcome_type,
		       o.typical_timeline_months, o.appeal_possible, o.precedent_cases,
		       COALESCE(r.probability_percentage, 0) AS probability,
		       r.influencing_factors
		FROM action_outcomes r
		JOIN outcomes o ON o.outcome_id = r.outcome_id
		WHERE r.action_id = ANY($1)
		ORDER BY probability DESC, o.outcome_id
		LIMIT 8`, actionIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: query outcomes for actions: %v", internalerr.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var outcomes []models.Outcome
	for rows.Next() {
		var o models.Outcome
		if err := rows.Scan(&o.OutcomeID, &o.OutcomeDescription, &o.OutcomeType,
			&o.TimelineMonths, &o.AppealPossible, &o.PrecedentCases,
			&o.Probability, &o.InfluencingFactors); err != nil {
			return nil, fmt.Errorf("failed to scan outcome: %w", err)
		}
		outcomes = append(outcomes, o)
	}
	return outcomes, rows.Err()
}

// CaseTypesByID resolves case type metadata in input order.
func (s *PostgresStore) CaseTypesByID(ctx context.Context, caseTypeIDs []string) ([]models.CaseType, error) {
	if len(caseTypeIDs) == 0 {
		return nil, nil
	}

	rows, err := s.pool.Query(ctx, `
		SELECT ct.case_type_id, ct.scenario_description,
		       ct.typical_duration_months, ct.common_mistakes
		FROM case_types ct
		WHERE ct.case_type_id = ANY($1)
		ORDER BY array_position($1, ct.case_type_id)`, caseTypeIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: query case types: %v", internalerr.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var out []models.CaseType
	for rows.Next() {
		var ct models.CaseType
		if err := rows.Scan(&ct.ID, &ct.Description, &ct.Duration, &ct.Mistakes); err != nil {
			return nil, fmt.Errorf("failed to scan case type: %w", err)
		}
		out = append(out, ct)
	}
	return out, rows.Err()
}

// SectionByID returns the full section node.
func (s *PostgresStore) SectionByID(ctx context.Context, sectionID string) (*models.Section, error) {
	var sec models.Section
	err := s.pool.QueryRow(ctx, `
		SELECT section_id, act_name, section_number, section_title, chapter_name,
		       full_text, layman_explanation, category, severity_level,
		       cognizable, bailable, is_compoundable, punishment_summary,
		       max_punishment_years, applicable_states, embedding_text
		FROM legal_sections
		WHERE section_id = $1`, sectionID).Scan(
		&sec.SectionID, &sec.ActName, &sec.SectionNumber, &sec.SectionTitle,
		&sec.ChapterName, &sec.FullText, &sec.LaymanExplanation, &sec.Category,
		&sec.SeverityLevel, &sec.Cognizable, &sec.Bailable, &sec.IsCompoundable,
		&sec.PunishmentSummary, &sec.MaxPunishmentYears, &sec.ApplicableStates,
		&sec.EmbeddingText)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: section %s", internalerr.ErrNotFound, sectionID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: query section: %v", internalerr.ErrStoreUnavailable, err)
	}
	return &sec, nil
}

// SectionNeighborhood returns the one-hop fan-out around a section. Each
// relation family is one join; outcomes go through section_actions so they
// carry the id of the action they hang off.
func (s *PostgresStore) SectionNeighborhood(ctx context.Context, sectionID string) (*models.SectionNeighborhood, error) {
	root, err := s.SectionByID(ctx, sectionID)
	if err != nil {
		return nil, err
	}
	n := &models.SectionNeighborhood{Root: sectionProps(*root)}

	if n.Related, err = s.relatedNeighbors(ctx, sectionID); err != nil {
		return nil, err
	}
	if n.Actions, err = s.actionNeighbors(ctx, sectionID); err != nil {
		return nil, err
	}
	if n.Outcomes, err = s.outcomeNeighbors(ctx, sectionID); err != nil {
		return nil, err
	}
	if n.Evidence, err = s.evidenceNeighbors(ctx, sectionID); err != nil {
		return nil, err
	}
	if n.CaseTypes, err = s.caseTypeNeighbors(ctx, sectionID); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *PostgresStore) relatedNeighbors(ctx context.Context, sectionID string) ([]models.Neighbor, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT c.section_id, c.act_name, c.section_number, c.section_title,
		       c.chapter_name, c.full_text, c.layman_explanation, c.category,
		       c.severity_level, c.cognizable, c.bailable, c.is_compoundable,
		       c.punishment_summary, c.max_punishment_years, c.applicable_states,
		       c.embedding_text, r.relationship_type, r.explanation
		FROM section_relationships r
		JOIN legal_sections c ON c.section_id = r.child_section_id
		WHERE r.parent_section_id = $1`, sectionID)
	if err != nil {
		return nil, fmt.Errorf("%w: query related sections: %v", internalerr.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var neighbors []models.Neighbor
	for rows.Next() {
		var (
			sec              models.Section
			relType, explain string
		)
		if err := rows.Scan(&sec.SectionID, &sec.ActName, &sec.SectionNumber,
			&sec.SectionTitle, &sec.ChapterName, &sec.FullText,
			&sec.LaymanExplanation, &sec.Category, &sec.SeverityLevel,
			&sec.Cognizable, &sec.Bailable, &sec.IsCompoundable,
			&sec.PunishmentSummary, &sec.MaxPunishmentYears,
			&sec.ApplicableStates, &sec.EmbeddingText,
			&relType, &explain); err != nil {
			return nil, fmt.Errorf("failed to scan related section: %w", err)
		}
		neighbors = append(neighbors, models.Neighbor{
			Node: sectionProps(sec),
			Rel: map[string]any{
				"relationship_type": relType,
				"explanation":       explain,
			},
		})
	}
	return neighbors, rows.Err()
}

func (s *PostgresStore) actionNeighbors(ctx context.Context, sectionID string) ([]models.Neighbor, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT a.action_id, a.action_name, a.action_type, a.authority_involved,
		       a.prerequisites, a.time_limit_days, a.cost_estimate_min,
		       a.cost_estimate_max, a.online_possible, a.risk_level,
		       a.procedure_steps, a.embedding_text,
		       r.action_sequence, r.conditions_required
		FROM section_actions r
		JOIN legal_actions a ON a.action_id = r.action_id
		WHERE r.section_id = $1`, sectionID)
	if err != nil {
		return nil, fmt.Errorf("%w: query section actions: %v", internalerr.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var neighbors []models.Neighbor
	for rows.Next() {
		var (
			a                    dataset.ActionRow
			sequence, conditions string
		)
		if err := rows.Scan(&a.ActionID, &a.ActionName, &a.ActionType,
			&a.AuthorityInvolved, &a.Prerequisites, &a.TimeLimitDays,
			&a.CostEstimateMin, &a.CostEstimateMax, &a.OnlinePossible,
			&a.RiskLevel, &a.ProcedureSteps, &a.EmbeddingText,
			&sequence, &conditions); err != nil {
			return nil, fmt.Errorf("failed to scan section action: %w", err)
		}
		neighbors = append(neighbors, models.Neighbor{
			Node: actionProps(a),
			Rel: map[string]any{
				"action_sequence":     sequence,
				"conditions_required": conditions,
			},
		})
	}
	return neighbors, rows.Err()
}

func (s *PostgresStore) outcomeNeighbors(ctx context.Context, sectionID string) ([]models.OutcomeNeighbor, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT o.outcome_id, o.outcome_description, o.outcome_type,
		       o.typical_timeline_months, o.financial_implications,
		       o.appeal_possible, o.enforcement_mechanism, o.precedent_cases,
		       o.embedding_text,
		       ao.probability_percentage, ao.influencing_factors, ao.action_id
		FROM section_actions sa
		JOIN action_outcomes ao ON ao.action_id = sa.action_id
		JOIN outcomes o ON o.outcome_id = ao.outcome_id
		WHERE sa.section_id = $1`, sectionID)
	if err != nil {
		return nil, fmt.Errorf("%w: query section outcomes: %v", internalerr.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var neighbors []models.OutcomeNeighbor
	for rows.Next() {
		var (
			o           dataset.OutcomeRow
			probability *int
			factors     string
			actionID    string
		)
		if err := rows.Scan(&o.OutcomeID, &o.OutcomeDescription, &o.OutcomeType,
			&o.TypicalTimelineMonths, &o.FinancialImplications,
			&o.AppealPossible, &o.EnforcementMechanism, &o.PrecedentCases,
			&o.EmbeddingText,
			&probability, &factors, &actionID); err != nil {
			return nil, fmt.Errorf("failed to scan section outcome: %w", err)
		}
		rel := map[string]any{"influencing_factors": factors}
		if probability != nil {
			rel["probability_percentage"] = *probability
		}
		neighbors = append(neighbors, models.OutcomeNeighbor{
			Neighbor: models.Neighbor{Node: outcomeProps(o), Rel: rel},
			ActionID: actionID,
		})
	}
	return neighbors, rows.Err()
}

func (s *PostgresStore) evidenceNeighbors(ctx context.Context, sectionID string) ([]models.Neighbor, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT e.evidence_id, e.evidence_type, e.evidence_name, e.description,
		       e.mandatory_or_optional, e.collection_difficulty, e.legal_weight,
		       e.evidence_source, e.tamper_risk, e.storage_requirements,
		       e.embedding_text, r.necessity_level, r.how_it_proves
		FROM section_evidence r
		JOIN evidence e ON e.evidence_id = r.evidence_id
		WHERE r.section_id = $1`, sectionID)
	if err != nil {
		return nil, fmt.Errorf("%w: query section evidence: %v", internalerr.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var neighbors []models.Neighbor
	for rows.Next() {
		var (
			e                 dataset.EvidenceRow
			necessity, proves string
		)
		if err := rows.Scan(&e.EvidenceID, &e.EvidenceType, &e.EvidenceName,
			&e.Description, &e.MandatoryOrOptional, &e.CollectionDifficulty,
			&e.LegalWeight, &e.EvidenceSource, &e.TamperRisk,
			&e.StorageRequirements, &e.EmbeddingText,
			&necessity, &proves); err != nil {
			return nil, fmt.Errorf("failed to scan section evidence: %w", err)
		}
		neighbors = append(neighbors, models.Neighbor{
			Node: evidenceProps(e),
			Rel: map[string]any{
				"necessity_level": necessity,
				"how_it_proves":   proves,
			},
		})
	}
	return neighbors, rows.Err()
}

func (s *PostgresStore) caseTypeNeighbors(ctx context.Context, sectionID string) ([]models.Neighbor, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT ct.case_type_id, ct.case_category, ct.scenario_description,
		       ct.keywords, ct.typical_duration_months,
		       ct.recommended_first_action, ct.common_mistakes, ct.embedding_text,
		       m.relevance_score, m.conditions, m.exceptions
		FROM section_case_types m
		JOIN case_types ct ON ct.case_type_id = m.case_type_id
		WHERE m.section_id = $1`, sectionID)
	if err != nil {
		return nil, fmt.Errorf("%w: query section case types: %v", internalerr.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var neighbors []models.Neighbor
	for rows.Next() {
		var (
			ct                     dataset.CaseTypeRow
			relevance              *float64
			conditions, exceptions string
		)
		if err := rows.Scan(&ct.CaseTypeID, &ct.CaseCategory,
			&ct.ScenarioDescription, &ct.Keywords, &ct.TypicalDurationMonths,
			&ct.RecommendedFirstAction, &ct.CommonMistakes, &ct.EmbeddingText,
			&relevance, &conditions, &exceptions); err != nil {
			return nil, fmt.Errorf("failed to scan section case type: %w", err)
		}
		rel := map[string]any{
			"section_id":   sectionID,
			"case_type_id": ct.CaseTypeID,
			"conditions":   conditions,
			"exceptions":   exceptions,
		}
		if relevance != nil {
			rel["relevance_score"] = *relevance
		}
		neighbors = append(neighbors, models.Neighbor{
			Node: caseTypeProps(ct),
			Rel:  rel,
		})
	}
	return neighbors, rows.Err()
}

// SearchSections runs the raw query as a websearch tsquery against the
// section fulltext column, capped at 10.
func (s *PostgresStore) SearchSections(ctx context.Context, query string) ([]models.SearchResult, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT s.section_id, s.section_number, s.section_title,
		       s.layman_explanation, s.severity_level,
		       ts_rank(s.fulltext, q)::float8 AS score
		FROM legal_sections s, websearch_to_tsquery('english', $1) q
		WHERE s.fulltext @@ q
		ORDER BY score DESC, s.section_id
		LIMIT 10`, query)
	if err != nil {
		return nil, fmt.Errorf("%w: search sections: %v", internalerr.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var results []models.SearchResult
	for rows.Next() {
		var r models.SearchResult
		if err := rows.Scan(&r.SectionID, &r.SectionNumber, &r.SectionTitle,
			&r.LaymanExplanation, &r.SeverityLevel, &r.Score); err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// Ping verifies the database answers.
func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}
	return nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close(ctx context.Context) error {
	s.pool.Close()
	return nil
}
