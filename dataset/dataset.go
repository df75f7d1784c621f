// Package dataset reads the ten CSV exports that make up the legal knowledge
// graph: five entity tables and five relationship tables. The loaders and the
// in-memory graph backend consume the same parsed rows.
package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"lawgraph-backend/models"
	"lawgraph-backend/storage"
)

// Dataset file names, as exported from the curation spreadsheets.
const (
	SectionsFile         = "legal_sections__1_.csv"
	ActionsFile          = "legal_actions__.csv"
	CaseTypesFile        = "case_type_1.csv"
	EvidenceFile         = "evidence_requirements.csv"
	OutcomesFile         = "outcomes.csv"
	SectionRelationsFile = "section_relationships.csv"
	SectionActionsFile   = "section_to_action.csv"
	SectionEvidenceFile  = "section_to_evidence.csv"
	SectionCaseTypesFile = "section_to_case_type.csv"
	ActionOutcomesFile   = "action_to_outcome.csv"
)

// ActionRow is one legal action node.
type ActionRow struct {
	ActionID          string
	ActionName        string
	ActionType        string
	AuthorityInvolved string
	Prerequisites     string
	TimeLimitDays     string
	CostEstimateMin   *int
	CostEstimateMax   *int
	OnlinePossible    string
	RiskLevel         string
	ProcedureSteps    string
	EmbeddingText     string
}

// CaseTypeRow is one case type node.
type CaseTypeRow struct {
	CaseTypeID             string
	CaseCategory           string
	ScenarioDescription    string
	Keywords               string
	TypicalDurationMonths  *int
	RecommendedFirstAction string
	CommonMistakes         string
	EmbeddingText          string
}

// EvidenceRow is one evidence node.
type EvidenceRow struct {
	EvidenceID           string
	EvidenceType         string
	EvidenceName         string
	Description          string
	MandatoryOrOptional  string
	CollectionDifficulty string
	LegalWeight          string
	EvidenceSource       string
	TamperRisk           string
	StorageRequirements  string
	EmbeddingText        string
}

// OutcomeRow is one outcome node.
type OutcomeRow struct {
	OutcomeID             string
	OutcomeDescription    string
	OutcomeType           string
	TypicalTimelineMonths *int
	FinancialImplications string
	AppealPossible        string
	EnforcementMechanism  string
	PrecedentCases        string
	EmbeddingText         string
}

// SectionRelationRow links a parent section to a related child section.
type SectionRelationRow struct {
	ParentSectionID  string
	ChildSectionID   string
	RelationshipType string
	Explanation      string
}

// SectionActionRow links a section to a recommended action.
type SectionActionRow struct {
	SectionID          string
	ActionID           string
	ActionSequence     string
	ConditionsRequired string
}

// SectionEvidenceRow links a section to an evidence requirement.
type SectionEvidenceRow struct {
	SectionID      string
	EvidenceID     string
	NecessityLevel string
	HowItProves    string
}

// SectionCaseTypeRow links a section to a case type with a relevance score.
type SectionCaseTypeRow struct {
	SectionID      string
	CaseTypeID     string
	RelevanceScore *float64
	Conditions     string
	Exceptions     string
}

// ActionOutcomeRow links an action to an outcome with a probability.
type ActionOutcomeRow struct {
	ActionID              string
	OutcomeID             string
	ProbabilityPercentage *int
	InfluencingFactors    string
}

// Dataset is the fully parsed knowledge graph dataset.
type Dataset struct {
	Sections         []models.Section
	Actions          []ActionRow
	CaseTypes        []CaseTypeRow
	Evidence         []EvidenceRow
	Outcomes         []OutcomeRow
	SectionRelations []SectionRelationRow
	SectionActions   []SectionActionRow
	SectionEvidence  []SectionEvidenceRow
	SectionCaseTypes []SectionCaseTypeRow
	ActionOutcomes   []ActionOutcomeRow
}

// Load reads all ten CSV files from src. Rows missing their natural key are
// skipped; blank or malformed numeric cells become nil, matching the null
// coercion the graph import applies.
func Load(ctx context.Context, src storage.Storage) (*Dataset, error) {
	ds := &Dataset{}

	err := readFile(ctx, src, SectionsFile, func(rec record) {
		s := models.Section{
			SectionID:          rec.str("section_id"),
			SectionNumber:      rec.str("section_number"),
			ActName:            rec.str("act_name"),
			ChapterName:        rec.str("chapter_name"),
			SectionTitle:       rec.str("section_title"),
			FullText:           rec.str("full_text"),
			LaymanExplanation:  rec.str("layman_explanation"),
			Category:           rec.str("category"),
			SeverityLevel:      rec.str("severity_level"),
			PunishmentSummary:  rec.str("punishment_summary"),
			MaxPunishmentYears: rec.intPtr("max_punishment_years"),
			Cognizable:         rec.str("cognizable"),
			Bailable:           rec.str("bailable"),
			ApplicableStates:   rec.str("applicable_states"),
			IsCompoundable:     rec.str("is_compoundable"),
			EmbeddingText:      rec.str("embedding_text"),
		}
		if s.SectionID != "" {
			ds.Sections = append(ds.Sections, s)
		}
	})
	if err != nil {
		return nil, err
	}

	err = readFile(ctx, src, ActionsFile, func(rec record) {
		a := ActionRow{
			ActionID:          rec.str("action_id"),
			ActionName:        rec.str("action_name"),
			ActionType:        rec.str("action_type"),
			AuthorityInvolved: rec.str("authority_involved"),
			Prerequisites:     rec.str("prerequisites"),
			TimeLimitDays:     rec.str("time_limit_days"),
			CostEstimateMin:   rec.intPtr("cost_estimate_min"),
			CostEstimateMax:   rec.intPtr("cost_estimate_max"),
			OnlinePossible:    rec.str("online_possible"),
			RiskLevel:         rec.str("risk_level"),
			ProcedureSteps:    rec.str("procedure_steps"),
			EmbeddingText:     rec.str("embedding_text"),
		}
		if a.ActionID != "" {
			ds.Actions = append(ds.Actions, a)
		}
	})
	if err != nil {
		return nil, err
	}

	err = readFile(ctx, src, CaseTypesFile, func(rec record) {
		ct := CaseTypeRow{
			CaseTypeID:             rec.str("case_type_id"),
			CaseCategory:           rec.str("case_category"),
			ScenarioDescription:    rec.str("scenario_description"),
			Keywords:               rec.str("keywords"),
			TypicalDurationMonths:  rec.intPtr("typical_duration_months"),
			RecommendedFirstAction: rec.str("recommended_first_action"),
			CommonMistakes:         rec.str("common_mistakes"),
			EmbeddingText:          rec.str("embedding_text"),
		}
		if ct.CaseTypeID != "" {
			ds.CaseTypes = append(ds.CaseTypes, ct)
		}
	})
	if err != nil {
		return nil, err
	}

	err = readFile(ctx, src, EvidenceFile, func(rec record) {
		e := EvidenceRow{
			EvidenceID:           rec.str("evidence_id"),
			EvidenceType:         rec.str("evidence_type"),
			EvidenceName:         rec.str("evidence_name"),
			Description:          rec.str("description"),
			MandatoryOrOptional:  rec.str("mandatory_or_optional"),
			CollectionDifficulty: rec.str("collection_difficulty"),
			LegalWeight:          rec.str("legal_weight"),
			EvidenceSource:       rec.str("evidence_source"),
			TamperRisk:           rec.str("tamper_risk"),
			StorageRequirements:  rec.str("storage_requirements"),
			EmbeddingText:        rec.str("embedding_text"),
		}
		if e.EvidenceID != "" {
			ds.Evidence = append(ds.Evidence, e)
		}
	})
	if err != nil {
		return nil, err
	}

	err = readFile(ctx, src, OutcomesFile, func(rec record) {
		o := OutcomeRow{
			OutcomeID:             rec.str("outcome_id"),
			OutcomeDescription:    rec.str("outcome_description"),
			OutcomeType:           rec.str("outcome_type"),
			TypicalTimelineMonths: rec.intPtr("typical_timeline_months"),
			FinancialImplications: rec.str("financial_implications"),
			AppealPossible:        rec.str("appeal_possible"),
			EnforcementMechanism:  rec.str("enforcement_mechanism"),
			PrecedentCases:        rec.str("precedent_cases"),
			EmbeddingText:         rec.str("embedding_text"),
		}
		if o.OutcomeID != "" {
			ds.Outcomes = append(ds.Outcomes, o)
		}
	})
	if err != nil {
		return nil, err
	}

	err = readFile(ctx, src, SectionRelationsFile, func(rec record) {
		r := SectionRelationRow{
			ParentSectionID:  rec.str("parent_section_id"),
			ChildSectionID:   rec.str("child_section_id"),
			RelationshipType: rec.str("relationship_type"),
			Explanation:      rec.str("explanation"),
		}
		if r.ParentSectionID != "" && r.ChildSectionID != "" {
			ds.SectionRelations = append(ds.SectionRelations, r)
		}
	})
	if err != nil {
		return nil, err
	}

	err = readFile(ctx, src, SectionActionsFile, func(rec record) {
		r := SectionActionRow{
			SectionID:          rec.str("section_id"),
			ActionID:           rec.str("action_id"),
			ActionSequence:     rec.str("action_sequence"),
			ConditionsRequired: rec.str("conditions_required"),
		}
		if r.SectionID != "" && r.ActionID != "" {
			ds.SectionActions = append(ds.SectionActions, r)
		}
	})
	if err != nil {
		return nil, err
	}

	err = readFile(ctx, src, SectionEvidenceFile, func(rec record) {
		r := SectionEvidenceRow{
			SectionID:      rec.str("section_id"),
			EvidenceID:     rec.str("evidence_id"),
			NecessityLevel: rec.str("necessity_level"),
			HowItProves:    rec.str("how_it_proves"),
		}
		if r.SectionID != "" && r.EvidenceID != "" {
			ds.SectionEvidence = append(ds.SectionEvidence, r)
		}
	})
	if err != nil {
		return nil, err
	}

	err = readFile(ctx, src, SectionCaseTypesFile, func(rec record) {
		r := SectionCaseTypeRow{
			SectionID:      rec.str("section_id"),
			CaseTypeID:     rec.str("case_type_id"),
			RelevanceScore: rec.floatPtr("relevance_score"),
			Conditions:     rec.str("conditions"),
			Exceptions:     rec.str("exceptions"),
		}
		if r.SectionID != "" && r.CaseTypeID != "" {
			ds.SectionCaseTypes = append(ds.SectionCaseTypes, r)
		}
	})
	if err != nil {
		return nil, err
	}

	err = readFile(ctx, src, ActionOutcomesFile, func(rec record) {
		r := ActionOutcomeRow{
			ActionID:              rec.str("action_id"),
			OutcomeID:             rec.str("outcome_id"),
			ProbabilityPercentage: rec.intPtr("probability_percentage"),
			InfluencingFactors:    rec.str("influencing_factors"),
		}
		if r.ActionID != "" && r.OutcomeID != "" {
			ds.ActionOutcomes = append(ds.ActionOutcomes, r)
		}
	})
	if err != nil {
		return nil, err
	}

	return ds, nil
}

// record is one CSV row with header-keyed column access.
type record struct {
	cols map[string]int
	row  []string
}

func (r record) str(key string) string {
	idx, ok := r.cols[key]
	if !ok || idx >= len(r.row) {
		return ""
	}
	return r.row[idx]
}

func (r record) intPtr(key string) *int {
	raw := strings.TrimSpace(r.str(key))
	if raw == "" {
		return nil
	}
	// Spreadsheet exports render integers as "12.0"; accept the float form.
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	n := int(f)
	return &n
}

func (r record) floatPtr(key string) *float64 {
	raw := strings.TrimSpace(r.str(key))
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &f
}

func readFile(ctx context.Context, src storage.Storage, name string, fn func(record)) error {
	rc, err := src.Open(ctx, name)
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	defer rc.Close()

	reader := csv.NewReader(rc)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("read %s header: %w", name, err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		// Spreadsheet exports may lead with a UTF-8 byte order mark.
		cols[strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF"))] = i
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		fn(record{cols: cols, row: row})
	}
	return nil
}
