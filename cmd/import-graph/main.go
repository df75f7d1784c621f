package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"lawgraph-backend/dataset"
	"lawgraph-backend/storage"
)

// Imports the ten-CSV dataset into Neo4j as a connected knowledge graph:
// five node labels, five relationship types, uniqueness constraints and the
// fulltext indexes the API queries. MERGE keyed by natural id makes the
// import idempotent: rerunning updates properties, never duplicates.
func main() {
	// Load .env file from project root (relative to cmd/import-graph/)
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../../.env"); err != nil {
			log.Printf("Warning: No .env file found, using environment variables")
		}
	}

	uri := os.Getenv("NEO4J_URI")
	if uri == "" {
		uri = "bolt://localhost:7687"
	}
	user := os.Getenv("NEO4J_USER")
	if user == "" {
		user = "neo4j"
	}
	password := os.Getenv("NEO4J_PASSWORD")

	ctx := context.Background()

	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		log.Fatalf("Failed to create Neo4j driver: %v", err)
	}
	defer driver.Close(ctx)

	if err := driver.VerifyConnectivity(ctx); err != nil {
		log.Fatalf("Failed to connect to Neo4j at %s: %v", uri, err)
	}

	src, err := storage.NewStorageFromEnv()
	if err != nil {
		log.Fatalf("Failed to initialize dataset storage: %v", err)
	}

	ds, err := dataset.Load(ctx, src)
	if err != nil {
		log.Fatalf("Failed to load dataset: %v", err)
	}

	createConstraints(ctx, driver)

	log.Println("Importing nodes...")
	importSections(ctx, driver, ds)
	importActions(ctx, driver, ds)
	importCaseTypes(ctx, driver, ds)
	importEvidence(ctx, driver, ds)
	importOutcomes(ctx, driver, ds)

	log.Println("Importing relationships...")
	importSectionRelations(ctx, driver, ds)
	importSectionActions(ctx, driver, ds)
	importSectionEvidence(ctx, driver, ds)
	importSectionCaseTypes(ctx, driver, ds)
	importActionOutcomes(ctx, driver, ds)

	verify(ctx, driver)

	fmt.Println("\n✅ Import complete! Open Neo4j Browser and run:")
	fmt.Println("   MATCH (n) RETURN n LIMIT 100")
}

func runWrite(ctx context.Context, driver neo4j.DriverWithContext, query string, params map[string]any) error {
	session := driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		_, err = res.Consume(ctx)
		return nil, err
	})
	return err
}

func createConstraints(ctx context.Context, driver neo4j.DriverWithContext) {
	log.Println("Creating constraints and indexes...")

	statements := []string{
		"CREATE CONSTRAINT IF NOT EXISTS FOR (n:LegalSection) REQUIRE n.section_id IS UNIQUE",
		"CREATE CONSTRAINT IF NOT EXISTS FOR (n:LegalAction) REQUIRE n.action_id IS UNIQUE",
		"CREATE CONSTRAINT IF NOT EXISTS FOR (n:CaseType) REQUIRE n.case_type_id IS UNIQUE",
		"CREATE CONSTRAINT IF NOT EXISTS FOR (n:Evidence) REQUIRE n.evidence_id IS UNIQUE",
		"CREATE CONSTRAINT IF NOT EXISTS FOR (n:Outcome) REQUIRE n.outcome_id IS UNIQUE",
		"CREATE INDEX IF NOT EXISTS FOR (n:LegalSection) ON (n.act_name)",
		"CREATE INDEX IF NOT EXISTS FOR (n:LegalSection) ON (n.category)",
		"CREATE INDEX IF NOT EXISTS FOR (n:LegalSection) ON (n.severity_level)",
		"CREATE INDEX IF NOT EXISTS FOR (n:CaseType) ON (n.case_category)",
		"CREATE FULLTEXT INDEX sectionFulltext IF NOT EXISTS FOR (n:LegalSection) ON EACH [n.section_title, n.layman_explanation, n.embedding_text]",
		"CREATE FULLTEXT INDEX actionFulltext IF NOT EXISTS FOR (n:LegalAction) ON EACH [n.action_name, n.embedding_text]",
	}

	for _, stmt := range statements {
		if err := runWrite(ctx, driver, stmt, nil); err != nil {
			log.Printf("Warning: %v", err)
		}
	}
	log.Println("✓ Constraints and indexes ready")
}

// intOrNil converts optional numerics for the driver; a null SET removes the
// property, which keeps absent CSV cells absent on the node.
func intOrNil(p *int) any {
	if p == nil {
		return nil
	}
	return int64(*p)
}

func floatOrNil(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func importSections(ctx context.Context, driver neo4j.DriverWithContext, ds *dataset.Dataset) {
	rows := make([]any, 0, len(ds.Sections))
	for _, s := range ds.Sections {
		rows = append(rows, map[string]any{
			"section_id":           s.SectionID,
			"section_number":       s.SectionNumber,
			"act_name":             s.ActName,
			"chapter_name":         s.ChapterName,
			"section_title":        s.SectionTitle,
			"full_text":            s.FullText,
			"layman_explanation":   s.LaymanExplanation,
			"category":             s.Category,
			"severity_level":       s.SeverityLevel,
			"punishment_summary":   s.PunishmentSummary,
			"max_punishment_years": intOrNil(s.MaxPunishmentYears),
			"cognizable":           s.Cognizable,
			"bailable":             s.Bailable,
			"applicable_states":    s.ApplicableStates,
			"is_compoundable":      s.IsCompoundable,
			"embedding_text":       s.EmbeddingText,
		})
	}

	query := `
	UNWIND $rows AS row
	MERGE (n:LegalSection {section_id: row.section_id})
	SET
	  n.section_number       = row.section_number,
	  n.act_name             = row.act_name,
	  n.chapter_name         = row.chapter_name,
	  n.section_title        = row.section_title,
	  n.full_text            = row.full_text,
	  n.layman_explanation   = row.layman_explanation,
	  n.category             = row.category,
	  n.severity_level       = row.severity_level,
	  n.punishment_summary   = row.punishment_summary,
	  n.max_punishment_years = row.max_punishment_years,
	  n.cognizable           = row.cognizable,
	  n.bailable             = row.bailable,
	  n.applicable_states    = row.applicable_states,
	  n.is_compoundable      = row.is_compoundable,
	  n.embedding_text       = row.embedding_text`

	if err := runWrite(ctx, driver, query, map[string]any{"rows": rows}); err != nil {
		log.Fatalf("Failed to import LegalSection nodes: %v", err)
	}
	log.Printf("✓ %d LegalSection nodes imported", len(rows))
}

func importActions(ctx context.Context, driver neo4j.DriverWithContext, ds *dataset.Dataset) {
	rows := make([]any, 0, len(ds.Actions))
	for _, a := range ds.Actions {
		rows = append(rows, map[string]any{
			"action_id":          a.ActionID,
			"action_name":        a.ActionName,
			"action_type":        a.ActionType,
			"authority_involved": a.AuthorityInvolved,
			"prerequisites":      a.Prerequisites,
			"time_limit_days":    a.TimeLimitDays,
			"cost_estimate_min":  intOrNil(a.CostEstimateMin),
			"cost_estimate_max":  intOrNil(a.CostEstimateMax),
			"online_possible":    a.OnlinePossible,
			"risk_level":         a.RiskLevel,
			"procedure_steps":    a.ProcedureSteps,
			"embedding_text":     a.EmbeddingText,
		})
	}

	query := `
	UNWIND $rows AS row
	MERGE (n:LegalAction {action_id: row.action_id})
	SET
	  n.action_name        = row.action_name,
	  n.action_type        = row.action_type,
	  n.authority_involved = row.authority_involved,
	  n.prerequisites      = row.prerequisites,
	  n.time_limit_days    = row.time_limit_days,
	  n.cost_estimate_min  = row.cost_estimate_min,
	  n.cost_estimate_max  = row.cost_estimate_max,
	  n.online_possible    = row.online_possible,
	  n.risk_level         = row.risk_level,
	  n.procedure_steps    = row.procedure_steps,
	  n.embedding_text     = row.embedding_text`

	if err := runWrite(ctx, driver, query, map[string]any{"rows": rows}); err != nil {
		log.Fatalf("Failed to import LegalAction nodes: %v", err)
	}
	log.Printf("✓ %d LegalAction nodes imported", len(rows))
}

func importCaseTypes(ctx context.Context, driver neo4j.DriverWithContext, ds *dataset.Dataset) {
	rows := make([]any, 0, len(ds.CaseTypes))
	for _, ct := range ds.CaseTypes {
		rows = append(rows, map[string]any{
			"case_type_id":             ct.CaseTypeID,
			"case_category":            ct.CaseCategory,
			"scenario_description":     ct.ScenarioDescription,
			"keywords":                 ct.Keywords,
			"typical_duration_months":  intOrNil(ct.TypicalDurationMonths),
			"recommended_first_action": ct.RecommendedFirstAction,
			"common_mistakes":          ct.CommonMistakes,
			"embedding_text":           ct.EmbeddingText,
		})
	}

	query := `
	UNWIND $rows AS row
	MERGE (n:CaseType {case_type_id: row.case_type_id})
	SET
	  n.case_category            = row.case_category,
	  n.scenario_description     = row.scenario_description,
	  n.keywords                 = row.keywords,
	  n.typical_duration_months  = row.typical_duration_months,
	  n.recommended_first_action = row.recommended_first_action,
	  n.common_mistakes          = row.common_mistakes,
	  n.embedding_text           = row.embedding_text`

	if err := runWrite(ctx, driver, query, map[string]any{"rows": rows}); err != nil {
		log.Fatalf("Failed to import CaseType nodes: %v", err)
	}
	log.Printf("✓ %d CaseType nodes imported", len(rows))
}

func importEvidence(ctx context.Context, driver neo4j.DriverWithContext, ds *dataset.Dataset) {
	rows := make([]any, 0, len(ds.Evidence))
	for _, e := range ds.Evidence {
		rows = append(rows, map[string]any{
			"evidence_id":           e.EvidenceID,
			"evidence_type":         e.EvidenceType,
			"evidence_name":         e.EvidenceName,
			"description":           e.Description,
			"mandatory_or_optional": e.MandatoryOrOptional,
			"collection_difficulty": e.CollectionDifficulty,
			"legal_weight":          e.LegalWeight,
			"evidence_source":       e.EvidenceSource,
			"tamper_risk":           e.TamperRisk,
			"storage_requirements":  e.StorageRequirements,
			"embedding_text":        e.EmbeddingText,
		})
	}

	query := `
	UNWIND $rows AS row
	MERGE (n:Evidence {evidence_id: row.evidence_id})
	SET
	  n.evidence_type         = row.evidence_type,
	  n.evidence_name         = row.evidence_name,
	  n.description           = row.description,
	  n.mandatory_or_optional = row.mandatory_or_optional,
	  n.collection_difficulty = row.collection_difficulty,
	  n.legal_weight          = row.legal_weight,
	  n.evidence_source       = row.evidence_source,
	  n.tamper_risk           = row.tamper_risk,
	  n.storage_requirements  = row.storage_requirements,
	  n.embedding_text        = row.embedding_text`

	if err := runWrite(ctx, driver, query, map[string]any{"rows": rows}); err != nil {
		log.Fatalf("Failed to import Evidence nodes: %v", err)
	}
	log.Printf("✓ %d Evidence nodes imported", len(rows))
}

func importOutcomes(ctx context.Context, driver neo4j.DriverWithContext, ds *dataset.Dataset) {
	rows := make([]any, 0, len(ds.Outcomes))
	for _, o := range ds.Outcomes {
		rows = append(rows, map[string]any{
			"outcome_id":              o.OutcomeID,
			"outcome_description":     o.OutcomeDescription,
			"outcome_type":            o.OutcomeType,
			"typical_timeline_months": intOrNil(o.TypicalTimelineMonths),
			"financial_implications":  o.FinancialImplications,
			"appeal_possible":         o.AppealPossible,
			"enforcement_mechanism":   o.EnforcementMechanism,
			"precedent_cases":         o.PrecedentCases,
			"embedding_text":          o.EmbeddingText,
		})
	}

	query := `
	UNWIND $rows AS row
	MERGE (n:Outcome {outcome_id: row.outcome_id})
	SET
	  n.outcome_description     = row.outcome_description,
	  n.outcome_type            = row.outcome_type,
	  n.typical_timeline_months = row.typical_timeline_months,
	  n.financial_implications  = row.financial_implications,
	  n.appeal_possible         = row.appeal_possible,
	  n.enforcement_mechanism   = row.enforcement_mechanism,
	  n.precedent_cases         = row.precedent_cases,
	  n.embedding_text          = row.embedding_text`

	if err := runWrite(ctx, driver, query, map[string]any{"rows": rows}); err != nil {
		log.Fatalf("Failed to import Outcome nodes: %v", err)
	}
	log.Printf("✓ %d Outcome nodes imported", len(rows))
}

func importSectionRelations(ctx context.Context, driver neo4j.DriverWithContext, ds *dataset.Dataset) {
	rows := make([]any, 0, len(ds.SectionRelations))
	for _, r := range ds.SectionRelations {
		rows = append(rows, map[string]any{
			"parent_section_id": r.ParentSectionID,
			"child_section_id":  r.ChildSectionID,
			"relationship_type": r.RelationshipType,
			"explanation":       r.Explanation,
		})
	}

	query := `
	UNWIND $rows AS row
	MATCH (parent:LegalSection {section_id: row.parent_section_id})
	MATCH (child:LegalSection {section_id: row.child_section_id})
	MERGE (parent)-[r:RELATED_TO {relationship_type: row.relationship_type}]->(child)
	SET r.explanation = row.explanation`

	if err := runWrite(ctx, driver, query, map[string]any{"rows": rows}); err != nil {
		log.Fatalf("Failed to import RELATED_TO edges: %v", err)
	}
	log.Printf("✓ %d Section→Section edges created", len(rows))
}

func importSectionActions(ctx context.Context, driver neo4j.DriverWithContext, ds *dataset.Dataset) {
	rows := make([]any, 0, len(ds.SectionActions))
	for _, r := range ds.SectionActions {
		rows = append(rows, map[string]any{
			"section_id":          r.SectionID,
			"action_id":           r.ActionID,
			"action_sequence":     r.ActionSequence,
			"conditions_required": r.ConditionsRequired,
		})
	}

	query := `
	UNWIND $rows AS row
	MATCH (s:LegalSection {section_id: row.section_id})
	MATCH (a:LegalAction {action_id: row.action_id})
	MERGE (s)-[r:HAS_ACTION]->(a)
	SET
	  r.action_sequence     = row.action_sequence,
	  r.conditions_required = row.conditions_required`

	if err := runWrite(ctx, driver, query, map[string]any{"rows": rows}); err != nil {
		log.Fatalf("Failed to import HAS_ACTION edges: %v", err)
	}
	log.Printf("✓ %d Section→Action edges created", len(rows))
}

func importSectionEvidence(ctx context.Context, driver neo4j.DriverWithContext, ds *dataset.Dataset) {
	rows := make([]any, 0, len(ds.SectionEvidence))
	for _, r := range ds.SectionEvidence {
		rows = append(rows, map[string]any{
			"section_id":      r.SectionID,
			"evidence_id":     r.EvidenceID,
			"necessity_level": r.NecessityLevel,
			"how_it_proves":   r.HowItProves,
		})
	}

	query := `
	UNWIND $rows AS row
	MATCH (s:LegalSection {section_id: row.section_id})
	MATCH (e:Evidence {evidence_id: row.evidence_id})
	MERGE (s)-[r:REQUIRES_EVIDENCE]->(e)
	SET
	  r.necessity_level = row.necessity_level,
	  r.how_it_proves   = row.how_it_proves`

	if err := runWrite(ctx, driver, query, map[string]any{"rows": rows}); err != nil {
		log.Fatalf("Failed to import REQUIRES_EVIDENCE edges: %v", err)
	}
	log.Printf("✓ %d Section→Evidence edges created", len(rows))
}

func importSectionCaseTypes(ctx context.Context, driver neo4j.DriverWithContext, ds *dataset.Dataset) {
	rows := make([]any, 0, len(ds.SectionCaseTypes))
	for _, r := range ds.SectionCaseTypes {
		rows = append(rows, map[string]any{
			"section_id":      r.SectionID,
			"case_type_id":    r.CaseTypeID,
			"relevance_score": floatOrNil(r.RelevanceScore),
			"conditions":      r.Conditions,
			"exceptions":      r.Exceptions,
		})
	}

	// The mapping keys ride on the relationship so each (section, case type)
	// pair merges to exactly one edge.
	query := `
	UNWIND $rows AS row
	MATCH (s:LegalSection {section_id: row.section_id})
	MATCH (c:CaseType {case_type_id: row.case_type_id})
	MERGE (s)-[r:MAPS_TO_CASE_TYPE {section_id: row.section_id, case_type_id: row.case_type_id}]->(c)
	SET
	  r.relevance_score = row.relevance_score,
	  r.conditions      = row.conditions,
	  r.exceptions      = row.exceptions`

	if err := runWrite(ctx, driver, query, map[string]any{"rows": rows}); err != nil {
		log.Fatalf("Failed to import MAPS_TO_CASE_TYPE edges: %v", err)
	}
	log.Printf("✓ %d Section→CaseType edges created", len(rows))
}

func importActionOutcomes(ctx context.Context, driver neo4j.DriverWithContext, ds *dataset.Dataset) {
	rows := make([]any, 0, len(ds.ActionOutcomes))
	for _, r := range ds.ActionOutcomes {
		rows = append(rows, map[string]any{
			"action_id":              r.ActionID,
			"outcome_id":             r.OutcomeID,
			"probability_percentage": intOrNil(r.ProbabilityPercentage),
			"influencing_factors":    r.InfluencingFactors,
		})
	}

	query := `
	UNWIND $rows AS row
	MATCH (a:LegalAction {action_id: row.action_id})
	MATCH (o:Outcome {outcome_id: row.outcome_id})
	MERGE (a)-[r:LEADS_TO_OUTCOME]->(o)
	SET
	  r.probability_percentage = row.probability_percentage,
	  r.influencing_factors    = row.influencing_factors`

	if err := runWrite(ctx, driver, query, map[string]any{"rows": rows}); err != nil {
		log.Fatalf("Failed to import LEADS_TO_OUTCOME edges: %v", err)
	}
	log.Printf("✓ %d Action→Outcome edges created", len(rows))
}

func verify(ctx context.Context, driver neo4j.DriverWithContext) {
	log.Println("Verification - node & relationship counts:")

	counts := []struct {
		label string
		query string
	}{
		{"LegalSection nodes", "MATCH (n:LegalSection) RETURN count(n) AS c"},
		{"LegalAction nodes", "MATCH (n:LegalAction) RETURN count(n) AS c"},
		{"CaseType nodes", "MATCH (n:CaseType) RETURN count(n) AS c"},
		{"Evidence nodes", "MATCH (n:Evidence) RETURN count(n) AS c"},
		{"Outcome nodes", "MATCH (n:Outcome) RETURN count(n) AS c"},
		{"RELATED_TO edges", "MATCH ()-[r:RELATED_TO]->() RETURN count(r) AS c"},
		{"HAS_ACTION edges", "MATCH ()-[r:HAS_ACTION]->() RETURN count(r) AS c"},
		{"REQUIRES_EVIDENCE edges", "MATCH ()-[r:REQUIRES_EVIDENCE]->() RETURN count(r) AS c"},
		{"MAPS_TO_CASE_TYPE edges", "MATCH ()-[r:MAPS_TO_CASE_TYPE]->() RETURN count(r) AS c"},
		{"LEADS_TO_OUTCOME edges", "MATCH ()-[r:LEADS_TO_OUTCOME]->() RETURN count(r) AS c"},
	}

	session := driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	for _, c := range counts {
		out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			res, err := tx.Run(ctx, c.query, nil)
			if err != nil {
				return nil, err
			}
			rec, err := res.Single(ctx)
			if err != nil {
				return nil, err
			}
			n, _ := rec.Get("c")
			return n, nil
		})
		if err != nil {
			log.Printf("Warning: count %s: %v", c.label, err)
			continue
		}
		log.Printf("  %5d  %s", out.(int64), c.label)
	}
}
