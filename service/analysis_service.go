package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"lawgraph-backend/models"
	"lawgraph-backend/repository"
	"lawgraph-backend/rules"
)

// DefaultState is the jurisdiction assumed when a request leaves the state
// blank.
const DefaultState = "All India"

// AnalysisService handles business logic for case analysis. It orchestrates
// the reasoning pipeline: symbolic keyword matching, the two retrieval paths,
// merge, plan/evidence/outcome traversals and confidence scoring.
type AnalysisService struct {
	store   repository.GraphStore
	rules   rules.Table
	scoring ScoringConfig
}

// AnalysisServiceOption is a functional option for AnalysisService
type AnalysisServiceOption func(*AnalysisService)

// WithGraphStore sets the graph store queried by the pipeline
func WithGraphStore(store repository.GraphStore) AnalysisServiceOption {
	return func(s *AnalysisService) {
		s.store = store
	}
}

// WithRuleTable sets the keyword rule table used for case type matching
func WithRuleTable(table rules.Table) AnalysisServiceOption {
	return func(s *AnalysisService) {
		s.rules = table
	}
}

// WithScoringConfig sets the confidence scoring weights
func WithScoringConfig(cfg ScoringConfig) AnalysisServiceOption {
	return func(s *AnalysisService) {
		s.scoring = cfg
	}
}

// NewAnalysisService creates a new analysis service with the built-in rule
// table and default scoring weights unless options override them.
func NewAnalysisService(opts ...AnalysisServiceOption) *AnalysisService {
	s := &AnalysisService{
		rules:   rules.DefaultTable(),
		scoring: DefaultScoringConfig(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AnalyzeCaseRequest represents a request to analyze a case narrative. State
// and Category are accepted for forward compatibility with jurisdiction
// filtering; the current merge stage applies no filter.
type AnalyzeCaseRequest struct {
	CaseDescription string
	State           string
	Category        string
}

// AnalyzeCase runs the full reasoning pipeline over a case description and
// returns the result bundle with its audit trail. The bundle is all or
// nothing: if any stage fails, no partial result is returned and the trace
// accumulated so far is discarded. An empty description still produces a
// complete trace with zero confidence.
func (s *AnalysisService) AnalyzeCase(ctx context.Context, req AnalyzeCaseRequest) (*models.AnalysisResult, error) {
	if s.store == nil {
		return nil, errors.New("graph store not set")
	}

	trace := newTraceBuilder()

	caseTypeIDs, _ := s.rules.Extract(req.CaseDescription)
	trace.add(models.StepSymbolic,
		"Keyword-based rule matching against legal case type definitions",
		describeMatchedCaseTypes(caseTypeIDs))

	// The two retrieval paths are independent; run them concurrently but
	// record them in fixed order.
	var caseTypeMatches, fulltextMatches []models.SectionMatch
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		caseTypeMatches, err = s.store.SectionsByCaseTypes(gctx, caseTypeIDs)
		return err
	})
	g.Go(func() error {
		var err error
		fulltextMatches, err = s.store.SectionsByFulltext(gctx, req.CaseDescription)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	trace.add(models.StepGraphTraversal,
		"Graph traversal: CaseType <- MAPS_TO_CASE_TYPE <- LegalSection",
		fmt.Sprintf("Found %d sections via symbolic path", len(caseTypeMatches)))
	trace.add(models.StepNeural,
		"Fulltext index search on section titles and explanations",
		fmt.Sprintf("Found %d sections via neural/semantic path", len(fulltextMatches)))

	sections := mergeSections(caseTypeMatches, fulltextMatches)
	trace.add(models.StepSymbolic,
		"Deduplication + symbolic filters (state, category)",
		fmt.Sprintf("%d unique sections after merge", len(sections)))

	sectionIDs := make([]string, 0, len(sections))
	for _, m := range sections {
		sectionIDs = append(sectionIDs, m.SectionID)
	}

	actions, err := s.store.ActionsForSections(ctx, sectionIDs)
	if err != nil {
		return nil, err
	}
	trace.add(models.StepGraphTraversal,
		"Graph traversal: LegalSection -> HAS_ACTION -> LegalAction (ordered by sequence)",
		fmt.Sprintf("Generated %d-step action plan", len(actions)))

	evidence, err := s.store.EvidenceForSections(ctx, sectionIDs)
	if err != nil {
		return nil, err
	}
	mustHave := 0
	for _, e := range evidence {
		if e.NecessityLevel == models.NecessityMustHave {
			mustHave++
		}
	}
	trace.add(models.StepGraphTraversal,
		"Graph traversal: LegalSection -> REQUIRES_EVIDENCE -> Evidence (ordered by necessity)",
		fmt.Sprintf("Found %d evidence items (%d must-have)", len(evidence), mustHave))

	actionIDs := make([]string, 0, len(actions))
	for _, a := range actions {
		actionIDs = append(actionIDs, a.ActionID)
	}
	outcomes, err := s.store.OutcomesForActions(ctx, actionIDs)
	if err != nil {
		return nil, err
	}
	trace.add(models.StepGraphTraversal,
		"Graph traversal: LegalAction -> LEADS_TO_OUTCOME -> Outcome (with probability scores)",
		fmt.Sprintf("Computed %d probable outcomes", len(outcomes)))

	// Metadata resolution records no trace step: only case types that
	// actually contributed sections are surfaced.
	caseTypes, err := s.store.CaseTypesByID(ctx, contributingCaseTypeIDs(caseTypeMatches))
	if err != nil {
		return nil, err
	}

	// Confidence uses the raw per-path counts, not the merged count, so
	// overlap between the paths reinforces the score.
	confidence := s.scoring.Score(len(caseTypeMatches), len(fulltextMatches))
	trace.add(models.StepSymbolic,
		"Confidence scoring: weighted average of symbolic and neural hit rates",
		fmt.Sprintf("Overall confidence: %.0f%%", confidence*100))

	return &models.AnalysisResult{
		CaseDescription:      req.CaseDescription,
		MatchedSections:      sections,
		CaseTypes:            nonNil(caseTypes),
		ActionPlan:           nonNil(actions),
		EvidenceChecklist:    nonNil(evidence),
		OutcomeProbabilities: nonNil(outcomes),
		ReasoningTrace:       trace.steps,
		ConfidenceScore:      confidence,
	}, nil
}

// traceBuilder numbers reasoning steps as they are appended.
type traceBuilder struct {
	steps []models.ReasoningStep
}

func newTraceBuilder() *traceBuilder {
	return &traceBuilder{steps: make([]models.ReasoningStep, 0, 8)}
}

func (t *traceBuilder) add(kind models.StepType, description, result string) {
	t.steps = append(t.steps, models.ReasoningStep{
		Step:        len(t.steps) + 1,
		Type:        kind,
		Description: description,
		Result:      result,
	})
}

func describeMatchedCaseTypes(ids []string) string {
	if len(ids) == 0 {
		return "Matched case types: none (relying on fulltext search)"
	}
	return "Matched case types: " + strings.Join(ids, ", ")
}

// contributingCaseTypeIDs collects the case type ids attached to the
// case-type-driven matches, deduplicated in first-seen order. Fulltext
// matches carry no case type and so never contribute metadata.
func contributingCaseTypeIDs(matches []models.SectionMatch) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, m := range matches {
		if m.CaseTypeID == "" || seen[m.CaseTypeID] {
			continue
		}
		seen[m.CaseTypeID] = true
		ids = append(ids, m.CaseTypeID)
	}
	return ids
}

// nonNil normalizes a nil slice to an empty one so response fields serialize
// as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return make([]T, 0)
	}
	return s
}
