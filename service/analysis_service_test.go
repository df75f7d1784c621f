package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lawgraph-backend/dataset"
	"lawgraph-backend/internalerr"
	"lawgraph-backend/models"
	"lawgraph-backend/repository"
	"lawgraph-backend/rules"
)

func floatPtr(f float64) *float64 { return &f }

func intPtr(n int) *int { return &n }

// newTestStore seeds a cheating section and a theft section with the
// surrounding actions, evidence, outcomes and case type mappings.
func newTestStore() *repository.MemoryStore {
	s := repository.NewMemoryStore()

	s.AddSection(models.Section{
		SectionID:         "SEC_420",
		SectionNumber:     "420",
		SectionTitle:      "Cheating and dishonestly inducing delivery of property",
		LaymanExplanation: "Punishes cheating that makes the victim hand over property",
		SeverityLevel:     "High",
		EmbeddingText:     "cheating fraud deception property",
	})
	s.AddSection(models.Section{
		SectionID:         "SEC_378",
		SectionNumber:     "378",
		SectionTitle:      "Theft",
		LaymanExplanation: "Taking movable property without consent",
		SeverityLevel:     "Medium",
		EmbeddingText:     "theft stolen property movable",
	})

	s.AddCaseType(dataset.CaseTypeRow{
		CaseTypeID:            "CHEATING_01",
		ScenarioDescription:   "Deceived into parting with money or property",
		TypicalDurationMonths: intPtr(18),
		CommonMistakes:        "Delaying the complaint",
	})
	s.AddCaseType(dataset.CaseTypeRow{
		CaseTypeID:          "THEFT_01",
		ScenarioDescription: "Property taken without consent",
	})

	s.LinkCaseType(dataset.SectionCaseTypeRow{SectionID: "SEC_420", CaseTypeID: "CHEATING_01", RelevanceScore: floatPtr(0.95)})
	s.LinkCaseType(dataset.SectionCaseTypeRow{SectionID: "SEC_378", CaseTypeID: "THEFT_01", RelevanceScore: floatPtr(0.9)})

	s.AddAction(dataset.ActionRow{ActionID: "ACT_FIR", ActionName: "File an FIR"})
	s.AddAction(dataset.ActionRow{ActionID: "ACT_NOTICE", ActionName: "Send a legal notice"})
	s.LinkAction(dataset.SectionActionRow{SectionID: "SEC_420", ActionID: "ACT_FIR", ActionSequence: "Primary"})
	s.LinkAction(dataset.SectionActionRow{SectionID: "SEC_378", ActionID: "ACT_FIR", ActionSequence: "Primary"})
	s.LinkAction(dataset.SectionActionRow{SectionID: "SEC_420", ActionID: "ACT_NOTICE", ActionSequence: "Alternative"})

	s.AddEvidence(dataset.EvidenceRow{EvidenceID: "EV_DOCS", EvidenceName: "Transaction documents"})
	s.AddEvidence(dataset.EvidenceRow{EvidenceID: "EV_WITNESS", EvidenceName: "Witness statements"})
	s.LinkEvidence(dataset.SectionEvidenceRow{SectionID: "SEC_420", EvidenceID: "EV_DOCS", NecessityLevel: "Must-have"})
	s.LinkEvidence(dataset.SectionEvidenceRow{SectionID: "SEC_420", EvidenceID: "EV_WITNESS", NecessityLevel: "Good-to-have"})

	s.AddOutcome(dataset.OutcomeRow{OutcomeID: "OUT_CONVICTION", OutcomeDescription: "Conviction of the accused"})
	s.AddOutcome(dataset.OutcomeRow{OutcomeID: "OUT_SETTLEMENT", OutcomeDescription: "Out-of-court settlement"})
	s.LinkOutcome(dataset.ActionOutcomeRow{ActionID: "ACT_FIR", OutcomeID: "OUT_CONVICTION", ProbabilityPercentage: intPtr(45)})
	s.LinkOutcome(dataset.ActionOutcomeRow{ActionID: "ACT_FIR", OutcomeID: "OUT_SETTLEMENT", ProbabilityPercentage: intPtr(30)})
	s.LinkOutcome(dataset.ActionOutcomeRow{ActionID: "ACT_NOTICE", OutcomeID: "OUT_SETTLEMENT", ProbabilityPercentage: intPtr(60)})

	return s
}

func testRuleTable() rules.Table {
	return rules.NewTable([]rules.Rule{
		{Keyword: "cheat", CaseTypeIDs: []string{"CHEATING_01"}},
		{Keyword: "stolen", CaseTypeIDs: []string{"THEFT_01"}},
	})
}

func TestAnalyzeCase_FullPipeline(t *testing.T) {
	svc := NewAnalysisService(
		WithGraphStore(newTestStore()),
		WithRuleTable(testRuleTable()),
	)

	// "cheated" fires the cheat rule; "stole" does not fire the stolen rule
	// but reaches SEC_378 through the fulltext path.
	result, err := svc.AnalyzeCase(context.Background(), AnalyzeCaseRequest{
		CaseDescription: "I was cheated, he stole my property",
	})
	require.NoError(t, err)

	assert.Equal(t, "I was cheated, he stole my property", result.CaseDescription)

	// Case-type-driven match first, fulltext-only match after it.
	require.Len(t, result.MatchedSections, 2)
	assert.Equal(t, "SEC_420", result.MatchedSections[0].SectionID)
	assert.Equal(t, "CHEATING_01", result.MatchedSections[0].CaseTypeID)
	assert.Equal(t, 0.95, result.MatchedSections[0].RelevanceScore)
	assert.Equal(t, "SEC_378", result.MatchedSections[1].SectionID)
	assert.Empty(t, result.MatchedSections[1].CaseTypeID)

	// Only the case type that contributed sections is surfaced.
	require.Len(t, result.CaseTypes, 1)
	assert.Equal(t, "CHEATING_01", result.CaseTypes[0].ID)
	assert.Equal(t, 18, *result.CaseTypes[0].Duration)

	require.Len(t, result.ActionPlan, 2)
	assert.Equal(t, "ACT_FIR", result.ActionPlan[0].ActionID)
	assert.Equal(t, "ACT_NOTICE", result.ActionPlan[1].ActionID)

	require.Len(t, result.EvidenceChecklist, 2)
	assert.Equal(t, "Must-have", result.EvidenceChecklist[0].NecessityLevel)

	require.Len(t, result.OutcomeProbabilities, 3)
	assert.Equal(t, 60, result.OutcomeProbabilities[0].Probability)

	// symbolic count 1, neural count 2: (1*0.7 + 2*0.3) / 10 = 0.13
	assert.Equal(t, 0.13, result.ConfidenceScore)
}

func TestAnalyzeCase_TraceShape(t *testing.T) {
	svc := NewAnalysisService(
		WithGraphStore(newTestStore()),
		WithRuleTable(testRuleTable()),
	)

	result, err := svc.AnalyzeCase(context.Background(), AnalyzeCaseRequest{
		CaseDescription: "I was cheated, he stole my property",
	})
	require.NoError(t, err)

	trace := result.ReasoningTrace
	require.Len(t, trace, 8)

	for i, step := range trace {
		assert.Equal(t, i+1, step.Step)
	}

	wantTypes := []models.StepType{
		models.StepSymbolic,       // keyword rules
		models.StepGraphTraversal, // case type path
		models.StepNeural,         // fulltext path
		models.StepSymbolic,       // merge
		models.StepGraphTraversal, // actions
		models.StepGraphTraversal, // evidence
		models.StepGraphTraversal, // outcomes
		models.StepSymbolic,       // confidence
	}
	for i, want := range wantTypes {
		assert.Equal(t, want, trace[i].Type, "step %d", i+1)
	}

	assert.Equal(t, "Matched case types: CHEATING_01", trace[0].Result)
	assert.Equal(t, "Found 1 sections via symbolic path", trace[1].Result)
	assert.Equal(t, "Found 2 sections via neural/semantic path", trace[2].Result)
	assert.Equal(t, "2 unique sections after merge", trace[3].Result)
	assert.Equal(t, "Generated 2-step action plan", trace[4].Result)
	assert.Equal(t, "Found 2 evidence items (1 must-have)", trace[5].Result)
	assert.Equal(t, "Computed 3 probable outcomes", trace[6].Result)
	assert.Equal(t, "Overall confidence: 13%", trace[7].Result)

	// The case type path is recorded before the fulltext path even though
	// the two queries run concurrently.
	assert.Contains(t, trace[1].Description, "MAPS_TO_CASE_TYPE")
	assert.Contains(t, trace[2].Description, "Fulltext index search")
}

func TestAnalyzeCase_EmptyDescription(t *testing.T) {
	svc := NewAnalysisService(
		WithGraphStore(newTestStore()),
		WithRuleTable(testRuleTable()),
	)

	result, err := svc.AnalyzeCase(context.Background(), AnalyzeCaseRequest{})
	require.NoError(t, err)

	require.Len(t, result.ReasoningTrace, 8)
	assert.Equal(t, "Matched case types: none (relying on fulltext search)", result.ReasoningTrace[0].Result)
	assert.Equal(t, 0.0, result.ConfidenceScore)

	// Empty but non-nil, so the response serializes [] rather than null.
	assert.NotNil(t, result.MatchedSections)
	assert.Empty(t, result.MatchedSections)
	assert.NotNil(t, result.CaseTypes)
	assert.NotNil(t, result.ActionPlan)
	assert.NotNil(t, result.EvidenceChecklist)
	assert.NotNil(t, result.OutcomeProbabilities)
}

func TestAnalyzeCase_NoStoreConfigured(t *testing.T) {
	svc := NewAnalysisService()

	_, err := svc.AnalyzeCase(context.Background(), AnalyzeCaseRequest{CaseDescription: "anything"})
	require.Error(t, err)
	assert.EqualError(t, err, "graph store not set")
}

// failingStore delegates to a seeded memory store but fails selected calls.
type failingStore struct {
	repository.GraphStore
	failFulltext bool
	failActions  bool
}

func (f *failingStore) SectionsByFulltext(ctx context.Context, text string) ([]models.SectionMatch, error) {
	if f.failFulltext {
		return nil, fmt.Errorf("%w: fulltext index offline", internalerr.ErrStoreUnavailable)
	}
	return f.GraphStore.SectionsByFulltext(ctx, text)
}

func (f *failingStore) ActionsForSections(ctx context.Context, sectionIDs []string) ([]models.Action, error) {
	if f.failActions {
		return nil, fmt.Errorf("%w: traversal failed", internalerr.ErrStoreUnavailable)
	}
	return f.GraphStore.ActionsForSections(ctx, sectionIDs)
}

func TestAnalyzeCase_RetrievalFailureAbortsEverything(t *testing.T) {
	svc := NewAnalysisService(
		WithGraphStore(&failingStore{GraphStore: newTestStore(), failFulltext: true}),
		WithRuleTable(testRuleTable()),
	)

	result, err := svc.AnalyzeCase(context.Background(), AnalyzeCaseRequest{
		CaseDescription: "I was cheated, he stole my property",
	})
	assert.ErrorIs(t, err, internalerr.ErrStoreUnavailable)
	assert.Nil(t, result)
}

func TestAnalyzeCase_MidPipelineFailureReturnsNoPartialBundle(t *testing.T) {
	svc := NewAnalysisService(
		WithGraphStore(&failingStore{GraphStore: newTestStore(), failActions: true}),
		WithRuleTable(testRuleTable()),
	)

	// Both retrieval paths succeed before the action traversal fails; the
	// trace built so far must not leak out.
	result, err := svc.AnalyzeCase(context.Background(), AnalyzeCaseRequest{
		CaseDescription: "I was cheated, he stole my property",
	})
	assert.ErrorIs(t, err, internalerr.ErrStoreUnavailable)
	assert.Nil(t, result)
}

func TestAnalyzeCase_ConfidenceUsesPreMergeCounts(t *testing.T) {
	// SEC_420 is found by both paths: one symbolic hit and two neural hits
	// merge into two sections, but confidence still sees 1 and 2.
	store := newTestStore()
	svc := NewAnalysisService(WithGraphStore(store), WithRuleTable(testRuleTable()))

	result, err := svc.AnalyzeCase(context.Background(), AnalyzeCaseRequest{
		CaseDescription: "I was cheated, he stole my property",
	})
	require.NoError(t, err)

	require.Len(t, result.MatchedSections, 2)
	assert.Equal(t, 0.13, result.ConfidenceScore)
}
