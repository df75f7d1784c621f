package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lawgraph-backend/models"
)

func TestBuildGraphView_RootAndLabels(t *testing.T) {
	longName := "Approach the jurisdictional police station and file a first information report"
	n := &models.SectionNeighborhood{
		Root: map[string]any{"section_id": "SEC_420", "section_number": "420"},
		Related: []models.Neighbor{
			{
				Node: map[string]any{"section_id": "SEC_406", "section_number": "406"},
				Rel:  map[string]any{"relationship_type": "OFTEN_CHARGED_TOGETHER"},
			},
		},
		Actions: []models.Neighbor{
			{
				Node: map[string]any{"action_id": "ACT_FIR", "action_name": longName},
				Rel:  map[string]any{"action_sequence": "Primary"},
			},
		},
		Evidence: []models.Neighbor{
			{
				Node: map[string]any{"evidence_id": "EV_DOCS", "evidence_name": "Transaction documents"},
				Rel:  map[string]any{"necessity_level": "Must-have"},
			},
		},
		CaseTypes: []models.Neighbor{
			{
				Node: map[string]any{"case_type_id": "CHEATING_01"},
				Rel:  map[string]any{"relevance_score": 0.95},
			},
		},
	}

	view := buildGraphView("SEC_420", n)
	assert.Equal(t, "SEC_420", view.Root)
	require.Len(t, view.Nodes, 5)
	require.Len(t, view.Edges, 4)

	byID := make(map[string]models.GraphNode)
	for _, node := range view.Nodes {
		byID[node.ID] = node
	}

	// Section labels are section numbers, untruncated.
	assert.Equal(t, "420", byID["SEC_420"].Label)
	assert.Equal(t, models.NodeLegalSection, byID["SEC_420"].Type)
	assert.Equal(t, "406", byID["SEC_406"].Label)

	// Action labels truncate to 30 runes; the full name stays in Data.
	assert.Equal(t, longName[:30], byID["ACT_FIR"].Label)
	assert.Equal(t, longName, byID["ACT_FIR"].Data["action_name"])

	// Case type nodes are labeled by id.
	assert.Equal(t, "CHEATING_01", byID["CHEATING_01"].Label)

	labels := make([]string, 0, len(view.Edges))
	for _, e := range view.Edges {
		labels = append(labels, e.Label)
	}
	assert.ElementsMatch(t, []string{
		models.EdgeRelatedTo, models.EdgeHasAction,
		models.EdgeRequires, models.EdgeMapsTo,
	}, labels)
}

func TestBuildGraphView_OutcomeEdgesStartAtTheirAction(t *testing.T) {
	n := &models.SectionNeighborhood{
		Root: map[string]any{"section_id": "SEC_420", "section_number": "420"},
		Actions: []models.Neighbor{
			{Node: map[string]any{"action_id": "ACT_FIR", "action_name": "File an FIR"}},
			{Node: map[string]any{"action_id": "ACT_NOTICE", "action_name": "Send a legal notice"}},
		},
		Outcomes: []models.OutcomeNeighbor{
			{
				Neighbor: models.Neighbor{Node: map[string]any{"outcome_id": "OUT_SETTLEMENT", "outcome_description": "Settlement"}},
				ActionID: "ACT_FIR",
			},
			{
				// Same outcome reached through a second action: the node
				// dedupes, the edge is still emitted.
				Neighbor: models.Neighbor{Node: map[string]any{"outcome_id": "OUT_SETTLEMENT", "outcome_description": "Settlement"}},
				ActionID: "ACT_NOTICE",
			},
		},
	}

	view := buildGraphView("SEC_420", n)

	nodeIDs := make([]string, 0, len(view.Nodes))
	for _, node := range view.Nodes {
		nodeIDs = append(nodeIDs, node.ID)
	}
	assert.ElementsMatch(t, []string{"SEC_420", "ACT_FIR", "ACT_NOTICE", "OUT_SETTLEMENT"}, nodeIDs)

	var leadsTo []models.GraphEdge
	for _, e := range view.Edges {
		if e.Label == models.EdgeLeadsTo {
			leadsTo = append(leadsTo, e)
		}
	}
	require.Len(t, leadsTo, 2)
	assert.Equal(t, "ACT_FIR", leadsTo[0].From)
	assert.Equal(t, "OUT_SETTLEMENT", leadsTo[0].To)
	assert.Equal(t, "ACT_NOTICE", leadsTo[1].From)
}

func TestBuildGraphView_OmitsOutcomeEdgeWithoutAction(t *testing.T) {
	n := &models.SectionNeighborhood{
		Root: map[string]any{"section_id": "SEC_420", "section_number": "420"},
		Outcomes: []models.OutcomeNeighbor{
			{
				Neighbor: models.Neighbor{Node: map[string]any{"outcome_id": "OUT_ORPHAN", "outcome_description": "Orphan"}},
				ActionID: "",
			},
		},
	}

	view := buildGraphView("SEC_420", n)

	// The node is kept for completeness; no edge can be attributed.
	require.Len(t, view.Nodes, 2)
	assert.Empty(t, view.Edges)
}

func TestTruncateLabel_CountsRunes(t *testing.T) {
	assert.Equal(t, "short", truncateLabel("short"))

	long := strings.Repeat("x", 31)
	assert.Equal(t, strings.Repeat("x", 30), truncateLabel(long))

	// Multi-byte runes count as one; truncation never splits a rune.
	wide := strings.Repeat("в", 40)
	assert.Equal(t, strings.Repeat("в", 30), truncateLabel(wide))
}
