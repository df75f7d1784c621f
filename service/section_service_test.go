package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lawgraph-backend/internalerr"
	"lawgraph-backend/models"
)

func TestGetSection_ReturnsFullNode(t *testing.T) {
	svc := NewSectionService(SectionWithGraphStore(newTestStore()))

	result, err := svc.GetSection(context.Background(), GetSectionRequest{SectionID: "SEC_420"})
	require.NoError(t, err)
	assert.Equal(t, "420", result.Section.SectionNumber)
	assert.Equal(t, "High", result.Section.SeverityLevel)
}

func TestGetSection_NotFound(t *testing.T) {
	svc := NewSectionService(SectionWithGraphStore(newTestStore()))

	_, err := svc.GetSection(context.Background(), GetSectionRequest{SectionID: "SEC_999"})
	assert.ErrorIs(t, err, internalerr.ErrNotFound)
}

func TestGetGraph_FlattensNeighborhood(t *testing.T) {
	svc := NewSectionService(SectionWithGraphStore(newTestStore()))

	result, err := svc.GetGraph(context.Background(), GetGraphRequest{SectionID: "SEC_420"})
	require.NoError(t, err)

	graph := result.Graph
	assert.Equal(t, "SEC_420", graph.Root)

	byID := make(map[string]models.GraphNode)
	for _, node := range graph.Nodes {
		byID[node.ID] = node
	}
	assert.Contains(t, byID, "SEC_420")
	assert.Contains(t, byID, "ACT_FIR")
	assert.Contains(t, byID, "EV_DOCS")
	assert.Contains(t, byID, "CHEATING_01")
	assert.Equal(t, "420", byID["SEC_420"].Label)

	var leadsTo int
	for _, e := range graph.Edges {
		if e.Label == models.EdgeLeadsTo {
			leadsTo++
			assert.NotEmpty(t, e.From)
		}
	}
	assert.Equal(t, 3, leadsTo)
}

func TestGetGraph_NotFound(t *testing.T) {
	svc := NewSectionService(SectionWithGraphStore(newTestStore()))

	_, err := svc.GetGraph(context.Background(), GetGraphRequest{SectionID: "SEC_999"})
	assert.ErrorIs(t, err, internalerr.ErrNotFound)
}

func TestSearchSections_ReturnsRankedResults(t *testing.T) {
	svc := NewSectionService(SectionWithGraphStore(newTestStore()))

	result, err := svc.SearchSections(context.Background(), SearchSectionsRequest{Query: "stolen property"})
	require.NoError(t, err)
	require.NotEmpty(t, result.Results)
	assert.Equal(t, "SEC_378", result.Results[0].SectionID)
}

func TestSearchSections_RejectsShortQuery(t *testing.T) {
	svc := NewSectionService(SectionWithGraphStore(newTestStore()))

	_, err := svc.SearchSections(context.Background(), SearchSectionsRequest{Query: "ab"})
	assert.ErrorIs(t, err, internalerr.ErrInvalidInput)
}

func TestSearchSections_NoHitsIsEmptyNotNil(t *testing.T) {
	svc := NewSectionService(SectionWithGraphStore(newTestStore()))

	result, err := svc.SearchSections(context.Background(), SearchSectionsRequest{Query: "zeppelin"})
	require.NoError(t, err)
	assert.NotNil(t, result.Results)
	assert.Empty(t, result.Results)
}

func TestSectionService_Ping(t *testing.T) {
	svc := NewSectionService(SectionWithGraphStore(newTestStore()))
	assert.NoError(t, svc.Ping(context.Background()))
}

func TestSectionService_NoStoreConfigured(t *testing.T) {
	svc := NewSectionService()

	_, err := svc.GetSection(context.Background(), GetSectionRequest{SectionID: "SEC_420"})
	assert.EqualError(t, err, "graph store not set")
	assert.EqualError(t, svc.Ping(context.Background()), "graph store not set")
}
