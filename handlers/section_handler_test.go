package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lawgraph-backend/internalerr"
	"lawgraph-backend/models"
	"lawgraph-backend/repository"
)

func TestGetSectionEndpoint(t *testing.T) {
	r := newTestRouter(t, newHandlerStore())

	req := httptest.NewRequest(http.MethodGet, "/api/section/SEC_420", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var env struct {
		Success bool           `json:"success"`
		Data    models.Section `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Equal(t, "SEC_420", env.Data.SectionID)
	assert.Equal(t, "420", env.Data.SectionNumber)
	assert.Equal(t, "High", env.Data.SeverityLevel)
}

func TestGetSectionEndpoint_UnknownID(t *testing.T) {
	r := newTestRouter(t, newHandlerStore())

	req := httptest.NewRequest(http.MethodGet, "/api/section/SEC_999", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusNotFound, rr.Code)

	var env errorEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	assert.False(t, env.Success)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
	assert.Contains(t, env.Error.Message, "SEC_999")
}

func TestGetSectionGraphEndpoint(t *testing.T) {
	r := newTestRouter(t, newHandlerStore())

	req := httptest.NewRequest(http.MethodGet, "/api/graph/section/SEC_420", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var env struct {
		Success bool             `json:"success"`
		Data    models.GraphView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Equal(t, "SEC_420", env.Data.Root)

	ids := make(map[string]bool, len(env.Data.Nodes))
	for _, n := range env.Data.Nodes {
		ids[n.ID] = true
	}
	assert.True(t, ids["SEC_420"])
	assert.True(t, ids["ACT_FIR"])
	assert.True(t, ids["EV_DOCS"])
	assert.True(t, ids["CHEATING_01"])
	assert.NotEmpty(t, env.Data.Edges)
}

func TestGetSectionGraphEndpoint_UnknownID(t *testing.T) {
	r := newTestRouter(t, newHandlerStore())

	req := httptest.NewRequest(http.MethodGet, "/api/graph/section/SEC_999", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusNotFound, rr.Code)

	var env errorEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestSearchEndpoint(t *testing.T) {
	r := newTestRouter(t, newHandlerStore())

	req := httptest.NewRequest(http.MethodGet, "/api/search?q=stolen+property", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var env struct {
		Success bool `json:"success"`
		Data    struct {
			Results []models.SearchResult `json:"results"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	assert.True(t, env.Success)
	require.NotEmpty(t, env.Data.Results)
	assert.Equal(t, "SEC_378", env.Data.Results[0].SectionID)
}

func TestSearchEndpoint_ShortQuery(t *testing.T) {
	r := newTestRouter(t, newHandlerStore())

	req := httptest.NewRequest(http.MethodGet, "/api/search?q=ab", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	var env errorEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	assert.Equal(t, "INVALID_QUERY", env.Error.Code)
}

func TestSearchEndpoint_NoHits(t *testing.T) {
	r := newTestRouter(t, newHandlerStore())

	req := httptest.NewRequest(http.MethodGet, "/api/search?q=zeppelin", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var env struct {
		Data struct {
			Results []models.SearchResult `json:"results"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	assert.NotNil(t, env.Data.Results)
	assert.Empty(t, env.Data.Results)
}

func TestHealthEndpoint(t *testing.T) {
	r := newTestRouter(t, newHandlerStore())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "connected", body["database"])
}

// deadStore reports the backing database as unreachable.
type deadStore struct {
	repository.GraphStore
}

func (s *deadStore) Ping(ctx context.Context) error {
	return fmt.Errorf("%w: connection refused", internalerr.ErrStoreUnavailable)
}

func TestHealthEndpoint_DatabaseDown(t *testing.T) {
	r := newTestRouter(t, &deadStore{GraphStore: newHandlerStore()})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, "unreachable", body["database"])
	assert.Contains(t, body["error"], "connection refused")
}
