package handlers

import (
	"net/http"

	"lawgraph-backend/service"

	"github.com/gin-gonic/gin"
)

// SectionHandler handles HTTP requests for section lookup, graph
// neighborhoods and fulltext search
type SectionHandler struct {
	sectionService *service.SectionService
}

// NewSectionHandler creates a new section handler
func NewSectionHandler(sectionService *service.SectionService) *SectionHandler {
	return &SectionHandler{
		sectionService: sectionService,
	}
}

// GetSection handles GET /api/section/:id
func (h *SectionHandler) GetSection(c *gin.Context) {
	result, err := h.sectionService.GetSection(c.Request.Context(), service.GetSectionRequest{
		SectionID: c.Param("id"),
	})
	if err != nil {
		respondStoreError(c, err, "RETRIEVAL_FAILED")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result.Section,
	})
}

// GetSectionGraph handles GET /api/graph/section/:id
func (h *SectionHandler) GetSectionGraph(c *gin.Context) {
	result, err := h.sectionService.GetGraph(c.Request.Context(), service.GetGraphRequest{
		SectionID: c.Param("id"),
	})
	if err != nil {
		respondStoreError(c, err, "RETRIEVAL_FAILED")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result.Graph,
	})
}

// SearchSections handles GET /api/search
func (h *SectionHandler) SearchSections(c *gin.Context) {
	result, err := h.sectionService.SearchSections(c.Request.Context(), service.SearchSectionsRequest{
		Query: c.Query("q"),
	})
	if err != nil {
		respondStoreError(c, err, "SEARCH_FAILED")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"results": result.Results,
		},
	})
}

// Health handles GET /health
func (h *SectionHandler) Health(c *gin.Context) {
	if err := h.sectionService.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "error",
			"database": "unreachable",
			"error":    err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"database": "connected",
	})
}
