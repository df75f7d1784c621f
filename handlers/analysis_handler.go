package handlers

import (
	"errors"
	"net/http"

	"lawgraph-backend/internalerr"
	"lawgraph-backend/service"

	"github.com/gin-gonic/gin"
)

// AnalysisHandler handles HTTP requests for case analysis
type AnalysisHandler struct {
	analysisService *service.AnalysisService
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(analysisService *service.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{
		analysisService: analysisService,
	}
}

// AnalyzeCaseRequest represents the request body for case analysis. An empty
// case description is accepted and analyzed; state defaults to the national
// jurisdiction.
type AnalyzeCaseRequest struct {
	CaseDescription string `json:"case_description"`
	State           string `json:"state"`
	Category        string `json:"category"`
}

// AnalyzeCase handles POST /api/analyze
func (h *AnalysisHandler) AnalyzeCase(c *gin.Context) {
	var req AnalyzeCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	if req.State == "" {
		req.State = service.DefaultState
	}

	serviceReq := service.AnalyzeCaseRequest{
		CaseDescription: req.CaseDescription,
		State:           req.State,
		Category:        req.Category,
	}

	result, err := h.analysisService.AnalyzeCase(c.Request.Context(), serviceReq)
	if err != nil {
		respondStoreError(c, err, "ANALYSIS_FAILED")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}

// respondStoreError maps service errors onto the response envelope. Sentinel
// errors from the graph layer pick the status; anything else is a 500 with
// the endpoint's fallback code.
func respondStoreError(c *gin.Context, err error, fallbackCode string) {
	switch {
	case errors.Is(err, internalerr.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": err.Error(),
			},
		})
	case errors.Is(err, internalerr.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_QUERY",
				"message": err.Error(),
			},
		})
	case errors.Is(err, internalerr.ErrStoreUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "STORE_UNAVAILABLE",
				"message": err.Error(),
			},
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    fallbackCode,
				"message": err.Error(),
			},
		})
	}
}
