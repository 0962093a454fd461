package handlers

import (
	"net/http"

	"advocase-backend/middleware"
	"advocase-backend/models"
	"advocase-backend/pkg/logger"
	"advocase-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AIHandler handles the insight, batch and suggestion routes
type AIHandler struct {
	insights *service.InsightService
	batch    *service.BatchService
	suggest  *service.SuggestService
	logger   *logger.Logger
}

// NewAIHandler creates a new AI handler
func NewAIHandler(insights *service.InsightService, batch *service.BatchService, suggest *service.SuggestService, log *logger.Logger) *AIHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &AIHandler{insights: insights, batch: batch, suggest: suggest, logger: log}
}

func caseIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("caseId"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_CASE_ID", "Invalid case ID format")
		return uuid.Nil, false
	}
	return id, true
}

// insight serves one cache-aware insight route. GET serves from cache when
// fresh; POST carries an optional forceRefresh flag that busts the cache
// first.
func (h *AIHandler) insight(c *gin.Context, insightType models.InsightType) {
	caseID, ok := caseIDParam(c)
	if !ok {
		return
	}

	forceRefresh := false
	if c.Request.Method == http.MethodPost {
		var body struct {
			ForceRefresh bool `json:"forceRefresh"`
		}
		// Body is optional on the mutating variant
		if err := c.ShouldBindJSON(&body); err == nil {
			forceRefresh = body.ForceRefresh
		}
	}

	answer, err := h.insights.GetInsight(c.Request.Context(), caseID, middleware.AdvocateID(c), insightType, forceRefresh)
	if err != nil {
		h.logger.Error("insight request failed", "case_id", caseID, "insight_type", insightType, "error", err)
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cached":     answer.Cached,
		"data":       answer.Data,
		"analyzedAt": answer.AnalyzedAt,
		"tokensUsed": answer.TokensUsed,
	})
}

// BundleAnalysis handles GET/POST /api/cases/:caseId/bundle-analysis
func (h *AIHandler) BundleAnalysis(c *gin.Context) {
	caseID, ok := caseIDParam(c)
	if !ok {
		return
	}

	// POST is the force-refresh variant
	forceRefresh := c.Request.Method == http.MethodPost

	answer, err := h.insights.GetInsight(c.Request.Context(), caseID, middleware.AdvocateID(c), models.InsightBundleAnalysis, forceRefresh)
	if err != nil {
		h.logger.Error("bundle analysis failed", "case_id", caseID, "error", err)
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cached":     answer.Cached,
		"data":       answer.Data,
		"analyzedAt": answer.AnalyzedAt,
	})
}

// RiskAssessment handles GET/POST /api/ai/:caseId/risk-assessment
func (h *AIHandler) RiskAssessment(c *gin.Context) {
	h.insight(c, models.InsightRiskAssessment)
}

// ReliefEvaluation handles GET/POST /api/ai/:caseId/relief-evaluation
func (h *AIHandler) ReliefEvaluation(c *gin.Context) {
	h.insight(c, models.InsightReliefEvaluation)
}

// Precedents handles GET/POST /api/ai/:caseId/precedents
func (h *AIHandler) Precedents(c *gin.Context) {
	h.insight(c, models.InsightPrecedents)
}

// RightsMapping handles GET/POST /api/ai/:caseId/rights-mapping
func (h *AIHandler) RightsMapping(c *gin.Context) {
	h.insight(c, models.InsightRightsMapping)
}

// Batch handles POST /api/cases/:caseId/ai-insights/batch
func (h *AIHandler) Batch(c *gin.Context) {
	caseID, ok := caseIDParam(c)
	if !ok {
		return
	}

	result, err := h.batch.Run(c.Request.Context(), caseID, middleware.AdvocateID(c))
	if err != nil {
		h.logger.Error("batch analysis failed", "case_id", caseID, "error", err)
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"phase1": gin.H{
			"risk":   result.Risk,
			"relief": result.Relief,
		},
		"phase2": gin.H{
			"precedents": result.Precedents,
			"rights":     result.Rights,
		},
		"metadata": gin.H{
			"totalTime":  result.TotalTime.Milliseconds(),
			"analyzedAt": result.AnalyzedAt,
			"caseType":   result.CaseType,
			"tokensUsed": result.TokensUsed,
		},
	})
}

// ContextualRequest is the body for contextual suggestions
type ContextualRequest struct {
	Section string `json:"section" binding:"required"`
	Text    string `json:"text"`
}

// Contextual handles POST /api/cases/:caseId/ai-insights/contextual
func (h *AIHandler) Contextual(c *gin.Context) {
	caseID, ok := caseIDParam(c)
	if !ok {
		return
	}

	var req ContextualRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	suggestions, err := h.suggest.Suggest(c.Request.Context(), caseID, middleware.AdvocateID(c), req.Section, req.Text)
	if err != nil {
		h.logger.Error("contextual suggestions failed", "case_id", caseID, "error", err)
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}
