package handlers

import (
	"net/http"
	"strconv"

	"advocase-backend/middleware"
	"advocase-backend/models"
	"advocase-backend/pkg/logger"
	"advocase-backend/repository"
	"advocase-backend/service"

	"github.com/gin-gonic/gin"
)

// CaseHandler handles case listing and detail routes
type CaseHandler struct {
	cases  *service.CaseService
	logger *logger.Logger
}

// NewCaseHandler creates a new case handler
func NewCaseHandler(cases *service.CaseService, log *logger.Logger) *CaseHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &CaseHandler{cases: cases, logger: log}
}

// List handles GET /api/cases
func (h *CaseHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	filter := repository.CaseFilter{Search: c.Query("search")}
	if raw := c.Query("caseType"); raw != "" {
		caseType := models.CaseType(raw)
		filter.CaseType = &caseType
	}
	if raw := c.Query("caseYear"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "INVALID_YEAR", "caseYear must be a number")
			return
		}
		filter.CaseYear = &year
	}

	cases, pagination, err := h.cases.List(c.Request.Context(), middleware.AdvocateID(c), filter, page, limit)
	if err != nil {
		h.logger.Error("case list failed", "error", err)
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cases":      cases,
		"pagination": pagination,
	})
}

// Get handles GET /api/cases/:caseId
func (h *CaseHandler) Get(c *gin.Context) {
	caseID, ok := caseIDParam(c)
	if !ok {
		return
	}

	kase, docs, err := h.cases.Get(c.Request.Context(), caseID, middleware.AdvocateID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"case":      kase,
		"documents": docs,
	})
}
