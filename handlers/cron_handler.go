package handlers

import (
	"net/http"
	"time"

	"advocase-backend/pkg/logger"
	"advocase-backend/service"

	"github.com/gin-gonic/gin"
)

// CronHandler handles the scheduled document-processing route
type CronHandler struct {
	sweep  *service.SweepService
	logger *logger.Logger
}

// NewCronHandler creates a new cron handler
func NewCronHandler(sweep *service.SweepService, log *logger.Logger) *CronHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &CronHandler{sweep: sweep, logger: log}
}

// ProcessDocuments handles GET/POST /api/cron/process-documents
func (h *CronHandler) ProcessDocuments(c *gin.Context) {
	report, err := h.sweep.ProcessUnprocessedDocuments(c.Request.Context())
	if err != nil {
		h.logger.Error("document sweep failed", "error", err)
		respondError(c, http.StatusInternalServerError, "SWEEP_FAILED", "Document processing sweep failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Document processing completed",
		"report":    report,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
