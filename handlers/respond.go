package handlers

import (
	"errors"
	"net/http"

	"advocase-backend/service"

	"github.com/gin-gonic/gin"
)

// respondError writes the standard error body
func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// respondServiceError maps service sentinels to HTTP statuses. Detailed error
// text stays server-side; clients get a generic message per error class.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCaseNotFound):
		respondError(c, http.StatusNotFound, "CASE_NOT_FOUND", "Case not found")
	case errors.Is(err, service.ErrDocumentNotFound):
		respondError(c, http.StatusNotFound, "DOCUMENT_NOT_FOUND", "Document not found")
	case errors.Is(err, service.ErrInsufficientText):
		respondError(c, http.StatusBadRequest, "INSUFFICIENT_TEXT", "Document text is too short to analyze")
	case errors.Is(err, service.ErrAnalysisFailed):
		respondError(c, http.StatusInternalServerError, "ANALYSIS_FAILED", "AI analysis failed")
	case errors.Is(err, service.ErrUploadFailed):
		respondError(c, http.StatusInternalServerError, "UPLOAD_FAILED", "Failed to store document")
	default:
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}
