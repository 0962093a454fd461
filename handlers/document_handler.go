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

// allowedMimeTypes is the upload allow-list
var allowedMimeTypes = map[string]bool{
	"application/pdf":    true,
	"text/plain":         true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
}

// DocumentHandler handles document upload and classification routes
type DocumentHandler struct {
	ingest        *service.IngestService
	maxUploadSize int64
	logger        *logger.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(ingest *service.IngestService, maxUploadSize int64, log *logger.Logger) *DocumentHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &DocumentHandler{ingest: ingest, maxUploadSize: maxUploadSize, logger: log}
}

// Upload handles POST /api/cases/:caseId/documents/upload
func (h *DocumentHandler) Upload(c *gin.Context) {
	caseID, ok := caseIDParam(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "MISSING_FILE", "No file provided in 'file' field")
		return
	}

	if fileHeader.Size > h.maxUploadSize {
		respondError(c, http.StatusBadRequest, "FILE_TOO_LARGE", "File exceeds the maximum upload size")
		return
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if !allowedMimeTypes[mimeType] {
		respondError(c, http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE", "Only PDF, TXT, DOC and DOCX files are accepted")
		return
	}

	title := c.PostForm("title")
	if title == "" {
		title = fileHeader.Filename
	}

	category := models.DocumentCategory(c.DefaultPostForm("category", string(models.CategoryMisc)))
	if !category.Valid() {
		respondError(c, http.StatusBadRequest, "INVALID_CATEGORY", "Unknown document category")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_FILE", "Failed to read uploaded file")
		return
	}
	defer file.Close()

	doc, err := h.ingest.Upload(c.Request.Context(), service.UploadRequest{
		CaseID:     caseID,
		AdvocateID: middleware.AdvocateID(c),
		Title:      title,
		Category:   category,
		MimeType:   mimeType,
		Size:       fileHeader.Size,
		Data:       file,
	})
	if err != nil {
		h.logger.Error("document upload failed", "case_id", caseID, "filename", fileHeader.Filename, "error", err)
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"document": doc,
		"message":  "Document uploaded successfully",
	})
}

// ClassifyRequest is the body for the classify route
type ClassifyRequest struct {
	DocumentIDs []string `json:"documentIds" binding:"required,min=1"`
}

// Classify handles POST /api/cases/:caseId/documents/classify
func (h *DocumentHandler) Classify(c *gin.Context) {
	caseID, ok := caseIDParam(c)
	if !ok {
		return
	}

	var req ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	documentIDs := make([]uuid.UUID, 0, len(req.DocumentIDs))
	for _, raw := range req.DocumentIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "INVALID_DOCUMENT_ID", "Invalid document ID format")
			return
		}
		documentIDs = append(documentIDs, id)
	}

	classifications, err := h.ingest.Reclassify(c.Request.Context(), caseID, middleware.AdvocateID(c), documentIDs)
	if err != nil {
		h.logger.Error("document classification failed", "case_id", caseID, "error", err)
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"classifications": classifications})
}
