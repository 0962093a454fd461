package service

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"advocase-backend/extract"
	"advocase-backend/models"
	"advocase-backend/pkg/logger"
	"advocase-backend/storage"

	"github.com/google/uuid"
)

// IngestService runs the document ingestion pipeline: store raw bytes, extract
// text, classify, and record both status axes. Extraction or classification
// failure never fails the upload.
type IngestService struct {
	caseRepo      CaseStore
	docRepo       DocumentStore
	insightRepo   InsightStore
	store         storage.Storage
	extractor     extract.Extractor
	classifier    *DocumentClassifier
	minTextLength int
	logger        *logger.Logger
}

// NewIngestService creates a new ingest service
func NewIngestService(
	caseRepo CaseStore,
	docRepo DocumentStore,
	insightRepo InsightStore,
	store storage.Storage,
	extractor extract.Extractor,
	classifier *DocumentClassifier,
	minTextLength int,
	log *logger.Logger,
) *IngestService {
	if log == nil {
		log = logger.NewNop()
	}
	return &IngestService{
		caseRepo:      caseRepo,
		docRepo:       docRepo,
		insightRepo:   insightRepo,
		store:         store,
		extractor:     extractor,
		classifier:    classifier,
		minTextLength: minTextLength,
		logger:        log,
	}
}

// UploadRequest describes one incoming document upload
type UploadRequest struct {
	CaseID     uuid.UUID
	AdvocateID uuid.UUID
	Title      string
	Category   models.DocumentCategory
	MimeType   string
	Size       int64
	Data       io.Reader
}

// Upload ingests one document. The upload axis reflects only the raw store
// operation; the OCR axis reflects extraction + classification. On successful
// storage the case's entire insight cache is invalidated, since the bundle
// composition changed.
func (s *IngestService) Upload(ctx context.Context, req UploadRequest) (*models.Document, error) {
	if _, err := s.caseRepo.GetForAdvocate(ctx, req.CaseID, req.AdvocateID); err != nil {
		return nil, ErrCaseNotFound
	}

	raw, err := io.ReadAll(req.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	doc := &models.Document{
		CaseID:       req.CaseID,
		Title:        req.Title,
		Category:     req.Category,
		MimeType:     req.MimeType,
		Size:         req.Size,
		UploadStatus: models.UploadUploading,
		OCRStatus:    models.OCRPending,
	}
	if err := s.docRepo.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to create document record: %w", err)
	}

	storagePath, err := s.store.Upload(ctx, req.CaseID, doc.ID, req.Title, bytes.NewReader(raw))
	if err != nil {
		msg := err.Error()
		if updErr := s.docRepo.UpdateUploadStatus(ctx, doc.ID, models.UploadFailed, &msg); updErr != nil {
			s.logger.Error("failed to mark upload failed", "document_id", doc.ID, "error", updErr)
		}
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	if err := s.docRepo.CompleteUpload(ctx, doc.ID, storagePath); err != nil {
		// Orphaned object: the row never learned its path
		if delErr := s.store.Delete(ctx, storagePath); delErr != nil {
			s.logger.Error("failed to clean up stored object", "storage_path", storagePath, "error", delErr)
		}
		return nil, fmt.Errorf("failed to complete upload: %w", err)
	}

	// The bundle changed: expire every cached insight for this case
	if err := s.insightRepo.InvalidateAll(ctx, req.CaseID); err != nil {
		s.logger.Warn("failed to invalidate insight cache", "case_id", req.CaseID, "error", err)
	}

	s.processText(ctx, doc.ID, req.Title, req.Category, req.MimeType, raw)

	return s.docRepo.GetByID(ctx, doc.ID)
}

// processText runs the OCR axis for freshly stored bytes. Failures land on the
// document's OCR status, never on the upload status.
func (s *IngestService) processText(ctx context.Context, docID uuid.UUID, title string, category models.DocumentCategory, mimeType string, raw []byte) {
	if err := s.docRepo.UpdateOCRStatus(ctx, docID, models.OCRProcessing, nil); err != nil {
		s.logger.Error("failed to mark OCR processing", "document_id", docID, "error", err)
		return
	}

	text, err := s.extractor.Extract(ctx, bytes.NewReader(raw), mimeType)
	if err != nil {
		s.failOCR(ctx, docID, err)
		return
	}
	if len(text) < s.minTextLength {
		s.failOCR(ctx, docID, fmt.Errorf("%w: %d chars", ErrInsufficientText, len(text)))
		return
	}

	classification, err := s.classifier.Classify(ctx, title, category, text)
	if err != nil {
		s.failOCR(ctx, docID, err)
		return
	}

	if err := s.docRepo.CompleteOCR(ctx, docID, text, classification.Confidence, classification.Metadata()); err != nil {
		s.failOCR(ctx, docID, err)
		return
	}
}

func (s *IngestService) failOCR(ctx context.Context, docID uuid.UUID, cause error) {
	s.logger.Warn("document OCR failed", "document_id", docID, "error", cause)
	msg := cause.Error()
	if err := s.docRepo.UpdateOCRStatus(ctx, docID, models.OCRFailed, &msg); err != nil {
		s.logger.Error("failed to mark OCR failed", "document_id", docID, "error", err)
	}
}

// Reclassify reruns classification for specific documents that already have
// extracted text. Backs the documents/classify route.
func (s *IngestService) Reclassify(ctx context.Context, caseID, advocateID uuid.UUID, documentIDs []uuid.UUID) (map[uuid.UUID]*Classification, error) {
	if _, err := s.caseRepo.GetForAdvocate(ctx, caseID, advocateID); err != nil {
		return nil, ErrCaseNotFound
	}

	classifications := make(map[uuid.UUID]*Classification, len(documentIDs))
	for _, id := range documentIDs {
		doc, err := s.docRepo.GetByID(ctx, id)
		if err != nil || doc.CaseID != caseID {
			return nil, ErrDocumentNotFound
		}
		if doc.ExtractedText == nil {
			return nil, fmt.Errorf("%w: document %s has no extracted text", ErrInsufficientText, id)
		}

		classification, err := s.classifier.Classify(ctx, doc.Title, doc.Category, *doc.ExtractedText)
		if err != nil {
			return nil, err
		}
		if err := s.docRepo.UpdateClassification(ctx, id, classification.Confidence, classification.Metadata()); err != nil {
			return nil, fmt.Errorf("failed to store classification: %w", err)
		}
		classifications[id] = classification
	}

	return classifications, nil
}
