package service

import (
	"context"
	"errors"
	"fmt"

	"advocase-backend/extract"
	"advocase-backend/models"
	"advocase-backend/pkg/logger"
	"advocase-backend/storage"
)

// SweepService retries extraction + classification for documents whose upload
// completed but whose text was never processed. Invoked on an external
// schedule via the cron route; idempotent because completed documents are
// never re-selected.
type SweepService struct {
	docRepo       DocumentStore
	insightRepo   InsightStore
	store         storage.Storage
	extractor     extract.Extractor
	classifier    *DocumentClassifier
	batchSize     int
	minTextLength int
	logger        *logger.Logger
}

// NewSweepService creates a new sweep service
func NewSweepService(
	docRepo DocumentStore,
	insightRepo InsightStore,
	store storage.Storage,
	extractor extract.Extractor,
	classifier *DocumentClassifier,
	batchSize, minTextLength int,
	log *logger.Logger,
) *SweepService {
	if log == nil {
		log = logger.NewNop()
	}
	return &SweepService{
		docRepo:       docRepo,
		insightRepo:   insightRepo,
		store:         store,
		extractor:     extractor,
		classifier:    classifier,
		batchSize:     batchSize,
		minTextLength: minTextLength,
		logger:        log,
	}
}

// SweepReport aggregates one sweep invocation
type SweepReport struct {
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}

// ProcessUnprocessedDocuments selects up to the batch size of unprocessed
// documents, oldest first, and runs extraction + classification for each.
// One document's failure never aborts the sweep.
func (s *SweepService) ProcessUnprocessedDocuments(ctx context.Context) (*SweepReport, error) {
	docs, err := s.docRepo.ListUnprocessed(ctx, s.batchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list unprocessed documents: %w", err)
	}

	report := &SweepReport{}
	for _, doc := range docs {
		if err := s.processOne(ctx, doc); err != nil {
			msg := err.Error()
			if updErr := s.docRepo.UpdateOCRStatus(ctx, doc.ID, models.OCRFailed, &msg); updErr != nil {
				s.logger.Error("failed to mark OCR failed", "document_id", doc.ID, "error", updErr)
			}
			if errors.Is(err, extract.ErrUnsupportedType) {
				report.Skipped++
			} else {
				s.logger.Warn("sweep failed for document", "document_id", doc.ID, "error", err)
				report.Failed++
			}
			continue
		}
		report.Processed++
	}

	s.logger.Info("document sweep complete",
		"processed", report.Processed, "failed", report.Failed, "skipped", report.Skipped)
	return report, nil
}

func (s *SweepService) processOne(ctx context.Context, doc *models.Document) error {
	if err := s.docRepo.UpdateOCRStatus(ctx, doc.ID, models.OCRProcessing, nil); err != nil {
		return fmt.Errorf("failed to mark processing: %w", err)
	}

	reader, err := s.store.Download(ctx, doc.StoragePath)
	if err != nil {
		return fmt.Errorf("failed to fetch raw bytes: %w", err)
	}
	defer reader.Close()

	text, err := s.extractor.Extract(ctx, reader, doc.MimeType)
	if err != nil {
		return err
	}
	if len(text) < s.minTextLength {
		return fmt.Errorf("%w: %d chars", ErrInsufficientText, len(text))
	}

	classification, err := s.classifier.Classify(ctx, doc.Title, doc.Category, text)
	if err != nil {
		return err
	}

	if err := s.docRepo.CompleteOCR(ctx, doc.ID, text, classification.Confidence, classification.Metadata()); err != nil {
		return fmt.Errorf("failed to persist extraction: %w", err)
	}

	// Newly usable text changes the bundle, so cached insights are stale
	if err := s.insightRepo.InvalidateAll(ctx, doc.CaseID); err != nil {
		s.logger.Warn("failed to invalidate insight cache", "case_id", doc.CaseID, "error", err)
	}

	return nil
}
