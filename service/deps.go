package service

import (
	"context"
	"errors"

	"advocase-backend/llm"
	"advocase-backend/models"
	"advocase-backend/repository"

	"github.com/google/uuid"
)

var (
	ErrCaseNotFound     = errors.New("case not found")
	ErrDocumentNotFound = errors.New("document not found")
	ErrAnalysisFailed   = errors.New("analysis failed")
	ErrUploadFailed     = errors.New("document upload failed")
	ErrInsufficientText = errors.New("extracted text too short to classify")
	ErrUnknownInsight   = errors.New("unknown insight type")
)

// CaseStore is the case persistence surface the services depend on
type CaseStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Case, error)
	GetForAdvocate(ctx context.Context, id, advocateID uuid.UUID) (*models.Case, error)
	List(ctx context.Context, advocateID uuid.UUID, filter repository.CaseFilter, limit, offset int) ([]*models.Case, int, error)
}

// DocumentStore is the document persistence surface the services depend on
type DocumentStore interface {
	Create(ctx context.Context, doc *models.Document) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error)
	ListCompletedByCase(ctx context.Context, caseID uuid.UUID) ([]*models.Document, error)
	ListUnprocessed(ctx context.Context, limit int) ([]*models.Document, error)
	UpdateUploadStatus(ctx context.Context, id uuid.UUID, status models.UploadStatus, errorMessage *string) error
	CompleteUpload(ctx context.Context, id uuid.UUID, storagePath string) error
	UpdateOCRStatus(ctx context.Context, id uuid.UUID, status models.OCRStatus, errorMessage *string) error
	CompleteOCR(ctx context.Context, id uuid.UUID, text string, confidence float64, metadata models.ClassificationMetadata) error
	UpdateClassification(ctx context.Context, id uuid.UUID, confidence float64, metadata models.ClassificationMetadata) error
}

// InsightStore is the insight persistence surface the services depend on
type InsightStore interface {
	Latest(ctx context.Context, caseID uuid.UUID, insightType models.InsightType) (*models.Insight, error)
	Create(ctx context.Context, insight *models.Insight) error
	CreateBatch(ctx context.Context, insights []*models.Insight) error
	Invalidate(ctx context.Context, caseID uuid.UUID, insightType models.InsightType) error
	InvalidateAll(ctx context.Context, caseID uuid.UUID) error
}

// Generator is the LLM surface analyzers call into
type Generator interface {
	ModelName() string
	Generate(ctx context.Context, prompt string, temperature float32) (*llm.Result, error)
	GenerateJSON(ctx context.Context, prompt string, temperature float32) (*llm.Result, error)
}
