package repository

import (
	"context"
	"fmt"

	"advocase-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DocumentRepository handles database operations for documents
type DocumentRepository struct {
	db *pgxpool.Pool
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{db: db}
}

const documentColumns = `id, case_id, title, category, mime_type, size, storage_path,
		upload_status, ocr_status, extracted_text,
		classification_confidence, classification_metadata, error_message,
		created_at, updated_at`

func scanDocument(row interface{ Scan(...interface{}) error }) (*models.Document, error) {
	doc := &models.Document{}
	err := row.Scan(
		&doc.ID,
		&doc.CaseID,
		&doc.Title,
		&doc.Category,
		&doc.MimeType,
		&doc.Size,
		&doc.StoragePath,
		&doc.UploadStatus,
		&doc.OCRStatus,
		&doc.ExtractedText,
		&doc.ClassificationConfidence,
		&doc.ClassificationMetadata,
		&doc.ErrorMessage,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Create creates a new document row
func (r *DocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	if err := models.ValidateStatusPair(doc.UploadStatus, doc.OCRStatus); err != nil {
		return err
	}

	query := `
		INSERT INTO documents (
			case_id, title, category, mime_type, size, storage_path,
			upload_status, ocr_status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(
		ctx, query,
		doc.CaseID,
		doc.Title,
		doc.Category,
		doc.MimeType,
		doc.Size,
		doc.StoragePath,
		doc.UploadStatus,
		doc.OCRStatus,
	).Scan(&doc.ID, &doc.CreatedAt, &doc.UpdatedAt)

	return err
}

// GetByID retrieves a document by ID
func (r *DocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	return scanDocument(r.db.QueryRow(ctx, query, id))
}

// ListCompletedByCase retrieves all fully uploaded documents for a case,
// ordered by upload time ascending
func (r *DocumentRepository) ListCompletedByCase(ctx context.Context, caseID uuid.UUID) ([]*models.Document, error) {
	query := `SELECT ` + documentColumns + `
		FROM documents
		WHERE case_id = $1 AND upload_status = $2
		ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, query, caseID, models.UploadCompleted)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	return docs, rows.Err()
}

// ListUnprocessed retrieves up to limit documents whose raw bytes are stored
// but whose text was never extracted, oldest first
func (r *DocumentRepository) ListUnprocessed(ctx context.Context, limit int) ([]*models.Document, error) {
	query := `SELECT ` + documentColumns + `
		FROM documents
		WHERE upload_status = $1 AND ocr_status = $2 AND extracted_text IS NULL
		ORDER BY created_at ASC
		LIMIT $3`

	rows, err := r.db.Query(ctx, query, models.UploadCompleted, models.OCRPending, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	return docs, rows.Err()
}

// UpdateUploadStatus moves the upload axis, recording error text on failure
func (r *DocumentRepository) UpdateUploadStatus(ctx context.Context, id uuid.UUID, status models.UploadStatus, errorMessage *string) error {
	query := `
		UPDATE documents SET
			upload_status = $2,
			error_message = $3,
			updated_at = NOW()
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id, status, errorMessage)
	return err
}

// CompleteUpload marks the raw bytes as stored and records where they live
func (r *DocumentRepository) CompleteUpload(ctx context.Context, id uuid.UUID, storagePath string) error {
	query := `
		UPDATE documents SET
			upload_status = $2,
			storage_path = $3,
			error_message = NULL,
			updated_at = NOW()
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id, models.UploadCompleted, storagePath)
	return err
}

// UpdateOCRStatus moves the OCR axis, recording error text on failure
func (r *DocumentRepository) UpdateOCRStatus(ctx context.Context, id uuid.UUID, status models.OCRStatus, errorMessage *string) error {
	query := `
		UPDATE documents SET
			ocr_status = $2,
			error_message = $3,
			updated_at = NOW()
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id, status, errorMessage)
	return err
}

// CompleteOCR persists extraction and classification output together. Text and
// classification fields are populated in one statement so a document never
// carries classification metadata without extracted text.
func (r *DocumentRepository) CompleteOCR(ctx context.Context, id uuid.UUID, text string, confidence float64, metadata models.ClassificationMetadata) error {
	query := `
		UPDATE documents SET
			ocr_status = $2,
			extracted_text = $3,
			classification_confidence = $4,
			classification_metadata = $5,
			error_message = NULL,
			updated_at = NOW()
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, models.OCRCompleted, text, confidence, metadata)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("document %s not found", id)
	}
	return nil
}

// UpdateClassification replaces classification output on an already extracted document
func (r *DocumentRepository) UpdateClassification(ctx context.Context, id uuid.UUID, confidence float64, metadata models.ClassificationMetadata) error {
	query := `
		UPDATE documents SET
			classification_confidence = $2,
			classification_metadata = $3,
			updated_at = NOW()
		WHERE id = $1 AND extracted_text IS NOT NULL`

	tag, err := r.db.Exec(ctx, query, id, confidence, metadata)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("document %s has no extracted text to classify", id)
	}
	return nil
}
