package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DocumentCategory is the advocate-supplied bucket a document was uploaded under
type DocumentCategory string

const (
	CategoryCaseFile DocumentCategory = "case_file"
	CategoryAnnexure DocumentCategory = "annexure"
	CategoryOrder    DocumentCategory = "order"
	CategoryJudgment DocumentCategory = "judgment"
	CategoryMisc     DocumentCategory = "misc"
)

// Valid reports whether c is a known category
func (c DocumentCategory) Valid() bool {
	switch c {
	case CategoryCaseFile, CategoryAnnexure, CategoryOrder, CategoryJudgment, CategoryMisc:
		return true
	}
	return false
}

// UploadStatus tracks the raw-file storage axis of a document
type UploadStatus string

const (
	UploadPending   UploadStatus = "pending"
	UploadUploading UploadStatus = "uploading"
	UploadCompleted UploadStatus = "completed"
	UploadFailed    UploadStatus = "failed"
)

// OCRStatus tracks the text-extraction axis of a document
type OCRStatus string

const (
	OCRPending    OCRStatus = "pending"
	OCRProcessing OCRStatus = "processing"
	OCRCompleted  OCRStatus = "completed"
	OCRFailed     OCRStatus = "failed"
)

// ClassificationMetadata is free-form key/value data produced by the classifier
type ClassificationMetadata map[string]interface{}

// Value implements driver.Valuer for JSONB
func (m ClassificationMetadata) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner for JSONB
func (m *ClassificationMetadata) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		*m = make(ClassificationMetadata)
		return nil
	}

	if len(bytes) == 0 {
		*m = make(ClassificationMetadata)
		return nil
	}

	return json.Unmarshal(bytes, m)
}

// Document represents an uploaded case document
type Document struct {
	ID                       uuid.UUID              `json:"id"`
	CaseID                   uuid.UUID              `json:"case_id"`
	Title                    string                 `json:"title"`
	Category                 DocumentCategory       `json:"category"`
	MimeType                 string                 `json:"mime_type"`
	Size                     int64                  `json:"size"`
	StoragePath              string                 `json:"-"`
	UploadStatus             UploadStatus           `json:"upload_status"`
	OCRStatus                OCRStatus              `json:"ocr_status"`
	ExtractedText            *string                `json:"-"`
	ClassificationConfidence *float64               `json:"classification_confidence,omitempty"`
	ClassificationMetadata   ClassificationMetadata `json:"classification_metadata,omitempty"`
	ErrorMessage             *string                `json:"error_message,omitempty"`
	CreatedAt                time.Time              `json:"created_at"`
	UpdatedAt                time.Time              `json:"updated_at"`
}

var uploadTransitions = map[UploadStatus][]UploadStatus{
	UploadPending:   {UploadUploading, UploadFailed},
	UploadUploading: {UploadCompleted, UploadFailed},
}

var ocrTransitions = map[OCRStatus][]OCRStatus{
	OCRPending:    {OCRProcessing, OCRFailed},
	OCRProcessing: {OCRCompleted, OCRFailed},
	// A failed extraction may be retried by the sweep
	OCRFailed: {OCRProcessing},
}

// CanTransitionUpload reports whether the upload axis may move to next
func (d *Document) CanTransitionUpload(next UploadStatus) bool {
	for _, s := range uploadTransitions[d.UploadStatus] {
		if s == next {
			return true
		}
	}
	return false
}

// CanTransitionOCR reports whether the OCR axis may move to next
func (d *Document) CanTransitionOCR(next OCRStatus) bool {
	for _, s := range ocrTransitions[d.OCRStatus] {
		if s == next {
			return true
		}
	}
	return false
}

// ValidateStatusPair rejects combinations the two state machines can never
// legally reach together. OCR only starts after the raw bytes exist, so a
// failed upload can never carry completed extraction.
func ValidateStatusPair(upload UploadStatus, ocr OCRStatus) error {
	if upload == UploadFailed && (ocr == OCRCompleted || ocr == OCRProcessing) {
		return fmt.Errorf("illegal status pair: upload=%s ocr=%s", upload, ocr)
	}
	if (upload == UploadPending || upload == UploadUploading) && ocr != OCRPending {
		return fmt.Errorf("illegal status pair: upload=%s ocr=%s", upload, ocr)
	}
	return nil
}
