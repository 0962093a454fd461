package service

import (
	"context"
	"encoding/json"
	"fmt"

	"advocase-backend/models"
)

// Classification is the structured output of one document classification
type Classification struct {
	DocumentType string   `json:"document_type"`
	Confidence   float64  `json:"confidence"`
	Summary      string   `json:"summary"`
	KeyParties   []string `json:"key_parties"`
	KeyDates     []string `json:"key_dates"`
}

// Metadata converts the classification into the free-form metadata stored on
// the document row
func (c *Classification) Metadata() models.ClassificationMetadata {
	return models.ClassificationMetadata{
		"document_type": c.DocumentType,
		"summary":       c.Summary,
		"key_parties":   c.KeyParties,
		"key_dates":     c.KeyDates,
	}
}

// DocumentClassifier assigns a semantic type, confidence and metadata to one
// extracted document. Used synchronously by the ingestion pipeline and the
// sweep; stateless aside from the shared LLM client.
type DocumentClassifier struct {
	llm Generator
}

// NewDocumentClassifier creates a new document classifier
func NewDocumentClassifier(llm Generator) *DocumentClassifier {
	return &DocumentClassifier{llm: llm}
}

const classifierExcerptLen = 6000

// Classify runs one classification call over the document's extracted text
func (c *DocumentClassifier) Classify(ctx context.Context, title string, category models.DocumentCategory, text string) (*Classification, error) {
	if len(text) > classifierExcerptLen {
		text = text[:classifierExcerptLen]
	}

	prompt := fmt.Sprintf(`You are a court clerk classifying a legal document uploaded under the "%s" category.

DOCUMENT TITLE: %s

DOCUMENT TEXT:
%s

TASK:
Classify the document and extract its key metadata.

Respond with a single JSON object, no other text:
{
  "document_type": "PETITION" | "COUNTER_AFFIDAVIT" | "REJOINDER" | "ANNEXURE" | "INTERIM_ORDER" | "DAILY_ORDER" | "OTHER",
  "confidence": <number 0-1>,
  "summary": <string, 1-2 sentences>,
  "key_parties": [<party names appearing in the document>],
  "key_dates": [<dates appearing in the document, ISO format where possible>]
}

REQUIREMENTS:
- Use only names and dates that appear in the text
- Lower the confidence when the text is fragmentary or ambiguous`, category, title, text)

	res, err := c.llm.GenerateJSON(ctx, prompt, analyzerTemperature)
	if err != nil {
		return nil, fmt.Errorf("%w (classification): %v", ErrAnalysisFailed, err)
	}

	var classification Classification
	if err := json.Unmarshal([]byte(res.Text), &classification); err != nil {
		return nil, fmt.Errorf("%w (classification): malformed model response: %v", ErrAnalysisFailed, err)
	}

	return &classification, nil
}
