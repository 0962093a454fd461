package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrUnsupportedType is returned for MIME types no extractor handles
var ErrUnsupportedType = errors.New("unsupported document type for text extraction")

// Extractor pulls plain text out of raw document bytes
type Extractor interface {
	Extract(ctx context.Context, data io.Reader, mimeType string) (string, error)
}

// TextExtractor handles PDF and plain-text documents
type TextExtractor struct{}

// NewTextExtractor creates a new text extractor
func NewTextExtractor() *TextExtractor {
	return &TextExtractor{}
}

// Extract reads all input and dispatches on MIME type
func (e *TextExtractor) Extract(ctx context.Context, data io.Reader, mimeType string) (string, error) {
	raw, err := io.ReadAll(data)
	if err != nil {
		return "", fmt.Errorf("failed to read document bytes: %w", err)
	}

	switch {
	case mimeType == "application/pdf":
		return extractPDF(raw)
	case strings.HasPrefix(mimeType, "text/"):
		return string(raw), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, mimeType)
	}
}

func extractPDF(raw []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", fmt.Errorf("failed to parse PDF: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract PDF text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("failed to read PDF text: %w", err)
	}

	return buf.String(), nil
}
