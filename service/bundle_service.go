package service

import (
	"context"
	"fmt"
	"strings"

	"advocase-backend/models"

	"github.com/google/uuid"
)

// BundleService assembles a case's completed documents into a classified
// bundle. The bundle is derived state: rebuilt on every request, never stored.
type BundleService struct {
	caseRepo CaseStore
	docRepo  DocumentStore
}

// NewBundleService creates a new bundle service
func NewBundleService(caseRepo CaseStore, docRepo DocumentStore) *BundleService {
	return &BundleService{caseRepo: caseRepo, docRepo: docRepo}
}

// Build fetches all completed documents for a case, oldest upload first, and
// classifies each into its bundle slot
func (s *BundleService) Build(ctx context.Context, caseID uuid.UUID) (*models.CaseBundle, error) {
	kase, err := s.caseRepo.GetByID(ctx, caseID)
	if err != nil {
		return nil, ErrCaseNotFound
	}

	docs, err := s.docRepo.ListCompletedByCase(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load case documents: %w", err)
	}

	bundle := &models.CaseBundle{
		Case: kase,
		// Full capacity up front: slot pointers below alias into this slice
		Documents: make([]models.BundleDocument, 0, len(docs)),
		Annexures: []models.BundleDocument{},
		Orders:    []models.BundleDocument{},
	}

	for _, doc := range docs {
		tagged := models.BundleDocument{
			Document: doc,
			Type:     ClassifyByTitle(doc),
		}
		bundle.Documents = append(bundle.Documents, tagged)

		switch tagged.Type {
		case models.DocTypePetition:
			if bundle.Petition == nil {
				bundle.Petition = &bundle.Documents[len(bundle.Documents)-1]
			}
		case models.DocTypeCounterAffidavit:
			if bundle.Counter == nil {
				bundle.Counter = &bundle.Documents[len(bundle.Documents)-1]
			}
		case models.DocTypeRejoinder:
			if bundle.Rejoinder == nil {
				bundle.Rejoinder = &bundle.Documents[len(bundle.Documents)-1]
			}
		case models.DocTypeAnnexure:
			bundle.Annexures = append(bundle.Annexures, tagged)
		case models.DocTypeInterimOrder, models.DocTypeDailyOrder:
			bundle.Orders = append(bundle.Orders, tagged)
		}
	}

	return bundle, nil
}

// ClassifyByTitle assigns a bundle slot to a document. Non-generic categories
// map directly; documents uploaded under the generic case-file bucket are
// classified by title keywords.
func ClassifyByTitle(doc *models.Document) models.DocumentType {
	switch doc.Category {
	case models.CategoryAnnexure:
		return models.DocTypeAnnexure
	case models.CategoryOrder:
		return models.DocTypeInterimOrder
	case models.CategoryJudgment, models.CategoryMisc:
		return models.DocTypeOther
	}

	title := strings.ToLower(doc.Title)
	if strings.Contains(title, "counter") || strings.Contains(title, "affidavit") {
		return models.DocTypeCounterAffidavit
	}
	if strings.Contains(title, "rejoinder") {
		return models.DocTypeRejoinder
	}
	return models.DocTypePetition
}

const maxExcerptLen = 4000

// serializeBundle renders the bundle as prompt context. Document text is
// truncated so the combined prompt stays within model context limits.
func serializeBundle(bundle *models.CaseBundle) string {
	var builder strings.Builder

	kase := bundle.Case
	builder.WriteString(fmt.Sprintf("CASE: %s (%d), type %s\n", kase.CaseNumber, kase.CaseYear, kase.CaseType))
	builder.WriteString(fmt.Sprintf("PARTIES: %s vs %s\n", kase.PetitionerName, kase.RespondentName))
	if kase.CourtName != nil {
		builder.WriteString(fmt.Sprintf("COURT: %s\n", *kase.CourtName))
	}
	builder.WriteString("\n")

	writeDoc := func(label string, bd *models.BundleDocument) {
		if bd == nil {
			return
		}
		builder.WriteString(fmt.Sprintf("--- %s: %s ---\n", label, bd.Document.Title))
		builder.WriteString(excerpt(bd.Document))
		builder.WriteString("\n\n")
	}

	writeDoc("PETITION", bundle.Petition)
	writeDoc("COUNTER AFFIDAVIT", bundle.Counter)
	writeDoc("REJOINDER", bundle.Rejoinder)
	for i := range bundle.Annexures {
		writeDoc("ANNEXURE", &bundle.Annexures[i])
	}
	for i := range bundle.Orders {
		writeDoc("ORDER", &bundle.Orders[i])
	}

	return builder.String()
}

func excerpt(doc *models.Document) string {
	if doc.ExtractedText == nil || *doc.ExtractedText == "" {
		return "[no extracted text available]"
	}
	text := *doc.ExtractedText
	if len(text) > maxExcerptLen {
		return text[:maxExcerptLen] + "\n[truncated]"
	}
	return text
}
