package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"advocase-backend/models"

	"github.com/google/uuid"
)

func testCase(advocateID uuid.UUID) *models.Case {
	court := "Bombay High Court"
	return &models.Case{
		ID:             uuid.New(),
		AdvocateID:     advocateID,
		CaseNumber:     "WP/4521/2025",
		CaseType:       models.CaseTypeWritPetition,
		CaseYear:       2025,
		PetitionerName: "Ramesh Kumar",
		RespondentName: "State of Maharashtra",
		CourtName:      &court,
		IsVisible:      true,
	}
}

func completedDoc(caseID uuid.UUID, title string, category models.DocumentCategory, createdAt time.Time) *models.Document {
	text := "Extracted text for " + title
	return &models.Document{
		ID:            uuid.New(),
		CaseID:        caseID,
		Title:         title,
		Category:      category,
		MimeType:      "application/pdf",
		UploadStatus:  models.UploadCompleted,
		OCRStatus:     models.OCRCompleted,
		ExtractedText: &text,
		CreatedAt:     createdAt,
	}
}

func TestClassifyByTitle(t *testing.T) {
	tests := []struct {
		title    string
		category models.DocumentCategory
		want     models.DocumentType
	}{
		{"Writ Petition under Article 226", models.CategoryCaseFile, models.DocTypePetition},
		{"Counter Affidavit of Respondent.pdf", models.CategoryCaseFile, models.DocTypeCounterAffidavit},
		{"Affidavit in Support", models.CategoryCaseFile, models.DocTypeCounterAffidavit},
		{"Rejoinder to Counter", models.CategoryCaseFile, models.DocTypeCounterAffidavit},
		{"Rejoinder of Petitioner", models.CategoryCaseFile, models.DocTypeRejoinder},
		{"Anything at all", models.CategoryAnnexure, models.DocTypeAnnexure},
		{"Anything at all", models.CategoryOrder, models.DocTypeInterimOrder},
		{"Anything at all", models.CategoryJudgment, models.DocTypeOther},
		{"Anything at all", models.CategoryMisc, models.DocTypeOther},
	}

	for _, tt := range tests {
		doc := &models.Document{Title: tt.title, Category: tt.category}
		if got := ClassifyByTitle(doc); got != tt.want {
			t.Errorf("ClassifyByTitle(%q, %s) = %s, want %s", tt.title, tt.category, got, tt.want)
		}
	}
}

func TestBundleBuildSlots(t *testing.T) {
	advocateID := uuid.New()
	kase := testCase(advocateID)
	base := time.Now().Add(-time.Hour)

	docs := []*models.Document{
		completedDoc(kase.ID, "Writ Petition", models.CategoryCaseFile, base),
		completedDoc(kase.ID, "Amended Petition", models.CategoryCaseFile, base.Add(time.Minute)),
		completedDoc(kase.ID, "Counter Affidavit of State", models.CategoryCaseFile, base.Add(2*time.Minute)),
		completedDoc(kase.ID, "Annexure P-1", models.CategoryAnnexure, base.Add(3*time.Minute)),
		completedDoc(kase.ID, "Annexure P-2", models.CategoryAnnexure, base.Add(4*time.Minute)),
		completedDoc(kase.ID, "Order dated 12.08.2025", models.CategoryOrder, base.Add(5*time.Minute)),
	}

	svc := NewBundleService(newFakeCaseStore(kase), newFakeDocumentStore(docs...))

	bundle, err := svc.Build(context.Background(), kase.ID)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if len(bundle.Documents) != 6 {
		t.Fatalf("got %d documents, want 6", len(bundle.Documents))
	}
	if bundle.Petition == nil || bundle.Petition.Document.Title != "Writ Petition" {
		t.Errorf("petition slot should hold the earliest petition, got %+v", bundle.Petition)
	}
	if bundle.Counter == nil || bundle.Counter.Document.Title != "Counter Affidavit of State" {
		t.Errorf("counter slot not filled, got %+v", bundle.Counter)
	}
	if bundle.Rejoinder != nil {
		t.Errorf("rejoinder slot should be empty, got %+v", bundle.Rejoinder)
	}
	if len(bundle.Annexures) != 2 {
		t.Errorf("got %d annexures, want 2", len(bundle.Annexures))
	}
	if len(bundle.Orders) != 1 {
		t.Errorf("got %d orders, want 1", len(bundle.Orders))
	}
}

func TestBundleBuildUnknownCase(t *testing.T) {
	svc := NewBundleService(newFakeCaseStore(), newFakeDocumentStore())
	if _, err := svc.Build(context.Background(), uuid.New()); err != ErrCaseNotFound {
		t.Errorf("got %v, want ErrCaseNotFound", err)
	}
}

func TestSerializeBundleTruncatesLongText(t *testing.T) {
	advocateID := uuid.New()
	kase := testCase(advocateID)

	doc := completedDoc(kase.ID, "Writ Petition", models.CategoryCaseFile, time.Now())
	long := strings.Repeat("a", maxExcerptLen+500)
	doc.ExtractedText = &long

	svc := NewBundleService(newFakeCaseStore(kase), newFakeDocumentStore(doc))
	bundle, err := svc.Build(context.Background(), kase.ID)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	serialized := serializeBundle(bundle)
	if !strings.Contains(serialized, "[truncated]") {
		t.Error("long document text should be truncated in prompt context")
	}
	if !strings.Contains(serialized, "WP/4521/2025") {
		t.Error("case number missing from prompt context")
	}
}
