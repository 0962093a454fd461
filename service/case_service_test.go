package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"advocase-backend/models"
	"advocase-backend/repository"

	"github.com/google/uuid"
)

func TestCaseListPagination(t *testing.T) {
	advocateID := uuid.New()
	var cases []*models.Case
	for i := 0; i < 45; i++ {
		kase := testCase(advocateID)
		kase.CaseNumber = fmt.Sprintf("WP/%04d/2025", i)
		cases = append(cases, kase)
	}
	svc := NewCaseService(newFakeCaseStore(cases...), newFakeDocumentStore())

	got, pagination, err := svc.List(context.Background(), advocateID, repository.CaseFilter{}, 2, 20)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 20 {
		t.Errorf("page size %d, want 20", len(got))
	}
	if pagination.Total != 45 || pagination.TotalPages != 3 || pagination.Page != 2 {
		t.Errorf("pagination %+v, want total=45 pages=3 page=2", pagination)
	}
}

func TestCaseListClampsInputs(t *testing.T) {
	advocateID := uuid.New()
	svc := NewCaseService(newFakeCaseStore(testCase(advocateID)), newFakeDocumentStore())

	_, pagination, err := svc.List(context.Background(), advocateID, repository.CaseFilter{}, -3, 5000)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if pagination.Page != 1 || pagination.Limit != 20 {
		t.Errorf("pagination %+v, want page=1 limit=20", pagination)
	}
}

func TestCaseListEmptyNeverNil(t *testing.T) {
	svc := NewCaseService(newFakeCaseStore(), newFakeDocumentStore())

	cases, _, err := svc.List(context.Background(), uuid.New(), repository.CaseFilter{}, 1, 20)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if cases == nil {
		t.Error("empty list must serialize as [], not null")
	}
}

func TestCaseGetWithDocuments(t *testing.T) {
	advocateID := uuid.New()
	kase := testCase(advocateID)
	doc := completedDoc(kase.ID, "Writ Petition", models.CategoryCaseFile, time.Now())
	svc := NewCaseService(newFakeCaseStore(kase), newFakeDocumentStore(doc))

	got, docs, err := svc.Get(context.Background(), kase.ID, advocateID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != kase.ID {
		t.Errorf("got case %s, want %s", got.ID, kase.ID)
	}
	if len(docs) != 1 {
		t.Errorf("got %d documents, want 1", len(docs))
	}
}

func TestCaseGetUnowned(t *testing.T) {
	kase := testCase(uuid.New())
	svc := NewCaseService(newFakeCaseStore(kase), newFakeDocumentStore())

	if _, _, err := svc.Get(context.Background(), kase.ID, uuid.New()); !errors.Is(err, ErrCaseNotFound) {
		t.Errorf("got %v, want ErrCaseNotFound", err)
	}
}
