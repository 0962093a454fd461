package service

import (
	"context"

	"advocase-backend/models"
	"advocase-backend/repository"

	"github.com/google/uuid"
)

// CaseService handles case listing and retrieval for the HTTP surface
type CaseService struct {
	caseRepo CaseStore
	docRepo  DocumentStore
}

// NewCaseService creates a new case service
func NewCaseService(caseRepo CaseStore, docRepo DocumentStore) *CaseService {
	return &CaseService{caseRepo: caseRepo, docRepo: docRepo}
}

// Pagination describes one page of a list response
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// List returns one page of the advocate's visible cases
func (s *CaseService) List(ctx context.Context, advocateID uuid.UUID, filter repository.CaseFilter, page, limit int) ([]*models.Case, *Pagination, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	cases, total, err := s.caseRepo.List(ctx, advocateID, filter, limit, (page-1)*limit)
	if err != nil {
		return nil, nil, err
	}
	if cases == nil {
		cases = []*models.Case{}
	}

	totalPages := (total + limit - 1) / limit
	return cases, &Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}

// Get returns one owned case with its completed documents
func (s *CaseService) Get(ctx context.Context, caseID, advocateID uuid.UUID) (*models.Case, []*models.Document, error) {
	kase, err := s.caseRepo.GetForAdvocate(ctx, caseID, advocateID)
	if err != nil {
		return nil, nil, ErrCaseNotFound
	}

	docs, err := s.docRepo.ListCompletedByCase(ctx, caseID)
	if err != nil {
		return nil, nil, err
	}
	if docs == nil {
		docs = []*models.Document{}
	}

	return kase, docs, nil
}
