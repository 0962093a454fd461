package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"advocase-backend/llm"
	"advocase-backend/models"
	"advocase-backend/repository"

	"github.com/google/uuid"
)

type fakeCaseStore struct {
	cases map[uuid.UUID]*models.Case
}

func newFakeCaseStore(cases ...*models.Case) *fakeCaseStore {
	s := &fakeCaseStore{cases: make(map[uuid.UUID]*models.Case)}
	for _, kase := range cases {
		s.cases[kase.ID] = kase
	}
	return s
}

func (s *fakeCaseStore) GetByID(_ context.Context, id uuid.UUID) (*models.Case, error) {
	kase, ok := s.cases[id]
	if !ok {
		return nil, errors.New("no rows")
	}
	return kase, nil
}

func (s *fakeCaseStore) GetForAdvocate(_ context.Context, id, advocateID uuid.UUID) (*models.Case, error) {
	kase, ok := s.cases[id]
	if !ok || kase.AdvocateID != advocateID {
		return nil, errors.New("no rows")
	}
	return kase, nil
}

func (s *fakeCaseStore) List(_ context.Context, advocateID uuid.UUID, _ repository.CaseFilter, limit, offset int) ([]*models.Case, int, error) {
	var owned []*models.Case
	for _, kase := range s.cases {
		if kase.AdvocateID == advocateID {
			owned = append(owned, kase)
		}
	}
	sort.Slice(owned, func(i, j int) bool { return owned[i].CaseNumber < owned[j].CaseNumber })

	total := len(owned)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return owned[offset:end], total, nil
}

type fakeDocumentStore struct {
	mu        sync.Mutex
	docs      map[uuid.UUID]*models.Document
	createErr error
}

func newFakeDocumentStore(docs ...*models.Document) *fakeDocumentStore {
	s := &fakeDocumentStore{docs: make(map[uuid.UUID]*models.Document)}
	for _, doc := range docs {
		s.docs[doc.ID] = doc
	}
	return s
}

func (s *fakeDocumentStore) Create(_ context.Context, doc *models.Document) error {
	if s.createErr != nil {
		return s.createErr
	}
	if err := models.ValidateStatusPair(doc.UploadStatus, doc.OCRStatus); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	doc.ID = uuid.New()
	doc.CreatedAt = time.Now()
	s.docs[doc.ID] = doc
	return nil
}

func (s *fakeDocumentStore) GetByID(_ context.Context, id uuid.UUID) (*models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, errors.New("no rows")
	}
	return doc, nil
}

func (s *fakeDocumentStore) ListCompletedByCase(_ context.Context, caseID uuid.UUID) ([]*models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Document
	for _, doc := range s.docs {
		if doc.CaseID == caseID && doc.UploadStatus == models.UploadCompleted {
			out = append(out, doc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *fakeDocumentStore) ListUnprocessed(_ context.Context, limit int) ([]*models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Document
	for _, doc := range s.docs {
		if doc.UploadStatus == models.UploadCompleted && doc.OCRStatus == models.OCRPending && doc.ExtractedText == nil {
			out = append(out, doc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *fakeDocumentStore) UpdateUploadStatus(_ context.Context, id uuid.UUID, status models.UploadStatus, errorMessage *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return errors.New("no rows")
	}
	doc.UploadStatus = status
	doc.ErrorMessage = errorMessage
	return nil
}

func (s *fakeDocumentStore) CompleteUpload(_ context.Context, id uuid.UUID, storagePath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return errors.New("no rows")
	}
	doc.UploadStatus = models.UploadCompleted
	doc.StoragePath = storagePath
	return nil
}

func (s *fakeDocumentStore) UpdateOCRStatus(_ context.Context, id uuid.UUID, status models.OCRStatus, errorMessage *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return errors.New("no rows")
	}
	doc.OCRStatus = status
	doc.ErrorMessage = errorMessage
	return nil
}

func (s *fakeDocumentStore) CompleteOCR(_ context.Context, id uuid.UUID, text string, confidence float64, metadata models.ClassificationMetadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return errors.New("no rows")
	}
	doc.OCRStatus = models.OCRCompleted
	doc.ExtractedText = &text
	doc.ClassificationConfidence = &confidence
	doc.ClassificationMetadata = metadata
	return nil
}

func (s *fakeDocumentStore) UpdateClassification(_ context.Context, id uuid.UUID, confidence float64, metadata models.ClassificationMetadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return errors.New("no rows")
	}
	if doc.ExtractedText == nil {
		return errors.New("no extracted text")
	}
	doc.ClassificationConfidence = &confidence
	doc.ClassificationMetadata = metadata
	return nil
}

type fakeInsightStore struct {
	mu             sync.Mutex
	rows           []*models.Insight
	createErr      error
	batchErr       error
	invalidateAlls int
}

func (s *fakeInsightStore) Latest(_ context.Context, caseID uuid.UUID, insightType models.InsightType) (*models.Insight, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	var latest *models.Insight
	for _, row := range s.rows {
		if row.CaseID != caseID || row.InsightType != insightType || !row.Valid(now) {
			continue
		}
		if latest == nil || row.CreatedAt.After(latest.CreatedAt) {
			latest = row
		}
	}
	if latest == nil {
		return nil, repository.ErrNoValidInsight
	}
	return latest, nil
}

func (s *fakeInsightStore) Create(_ context.Context, insight *models.Insight) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	insight.ID = uuid.New()
	if insight.CreatedAt.IsZero() {
		insight.CreatedAt = time.Now()
	}
	s.rows = append(s.rows, insight)
	return nil
}

func (s *fakeInsightStore) CreateBatch(_ context.Context, insights []*models.Insight) error {
	if s.batchErr != nil {
		return s.batchErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, insight := range insights {
		insight.ID = uuid.New()
		if insight.CreatedAt.IsZero() {
			insight.CreatedAt = time.Now()
		}
		s.rows = append(s.rows, insight)
	}
	return nil
}

func (s *fakeInsightStore) Invalidate(_ context.Context, caseID uuid.UUID, insightType models.InsightType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for _, row := range s.rows {
		if row.CaseID == caseID && row.InsightType == insightType {
			expired := now
			row.ExpiresAt = &expired
		}
	}
	return nil
}

func (s *fakeInsightStore) InvalidateAll(_ context.Context, caseID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidateAlls++
	now := time.Now()
	for _, row := range s.rows {
		if row.CaseID == caseID {
			expired := now
			row.ExpiresAt = &expired
		}
	}
	return nil
}

func (s *fakeInsightStore) completed() []*models.Insight {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Insight
	for _, row := range s.rows {
		if row.Status == models.InsightCompleted {
			out = append(out, row)
		}
	}
	return out
}

// fakeGenerator returns a fixed JSON payload and counts invocations
type fakeGenerator struct {
	mu       sync.Mutex
	response string
	tokens   int
	err      error
	calls    int
}

func (g *fakeGenerator) ModelName() string { return "test-model" }

func (g *fakeGenerator) Generate(ctx context.Context, prompt string, temperature float32) (*llm.Result, error) {
	return g.GenerateJSON(ctx, prompt, temperature)
}

func (g *fakeGenerator) GenerateJSON(_ context.Context, _ string, _ float32) (*llm.Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return &llm.Result{Text: g.response, TokensUsed: g.tokens}, nil
}

func (g *fakeGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

// fakeStorage keeps uploaded bytes in memory keyed by storage path
type fakeStorage struct {
	mu        sync.Mutex
	objects   map[string][]byte
	uploadErr error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (s *fakeStorage) Upload(_ context.Context, caseID, documentID uuid.UUID, filename string, data io.Reader) (string, error) {
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	path := "cases/" + caseID.String() + "/" + documentID.String() + "_" + filename
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[path] = raw
	return path, nil
}

func (s *fakeStorage) Download(_ context.Context, storagePath string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.objects[storagePath]
	if !ok {
		return nil, errors.New("object not found")
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

func (s *fakeStorage) Delete(_ context.Context, storagePath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, storagePath)
	return nil
}

// fakeExtractor maps mime types to canned text or errors
type fakeExtractor struct {
	text    string
	err     error
	byMime  map[string]string
	errMime map[string]error
}

func (e *fakeExtractor) Extract(_ context.Context, r io.Reader, mimeType string) (string, error) {
	io.Copy(io.Discard, r)
	if err, ok := e.errMime[mimeType]; ok {
		return "", err
	}
	if e.err != nil {
		return "", e.err
	}
	if text, ok := e.byMime[mimeType]; ok {
		return text, nil
	}
	return e.text, nil
}

func strPtr(s string) *string { return &s }
