package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"advocase-backend/models"

	"github.com/google/uuid"
)

func newInsightFixture(t *testing.T, gen *fakeGenerator) (*InsightService, *models.Case, uuid.UUID, *fakeInsightStore) {
	t.Helper()

	advocateID := uuid.New()
	kase := testCase(advocateID)
	doc := completedDoc(kase.ID, "Writ Petition", models.CategoryCaseFile, time.Now().Add(-time.Hour))

	insightStore := &fakeInsightStore{}
	bundles := NewBundleService(newFakeCaseStore(kase), newFakeDocumentStore(doc))

	svc := NewInsightService(
		InsightWithCaseStore(newFakeCaseStore(kase)),
		InsightWithInsightStore(insightStore),
		InsightWithBundleService(bundles),
		InsightWithAnalyzers(
			NewRiskAssessor(gen),
			NewReliefEvaluator(gen),
			NewPrecedentValidator(gen),
			NewRightsMapper(gen),
			NewBundleAnalyzer(gen),
		),
	)
	return svc, kase, advocateID, insightStore
}

func TestGetInsightCachesSecondCall(t *testing.T) {
	gen := &fakeGenerator{response: `{"overall_risk":"low","risk_score":20}`, tokens: 120}
	svc, kase, advocateID, _ := newInsightFixture(t, gen)

	first, err := svc.GetInsight(context.Background(), kase.ID, advocateID, models.InsightRiskAssessment, false)
	if err != nil {
		t.Fatalf("first GetInsight: %v", err)
	}
	if first.Cached {
		t.Error("first call should be a cache miss")
	}
	if first.TokensUsed != 120 {
		t.Errorf("got tokensUsed %d, want 120", first.TokensUsed)
	}

	second, err := svc.GetInsight(context.Background(), kase.ID, advocateID, models.InsightRiskAssessment, false)
	if err != nil {
		t.Fatalf("second GetInsight: %v", err)
	}
	if !second.Cached {
		t.Error("second call should serve from cache")
	}
	if got := gen.callCount(); got != 1 {
		t.Errorf("model invoked %d times, want 1", got)
	}
	if second.Data["overall_risk"] != "low" {
		t.Errorf("cached data mismatch: %v", second.Data)
	}
}

func TestGetInsightForceRefreshRecomputes(t *testing.T) {
	gen := &fakeGenerator{response: `{"overall_risk":"medium"}`, tokens: 50}
	svc, kase, advocateID, store := newInsightFixture(t, gen)

	if _, err := svc.GetInsight(context.Background(), kase.ID, advocateID, models.InsightRiskAssessment, false); err != nil {
		t.Fatalf("seed call: %v", err)
	}

	answer, err := svc.GetInsight(context.Background(), kase.ID, advocateID, models.InsightRiskAssessment, true)
	if err != nil {
		t.Fatalf("forceRefresh call: %v", err)
	}
	if answer.Cached {
		t.Error("forceRefresh must not serve from cache")
	}
	if got := gen.callCount(); got != 2 {
		t.Errorf("model invoked %d times, want 2", got)
	}

	// The superseded row stays in the table, expired
	if got := len(store.completed()); got != 2 {
		t.Errorf("got %d completed rows, want 2 (append-only)", got)
	}
}

func TestGetInsightExpiredRowNotServed(t *testing.T) {
	gen := &fakeGenerator{response: `{"overall_risk":"high"}`}
	svc, kase, advocateID, store := newInsightFixture(t, gen)

	expired := time.Now().Add(-time.Minute)
	store.rows = append(store.rows, &models.Insight{
		ID:          uuid.New(),
		CaseID:      kase.ID,
		InsightType: models.InsightRiskAssessment,
		Status:      models.InsightCompleted,
		Result:      models.InsightResult{"overall_risk": "stale"},
		CreatedAt:   time.Now().Add(-time.Hour),
		ExpiresAt:   &expired,
	})

	answer, err := svc.GetInsight(context.Background(), kase.ID, advocateID, models.InsightRiskAssessment, false)
	if err != nil {
		t.Fatalf("GetInsight: %v", err)
	}
	if answer.Cached {
		t.Error("expired row must not be served")
	}
	if answer.Data["overall_risk"] != "high" {
		t.Errorf("got %v, want fresh result", answer.Data)
	}
}

func TestGetInsightFailedRowNotServed(t *testing.T) {
	gen := &fakeGenerator{response: `{"overall_risk":"low"}`}
	svc, kase, advocateID, store := newInsightFixture(t, gen)

	msg := "model unavailable"
	store.rows = append(store.rows, &models.Insight{
		ID:           uuid.New(),
		CaseID:       kase.ID,
		InsightType:  models.InsightRiskAssessment,
		Status:       models.InsightFailed,
		ErrorMessage: &msg,
		CreatedAt:    time.Now(),
	})

	answer, err := svc.GetInsight(context.Background(), kase.ID, advocateID, models.InsightRiskAssessment, false)
	if err != nil {
		t.Fatalf("GetInsight: %v", err)
	}
	if answer.Cached {
		t.Error("failed rows are never cache hits")
	}
}

func TestGetInsightAnalysisFailureRecorded(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("model unavailable")}
	svc, kase, advocateID, store := newInsightFixture(t, gen)

	_, err := svc.GetInsight(context.Background(), kase.ID, advocateID, models.InsightPrecedents, false)
	if !errors.Is(err, ErrAnalysisFailed) {
		t.Fatalf("got %v, want ErrAnalysisFailed", err)
	}

	// Failure is recorded as an audit row but no completed row exists
	if got := len(store.completed()); got != 0 {
		t.Errorf("got %d completed rows, want 0", got)
	}
	if len(store.rows) != 1 || store.rows[0].Status != models.InsightFailed {
		t.Errorf("expected one failed audit row, got %+v", store.rows)
	}
}

func TestGetInsightWrongAdvocate(t *testing.T) {
	gen := &fakeGenerator{response: `{}`}
	svc, kase, _, _ := newInsightFixture(t, gen)

	_, err := svc.GetInsight(context.Background(), kase.ID, uuid.New(), models.InsightRiskAssessment, false)
	if !errors.Is(err, ErrCaseNotFound) {
		t.Errorf("got %v, want ErrCaseNotFound", err)
	}
	if gen.callCount() != 0 {
		t.Error("model must not run for unowned cases")
	}
}

func TestGetInsightUnknownType(t *testing.T) {
	gen := &fakeGenerator{response: `{}`}
	svc, kase, advocateID, _ := newInsightFixture(t, gen)

	_, err := svc.GetInsight(context.Background(), kase.ID, advocateID, models.InsightType("sentiment"), false)
	if !errors.Is(err, ErrUnknownInsight) {
		t.Errorf("got %v, want ErrUnknownInsight", err)
	}
}

func TestGetInsightBundleTTL(t *testing.T) {
	gen := &fakeGenerator{response: `{"summary":"ok"}`}
	svc, kase, advocateID, store := newInsightFixture(t, gen)

	if _, err := svc.GetInsight(context.Background(), kase.ID, advocateID, models.InsightBundleAnalysis, false); err != nil {
		t.Fatalf("GetInsight: %v", err)
	}

	rows := store.completed()
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	ttl := time.Until(*rows[0].ExpiresAt)
	if ttl > 24*time.Hour || ttl < 23*time.Hour {
		t.Errorf("bundle insight TTL %v, want ~24h", ttl)
	}
}
