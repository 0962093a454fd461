package service

import (
	"context"
	"time"

	"advocase-backend/models"
	"advocase-backend/pkg/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// BatchService runs all four analyzers for a case in two concurrent phases and
// persists the results atomically.
type BatchService struct {
	caseRepo    CaseStore
	insightRepo InsightStore
	bundles     *BundleService
	risk        Analyzer
	relief      Analyzer
	precedents  Analyzer
	rights      Analyzer
	insightTTL  time.Duration
	logger      *logger.Logger
}

// BatchServiceOption is a functional option for BatchService
type BatchServiceOption func(*BatchService)

// BatchWithCaseStore sets the case store
func BatchWithCaseStore(store CaseStore) BatchServiceOption {
	return func(s *BatchService) { s.caseRepo = store }
}

// BatchWithInsightStore sets the insight store
func BatchWithInsightStore(store InsightStore) BatchServiceOption {
	return func(s *BatchService) { s.insightRepo = store }
}

// BatchWithBundleService sets the bundle builder
func BatchWithBundleService(bundles *BundleService) BatchServiceOption {
	return func(s *BatchService) { s.bundles = bundles }
}

// BatchWithAnalyzers sets the four batch analyzers
func BatchWithAnalyzers(risk, relief, precedents, rights Analyzer) BatchServiceOption {
	return func(s *BatchService) {
		s.risk = risk
		s.relief = relief
		s.precedents = precedents
		s.rights = rights
	}
}

// BatchWithTTL sets the cache duration for batch results
func BatchWithTTL(ttl time.Duration) BatchServiceOption {
	return func(s *BatchService) { s.insightTTL = ttl }
}

// BatchWithLogger sets the logger
func BatchWithLogger(log *logger.Logger) BatchServiceOption {
	return func(s *BatchService) { s.logger = log }
}

// NewBatchService creates a new batch service
func NewBatchService(opts ...BatchServiceOption) *BatchService {
	s := &BatchService{
		insightTTL: 7 * 24 * time.Hour,
		logger:     logger.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BatchResult carries all four analyses plus run metadata
type BatchResult struct {
	Risk       models.InsightResult
	Relief     models.InsightResult
	Precedents models.InsightResult
	Rights     models.InsightResult
	CaseType   models.CaseType
	TotalTime  time.Duration
	AnalyzedAt time.Time
	TokensUsed int
}

// Run verifies ownership, builds the bundle once, executes phase 1
// (risk + relief) then phase 2 (precedents + rights), and persists all four
// results in a single transaction. The phase split is a grouping of calls,
// not a data dependency: phase 2 never reads phase 1 output.
func (s *BatchService) Run(ctx context.Context, caseID, advocateID uuid.UUID) (*BatchResult, error) {
	kase, err := s.caseRepo.GetForAdvocate(ctx, caseID, advocateID)
	if err != nil {
		return nil, ErrCaseNotFound
	}

	bundle, err := s.bundles.Build(ctx, caseID)
	if err != nil {
		return nil, err
	}

	start := time.Now()

	var riskRes, reliefRes, precedentsRes, rightsRes *AnalysisResult

	// Phase 1: risk assessment and relief evaluation
	g1, ctx1 := errgroup.WithContext(ctx)
	g1.Go(func() error {
		var err error
		riskRes, err = s.risk.Run(ctx1, bundle, kase.CaseType)
		return err
	})
	g1.Go(func() error {
		var err error
		reliefRes, err = s.relief.Run(ctx1, bundle, kase.CaseType)
		return err
	})
	if err := g1.Wait(); err != nil {
		return nil, err
	}

	// Phase 2: precedent validation and rights mapping, only after both
	// phase 1 analyzers settled
	g2, ctx2 := errgroup.WithContext(ctx)
	g2.Go(func() error {
		var err error
		precedentsRes, err = s.precedents.Run(ctx2, bundle, kase.CaseType)
		return err
	})
	g2.Go(func() error {
		var err error
		rightsRes, err = s.rights.Run(ctx2, bundle, kase.CaseType)
		return err
	})
	if err := g2.Wait(); err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	analyzedAt := time.Now()
	expiresAt := analyzedAt.Add(s.insightTTL)

	insights := make([]*models.Insight, 0, 4)
	results := []*AnalysisResult{riskRes, reliefRes, precedentsRes, rightsRes}
	types := []models.InsightType{
		models.InsightRiskAssessment,
		models.InsightReliefEvaluation,
		models.InsightPrecedents,
		models.InsightRightsMapping,
	}
	totalTokens := 0
	for i, res := range results {
		totalTokens += res.TokensUsed
		insights = append(insights, &models.Insight{
			CaseID:      caseID,
			InsightType: types[i],
			Status:      models.InsightCompleted,
			Result:      res.Data,
			Model:       res.Model,
			TokensUsed:  res.TokensUsed,
			ExpiresAt:   &expiresAt,
		})
	}

	// All four rows commit together or none do
	if err := s.insightRepo.CreateBatch(ctx, insights); err != nil {
		return nil, err
	}

	s.logger.Info("batch analysis complete",
		"case_id", caseID, "elapsed_ms", elapsed.Milliseconds(), "tokens", totalTokens)

	return &BatchResult{
		Risk:       riskRes.Data,
		Relief:     reliefRes.Data,
		Precedents: precedentsRes.Data,
		Rights:     rightsRes.Data,
		CaseType:   kase.CaseType,
		TotalTime:  elapsed,
		AnalyzedAt: analyzedAt,
		TokensUsed: totalTokens,
	}, nil
}
