package service

import (
	"context"
	"fmt"
	"time"

	"advocase-backend/models"
	"advocase-backend/pkg/logger"

	"github.com/google/uuid"
)

// InsightService answers cache-aware single-insight requests: serve a fresh
// cached row when one exists, otherwise build the bundle, run one analyzer and
// append the result.
type InsightService struct {
	caseRepo    CaseStore
	insightRepo InsightStore
	bundles     *BundleService
	analyzers   map[models.InsightType]Analyzer
	insightTTL  time.Duration
	bundleTTL   time.Duration
	logger      *logger.Logger
}

// InsightServiceOption is a functional option for InsightService
type InsightServiceOption func(*InsightService)

// InsightWithCaseStore sets the case store
func InsightWithCaseStore(store CaseStore) InsightServiceOption {
	return func(s *InsightService) { s.caseRepo = store }
}

// InsightWithInsightStore sets the insight store
func InsightWithInsightStore(store InsightStore) InsightServiceOption {
	return func(s *InsightService) { s.insightRepo = store }
}

// InsightWithBundleService sets the bundle builder
func InsightWithBundleService(bundles *BundleService) InsightServiceOption {
	return func(s *InsightService) { s.bundles = bundles }
}

// InsightWithAnalyzers registers the analyzer set
func InsightWithAnalyzers(analyzers ...Analyzer) InsightServiceOption {
	return func(s *InsightService) {
		for _, a := range analyzers {
			s.analyzers[a.Type()] = a
		}
	}
}

// InsightWithTTLs sets the cache durations for regular and bundle insights
func InsightWithTTLs(insightTTL, bundleTTL time.Duration) InsightServiceOption {
	return func(s *InsightService) {
		s.insightTTL = insightTTL
		s.bundleTTL = bundleTTL
	}
}

// InsightWithLogger sets the logger
func InsightWithLogger(log *logger.Logger) InsightServiceOption {
	return func(s *InsightService) { s.logger = log }
}

// NewInsightService creates a new insight service
func NewInsightService(opts ...InsightServiceOption) *InsightService {
	s := &InsightService{
		analyzers:  make(map[models.InsightType]Analyzer),
		insightTTL: 7 * 24 * time.Hour,
		bundleTTL:  24 * time.Hour,
		logger:     logger.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// InsightAnswer is what the cache-aware routes return
type InsightAnswer struct {
	Cached     bool
	Data       models.InsightResult
	AnalyzedAt time.Time
	TokensUsed int
}

// GetInsight serves the insight for (case, type), from cache when a fresh
// completed row exists. forceRefresh expires existing rows first so the next
// lookup always recomputes.
func (s *InsightService) GetInsight(ctx context.Context, caseID, advocateID uuid.UUID, insightType models.InsightType, forceRefresh bool) (*InsightAnswer, error) {
	kase, err := s.caseRepo.GetForAdvocate(ctx, caseID, advocateID)
	if err != nil {
		return nil, ErrCaseNotFound
	}

	if forceRefresh {
		if err := s.insightRepo.Invalidate(ctx, caseID, insightType); err != nil {
			return nil, fmt.Errorf("failed to invalidate cache: %w", err)
		}
	} else {
		cached, err := s.insightRepo.Latest(ctx, caseID, insightType)
		if err == nil {
			return &InsightAnswer{
				Cached:     true,
				Data:       cached.Result,
				AnalyzedAt: cached.CreatedAt,
				TokensUsed: cached.TokensUsed,
			}, nil
		}
	}

	analyzer, ok := s.analyzers[insightType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownInsight, insightType)
	}

	bundle, err := s.bundles.Build(ctx, caseID)
	if err != nil {
		return nil, err
	}

	result, err := analyzer.Run(ctx, bundle, kase.CaseType)
	if err != nil {
		s.recordFailure(ctx, caseID, insightType, err)
		return nil, err
	}

	expiresAt := time.Now().Add(s.ttlFor(insightType))
	insight := &models.Insight{
		CaseID:      caseID,
		InsightType: insightType,
		Status:      models.InsightCompleted,
		Result:      result.Data,
		Model:       result.Model,
		TokensUsed:  result.TokensUsed,
		ExpiresAt:   &expiresAt,
	}
	if err := s.insightRepo.Create(ctx, insight); err != nil {
		return nil, fmt.Errorf("failed to store insight: %w", err)
	}

	return &InsightAnswer{
		Cached:     false,
		Data:       result.Data,
		AnalyzedAt: insight.CreatedAt,
		TokensUsed: result.TokensUsed,
	}, nil
}

func (s *InsightService) ttlFor(insightType models.InsightType) time.Duration {
	if insightType == models.InsightBundleAnalysis {
		return s.bundleTTL
	}
	return s.insightTTL
}

// recordFailure appends a FAILED insight row so failed attempts stay visible.
// Best effort: a failure to write the audit row is logged and swallowed.
func (s *InsightService) recordFailure(ctx context.Context, caseID uuid.UUID, insightType models.InsightType, cause error) {
	msg := cause.Error()
	failed := &models.Insight{
		CaseID:       caseID,
		InsightType:  insightType,
		Status:       models.InsightFailed,
		ErrorMessage: &msg,
	}
	if err := s.insightRepo.Create(ctx, failed); err != nil {
		s.logger.Warn("failed to record failed insight",
			"case_id", caseID, "insight_type", insightType, "error", err)
	}
}
