package service

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"advocase-backend/pkg/logger"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

const suggestTemperature = 0.7

// SuggestService produces free-text drafting suggestions for one section of a
// pleading. Results are memoized in process: suggestions are advisory and not
// worth an insight row, but repeated identical requests should not burn
// tokens.
type SuggestService struct {
	caseRepo CaseStore
	bundles  *BundleService
	llm      Generator
	memo     *gocache.Cache
	logger   *logger.Logger
}

// NewSuggestService creates a new suggestion service
func NewSuggestService(caseRepo CaseStore, bundles *BundleService, llm Generator, log *logger.Logger) *SuggestService {
	if log == nil {
		log = logger.NewNop()
	}
	return &SuggestService{
		caseRepo: caseRepo,
		bundles:  bundles,
		llm:      llm,
		memo:     gocache.New(15*time.Minute, 30*time.Minute),
		logger:   log,
	}
}

// Suggest returns drafting suggestions for the given section and draft text
func (s *SuggestService) Suggest(ctx context.Context, caseID, advocateID uuid.UUID, section, draft string) ([]string, error) {
	kase, err := s.caseRepo.GetForAdvocate(ctx, caseID, advocateID)
	if err != nil {
		return nil, ErrCaseNotFound
	}

	key := fmt.Sprintf("suggest:%s:%s:%x", caseID, section, sha256.Sum256([]byte(draft)))
	if cached, found := s.memo.Get(key); found {
		return cached.([]string), nil
	}

	bundle, err := s.bundles.Build(ctx, caseID)
	if err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(`You are a senior advocate reviewing a junior's draft for a %s matter.

CASE BUNDLE:
%s

SECTION UNDER DRAFT: %s

CURRENT DRAFT TEXT:
%s

TASK:
Give concrete suggestions for improving this section, grounded in the case bundle.

Respond with a single JSON object, no other text:
{"suggestions": [<3 to 6 suggestion strings>]}`,
		kase.CaseType, serializeBundle(bundle), section, draft)

	res, err := s.llm.GenerateJSON(ctx, prompt, suggestTemperature)
	if err != nil {
		return nil, fmt.Errorf("%w (suggestions): %v", ErrAnalysisFailed, err)
	}

	var parsed struct {
		Suggestions []string `json:"suggestions"`
	}
	if err := json.Unmarshal([]byte(res.Text), &parsed); err != nil {
		return nil, fmt.Errorf("%w (suggestions): malformed model response: %v", ErrAnalysisFailed, err)
	}

	s.memo.Set(key, parsed.Suggestions, gocache.DefaultExpiration)
	return parsed.Suggestions, nil
}
