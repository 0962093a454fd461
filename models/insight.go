package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// InsightType identifies which analyzer produced an insight
type InsightType string

const (
	InsightRiskAssessment   InsightType = "risk_assessment"
	InsightReliefEvaluation InsightType = "relief_evaluation"
	InsightPrecedents       InsightType = "precedents"
	InsightRightsMapping    InsightType = "rights_mapping"
	InsightBundleAnalysis   InsightType = "bundle_analysis"
)

// AllInsightTypes lists every known insight type
var AllInsightTypes = []InsightType{
	InsightRiskAssessment,
	InsightReliefEvaluation,
	InsightPrecedents,
	InsightRightsMapping,
	InsightBundleAnalysis,
}

// InsightStatus represents the lifecycle of an insight row
type InsightStatus string

const (
	InsightPending   InsightStatus = "pending"
	InsightCompleted InsightStatus = "completed"
	InsightFailed    InsightStatus = "failed"
)

// InsightResult is the opaque structured payload produced by an analyzer
type InsightResult map[string]interface{}

// Value implements driver.Valuer for JSONB
func (r InsightResult) Value() (driver.Value, error) {
	if r == nil {
		return nil, nil
	}
	return json.Marshal(r)
}

// Scan implements sql.Scanner for JSONB
func (r *InsightResult) Scan(value interface{}) error {
	if value == nil {
		*r = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		*r = make(InsightResult)
		return nil
	}

	if len(bytes) == 0 {
		*r = make(InsightResult)
		return nil
	}

	return json.Unmarshal(bytes, r)
}

// Insight is one analyzer run recorded against a case. Rows are append-only:
// invalidation bumps ExpiresAt to now instead of deleting, so the table doubles
// as an audit trail.
type Insight struct {
	ID           uuid.UUID     `json:"id"`
	CaseID       uuid.UUID     `json:"case_id"`
	InsightType  InsightType   `json:"insight_type"`
	Status       InsightStatus `json:"status"`
	Result       InsightResult `json:"result,omitempty"`
	Model        string        `json:"model,omitempty"`
	TokensUsed   int           `json:"tokens_used,omitempty"`
	ErrorMessage *string       `json:"error_message,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	ExpiresAt    *time.Time    `json:"expires_at,omitempty"`
}

// Valid reports whether the row may be served from cache at the given instant
func (i *Insight) Valid(now time.Time) bool {
	if i.Status != InsightCompleted {
		return false
	}
	return i.ExpiresAt == nil || !i.ExpiresAt.Before(now)
}
