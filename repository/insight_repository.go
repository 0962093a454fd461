package repository

import (
	"context"
	"errors"

	"advocase-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNoValidInsight is returned by Latest when no fresh completed row exists
var ErrNoValidInsight = errors.New("no valid cached insight")

// InsightRepository handles database operations for insights. The table is an
// append-only log: writers only ever insert rows or bump expires_at forward to
// now, which is what lets concurrent requests race safely.
type InsightRepository struct {
	db *pgxpool.Pool
}

// NewInsightRepository creates a new insight repository
func NewInsightRepository(db *pgxpool.Pool) *InsightRepository {
	return &InsightRepository{db: db}
}

const insightColumns = `id, case_id, insight_type, status, result, model,
		tokens_used, error_message, created_at, expires_at`

const insightInsert = `
		INSERT INTO insights (
			case_id, insight_type, status, result, model, tokens_used,
			error_message, expires_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

func scanInsight(row interface{ Scan(...interface{}) error }) (*models.Insight, error) {
	insight := &models.Insight{}
	err := row.Scan(
		&insight.ID,
		&insight.CaseID,
		&insight.InsightType,
		&insight.Status,
		&insight.Result,
		&insight.Model,
		&insight.TokensUsed,
		&insight.ErrorMessage,
		&insight.CreatedAt,
		&insight.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}
	return insight, nil
}

// Latest returns the most recently created completed, non-expired insight for
// the (case, type) pair, or ErrNoValidInsight
func (r *InsightRepository) Latest(ctx context.Context, caseID uuid.UUID, insightType models.InsightType) (*models.Insight, error) {
	query := `SELECT ` + insightColumns + `
		FROM insights
		WHERE case_id = $1 AND insight_type = $2 AND status = $3
			AND (expires_at IS NULL OR expires_at >= NOW())
		ORDER BY created_at DESC
		LIMIT 1`

	insight, err := scanInsight(r.db.QueryRow(ctx, query, caseID, insightType, models.InsightCompleted))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoValidInsight
		}
		return nil, err
	}

	return insight, nil
}

// Create inserts a new insight row
func (r *InsightRepository) Create(ctx context.Context, insight *models.Insight) error {
	return r.db.QueryRow(
		ctx, insightInsert,
		insight.CaseID,
		insight.InsightType,
		insight.Status,
		insight.Result,
		insight.Model,
		insight.TokensUsed,
		insight.ErrorMessage,
		insight.ExpiresAt,
	).Scan(&insight.ID, &insight.CreatedAt)
}

// CreateBatch inserts all given insight rows in one transaction. Either every
// row commits or none do, so a partially cached batch can never be misread as
// complete.
func (r *InsightRepository) CreateBatch(ctx context.Context, insights []*models.Insight) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, insight := range insights {
		err := tx.QueryRow(
			ctx, insightInsert,
			insight.CaseID,
			insight.InsightType,
			insight.Status,
			insight.Result,
			insight.Model,
			insight.TokensUsed,
			insight.ErrorMessage,
			insight.ExpiresAt,
		).Scan(&insight.ID, &insight.CreatedAt)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// Invalidate expires all rows for a (case, type) pair immediately. Rows are
// kept for history; only their visibility to Latest changes.
func (r *InsightRepository) Invalidate(ctx context.Context, caseID uuid.UUID, insightType models.InsightType) error {
	query := `
		UPDATE insights SET expires_at = NOW()
		WHERE case_id = $1 AND insight_type = $2`

	_, err := r.db.Exec(ctx, query, caseID, insightType)
	return err
}

// InvalidateAll expires every insight row for a case, used when the document
// bundle composition changes
func (r *InsightRepository) InvalidateAll(ctx context.Context, caseID uuid.UUID) error {
	query := `UPDATE insights SET expires_at = NOW() WHERE case_id = $1`

	_, err := r.db.Exec(ctx, query, caseID)
	return err
}
