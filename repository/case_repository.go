package repository

import (
	"context"
	"fmt"

	"advocase-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CaseRepository handles database operations for cases
type CaseRepository struct {
	db *pgxpool.Pool
}

// NewCaseRepository creates a new case repository
func NewCaseRepository(db *pgxpool.Pool) *CaseRepository {
	return &CaseRepository{db: db}
}

const caseColumns = `id, advocate_id, case_number, case_type, case_year,
		petitioner_name, respondent_name, court_name, is_visible,
		created_at, updated_at`

func scanCase(row interface{ Scan(...interface{}) error }) (*models.Case, error) {
	kase := &models.Case{}
	err := row.Scan(
		&kase.ID,
		&kase.AdvocateID,
		&kase.CaseNumber,
		&kase.CaseType,
		&kase.CaseYear,
		&kase.PetitionerName,
		&kase.RespondentName,
		&kase.CourtName,
		&kase.IsVisible,
		&kase.CreatedAt,
		&kase.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return kase, nil
}

// Create creates a new case
func (r *CaseRepository) Create(ctx context.Context, kase *models.Case) error {
	query := `
		INSERT INTO cases (
			advocate_id, case_number, case_type, case_year,
			petitioner_name, respondent_name, court_name, is_visible
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(
		ctx, query,
		kase.AdvocateID,
		kase.CaseNumber,
		kase.CaseType,
		kase.CaseYear,
		kase.PetitionerName,
		kase.RespondentName,
		kase.CourtName,
		kase.IsVisible,
	).Scan(&kase.ID, &kase.CreatedAt, &kase.UpdatedAt)

	return err
}

// GetByID retrieves a case by ID
func (r *CaseRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Case, error) {
	query := `SELECT ` + caseColumns + ` FROM cases WHERE id = $1`
	return scanCase(r.db.QueryRow(ctx, query, id))
}

// GetForAdvocate retrieves a visible case owned by the given advocate
func (r *CaseRepository) GetForAdvocate(ctx context.Context, id, advocateID uuid.UUID) (*models.Case, error) {
	query := `SELECT ` + caseColumns + `
		FROM cases
		WHERE id = $1 AND advocate_id = $2 AND is_visible = TRUE`
	return scanCase(r.db.QueryRow(ctx, query, id, advocateID))
}

// CaseFilter narrows List results
type CaseFilter struct {
	CaseType *models.CaseType
	CaseYear *int
	Search   string
}

// List retrieves visible cases for an advocate with filters and pagination,
// newest first. Returns the page of cases and the total match count.
func (r *CaseRepository) List(ctx context.Context, advocateID uuid.UUID, filter CaseFilter, limit, offset int) ([]*models.Case, int, error) {
	where := ` FROM cases WHERE advocate_id = $1 AND is_visible = TRUE`
	args := []interface{}{advocateID}
	argIndex := 2

	if filter.CaseType != nil {
		where += fmt.Sprintf(" AND case_type = $%d", argIndex)
		args = append(args, *filter.CaseType)
		argIndex++
	}
	if filter.CaseYear != nil {
		where += fmt.Sprintf(" AND case_year = $%d", argIndex)
		args = append(args, *filter.CaseYear)
		argIndex++
	}
	if filter.Search != "" {
		where += fmt.Sprintf(" AND (case_number ILIKE $%d OR petitioner_name ILIKE $%d OR respondent_name ILIKE $%d)",
			argIndex, argIndex, argIndex)
		args = append(args, "%"+filter.Search+"%")
		argIndex++
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*)`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + caseColumns + where + " ORDER BY created_at DESC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, limit)
		argIndex++
		if offset > 0 {
			query += fmt.Sprintf(" OFFSET $%d", argIndex)
			args = append(args, offset)
		}
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var cases []*models.Case
	for rows.Next() {
		kase, err := scanCase(rows)
		if err != nil {
			return nil, 0, err
		}
		cases = append(cases, kase)
	}

	return cases, total, rows.Err()
}
