package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/orono-schools/tst-bank-api/internal/models"
)

// CoverageRepository persists coverage requests awaiting a teacher's answer.
type CoverageRepository struct {
	db *sqlx.DB
}

// NewCoverageRepository constructs the repository.
func NewCoverageRepository(db *sqlx.DB) *CoverageRepository {
	return &CoverageRepository{db: db}
}

const coverageColumns = `id, teacher_email, teacher_name, covered_name, date, period, duration_type, building, requested_by, status, responded_at, created_at`

// Create inserts a new coverage request.
func (r *CoverageRepository) Create(ctx context.Context, req *models.CoverageRequest) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.Status == "" {
		req.Status = models.CoveragePending
	}
	req.TeacherEmail = strings.ToLower(req.TeacherEmail)
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO coverage_requests
	(id, teacher_email, teacher_name, covered_name, date, period, duration_type, building, requested_by, status, created_at)
	VALUES (:id, :teacher_email, :teacher_name, :covered_name, :date, :period, :duration_type, :building, :requested_by, :status, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, req); err != nil {
		return fmt.Errorf("create coverage request: %w", err)
	}
	return nil
}

// GetByID fetches a coverage request by identifier.
func (r *CoverageRepository) GetByID(ctx context.Context, id string) (*models.CoverageRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM coverage_requests WHERE id = $1 LIMIT 1`, coverageColumns)
	var req models.CoverageRequest
	if err := r.db.GetContext(ctx, &req, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find coverage request: %w", err)
	}
	return &req, nil
}

// SetStatus records the teacher's answer. Only pending requests transition;
// a second click on an already-answered link yields sql.ErrNoRows.
func (r *CoverageRepository) SetStatus(ctx context.Context, id string, status models.CoverageStatus, respondedAt time.Time) error {
	const query = `UPDATE coverage_requests SET status = $2, responded_at = $3 WHERE id = $1 AND status = $4`
	result, err := r.db.ExecContext(ctx, query, id, status, respondedAt, models.CoveragePending)
	if err != nil {
		return fmt.Errorf("set coverage status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check coverage status rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
