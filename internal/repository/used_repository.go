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

// UsedRepository persists redemption claims.
type UsedRepository struct {
	db *sqlx.DB
}

// NewUsedRepository constructs the repository.
func NewUsedRepository(db *sqlx.DB) *UsedRepository {
	return &UsedRepository{db: db}
}

const usedColumns = `id, email, requester_name, date, amount, note, building, status, approved_at, created_at, updated_at`

// Create inserts a new used row.
func (r *UsedRepository) Create(ctx context.Context, req *models.UsedRequest) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.Status == "" {
		req.Status = models.StatusPending
	}
	req.Email = strings.ToLower(req.Email)
	now := time.Now().UTC()
	if req.CreatedAt.IsZero() {
		req.CreatedAt = now
	}
	req.UpdatedAt = now

	const query = `INSERT INTO used_requests
	(id, email, requester_name, date, amount, note, building, status, created_at, updated_at)
	VALUES (:id, :email, :requester_name, :date, :amount, :note, :building, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, req); err != nil {
		return fmt.Errorf("create used request: %w", err)
	}
	return nil
}

// GetByID fetches a used row by identifier.
func (r *UsedRepository) GetByID(ctx context.Context, id string) (*models.UsedRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM used_requests WHERE id = $1 LIMIT 1`, usedColumns)
	var req models.UsedRequest
	if err := r.db.GetContext(ctx, &req, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find used request: %w", err)
	}
	return &req, nil
}

// List returns used rows matching the filter, newest date first.
func (r *UsedRepository) List(ctx context.Context, filter models.RequestFilter) ([]models.UsedRequest, error) {
	baseQuery := `FROM used_requests WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.Building != "" {
		conditions = append(conditions, fmt.Sprintf("building = $%d", len(args)+1))
		args = append(args, filter.Building)
	}
	if filter.Email != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(email) = LOWER($%d)", len(args)+1))
		args = append(args, filter.Email)
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf("SELECT %s %s ORDER BY date DESC, created_at DESC", usedColumns, baseQuery)

	var reqs []models.UsedRequest
	if err := r.db.SelectContext(ctx, &reqs, query, args...); err != nil {
		return nil, fmt.Errorf("list used requests: %w", err)
	}
	return reqs, nil
}

// SumApprovedByEmail returns approved amounts grouped by email for a building.
func (r *UsedRepository) SumApprovedByEmail(ctx context.Context, building string) (map[string]float64, error) {
	const query = `SELECT email, COALESCE(SUM(amount), 0) AS total FROM used_requests WHERE building = $1 AND status = $2 GROUP BY email`
	rows := []struct {
		Email string  `db:"email"`
		Total float64 `db:"total"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query, building, models.StatusApproved); err != nil {
		return nil, fmt.Errorf("sum approved used: %w", err)
	}
	totals := make(map[string]float64, len(rows))
	for _, row := range rows {
		totals[strings.ToLower(row.Email)] = row.Total
	}
	return totals, nil
}

// CountPending counts pending used rows for a building.
func (r *UsedRepository) CountPending(ctx context.Context, building string) (int, error) {
	const query = `SELECT COUNT(*) FROM used_requests WHERE building = $1 AND status = $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, building, models.StatusPending); err != nil {
		return 0, fmt.Errorf("count pending used: %w", err)
	}
	return count, nil
}

// SetApproved marks the row approved.
func (r *UsedRepository) SetApproved(ctx context.Context, id string, ts time.Time) error {
	const query = `UPDATE used_requests SET status = $2, approved_at = $3, updated_at = $3 WHERE id = $1`
	return r.execExpectingRow(ctx, "approve used", query, id, models.StatusApproved, ts)
}

// Revert returns the row to pending, clearing the approval timestamp.
func (r *UsedRepository) Revert(ctx context.Context, id string, ts time.Time) error {
	const query = `UPDATE used_requests SET status = $2, approved_at = NULL, updated_at = $3 WHERE id = $1`
	return r.execExpectingRow(ctx, "revert used", query, id, models.StatusPending, ts)
}

// Delete removes the row.
func (r *UsedRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM used_requests WHERE id = $1`
	return r.execExpectingRow(ctx, "delete used", query, id)
}

func (r *UsedRepository) execExpectingRow(ctx context.Context, op, query string, args ...interface{}) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows: %w", op, err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
