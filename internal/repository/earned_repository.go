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

// EarnedRepository persists credit claims and keeps the archive mirror in
// step. Mutations touching both tables run inside one transaction.
type EarnedRepository struct {
	db *sqlx.DB
}

// NewEarnedRepository constructs the repository.
func NewEarnedRepository(db *sqlx.DB) *EarnedRepository {
	return &EarnedRepository{db: db}
}

const earnedColumns = `id, email, requester_name, covered_name, date, period, duration_type, hours, building, status, approved_at, denied_at, denial_reason, created_at, updated_at`

// CreateWithArchive inserts a new earned row together with its archive mirror.
func (r *EarnedRepository) CreateWithArchive(ctx context.Context, req *models.EarnedRequest, rec *models.ArchiveRecord) error {
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

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	rec.RequestID = &req.ID
	rec.Email = req.Email
	if rec.SubmittedAt.IsZero() {
		rec.SubmittedAt = now
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create earned: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const insertEarned = `INSERT INTO earned_requests
	(id, email, requester_name, covered_name, date, period, duration_type, hours, building, status, created_at, updated_at)
	VALUES (:id, :email, :requester_name, :covered_name, :date, :period, :duration_type, :hours, :building, :status, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, insertEarned, req); err != nil {
		return fmt.Errorf("create earned request: %w", err)
	}

	const insertArchive = `INSERT INTO archive_records
	(id, request_id, email, covered_name, date, period, duration_type, hours, submitted_at)
	VALUES (:id, :request_id, :email, :covered_name, :date, :period, :duration_type, :hours, :submitted_at)`
	if _, err := tx.NamedExecContext(ctx, insertArchive, rec); err != nil {
		return fmt.Errorf("create archive record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create earned: %w", err)
	}
	return nil
}

// GetByID fetches an earned row by identifier.
func (r *EarnedRepository) GetByID(ctx context.Context, id string) (*models.EarnedRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM earned_requests WHERE id = $1 LIMIT 1`, earnedColumns)
	var req models.EarnedRequest
	if err := r.db.GetContext(ctx, &req, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find earned request: %w", err)
	}
	return &req, nil
}

// List returns earned rows matching the filter, newest date first.
func (r *EarnedRepository) List(ctx context.Context, filter models.RequestFilter) ([]models.EarnedRequest, error) {
	baseQuery := `FROM earned_requests WHERE 1=1`
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY date DESC, created_at DESC", earnedColumns, baseQuery)

	var reqs []models.EarnedRequest
	if err := r.db.SelectContext(ctx, &reqs, query, args...); err != nil {
		return nil, fmt.Errorf("list earned requests: %w", err)
	}
	return reqs, nil
}

// ListApprovedBetween returns approved rows for a building within [from, to).
func (r *EarnedRepository) ListApprovedBetween(ctx context.Context, building string, from, to time.Time) ([]models.EarnedRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM earned_requests WHERE building = $1 AND status = $2 AND date >= $3 AND date < $4 ORDER BY date ASC`, earnedColumns)
	var reqs []models.EarnedRequest
	if err := r.db.SelectContext(ctx, &reqs, query, building, models.StatusApproved, from, to); err != nil {
		return nil, fmt.Errorf("list approved earned: %w", err)
	}
	return reqs, nil
}

// SumApprovedByEmail returns approved hours grouped by email for a building.
func (r *EarnedRepository) SumApprovedByEmail(ctx context.Context, building string) (map[string]float64, error) {
	const query = `SELECT email, COALESCE(SUM(hours), 0) AS total FROM earned_requests WHERE building = $1 AND status = $2 GROUP BY email`
	rows := []struct {
		Email string  `db:"email"`
		Total float64 `db:"total"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query, building, models.StatusApproved); err != nil {
		return nil, fmt.Errorf("sum approved earned: %w", err)
	}
	totals := make(map[string]float64, len(rows))
	for _, row := range rows {
		totals[strings.ToLower(row.Email)] = row.Total
	}
	return totals, nil
}

// CountPending counts pending earned rows for a building.
func (r *EarnedRepository) CountPending(ctx context.Context, building string) (int, error) {
	const query = `SELECT COUNT(*) FROM earned_requests WHERE building = $1 AND status = $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, building, models.StatusPending); err != nil {
		return 0, fmt.Errorf("count pending earned: %w", err)
	}
	return count, nil
}

// SetApproved marks the row approved and clears any denial state.
func (r *EarnedRepository) SetApproved(ctx context.Context, id string, ts time.Time) error {
	const query = `UPDATE earned_requests SET status = $2, approved_at = $3, denied_at = NULL, denial_reason = NULL, updated_at = $3 WHERE id = $1`
	return r.execExpectingRow(ctx, "approve earned", query, id, models.StatusApproved, ts)
}

// SetDenied marks the row denied and clears any approval state.
func (r *EarnedRepository) SetDenied(ctx context.Context, id string, ts time.Time, reason string) error {
	const query = `UPDATE earned_requests SET status = $2, denied_at = $3, denial_reason = $4, approved_at = NULL, updated_at = $3 WHERE id = $1`
	return r.execExpectingRow(ctx, "deny earned", query, id, models.StatusDenied, ts, reason)
}

// Revert returns the row to pending, clearing both decision sides.
func (r *EarnedRepository) Revert(ctx context.Context, id string, ts time.Time) error {
	const query = `UPDATE earned_requests SET status = $2, approved_at = NULL, denied_at = NULL, denial_reason = NULL, updated_at = $3 WHERE id = $1`
	return r.execExpectingRow(ctx, "revert earned", query, id, models.StatusPending, ts)
}

// DeleteWithArchive removes the archive mirror first, then the canonical row,
// inside one transaction. An empty archiveID skips the archive delete.
func (r *EarnedRepository) DeleteWithArchive(ctx context.Context, id, archiveID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete earned: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if archiveID != "" {
		if _, err := tx.ExecContext(ctx, `DELETE FROM archive_records WHERE id = $1`, archiveID); err != nil {
			return fmt.Errorf("delete archive record: %w", err)
		}
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM earned_requests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete earned request: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check delete earned rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete earned: %w", err)
	}
	return nil
}

// UpdateWithArchive persists edited fields on the canonical row and, when an
// archive id is supplied, propagates them to the mirror in the same
// transaction.
func (r *EarnedRepository) UpdateWithArchive(ctx context.Context, req *models.EarnedRequest, archiveID string) error {
	req.Email = strings.ToLower(req.Email)
	req.UpdatedAt = time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update earned: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const updateEarned = `UPDATE earned_requests SET email = :email, covered_name = :covered_name, date = :date, period = :period, duration_type = :duration_type, hours = :hours, updated_at = :updated_at WHERE id = :id`
	result, err := tx.NamedExecContext(ctx, updateEarned, req)
	if err != nil {
		return fmt.Errorf("update earned request: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check update earned rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}

	if archiveID != "" {
		const updateArchive = `UPDATE archive_records SET email = $2, covered_name = $3, date = $4, period = $5, duration_type = $6, hours = $7 WHERE id = $1`
		if _, err := tx.ExecContext(ctx, updateArchive, archiveID, req.Email, req.CoveredName, req.Date, req.Period, req.DurationType, req.Hours); err != nil {
			return fmt.Errorf("update archive record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update earned: %w", err)
	}
	return nil
}

func (r *EarnedRepository) execExpectingRow(ctx context.Context, op, query string, args ...interface{}) error {
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
