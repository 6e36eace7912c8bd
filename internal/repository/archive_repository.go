package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/orono-schools/tst-bank-api/internal/models"
)

// ArchiveRepository reads the long-term archive mirror. Writes happen through
// EarnedRepository so they share the canonical row's transaction.
type ArchiveRepository struct {
	db *sqlx.DB
}

// NewArchiveRepository constructs the repository.
func NewArchiveRepository(db *sqlx.DB) *ArchiveRepository {
	return &ArchiveRepository{db: db}
}

const archiveColumns = `id, request_id, email, covered_name, date, period, duration_type, hours, submitted_at`

// FindByRequestID returns the mirror row linked to a canonical ledger row.
func (r *ArchiveRepository) FindByRequestID(ctx context.Context, requestID string) (*models.ArchiveRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM archive_records WHERE request_id = $1 LIMIT 1`, archiveColumns)
	var rec models.ArchiveRecord
	if err := r.db.GetContext(ctx, &rec, query, requestID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find archive by request id: %w", err)
	}
	return &rec, nil
}

// FindCandidates returns legacy rows sharing the email and calendar day,
// most recently submitted first. Period matching is done by the caller
// because legacy labels compare loosely.
func (r *ArchiveRepository) FindCandidates(ctx context.Context, key models.ArchiveKey) ([]models.ArchiveRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM archive_records WHERE LOWER(email) = LOWER($1) AND date = $2 ORDER BY submitted_at DESC`, archiveColumns)
	var recs []models.ArchiveRecord
	if err := r.db.SelectContext(ctx, &recs, query, key.Email, key.Date); err != nil {
		return nil, fmt.Errorf("find archive candidates: %w", err)
	}
	return recs, nil
}
