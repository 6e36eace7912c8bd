package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/orono-schools/tst-bank-api/internal/models"
)

// AvailabilityRepository persists the availability schedule grid.
type AvailabilityRepository struct {
	db *sqlx.DB
}

// NewAvailabilityRepository constructs the repository.
func NewAvailabilityRepository(db *sqlx.DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

const availabilityColumns = `id, month, period, days, teacher_email, teacher_name, building, updated_at`

// ListCell returns the stored rows for one (month, period) cell in a
// building, ordered by teacher name.
func (r *AvailabilityRepository) ListCell(ctx context.Context, month, period, building string) ([]models.AvailabilitySlot, error) {
	query := fmt.Sprintf(`SELECT %s FROM availability_slots WHERE month = $1 AND period = $2 AND building = $3 ORDER BY teacher_name ASC`, availabilityColumns)
	var slots []models.AvailabilitySlot
	if err := r.db.SelectContext(ctx, &slots, query, month, period, building); err != nil {
		return nil, fmt.Errorf("list availability cell: %w", err)
	}
	return slots, nil
}

// ReplaceCell rebuilds one (month, period) cell: every stored row for the
// cell is deleted and the supplied rows inserted, inside one transaction.
func (r *AvailabilityRepository) ReplaceCell(ctx context.Context, month, period, building string, slots []models.AvailabilitySlot) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace cell: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const deleteQuery = `DELETE FROM availability_slots WHERE month = $1 AND period = $2 AND building = $3`
	if _, err := tx.ExecContext(ctx, deleteQuery, month, period, building); err != nil {
		return fmt.Errorf("clear availability cell: %w", err)
	}

	const insertQuery = `INSERT INTO availability_slots
	(id, month, period, days, teacher_email, teacher_name, building, updated_at)
	VALUES (:id, :month, :period, :days, :teacher_email, :teacher_name, :building, :updated_at)`
	now := time.Now().UTC()
	for i := range slots {
		slot := &slots[i]
		if slot.ID == "" {
			slot.ID = uuid.NewString()
		}
		slot.Month = month
		slot.Period = period
		slot.Building = building
		slot.UpdatedAt = now
		if _, err := tx.NamedExecContext(ctx, insertQuery, slot); err != nil {
			return fmt.Errorf("insert availability slot: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace cell: %w", err)
	}
	return nil
}
