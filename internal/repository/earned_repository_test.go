package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/orono-schools/tst-bank-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestEarnedRepositoryCreateWithArchive(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewEarnedRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO earned_requests")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO archive_records")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	req := &models.EarnedRequest{
		Email:         "Jane.Doe@orono.k12.mn.us",
		RequesterName: "Jane Doe",
		CoveredName:   "John Smith",
		Date:          time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC),
		Period:        "Period 3 - 9:52 - 10:39",
		DurationType:  "Full Period",
		Hours:         1,
		Building:      "OMS",
	}
	rec := &models.ArchiveRecord{
		CoveredName:  req.CoveredName,
		Date:         req.Date,
		Period:       req.Period,
		DurationType: req.DurationType,
		Hours:        req.Hours,
	}
	require.NoError(t, repo.CreateWithArchive(context.Background(), req, rec))
	require.NotEmpty(t, req.ID)
	require.Equal(t, "jane.doe@orono.k12.mn.us", req.Email)
	require.NotNil(t, rec.RequestID)
	require.Equal(t, req.ID, *rec.RequestID)
	require.Equal(t, req.Email, rec.Email)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEarnedRepositorySetApprovedClearsDenial(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewEarnedRepository(db)
	ts := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE earned_requests SET status = $2, approved_at = $3, denied_at = NULL, denial_reason = NULL")).
		WithArgs("req-1", models.StatusApproved, ts).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetApproved(context.Background(), "req-1", ts))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEarnedRepositorySetApprovedMissingRow(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewEarnedRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE earned_requests SET")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetApproved(context.Background(), "missing", time.Now().UTC())
	require.ErrorIs(t, err, sql.ErrNoRows)
}

func TestEarnedRepositoryDeleteWithArchive(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewEarnedRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM archive_records WHERE id = $1")).
		WithArgs("arc-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM earned_requests WHERE id = $1")).
		WithArgs("req-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.DeleteWithArchive(context.Background(), "req-1", "arc-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEarnedRepositoryDeleteWithArchiveRollsBackOnMissingRow(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewEarnedRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM earned_requests WHERE id = $1")).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.DeleteWithArchive(context.Background(), "missing", "")
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEarnedRepositoryUpdateWithArchive(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewEarnedRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE earned_requests SET")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE archive_records SET")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	req := &models.EarnedRequest{
		ID:          "req-1",
		Email:       "jane.doe@orono.k12.mn.us",
		CoveredName: "New Name",
		Date:        time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC),
		Period:      "Period 6 - 11:40 - 12:06",
		Hours:       0.5,
	}
	require.NoError(t, repo.UpdateWithArchive(context.Background(), req, "arc-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEarnedRepositorySumApprovedByEmail(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewEarnedRepository(db)
	rows := sqlmock.NewRows([]string{"email", "total"}).
		AddRow("jane.doe@orono.k12.mn.us", 4.5).
		AddRow("john.smith@orono.k12.mn.us", 2.0)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT email, COALESCE(SUM(hours), 0) AS total FROM earned_requests")).
		WithArgs("OMS", string(models.StatusApproved)).
		WillReturnRows(rows)

	totals, err := repo.SumApprovedByEmail(context.Background(), "OMS")
	require.NoError(t, err)
	require.Equal(t, 4.5, totals["jane.doe@orono.k12.mn.us"])
	require.Equal(t, 2.0, totals["john.smith@orono.k12.mn.us"])
}
