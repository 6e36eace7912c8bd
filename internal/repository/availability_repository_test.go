package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/orono-schools/tst-bank-api/internal/models"
)

func TestAvailabilityRepositoryReplaceCell(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAvailabilityRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM availability_slots WHERE month = $1 AND period = $2 AND building = $3")).
		WithArgs("September", "Period 3 - 9:52 - 10:39", "OMS").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO availability_slots")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO availability_slots")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	slots := []models.AvailabilitySlot{
		{TeacherEmail: "a@orono.k12.mn.us", TeacherName: "A Teacher", Days: "Mon, Wed"},
		{TeacherEmail: "b@orono.k12.mn.us", TeacherName: "B Teacher", Days: "Fri"},
	}
	err := repo.ReplaceCell(context.Background(), "September", "Period 3 - 9:52 - 10:39", "OMS", slots)
	require.NoError(t, err)
	require.NotEmpty(t, slots[0].ID)
	require.Equal(t, "September", slots[0].Month)
	require.Equal(t, "OMS", slots[1].Building)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilityRepositoryReplaceCellEmptyStillClears(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAvailabilityRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM availability_slots")).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	err := repo.ReplaceCell(context.Background(), "October", "Period 1 - 8:10 - 8:57", "OMS", nil)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilityRepositoryListCell(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAvailabilityRepository(db)
	rows := sqlmock.NewRows([]string{"id", "month", "period", "days", "teacher_email", "teacher_name", "building", "updated_at"}).
		AddRow("slot-1", "September", "Period 1 - 8:10 - 8:57", "Mon, Tue", "a@orono.k12.mn.us", "A Teacher", "OMS", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, month, period, days, teacher_email, teacher_name, building, updated_at FROM availability_slots")).
		WithArgs("September", "Period 1 - 8:10 - 8:57", "OMS").
		WillReturnRows(rows)

	slots, err := repo.ListCell(context.Background(), "September", "Period 1 - 8:10 - 8:57", "OMS")
	require.NoError(t, err)
	require.Len(t, slots, 1)
	require.Equal(t, "Mon, Tue", slots[0].Days)
}
