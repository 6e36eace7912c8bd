package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestStaffRepositoryFindByEmail(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewStaffRepository(db)
	rows := sqlmock.NewRows([]string{"id", "email", "password_hash", "full_name", "role", "buildings", "carry_over", "active", "last_login", "created_at", "updated_at"}).
		AddRow("staff-1", "jane.doe@orono.k12.mn.us", "hash", "Jane Doe", "TEACHER", "{OMS,OHS}", 2.5, true, nil, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, password_hash, full_name, role, buildings, carry_over, active, last_login, created_at, updated_at FROM staff WHERE LOWER(email) = LOWER($1)")).
		WithArgs("Jane.Doe@orono.k12.mn.us").
		WillReturnRows(rows)

	member, err := repo.FindByEmail(context.Background(), "Jane.Doe@orono.k12.mn.us")
	require.NoError(t, err)
	require.Equal(t, "staff-1", member.ID)
	require.Equal(t, "OMS", member.PrimaryBuilding())
	require.True(t, member.MemberOf("ohs"))
	require.Equal(t, 2.5, member.CarryOver)
}

func TestStaffRepositoryUpdateCarryOver(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewStaffRepository(db)
	ts := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE staff SET carry_over = $2")).
		WithArgs("jane.doe@orono.k12.mn.us", 3.0, ts).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateCarryOver(context.Background(), "jane.doe@orono.k12.mn.us", 3.0, ts))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE staff SET carry_over = $2")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.UpdateCarryOver(context.Background(), "nobody@orono.k12.mn.us", 1.0, ts)
	require.ErrorIs(t, err, sql.ErrNoRows)
}
