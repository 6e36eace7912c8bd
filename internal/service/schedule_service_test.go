package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/orono-schools/tst-bank-api/internal/models"
)

type mockScheduleStore struct {
	cells    map[string][]models.AvailabilitySlot
	replaces int
}

func cellKey(month, period, building string) string {
	return month + "|" + period + "|" + building
}

func (m *mockScheduleStore) ListCell(ctx context.Context, month, period, building string) ([]models.AvailabilitySlot, error) {
	return m.cells[cellKey(month, period, building)], nil
}

func (m *mockScheduleStore) ReplaceCell(ctx context.Context, month, period, building string, slots []models.AvailabilitySlot) error {
	if m.cells == nil {
		m.cells = make(map[string][]models.AvailabilitySlot)
	}
	m.cells[cellKey(month, period, building)] = slots
	m.replaces++
	return nil
}

type mockScheduleEarned struct {
	approved []models.EarnedRequest
	pending  []models.EarnedRequest
}

func (m *mockScheduleEarned) ListApprovedBetween(ctx context.Context, building string, from, to time.Time) ([]models.EarnedRequest, error) {
	return m.approved, nil
}

func (m *mockScheduleEarned) List(ctx context.Context, filter models.RequestFilter) ([]models.EarnedRequest, error) {
	return m.pending, nil
}

type mockScheduleDirectory struct {
	members map[string]*models.StaffMember
}

func (m *mockScheduleDirectory) FindByEmail(ctx context.Context, email string) (*models.StaffMember, error) {
	member, ok := m.members[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return member, nil
}

func newScheduleFixture() (*ScheduleService, *mockScheduleStore, *mockScheduleEarned) {
	store := &mockScheduleStore{}
	earned := &mockScheduleEarned{}
	directory := &mockScheduleDirectory{members: map[string]*models.StaffMember{
		"alpha@orono.k12.mn.us": {FullName: "Alex Park"},
		"bravo@orono.k12.mn.us": {FullName: "Blair Quinn"},
	}}
	svc := NewScheduleService(store, earned, directory, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2026, time.March, 2, 8, 0, 0, 0, time.UTC) }
	return svc, store, earned
}

func TestWriteCellInvertsDayGrid(t *testing.T) {
	svc, store, _ := newScheduleFixture()

	err := svc.WriteCell(context.Background(), models.ScheduleUpdate{
		Month:    "October",
		Period:   "Period 3",
		Building: "OMS",
		Days: map[string][]string{
			"Wednesday": {"Bravo@orono.k12.mn.us"},
			"Monday":    {"alpha@orono.k12.mn.us", "bravo@orono.k12.mn.us"},
			"Friday":    {"alpha@orono.k12.mn.us"},
		},
	})
	require.NoError(t, err)

	slots := store.cells[cellKey("October", "Period 3", "OMS")]
	require.Len(t, slots, 2)

	assert.Equal(t, "alpha@orono.k12.mn.us", slots[0].TeacherEmail)
	assert.Equal(t, "Alex Park", slots[0].TeacherName)
	assert.Equal(t, "Monday,Friday", slots[0].Days)

	assert.Equal(t, "bravo@orono.k12.mn.us", slots[1].TeacherEmail)
	assert.Equal(t, "Monday,Wednesday", slots[1].Days)
}

func TestWriteCellIsIdempotent(t *testing.T) {
	svc, store, _ := newScheduleFixture()
	update := models.ScheduleUpdate{
		Month:    "October",
		Period:   "Period 3",
		Building: "OMS",
		Days: map[string][]string{
			"Monday":  {"alpha@orono.k12.mn.us"},
			"Tuesday": {"bravo@orono.k12.mn.us", "alpha@orono.k12.mn.us"},
		},
	}

	require.NoError(t, svc.WriteCell(context.Background(), update))
	first := store.cells[cellKey("October", "Period 3", "OMS")]

	require.NoError(t, svc.WriteCell(context.Background(), update))
	second := store.cells[cellKey("October", "Period 3", "OMS")]

	assert.Equal(t, first, second)
	assert.Equal(t, 2, store.replaces)
}

func TestWriteCellUnknownTeacherFallsBackToEmail(t *testing.T) {
	svc, store, _ := newScheduleFixture()

	err := svc.WriteCell(context.Background(), models.ScheduleUpdate{
		Month:    "May",
		Period:   "Period 1",
		Building: "OMS",
		Days:     map[string][]string{"Thursday": {"ghost@orono.k12.mn.us"}},
	})
	require.NoError(t, err)

	slots := store.cells[cellKey("May", "Period 1", "OMS")]
	require.Len(t, slots, 1)
	assert.Equal(t, "ghost@orono.k12.mn.us", slots[0].TeacherName)
}

func TestWriteCellRejectsNonSchoolMonth(t *testing.T) {
	svc, _, _ := newScheduleFixture()

	err := svc.WriteCell(context.Background(), models.ScheduleUpdate{Month: "July", Period: "Period 1"})
	require.Error(t, err)
}

func TestReadCellEnrichesRows(t *testing.T) {
	svc, store, earned := newScheduleFixture()
	store.cells = map[string][]models.AvailabilitySlot{
		cellKey("October", "Period 3", "OMS"): {
			// Legacy rows carry a space after the comma; reads tolerate both.
			{TeacherEmail: "Alpha@orono.k12.mn.us", TeacherName: "Alex Park", Days: "Monday, Friday"},
		},
	}
	earned.approved = []models.EarnedRequest{
		{Email: "alpha@orono.k12.mn.us", Date: time.Date(2025, time.October, 6, 0, 0, 0, 0, time.UTC), Hours: 1},
		{Email: "alpha@orono.k12.mn.us", Date: time.Date(2025, time.October, 20, 0, 0, 0, 0, time.UTC), Hours: 0.5},
		{Email: "alpha@orono.k12.mn.us", Date: time.Date(2025, time.November, 3, 0, 0, 0, 0, time.UTC), Hours: 1},
	}
	earned.pending = []models.EarnedRequest{
		{ID: "p-1", Email: "alpha@orono.k12.mn.us", Period: "Period 3", Hours: 1},
	}

	rows, err := svc.ReadCell(context.Background(), "October", "Period 3", "OMS")
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, "alpha@orono.k12.mn.us", row.TeacherEmail)
	assert.Equal(t, []string{"Monday", "Friday"}, row.Days)
	assert.Equal(t, 1.5, row.MonthlyHours["October"])
	assert.Equal(t, 1.0, row.MonthlyHours["November"])
	require.Len(t, row.PendingRequests, 1)
	assert.Equal(t, "p-1", row.PendingRequests[0].ID)
}

func TestSchoolYearWindow(t *testing.T) {
	tests := []struct {
		name string
		ts   time.Time
		from time.Time
	}{
		{
			"mid summer belongs to the prior year",
			time.Date(2026, time.July, 15, 0, 0, 0, 0, time.UTC),
			time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			"september starts the new year",
			time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			"august first is already the new year",
			time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC),
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			from, to := SchoolYearWindow(tc.ts)
			assert.Equal(t, tc.from, from)
			assert.Equal(t, tc.from.AddDate(1, 0, 0), to)
		})
	}
}
