package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/orono-schools/tst-bank-api/internal/models"
	"github.com/orono-schools/tst-bank-api/pkg/config"
)

type mockSubmissionStores struct {
	earnedCreated  []*models.EarnedRequest
	archiveCreated []*models.ArchiveRecord
	usedCreated    []*models.UsedRequest
	members        map[string]*models.StaffMember
}

func (m *mockSubmissionStores) CreateWithArchive(ctx context.Context, req *models.EarnedRequest, rec *models.ArchiveRecord) error {
	req.ID = "earned-new"
	rec.ID = "arch-new"
	rec.RequestID = &req.ID
	m.earnedCreated = append(m.earnedCreated, req)
	m.archiveCreated = append(m.archiveCreated, rec)
	return nil
}

func (m *mockSubmissionStores) Create(ctx context.Context, req *models.UsedRequest) error {
	req.ID = "used-new"
	m.usedCreated = append(m.usedCreated, req)
	return nil
}

func (m *mockSubmissionStores) FindByEmail(ctx context.Context, email string) (*models.StaffMember, error) {
	member, ok := m.members[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return member, nil
}

func testBuildings() config.BuildingsConfig {
	return config.BuildingsConfig{
		Default: "OMS",
		Roster: []config.Building{
			{
				Code: "OMS",
				Periods: []string{
					"Period 3 - 9:52 - 10:39",
					"Period 6 - 11:40 - 12:06",
					"Period 7 - 12:08 - 12:34",
					"Period 6/7 - 11:40 - 12:34",
				},
				CoverageTypes: []config.CoverageType{
					{Label: "Full Period", Hours: 1},
					{Label: "Half Period", Hours: 0.5},
				},
			},
			{Code: "OHS"},
		},
	}
}

func newSubmissionFixture() (*SubmissionService, *mockSubmissionStores) {
	stores := &mockSubmissionStores{
		members: map[string]*models.StaffMember{
			"teacher@orono.k12.mn.us": {
				ID:        "staff-1",
				Email:     "teacher@orono.k12.mn.us",
				FullName:  "Taylor Reed",
				Buildings: []string{"OHS", "OMS"},
			},
		},
	}
	svc := NewSubmissionService(stores, stores, stores, testBuildings(), nil, validator.New(), zap.NewNop())
	svc.now = func() time.Time { return time.Date(2026, time.March, 2, 8, 0, 0, 0, time.UTC) }
	return svc, stores
}

func TestRecordEarnedResolvesIdentityFromDirectory(t *testing.T) {
	svc, stores := newSubmissionFixture()

	req, err := svc.RecordEarned(context.Background(), models.SubmitEarnedRequest{
		Email:       "Teacher@Orono.K12.MN.US",
		CoveredName: "Jamie Olson",
		Date:        time.Date(2026, time.February, 10, 14, 30, 0, 0, time.UTC),
		Period:      "Period 3 - 9:52 - 10:39",
		Hours:       1,
	})
	require.NoError(t, err)

	assert.Equal(t, "teacher@orono.k12.mn.us", req.Email)
	assert.Equal(t, "Taylor Reed", req.RequesterName)
	assert.Equal(t, "OHS", req.Building)
	assert.Equal(t, models.StatusPending, req.Status)
	assert.Equal(t, time.Date(2026, time.February, 10, 0, 0, 0, 0, time.UTC), req.Date)

	require.Len(t, stores.archiveCreated, 1)
	rec := stores.archiveCreated[0]
	require.NotNil(t, rec.RequestID)
	assert.Equal(t, req.ID, *rec.RequestID)
}

func TestRecordEarnedUnknownMemberFallsBack(t *testing.T) {
	svc, _ := newSubmissionFixture()

	req, err := svc.RecordEarned(context.Background(), models.SubmitEarnedRequest{
		Email:       "guest@orono.k12.mn.us",
		CoveredName: "Jamie Olson",
		Date:        time.Date(2026, time.February, 10, 0, 0, 0, 0, time.UTC),
		Period:      "Period 3 - 9:52 - 10:39",
		Hours:       1,
		Building:    "NOPE",
	})
	require.NoError(t, err)

	assert.Equal(t, "guest@orono.k12.mn.us", req.RequesterName)
	assert.Equal(t, "OMS", req.Building)
}

func TestRecordEarnedRejectsInvalidPayload(t *testing.T) {
	svc, _ := newSubmissionFixture()

	_, err := svc.RecordEarned(context.Background(), models.SubmitEarnedRequest{Email: "not-an-email"})
	require.Error(t, err)
}

func TestCalculateHours(t *testing.T) {
	svc, _ := newSubmissionFixture()
	building := testBuildings().Get("OMS")

	tests := []struct {
		name         string
		period       string
		durationType string
		want         float64
	}{
		{"period six alone is a half hour", "Period 6 - 11:40 - 12:06", "Full Period", 0.5},
		{"period seven alone is a half hour", "Period 7 - 12:08 - 12:34", "", 0.5},
		{"combined lunch block is a full hour", "Period 6/7 - 11:40 - 12:34", "Full Period", 1},
		{"matching coverage type label", "Period 3 - 9:52 - 10:39", "Half Period", 0.5},
		{"half prefix fallback", "Period 3 - 9:52 - 10:39", "half day", 0.5},
		{"default full hour", "Period 3 - 9:52 - 10:39", "something else", 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, svc.calculateHours(building, tc.period, tc.durationType))
		})
	}
}

func TestRecordEarnedDerivesHoursWhenOmitted(t *testing.T) {
	svc, _ := newSubmissionFixture()

	req, err := svc.RecordEarned(context.Background(), models.SubmitEarnedRequest{
		Email:       "teacher@orono.k12.mn.us",
		CoveredName: "Jamie Olson",
		Date:        time.Date(2026, time.February, 10, 0, 0, 0, 0, time.UTC),
		Period:      "Period 6 - 11:40 - 12:06",
		Building:    "OMS",
	})
	require.NoError(t, err)
	assert.Equal(t, 0.5, req.Hours)
}

func TestRecordUsage(t *testing.T) {
	svc, stores := newSubmissionFixture()

	req, err := svc.RecordUsage(context.Background(), models.SubmitUsageRequest{
		Email:  "teacher@orono.k12.mn.us",
		Date:   time.Date(2026, time.April, 3, 0, 0, 0, 0, time.UTC),
		Amount: 2,
		Note:   "Personal day",
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusPending, req.Status)
	assert.Equal(t, 2.0, req.Amount)
	assert.Equal(t, "OHS", req.Building)
	require.Len(t, stores.usedCreated, 1)
}
