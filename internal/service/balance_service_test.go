package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/orono-schools/tst-bank-api/internal/models"
	appErrors "github.com/orono-schools/tst-bank-api/pkg/errors"
)

type mockBalanceLister struct {
	members []models.StaffMember
}

func (m *mockBalanceLister) List(ctx context.Context, filter models.StaffFilter) ([]models.StaffMember, error) {
	return m.members, nil
}

type mockSummer struct {
	totals map[string]float64
}

func (m *mockSummer) SumApprovedByEmail(ctx context.Context, building string) (map[string]float64, error) {
	return m.totals, nil
}

func TestComputeBalances(t *testing.T) {
	staff := &mockBalanceLister{members: []models.StaffMember{
		{Email: "Alpha@orono.k12.mn.us", FullName: "Alex Park", CarryOver: 2},
		{Email: "bravo@orono.k12.mn.us", FullName: "Blair Quinn", CarryOver: 0},
	}}
	earned := &mockSummer{totals: map[string]float64{"alpha@orono.k12.mn.us": 4.5, "bravo@orono.k12.mn.us": 1}}
	used := &mockSummer{totals: map[string]float64{"alpha@orono.k12.mn.us": 3}}

	svc := NewBalanceService(staff, earned, used, zap.NewNop())
	balances, err := svc.ComputeBalances(context.Background(), "OMS")
	require.NoError(t, err)
	require.Len(t, balances, 2)

	assert.Equal(t, "alpha@orono.k12.mn.us", balances[0].Email)
	assert.Equal(t, 4.5, balances[0].EarnedHours)
	assert.Equal(t, 3.0, balances[0].UsedHours)
	assert.Equal(t, 3.5, balances[0].Balance)

	assert.Equal(t, 1.0, balances[1].Balance)
}

// sharedEarnedStore backs both the state machine and the balance recompute so
// transitions are immediately visible to the summer.
type sharedEarnedStore struct {
	rows map[string]*models.EarnedRequest
}

func (s *sharedEarnedStore) GetByID(ctx context.Context, id string) (*models.EarnedRequest, error) {
	row, ok := s.rows[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *row
	return &copied, nil
}

func (s *sharedEarnedStore) List(ctx context.Context, filter models.RequestFilter) ([]models.EarnedRequest, error) {
	out := make([]models.EarnedRequest, 0, len(s.rows))
	for _, row := range s.rows {
		out = append(out, *row)
	}
	return out, nil
}

func (s *sharedEarnedStore) SetApproved(ctx context.Context, id string, ts time.Time) error {
	row, ok := s.rows[id]
	if !ok {
		return sql.ErrNoRows
	}
	row.Status = models.StatusApproved
	return nil
}

func (s *sharedEarnedStore) SetDenied(ctx context.Context, id string, ts time.Time, reason string) error {
	row, ok := s.rows[id]
	if !ok {
		return sql.ErrNoRows
	}
	row.Status = models.StatusDenied
	return nil
}

func (s *sharedEarnedStore) Revert(ctx context.Context, id string, ts time.Time) error {
	row, ok := s.rows[id]
	if !ok {
		return sql.ErrNoRows
	}
	row.Status = models.StatusPending
	return nil
}

func (s *sharedEarnedStore) DeleteWithArchive(ctx context.Context, id, archiveID string) error {
	if _, ok := s.rows[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.rows, id)
	return nil
}

func (s *sharedEarnedStore) UpdateWithArchive(ctx context.Context, req *models.EarnedRequest, archiveID string) error {
	if _, ok := s.rows[req.ID]; !ok {
		return sql.ErrNoRows
	}
	copied := *req
	s.rows[req.ID] = &copied
	return nil
}

func (s *sharedEarnedStore) SumApprovedByEmail(ctx context.Context, building string) (map[string]float64, error) {
	totals := make(map[string]float64)
	for _, row := range s.rows {
		if row.Status == models.StatusApproved {
			totals[strings.ToLower(row.Email)] += row.Hours
		}
	}
	return totals, nil
}

type sharedUsedStore struct {
	rows map[string]*models.UsedRequest
}

func (s *sharedUsedStore) GetByID(ctx context.Context, id string) (*models.UsedRequest, error) {
	row, ok := s.rows[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *row
	return &copied, nil
}

func (s *sharedUsedStore) List(ctx context.Context, filter models.RequestFilter) ([]models.UsedRequest, error) {
	out := make([]models.UsedRequest, 0, len(s.rows))
	for _, row := range s.rows {
		out = append(out, *row)
	}
	return out, nil
}

func (s *sharedUsedStore) SetApproved(ctx context.Context, id string, ts time.Time) error {
	row, ok := s.rows[id]
	if !ok {
		return sql.ErrNoRows
	}
	row.Status = models.StatusApproved
	return nil
}

func (s *sharedUsedStore) Revert(ctx context.Context, id string, ts time.Time) error {
	row, ok := s.rows[id]
	if !ok {
		return sql.ErrNoRows
	}
	row.Status = models.StatusPending
	return nil
}

func (s *sharedUsedStore) Delete(ctx context.Context, id string) error {
	if _, ok := s.rows[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.rows, id)
	return nil
}

func (s *sharedUsedStore) SumApprovedByEmail(ctx context.Context, building string) (map[string]float64, error) {
	totals := make(map[string]float64)
	for _, row := range s.rows {
		if row.Status == models.StatusApproved {
			totals[strings.ToLower(row.Email)] += row.Amount
		}
	}
	return totals, nil
}

func TestBalanceHoldsAfterEveryTransition(t *testing.T) {
	earned := &sharedEarnedStore{rows: map[string]*models.EarnedRequest{
		"e-1": {ID: "e-1", Email: "alpha@orono.k12.mn.us", Hours: 2, Building: "OMS", Status: models.StatusPending},
	}}
	used := &sharedUsedStore{rows: map[string]*models.UsedRequest{
		"u-1": {ID: "u-1", Email: "alpha@orono.k12.mn.us", Amount: 1.5, Building: "OMS", Status: models.StatusPending},
	}}
	staff := &mockBalanceLister{members: []models.StaffMember{
		{Email: "alpha@orono.k12.mn.us", FullName: "Alex Park", CarryOver: 1},
	}}

	approvals := NewApprovalService(earned, used, nil, nil, nil, nil, zap.NewNop())
	balances := NewBalanceService(staff, earned, used, zap.NewNop())

	memberBalance := func() float64 {
		b, err := balances.MemberBalance(context.Background(), "alpha@orono.k12.mn.us", "OMS")
		require.NoError(t, err)
		return b.Balance
	}

	// Pending rows contribute nothing: carry-over only.
	assert.Equal(t, 1.0, memberBalance())

	_, err := approvals.ApproveEarned(context.Background(), "e-1", false)
	require.NoError(t, err)
	assert.Equal(t, 3.0, memberBalance())

	_, err = approvals.ApproveUsed(context.Background(), "u-1", false)
	require.NoError(t, err)
	assert.Equal(t, 1.5, memberBalance())

	_, err = approvals.RevertEarned(context.Background(), "e-1")
	require.NoError(t, err)
	assert.Equal(t, -0.5, memberBalance())

	_, err = approvals.RevertUsed(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, 1.0, memberBalance())
}

func TestMemberBalance(t *testing.T) {
	staff := &mockBalanceLister{members: []models.StaffMember{
		{Email: "alpha@orono.k12.mn.us", FullName: "Alex Park", CarryOver: 1},
	}}
	svc := NewBalanceService(staff, &mockSummer{}, &mockSummer{}, zap.NewNop())

	balance, err := svc.MemberBalance(context.Background(), "Alpha@orono.k12.mn.us", "OMS")
	require.NoError(t, err)
	assert.Equal(t, 1.0, balance.Balance)

	_, err = svc.MemberBalance(context.Background(), "ghost@orono.k12.mn.us", "OMS")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}
