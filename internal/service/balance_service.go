package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/orono-schools/tst-bank-api/internal/models"
	appErrors "github.com/orono-schools/tst-bank-api/pkg/errors"
)

type earnedSummer interface {
	SumApprovedByEmail(ctx context.Context, building string) (map[string]float64, error)
}

type usedSummer interface {
	SumApprovedByEmail(ctx context.Context, building string) (map[string]float64, error)
}

type balanceStaffLister interface {
	List(ctx context.Context, filter models.StaffFilter) ([]models.StaffMember, error)
}

// BalanceService derives balances from the ledger. Every call is a full
// recompute over approved rows; nothing here is cached.
type BalanceService struct {
	staff  balanceStaffLister
	earned earnedSummer
	used   usedSummer
	logger *zap.Logger
}

// NewBalanceService constructs the service.
func NewBalanceService(staff balanceStaffLister, earned earnedSummer, used usedSummer, logger *zap.Logger) *BalanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BalanceService{staff: staff, earned: earned, used: used, logger: logger}
}

// ComputeBalances recomputes every member's balance in a building:
// carry-over plus approved earned hours minus approved used amounts.
func (s *BalanceService) ComputeBalances(ctx context.Context, building string) ([]models.StaffBalance, error) {
	active := true
	members, err := s.staff.List(ctx, models.StaffFilter{Building: building, Active: &active})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list staff for balances")
	}

	earnedTotals, err := s.earned.SumApprovedByEmail(ctx, building)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sum earned hours")
	}
	usedTotals, err := s.used.SumApprovedByEmail(ctx, building)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sum used amounts")
	}

	balances := make([]models.StaffBalance, 0, len(members))
	for _, member := range members {
		email := strings.ToLower(member.Email)
		earned := earnedTotals[email]
		used := usedTotals[email]
		balances = append(balances, models.StaffBalance{
			Email:       email,
			FullName:    member.FullName,
			Building:    building,
			CarryOver:   member.CarryOver,
			EarnedHours: earned,
			UsedHours:   used,
			Balance:     member.CarryOver + earned - used,
		})
	}
	return balances, nil
}

// MemberBalance recomputes a single member's balance within a building.
func (s *BalanceService) MemberBalance(ctx context.Context, email, building string) (*models.StaffBalance, error) {
	balances, err := s.ComputeBalances(ctx, building)
	if err != nil {
		return nil, err
	}
	email = strings.ToLower(email)
	for i := range balances {
		if balances[i].Email == email {
			return &balances[i], nil
		}
	}
	return nil, appErrors.ErrNotFound
}
