package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/orono-schools/tst-bank-api/internal/models"
	"github.com/orono-schools/tst-bank-api/pkg/config"
	appErrors "github.com/orono-schools/tst-bank-api/pkg/errors"
)

type dashboardEarnedCounter interface {
	CountPending(ctx context.Context, building string) (int, error)
}

type dashboardUsedCounter interface {
	CountPending(ctx context.Context, building string) (int, error)
}

// DashboardService serves the admin landing counts. Counts are the only
// dashboard data cached; everything else is recomputed on demand.
type DashboardService struct {
	earned dashboardEarnedCounter
	used   dashboardUsedCounter
	cache  *CacheService
	cfg    config.DashboardConfig
	logger *zap.Logger
}

// NewDashboardService constructs the service.
func NewDashboardService(earned dashboardEarnedCounter, used dashboardUsedCounter, cache *CacheService, cfg config.DashboardConfig, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		earned: earned,
		used:   used,
		cache:  cache,
		cfg:    cfg,
		logger: logger,
	}
}

// Counts returns the pending request counts for one building scope.
func (s *DashboardService) Counts(ctx context.Context, building string) (*models.DashboardCounts, error) {
	cacheKey := fmt.Sprintf("dashboard:%s", building)
	if s.cache != nil && s.cache.Enabled() {
		var cached models.DashboardCounts
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	pendingEarned, err := s.earned.CountPending(ctx, building)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count pending earned requests")
	}
	pendingUsed, err := s.used.CountPending(ctx, building)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count pending used requests")
	}

	counts := &models.DashboardCounts{
		Building:      building,
		PendingEarned: pendingEarned,
		PendingUsed:   pendingUsed,
	}

	if s.cache != nil && s.cache.Enabled() {
		ttl := s.cfg.CacheTTL
		if ttl <= 0 {
			ttl = time.Minute
		}
		if err := s.cache.Set(ctx, cacheKey, counts, ttl); err != nil {
			s.logger.Warn("failed to cache dashboard counts", zap.String("building", building), zap.Error(err))
		}
	}
	return counts, nil
}
