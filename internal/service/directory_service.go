package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/orono-schools/tst-bank-api/internal/models"
	"github.com/orono-schools/tst-bank-api/pkg/config"
	appErrors "github.com/orono-schools/tst-bank-api/pkg/errors"
)

type staffStore interface {
	FindByEmail(ctx context.Context, email string) (*models.StaffMember, error)
	List(ctx context.Context, filter models.StaffFilter) ([]models.StaffMember, error)
	UpdateCarryOver(ctx context.Context, email string, carryOver float64, updatedAt time.Time) error
}

// DirectoryService exposes the staff read model and resolves building scopes.
type DirectoryService struct {
	staff     staffStore
	buildings config.BuildingsConfig
	cache     *CacheService
	cacheTTL  time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

// NewDirectoryService constructs the service.
func NewDirectoryService(staff staffStore, buildings config.BuildingsConfig, cache *CacheService, cacheTTL time.Duration, logger *zap.Logger) *DirectoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DirectoryService{
		staff:     staff,
		buildings: buildings,
		cache:     cache,
		cacheTTL:  cacheTTL,
		logger:    logger,
		now:       time.Now,
	}
}

// ResolveScope maps a requested building filter onto the scope the caller may
// see. Superadmins get any configured building; everyone else silently falls
// back to their own primary building when the request is foreign or unknown.
func (s *DirectoryService) ResolveScope(actor *models.JWTClaims, requested string) (string, error) {
	if actor == nil {
		return "", appErrors.ErrUnauthorized
	}
	requested = strings.ToUpper(strings.TrimSpace(requested))

	if actor.Role == models.RoleSuperAdmin {
		if requested == "" {
			return s.buildings.Default, nil
		}
		if !s.buildings.Exists(requested) {
			return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown building: %s", requested))
		}
		return requested, nil
	}

	primary := strings.ToUpper(actor.PrimaryBuilding())
	if primary == "" {
		primary = s.buildings.Default
	}
	if requested == "" || !s.buildings.Exists(requested) {
		return primary, nil
	}
	for _, b := range actor.Buildings {
		if strings.EqualFold(b, requested) {
			return requested, nil
		}
	}
	return primary, nil
}

// ListStaff returns directory entries for a building scope. Plain listings
// are cached; filtered ones go straight to the store.
func (s *DirectoryService) ListStaff(ctx context.Context, actor *models.JWTClaims, building string, filter models.StaffFilter) ([]models.StaffMember, error) {
	scope, err := s.ResolveScope(actor, building)
	if err != nil {
		return nil, err
	}
	filter.Building = scope

	plain := filter.Role == nil && filter.Active == nil && filter.Search == ""
	cacheKey := fmt.Sprintf("directory:%s", scope)
	if plain && s.cache != nil {
		var cached []models.StaffMember
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return cached, nil
		}
	}

	members, err := s.staff.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list staff")
	}

	if plain && s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, members, s.cacheTTL); err != nil {
			s.logger.Warn("directory cache write failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}
	return members, nil
}

// GetMember loads one directory entry by email.
func (s *DirectoryService) GetMember(ctx context.Context, email string) (*models.StaffMember, error) {
	member, err := s.staff.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load staff member")
	}
	return member, nil
}

// UpdateCarryOver adjusts one member's carry-over hours and drops cached
// listings so balances reflect the change immediately.
func (s *DirectoryService) UpdateCarryOver(ctx context.Context, update models.CarryOverUpdate) error {
	if strings.TrimSpace(update.Email) == "" {
		return appErrors.Clone(appErrors.ErrValidation, "email is required")
	}
	if err := s.staff.UpdateCarryOver(ctx, update.Email, update.CarryOver, s.now().UTC()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrNotFound
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update carry over")
	}
	s.invalidateCaches(ctx)
	return nil
}

func (s *DirectoryService) invalidateCaches(ctx context.Context) {
	if s.cache == nil {
		return
	}
	for _, pattern := range []string{"directory:*", "dashboard:*"} {
		if err := s.cache.Invalidate(ctx, pattern); err != nil {
			s.logger.Warn("cache invalidation failed", zap.String("pattern", pattern), zap.Error(err))
		}
	}
}
