package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/orono-schools/tst-bank-api/internal/models"
	"github.com/orono-schools/tst-bank-api/pkg/config"
	appErrors "github.com/orono-schools/tst-bank-api/pkg/errors"
)

type submissionEarnedStore interface {
	CreateWithArchive(ctx context.Context, req *models.EarnedRequest, rec *models.ArchiveRecord) error
}

type submissionUsedStore interface {
	Create(ctx context.Context, req *models.UsedRequest) error
}

type submissionDirectory interface {
	FindByEmail(ctx context.Context, email string) (*models.StaffMember, error)
}

// SubmissionService ingests earned and usage claims, resolving missing
// identity fields from the directory and deriving hours from period labels.
type SubmissionService struct {
	earned    submissionEarnedStore
	used      submissionUsedStore
	staff     submissionDirectory
	buildings config.BuildingsConfig
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewSubmissionService constructs the service.
func NewSubmissionService(earned submissionEarnedStore, used submissionUsedStore, staff submissionDirectory, buildings config.BuildingsConfig, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *SubmissionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubmissionService{
		earned:    earned,
		used:      used,
		staff:     staff,
		buildings: buildings,
		cache:     cache,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// RecordEarned appends a pending credit claim and its archive mirror.
func (s *SubmissionService) RecordEarned(ctx context.Context, in models.SubmitEarnedRequest) (*models.EarnedRequest, error) {
	if err := s.validator.Struct(in); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	name, building := s.resolveIdentity(ctx, email, in.RequesterName, in.Building)

	hours := in.Hours
	if hours <= 0 {
		hours = s.calculateHours(s.buildings.Get(building), in.Period, in.DurationType)
	}

	now := s.now().UTC()
	req := &models.EarnedRequest{
		Email:         email,
		RequesterName: name,
		CoveredName:   strings.TrimSpace(in.CoveredName),
		Date:          truncateToDay(in.Date),
		Period:        strings.TrimSpace(in.Period),
		DurationType:  in.DurationType,
		Hours:         hours,
		Building:      building,
		Status:        models.StatusPending,
	}
	rec := &models.ArchiveRecord{
		CoveredName:  req.CoveredName,
		Date:         req.Date,
		Period:       req.Period,
		DurationType: req.DurationType,
		Hours:        req.Hours,
		SubmittedAt:  now,
	}
	if err := s.earned.CreateWithArchive(ctx, req, rec); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record earned request")
	}

	s.invalidateDashboards(ctx)
	return req, nil
}

// RecordUsage appends a pending redemption claim.
func (s *SubmissionService) RecordUsage(ctx context.Context, in models.SubmitUsageRequest) (*models.UsedRequest, error) {
	if err := s.validator.Struct(in); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	name, building := s.resolveIdentity(ctx, email, in.RequesterName, in.Building)

	req := &models.UsedRequest{
		Email:         email,
		RequesterName: name,
		Date:          truncateToDay(in.Date),
		Amount:        in.Amount,
		Note:          strings.TrimSpace(in.Note),
		Building:      building,
		Status:        models.StatusPending,
	}
	if err := s.used.Create(ctx, req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record usage request")
	}

	s.invalidateDashboards(ctx)
	return req, nil
}

// resolveIdentity fills in the requester name and building from the
// directory when the submission omits them. Unknown members fall back to the
// submitted name (or email) and the configured default building.
func (s *SubmissionService) resolveIdentity(ctx context.Context, email, name, building string) (string, string) {
	name = strings.TrimSpace(name)
	building = strings.ToUpper(strings.TrimSpace(building))

	member, err := s.staff.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("directory lookup failed during submission", zap.String("email", email), zap.Error(err))
		}
		member = nil
	}

	if name == "" {
		if member != nil {
			name = member.FullName
		} else {
			name = email
		}
	}
	if building == "" && member != nil {
		building = strings.ToUpper(member.PrimaryBuilding())
	}
	if building == "" || !s.buildings.Exists(building) {
		building = s.buildings.Default
	}
	return name, building
}

// calculateHours derives the credited hours from the period label and
// duration type. Period 6 and Period 7 alone are shortened lunch slots and
// always credit a half hour.
func (s *SubmissionService) calculateHours(building config.Building, period, durationType string) float64 {
	switch periodName(period) {
	case "Period 6", "Period 7":
		return 0.5
	}
	for _, ct := range building.CoverageTypes {
		if strings.EqualFold(ct.Label, durationType) && ct.Hours > 0 {
			return ct.Hours
		}
	}
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(durationType)), "half") {
		return 0.5
	}
	return 1.0
}

// periodName strips the bell times off a period label ("Period 6 - 11:40 -
// 12:06" becomes "Period 6").
func periodName(period string) string {
	head, _, _ := strings.Cut(period, " - ")
	return strings.TrimSpace(head)
}

func (s *SubmissionService) invalidateDashboards(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, "dashboard:*"); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
}
