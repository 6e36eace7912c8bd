package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/orono-schools/tst-bank-api/internal/models"
	"github.com/orono-schools/tst-bank-api/pkg/config"
	appErrors "github.com/orono-schools/tst-bank-api/pkg/errors"
	"github.com/orono-schools/tst-bank-api/pkg/signing"
)

type coverageStore interface {
	Create(ctx context.Context, req *models.CoverageRequest) error
	GetByID(ctx context.Context, id string) (*models.CoverageRequest, error)
	SetStatus(ctx context.Context, id string, status models.CoverageStatus, respondedAt time.Time) error
}

type coverageDirectory interface {
	FindByEmail(ctx context.Context, email string) (*models.StaffMember, error)
}

type coverageSubmitter interface {
	RecordEarned(ctx context.Context, in models.SubmitEarnedRequest) (*models.EarnedRequest, error)
}

type coverageNotifier interface {
	CoverageRequested(ctx context.Context, cov *models.CoverageRequest, acceptURL, declineURL string)
	CoverageAnswered(ctx context.Context, cov *models.CoverageRequest)
}

// CoverageService lets admins ask a teacher to cover a slot. The teacher
// answers through signed links; accepting records a pending credit claim on
// their behalf.
type CoverageService struct {
	store     coverageStore
	staff     coverageDirectory
	submitter coverageSubmitter
	notifier  coverageNotifier
	signer    *signing.LinkSigner
	buildings config.BuildingsConfig
	portalURL string
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewCoverageService constructs the service.
func NewCoverageService(store coverageStore, staff coverageDirectory, submitter coverageSubmitter, notifier coverageNotifier, signer *signing.LinkSigner, buildings config.BuildingsConfig, portalURL string, validate *validator.Validate, logger *zap.Logger) *CoverageService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CoverageService{
		store:     store,
		staff:     staff,
		submitter: submitter,
		notifier:  notifier,
		signer:    signer,
		buildings: buildings,
		portalURL: strings.TrimRight(portalURL, "/"),
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// Request creates a coverage request and emails the teacher signed
// accept/decline links.
func (s *CoverageService) Request(ctx context.Context, in models.CoverageRequestInput, requestedBy string) (*models.CoverageRequest, error) {
	if err := s.validator.Struct(in); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}

	email := strings.ToLower(strings.TrimSpace(in.TeacherEmail))
	teacherName := email
	building := strings.ToUpper(strings.TrimSpace(in.Building))
	if member, err := s.staff.FindByEmail(ctx, email); err == nil {
		teacherName = member.FullName
		if building == "" {
			building = strings.ToUpper(member.PrimaryBuilding())
		}
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up teacher")
	}
	if building == "" || !s.buildings.Exists(building) {
		building = s.buildings.Default
	}

	cov := &models.CoverageRequest{
		TeacherEmail: email,
		TeacherName:  teacherName,
		CoveredName:  strings.TrimSpace(in.CoveredName),
		Date:         truncateToDay(in.Date),
		Period:       strings.TrimSpace(in.Period),
		DurationType: in.DurationType,
		Building:     building,
		RequestedBy:  strings.ToLower(strings.TrimSpace(requestedBy)),
		Status:       models.CoveragePending,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.store.Create(ctx, cov); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create coverage request")
	}

	acceptURL, err := s.actionURL(cov.ID, signing.ActionAccept)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign coverage link")
	}
	declineURL, err := s.actionURL(cov.ID, signing.ActionDecline)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign coverage link")
	}

	if s.notifier != nil {
		s.notifier.CoverageRequested(ctx, cov, acceptURL, declineURL)
	}
	return cov, nil
}

// HandleAction resolves a signed link click. Accepting records a pending
// credit claim for the teacher; either answer notifies the requesting admin.
func (s *CoverageService) HandleAction(ctx context.Context, token string) (*models.CoverageRequest, error) {
	coverageID, action, _, err := s.signer.Parse(token)
	if err != nil {
		if errors.Is(err, signing.ErrExpiredToken) {
			return nil, appErrors.ErrLinkExpired
		}
		return nil, appErrors.Clone(appErrors.ErrLinkExpired, "link is not valid")
	}

	cov, err := s.store.GetByID(ctx, coverageID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load coverage request")
	}

	status := models.CoverageDeclined
	if action == signing.ActionAccept {
		status = models.CoverageAccepted
	}
	ts := s.now().UTC()
	if err := s.store.SetStatus(ctx, coverageID, status, ts); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "this request has already been answered")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record coverage answer")
	}
	cov.Status = status
	cov.RespondedAt = &ts

	if status == models.CoverageAccepted {
		_, err := s.submitter.RecordEarned(ctx, models.SubmitEarnedRequest{
			Email:         cov.TeacherEmail,
			RequesterName: cov.TeacherName,
			CoveredName:   cov.CoveredName,
			Date:          cov.Date,
			Period:        cov.Period,
			DurationType:  cov.DurationType,
			Building:      cov.Building,
		})
		if err != nil {
			// The answer is already recorded; surface the missing claim in
			// logs rather than failing the link click.
			s.logger.Error("failed to record earned claim for accepted coverage",
				zap.String("coverage_id", cov.ID),
				zap.String("teacher_email", cov.TeacherEmail),
				zap.Error(err),
			)
		}
	}

	if s.notifier != nil {
		s.notifier.CoverageAnswered(ctx, cov)
	}
	return cov, nil
}

func (s *CoverageService) actionURL(coverageID, action string) (string, error) {
	token, _, err := s.signer.Generate(coverageID, action)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/coverage/respond?token=%s", s.portalURL, url.QueryEscape(token)), nil
}
