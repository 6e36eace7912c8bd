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
	appErrors "github.com/orono-schools/tst-bank-api/pkg/errors"
)

type earnedLedger interface {
	GetByID(ctx context.Context, id string) (*models.EarnedRequest, error)
	List(ctx context.Context, filter models.RequestFilter) ([]models.EarnedRequest, error)
	SetApproved(ctx context.Context, id string, ts time.Time) error
	SetDenied(ctx context.Context, id string, ts time.Time, reason string) error
	Revert(ctx context.Context, id string, ts time.Time) error
	DeleteWithArchive(ctx context.Context, id, archiveID string) error
	UpdateWithArchive(ctx context.Context, req *models.EarnedRequest, archiveID string) error
}

type usedLedger interface {
	GetByID(ctx context.Context, id string) (*models.UsedRequest, error)
	List(ctx context.Context, filter models.RequestFilter) ([]models.UsedRequest, error)
	SetApproved(ctx context.Context, id string, ts time.Time) error
	Revert(ctx context.Context, id string, ts time.Time) error
	Delete(ctx context.Context, id string) error
}

type archiveReader interface {
	FindByRequestID(ctx context.Context, requestID string) (*models.ArchiveRecord, error)
	FindCandidates(ctx context.Context, key models.ArchiveKey) ([]models.ArchiveRecord, error)
}

type transitionNotifier interface {
	EarnedApproved(ctx context.Context, req *models.EarnedRequest)
	EarnedDenied(ctx context.Context, req *models.EarnedRequest, reason string)
	UsageApproved(ctx context.Context, req *models.UsedRequest)
}

// ApprovalService is the ledger state machine: it owns every transition of
// earned and used rows and keeps the archive mirror reconciled.
type ApprovalService struct {
	earned    earnedLedger
	used      usedLedger
	archive   archiveReader
	notifier  transitionNotifier
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewApprovalService constructs the service.
func NewApprovalService(earned earnedLedger, used usedLedger, archive archiveReader, notifier transitionNotifier, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ApprovalService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ApprovalService{
		earned:    earned,
		used:      used,
		archive:   archive,
		notifier:  notifier,
		cache:     cache,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// GetEarned loads one earned row.
func (s *ApprovalService) GetEarned(ctx context.Context, id string) (*models.EarnedRequest, error) {
	return s.loadEarned(ctx, id)
}

// ListEarned lists earned rows matching the filter.
func (s *ApprovalService) ListEarned(ctx context.Context, filter models.RequestFilter) ([]models.EarnedRequest, error) {
	rows, err := s.earned.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list earned requests")
	}
	return rows, nil
}

// GetUsed loads one used row.
func (s *ApprovalService) GetUsed(ctx context.Context, id string) (*models.UsedRequest, error) {
	return s.loadUsed(ctx, id)
}

// ListUsed lists used rows matching the filter.
func (s *ApprovalService) ListUsed(ctx context.Context, filter models.RequestFilter) ([]models.UsedRequest, error) {
	rows, err := s.used.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list used requests")
	}
	return rows, nil
}

// ApproveEarned marks an earned row approved. Approving a denied row is
// allowed and wipes the denial; re-approving refreshes the timestamp.
func (s *ApprovalService) ApproveEarned(ctx context.Context, id string, notify bool) (*models.EarnedRequest, error) {
	req, err := s.loadEarned(ctx, id)
	if err != nil {
		return nil, err
	}
	ts := s.now().UTC()
	if err := s.earned.SetApproved(ctx, id, ts); err != nil {
		return nil, s.mapRowError(err, "failed to approve earned request")
	}
	req.Status = models.StatusApproved
	req.ApprovedAt = &ts
	req.DeniedAt = nil
	req.DenialReason = nil
	req.UpdatedAt = ts

	s.invalidateDashboards(ctx)
	if notify && s.notifier != nil {
		s.notifier.EarnedApproved(ctx, req)
	}
	return req, nil
}

// DenyEarned marks an earned row denied. Reasons are joined with ", " and an
// optional note is appended after ". ". Denying clears any approval state.
func (s *ApprovalService) DenyEarned(ctx context.Context, id string, reasons []string, note string, notify bool) (*models.EarnedRequest, error) {
	reason := buildDenialReason(reasons, note)
	if reason == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "at least one denial reason or a note is required")
	}

	req, err := s.loadEarned(ctx, id)
	if err != nil {
		return nil, err
	}
	ts := s.now().UTC()
	if err := s.earned.SetDenied(ctx, id, ts, reason); err != nil {
		return nil, s.mapRowError(err, "failed to deny earned request")
	}
	req.Status = models.StatusDenied
	req.DeniedAt = &ts
	req.DenialReason = &reason
	req.ApprovedAt = nil
	req.UpdatedAt = ts

	s.invalidateDashboards(ctx)
	if notify && s.notifier != nil {
		s.notifier.EarnedDenied(ctx, req, reason)
	}
	return req, nil
}

// RevertEarned returns an earned row to pending, clearing both decision
// sides. Reverting a row that is already pending is a no-op.
func (s *ApprovalService) RevertEarned(ctx context.Context, id string) (*models.EarnedRequest, error) {
	req, err := s.loadEarned(ctx, id)
	if err != nil {
		return nil, err
	}
	ts := s.now().UTC()
	if err := s.earned.Revert(ctx, id, ts); err != nil {
		return nil, s.mapRowError(err, "failed to revert earned request")
	}
	req.Status = models.StatusPending
	req.ApprovedAt = nil
	req.DeniedAt = nil
	req.DenialReason = nil
	req.UpdatedAt = ts

	s.invalidateDashboards(ctx)
	return req, nil
}

// DeleteEarned removes an earned row and its archive mirror. A missing
// mirror is logged and the canonical delete proceeds.
func (s *ApprovalService) DeleteEarned(ctx context.Context, id string) error {
	req, err := s.loadEarned(ctx, id)
	if err != nil {
		return err
	}
	archiveID := s.resolveArchiveID(ctx, req)
	if err := s.earned.DeleteWithArchive(ctx, id, archiveID); err != nil {
		return s.mapRowError(err, "failed to delete earned request")
	}
	s.invalidateDashboards(ctx)
	return nil
}

// EditEarned propagates edited fields to the canonical row and to the
// archive mirror located by the row's pre-edit key.
func (s *ApprovalService) EditEarned(ctx context.Context, id string, edit models.EarnedRequestEdit) (*models.EarnedRequest, error) {
	if err := s.validator.Struct(edit); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}

	req, err := s.loadEarned(ctx, id)
	if err != nil {
		return nil, err
	}
	// The mirror is matched on the old key before the new values land.
	archiveID := s.resolveArchiveID(ctx, req)

	req.Email = strings.ToLower(edit.Email)
	req.CoveredName = edit.CoveredName
	req.Date = edit.Date
	req.Period = edit.Period
	req.DurationType = edit.DurationType
	req.Hours = edit.Hours

	if err := s.earned.UpdateWithArchive(ctx, req, archiveID); err != nil {
		return nil, s.mapRowError(err, "failed to edit earned request")
	}
	s.invalidateDashboards(ctx)
	return req, nil
}

// ApproveUsed marks a used row approved.
func (s *ApprovalService) ApproveUsed(ctx context.Context, id string, notify bool) (*models.UsedRequest, error) {
	req, err := s.loadUsed(ctx, id)
	if err != nil {
		return nil, err
	}
	ts := s.now().UTC()
	if err := s.used.SetApproved(ctx, id, ts); err != nil {
		return nil, s.mapRowError(err, "failed to approve used request")
	}
	req.Status = models.StatusApproved
	req.ApprovedAt = &ts
	req.UpdatedAt = ts

	s.invalidateDashboards(ctx)
	if notify && s.notifier != nil {
		s.notifier.UsageApproved(ctx, req)
	}
	return req, nil
}

// RevertUsed returns a used row to pending.
func (s *ApprovalService) RevertUsed(ctx context.Context, id string) (*models.UsedRequest, error) {
	req, err := s.loadUsed(ctx, id)
	if err != nil {
		return nil, err
	}
	ts := s.now().UTC()
	if err := s.used.Revert(ctx, id, ts); err != nil {
		return nil, s.mapRowError(err, "failed to revert used request")
	}
	req.Status = models.StatusPending
	req.ApprovedAt = nil
	req.UpdatedAt = ts

	s.invalidateDashboards(ctx)
	return req, nil
}

// DeleteUsed removes a used row. Used rows have no archive mirror.
func (s *ApprovalService) DeleteUsed(ctx context.Context, id string) error {
	if err := s.used.Delete(ctx, id); err != nil {
		return s.mapRowError(err, "failed to delete used request")
	}
	s.invalidateDashboards(ctx)
	return nil
}

// resolveArchiveID locates the archive mirror for an earned row: the stored
// request id link wins; legacy rows fall back to a most-recent-first scan on
// (email, calendar day, loosely compared period), first match wins.
func (s *ApprovalService) resolveArchiveID(ctx context.Context, req *models.EarnedRequest) string {
	if s.archive == nil {
		return ""
	}
	rec, err := s.archive.FindByRequestID(ctx, req.ID)
	if err == nil {
		return rec.ID
	}
	if !errors.Is(err, sql.ErrNoRows) {
		s.logger.Warn("archive lookup failed", zap.String("request_id", req.ID), zap.Error(err))
		return ""
	}

	key := models.ArchiveKey{Email: req.Email, Date: truncateToDay(req.Date), Period: req.Period}
	candidates, err := s.archive.FindCandidates(ctx, key)
	if err != nil {
		s.logger.Warn("archive candidate scan failed", zap.String("request_id", req.ID), zap.Error(err))
		return ""
	}
	for _, candidate := range candidates {
		if loosePeriodEqual(candidate.Period, req.Period) {
			return candidate.ID
		}
	}
	s.logger.Warn("no archive row matched ledger row",
		zap.String("request_id", req.ID),
		zap.String("email", req.Email),
		zap.Time("date", req.Date),
		zap.String("period", req.Period),
	)
	return ""
}

func (s *ApprovalService) loadEarned(ctx context.Context, id string) (*models.EarnedRequest, error) {
	req, err := s.earned.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapRowError(err, "failed to load earned request")
	}
	return req, nil
}

func (s *ApprovalService) loadUsed(ctx context.Context, id string) (*models.UsedRequest, error) {
	req, err := s.used.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapRowError(err, "failed to load used request")
	}
	return req, nil
}

func (s *ApprovalService) mapRowError(err error, message string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.ErrNotFound
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

func (s *ApprovalService) invalidateDashboards(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, "dashboard:*"); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
}

func buildDenialReason(reasons []string, note string) string {
	cleaned := make([]string, 0, len(reasons))
	for _, r := range reasons {
		if trimmed := strings.TrimSpace(r); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	reason := strings.Join(cleaned, ", ")
	note = strings.TrimSpace(note)
	if note != "" {
		if reason != "" {
			reason += ". " + note
		} else {
			reason = note
		}
	}
	return reason
}

func loosePeriodEqual(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
