package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/orono-schools/tst-bank-api/internal/models"
	appErrors "github.com/orono-schools/tst-bank-api/pkg/errors"
)

type batchTransitions interface {
	ApproveEarned(ctx context.Context, id string, notify bool) (*models.EarnedRequest, error)
	DenyEarned(ctx context.Context, id string, reasons []string, note string, notify bool) (*models.EarnedRequest, error)
	DeleteEarned(ctx context.Context, id string) error
	ApproveUsed(ctx context.Context, id string, notify bool) (*models.UsedRequest, error)
	DeleteUsed(ctx context.Context, id string) error
}

// BatchService applies one transition over a list of ids. Failures are
// captured per id and never abort the remainder; batch operations do not
// send notification emails.
type BatchService struct {
	transitions batchTransitions
	logger      *zap.Logger
}

// NewBatchService constructs the service.
func NewBatchService(transitions batchTransitions, logger *zap.Logger) *BatchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchService{transitions: transitions, logger: logger}
}

// ApproveEarned approves every identified earned row.
func (s *BatchService) ApproveEarned(ctx context.Context, req models.BatchRequest) (models.BatchResult, error) {
	return s.run(ctx, req.IDs, func(ctx context.Context, id string) error {
		_, err := s.transitions.ApproveEarned(ctx, id, false)
		return err
	})
}

// DenyEarned denies every identified earned row with the shared reason.
func (s *BatchService) DenyEarned(ctx context.Context, req models.BatchRequest) (models.BatchResult, error) {
	reasons := splitReasons(req.Reason)
	if len(reasons) == 0 && strings.TrimSpace(req.Note) == "" {
		return models.BatchResult{}, appErrors.Clone(appErrors.ErrValidation, "a denial reason or note is required")
	}
	return s.run(ctx, req.IDs, func(ctx context.Context, id string) error {
		_, err := s.transitions.DenyEarned(ctx, id, reasons, req.Note, false)
		return err
	})
}

// DeleteEarned deletes every identified earned row and its archive mirror.
func (s *BatchService) DeleteEarned(ctx context.Context, req models.BatchRequest) (models.BatchResult, error) {
	return s.run(ctx, req.IDs, s.transitions.DeleteEarned)
}

// ApproveUsed approves every identified used row.
func (s *BatchService) ApproveUsed(ctx context.Context, req models.BatchRequest) (models.BatchResult, error) {
	return s.run(ctx, req.IDs, func(ctx context.Context, id string) error {
		_, err := s.transitions.ApproveUsed(ctx, id, false)
		return err
	})
}

// DeleteUsed deletes every identified used row.
func (s *BatchService) DeleteUsed(ctx context.Context, req models.BatchRequest) (models.BatchResult, error) {
	return s.run(ctx, req.IDs, s.transitions.DeleteUsed)
}

func (s *BatchService) run(ctx context.Context, ids []string, op func(context.Context, string) error) (models.BatchResult, error) {
	if len(ids) == 0 {
		return models.BatchResult{}, appErrors.Clone(appErrors.ErrValidation, "ids is required")
	}
	result := models.BatchResult{}
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			result.Failed++
			result.Errors = append(result.Errors, models.BatchItemError{ID: id, Error: "empty id"})
			continue
		}
		if err := op(ctx, id); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, models.BatchItemError{ID: id, Error: err.Error()})
			s.logger.Warn("batch item failed", zap.String("id", id), zap.Error(err))
			continue
		}
		result.Succeeded++
	}
	return result, nil
}

func splitReasons(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ";")
	reasons := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			reasons = append(reasons, trimmed)
		}
	}
	return reasons
}
