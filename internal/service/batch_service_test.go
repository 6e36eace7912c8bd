package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/orono-schools/tst-bank-api/internal/models"
	appErrors "github.com/orono-schools/tst-bank-api/pkg/errors"
)

type mockBatchTransitions struct {
	failing  map[string]error
	approved []string
	denied   []string
	deleted  []string
	reasons  [][]string
	notes    []string
	notified bool
}

func (m *mockBatchTransitions) check(id string) error {
	if err, ok := m.failing[id]; ok {
		return err
	}
	return nil
}

func (m *mockBatchTransitions) ApproveEarned(ctx context.Context, id string, notify bool) (*models.EarnedRequest, error) {
	m.notified = m.notified || notify
	if err := m.check(id); err != nil {
		return nil, err
	}
	m.approved = append(m.approved, id)
	return &models.EarnedRequest{ID: id}, nil
}

func (m *mockBatchTransitions) DenyEarned(ctx context.Context, id string, reasons []string, note string, notify bool) (*models.EarnedRequest, error) {
	m.notified = m.notified || notify
	if err := m.check(id); err != nil {
		return nil, err
	}
	m.denied = append(m.denied, id)
	m.reasons = append(m.reasons, reasons)
	m.notes = append(m.notes, note)
	return &models.EarnedRequest{ID: id}, nil
}

func (m *mockBatchTransitions) DeleteEarned(ctx context.Context, id string) error {
	if err := m.check(id); err != nil {
		return err
	}
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockBatchTransitions) ApproveUsed(ctx context.Context, id string, notify bool) (*models.UsedRequest, error) {
	m.notified = m.notified || notify
	if err := m.check(id); err != nil {
		return nil, err
	}
	m.approved = append(m.approved, id)
	return &models.UsedRequest{ID: id}, nil
}

func (m *mockBatchTransitions) DeleteUsed(ctx context.Context, id string) error {
	if err := m.check(id); err != nil {
		return err
	}
	m.deleted = append(m.deleted, id)
	return nil
}

func TestBatchApproveCountsPerItemFailures(t *testing.T) {
	transitions := &mockBatchTransitions{failing: map[string]error{"bad": appErrors.ErrNotFound}}
	svc := NewBatchService(transitions, zap.NewNop())

	result, err := svc.ApproveEarned(context.Background(), models.BatchRequest{IDs: []string{"a", "bad", "b"}})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "bad", result.Errors[0].ID)
	assert.Equal(t, []string{"a", "b"}, transitions.approved)
}

func TestBatchNeverNotifies(t *testing.T) {
	transitions := &mockBatchTransitions{}
	svc := NewBatchService(transitions, zap.NewNop())

	_, err := svc.ApproveEarned(context.Background(), models.BatchRequest{IDs: []string{"a"}})
	require.NoError(t, err)
	_, err = svc.ApproveUsed(context.Background(), models.BatchRequest{IDs: []string{"b"}})
	require.NoError(t, err)
	_, err = svc.DenyEarned(context.Background(), models.BatchRequest{IDs: []string{"c"}, Reason: "Too late"})
	require.NoError(t, err)

	assert.False(t, transitions.notified)
}

func TestBatchDeleteOrderDoesNotChangeOutcome(t *testing.T) {
	forward := &mockBatchTransitions{failing: map[string]error{"gone": appErrors.ErrNotFound}}
	backward := &mockBatchTransitions{failing: map[string]error{"gone": appErrors.ErrNotFound}}
	ids := []string{"x", "gone", "y", "z"}
	reversed := []string{"z", "y", "gone", "x"}

	first, err := NewBatchService(forward, zap.NewNop()).DeleteEarned(context.Background(), models.BatchRequest{IDs: ids})
	require.NoError(t, err)
	second, err := NewBatchService(backward, zap.NewNop()).DeleteEarned(context.Background(), models.BatchRequest{IDs: reversed})
	require.NoError(t, err)

	assert.Equal(t, first.Succeeded, second.Succeeded)
	assert.Equal(t, first.Failed, second.Failed)
	assert.ElementsMatch(t, forward.deleted, backward.deleted)
}

func TestBatchDenySplitsSemicolonReasons(t *testing.T) {
	transitions := &mockBatchTransitions{}
	svc := NewBatchService(transitions, zap.NewNop())

	_, err := svc.DenyEarned(context.Background(), models.BatchRequest{
		IDs:    []string{"a", "b"},
		Reason: "Too late; No coverage on record",
		Note:   "Contact the office",
	})
	require.NoError(t, err)

	require.Len(t, transitions.reasons, 2)
	assert.Equal(t, []string{"Too late", "No coverage on record"}, transitions.reasons[0])
	assert.Equal(t, "Contact the office", transitions.notes[0])
}

func TestBatchDenyRequiresReasonOrNote(t *testing.T) {
	svc := NewBatchService(&mockBatchTransitions{}, zap.NewNop())

	_, err := svc.DenyEarned(context.Background(), models.BatchRequest{IDs: []string{"a"}})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestBatchRequiresIDs(t *testing.T) {
	svc := NewBatchService(&mockBatchTransitions{}, zap.NewNop())

	_, err := svc.DeleteUsed(context.Background(), models.BatchRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestBatchCountsEmptyIDs(t *testing.T) {
	transitions := &mockBatchTransitions{}
	svc := NewBatchService(transitions, zap.NewNop())

	result, err := svc.DeleteEarned(context.Background(), models.BatchRequest{IDs: []string{"a", "  ", "b"}})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, 1, result.Failed)
}
