package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/orono-schools/tst-bank-api/internal/models"
	"github.com/orono-schools/tst-bank-api/internal/service"
	appErrors "github.com/orono-schools/tst-bank-api/pkg/errors"
)

type fakeBatchTransitions struct {
	failing map[string]error
}

func (f *fakeBatchTransitions) check(id string) error {
	if err, ok := f.failing[id]; ok {
		return err
	}
	return nil
}

func (f *fakeBatchTransitions) ApproveEarned(ctx context.Context, id string, notify bool) (*models.EarnedRequest, error) {
	if err := f.check(id); err != nil {
		return nil, err
	}
	return &models.EarnedRequest{ID: id}, nil
}

func (f *fakeBatchTransitions) DenyEarned(ctx context.Context, id string, reasons []string, note string, notify bool) (*models.EarnedRequest, error) {
	if err := f.check(id); err != nil {
		return nil, err
	}
	return &models.EarnedRequest{ID: id}, nil
}

func (f *fakeBatchTransitions) DeleteEarned(ctx context.Context, id string) error {
	return f.check(id)
}

func (f *fakeBatchTransitions) ApproveUsed(ctx context.Context, id string, notify bool) (*models.UsedRequest, error) {
	if err := f.check(id); err != nil {
		return nil, err
	}
	return &models.UsedRequest{ID: id}, nil
}

func (f *fakeBatchTransitions) DeleteUsed(ctx context.Context, id string) error {
	return f.check(id)
}

func TestBatchHandlerApproveEarned(t *testing.T) {
	gin.SetMode(gin.TestMode)
	batch := service.NewBatchService(&fakeBatchTransitions{failing: map[string]error{"bad": appErrors.ErrNotFound}}, zap.NewNop())
	handler := NewBatchHandler(batch)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/batch/earned/approve", strings.NewReader(`{"ids":["a","bad","b"]}`))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.ApproveEarned(c)

	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data models.BatchResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, 2, envelope.Data.Succeeded)
	assert.Equal(t, 1, envelope.Data.Failed)
}

func TestBatchHandlerRejectsMissingIDs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	batch := service.NewBatchService(&fakeBatchTransitions{}, zap.NewNop())
	handler := NewBatchHandler(batch)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/batch/used/delete", strings.NewReader(`{}`))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.DeleteUsed(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
