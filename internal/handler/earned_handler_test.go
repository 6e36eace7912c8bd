package handler

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/orono-schools/tst-bank-api/internal/middleware"
	"github.com/orono-schools/tst-bank-api/internal/models"
	"github.com/orono-schools/tst-bank-api/internal/service"
)

type fakeEarnedLedger struct {
	rows map[string]*models.EarnedRequest
}

func (f *fakeEarnedLedger) GetByID(ctx context.Context, id string) (*models.EarnedRequest, error) {
	row, ok := f.rows[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *row
	return &copied, nil
}

func (f *fakeEarnedLedger) List(ctx context.Context, filter models.RequestFilter) ([]models.EarnedRequest, error) {
	return nil, nil
}

func (f *fakeEarnedLedger) SetApproved(ctx context.Context, id string, ts time.Time) error {
	return nil
}

func (f *fakeEarnedLedger) SetDenied(ctx context.Context, id string, ts time.Time, reason string) error {
	return nil
}

func (f *fakeEarnedLedger) Revert(ctx context.Context, id string, ts time.Time) error { return nil }

func (f *fakeEarnedLedger) DeleteWithArchive(ctx context.Context, id, archiveID string) error {
	return nil
}

func (f *fakeEarnedLedger) UpdateWithArchive(ctx context.Context, req *models.EarnedRequest, archiveID string) error {
	return nil
}

type fakeUsedLedger struct {
	rows map[string]*models.UsedRequest
}

func (f *fakeUsedLedger) GetByID(ctx context.Context, id string) (*models.UsedRequest, error) {
	row, ok := f.rows[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *row
	return &copied, nil
}

func (f *fakeUsedLedger) List(ctx context.Context, filter models.RequestFilter) ([]models.UsedRequest, error) {
	return nil, nil
}

func (f *fakeUsedLedger) SetApproved(ctx context.Context, id string, ts time.Time) error {
	return nil
}

func (f *fakeUsedLedger) Revert(ctx context.Context, id string, ts time.Time) error { return nil }

func (f *fakeUsedLedger) Delete(ctx context.Context, id string) error { return nil }

func newLedgerHandlers() (*EarnedHandler, *UsedHandler) {
	earned := &fakeEarnedLedger{rows: map[string]*models.EarnedRequest{
		"earned-1": {ID: "earned-1", Email: "owner@orono.k12.mn.us", Building: "OMS"},
	}}
	used := &fakeUsedLedger{rows: map[string]*models.UsedRequest{
		"used-1": {ID: "used-1", Email: "owner@orono.k12.mn.us", Building: "OMS"},
	}}
	approvals := service.NewApprovalService(earned, used, nil, nil, nil, nil, zap.NewNop())
	return NewEarnedHandler(nil, approvals, nil), NewUsedHandler(nil, approvals, nil)
}

func getRequestAs(t *testing.T, handle gin.HandlerFunc, id string, claims *models.JWTClaims) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Params = gin.Params{{Key: "id", Value: id}}
	if claims != nil {
		c.Set(middleware.ContextUserKey, claims)
	}
	handle(c)
	return rec
}

func TestGetEarnedRestrictedToOwnerOrAdmin(t *testing.T) {
	earnedHandler, _ := newLedgerHandlers()

	owner := &models.JWTClaims{Email: "Owner@orono.k12.mn.us", Role: models.RoleTeacher}
	rec := getRequestAs(t, earnedHandler.Get, "earned-1", owner)
	assert.Equal(t, http.StatusOK, rec.Code)

	admin := &models.JWTClaims{Email: "admin@orono.k12.mn.us", Role: models.RoleAdmin}
	rec = getRequestAs(t, earnedHandler.Get, "earned-1", admin)
	assert.Equal(t, http.StatusOK, rec.Code)

	stranger := &models.JWTClaims{Email: "other@orono.k12.mn.us", Role: models.RoleTeacher}
	rec = getRequestAs(t, earnedHandler.Get, "earned-1", stranger)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGetUsedRestrictedToOwnerOrAdmin(t *testing.T) {
	_, usedHandler := newLedgerHandlers()

	stranger := &models.JWTClaims{Email: "other@orono.k12.mn.us", Role: models.RoleTeacher}
	rec := getRequestAs(t, usedHandler.Get, "used-1", stranger)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	superadmin := &models.JWTClaims{Email: "root@orono.k12.mn.us", Role: models.RoleSuperAdmin}
	rec = getRequestAs(t, usedHandler.Get, "used-1", superadmin)
	assert.Equal(t, http.StatusOK, rec.Code)
}
