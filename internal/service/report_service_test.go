package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/orono-schools/tst-bank-api/internal/models"
	appErrors "github.com/orono-schools/tst-bank-api/pkg/errors"
	"github.com/orono-schools/tst-bank-api/pkg/mail"
)

type mockReportLedgers struct {
	earned []models.EarnedRequest
}

func (m *mockReportLedgers) List(ctx context.Context, filter models.RequestFilter) ([]models.EarnedRequest, error) {
	return m.earned, nil
}

type mockReportUsed struct {
	used []models.UsedRequest
}

func (m *mockReportUsed) List(ctx context.Context, filter models.RequestFilter) ([]models.UsedRequest, error) {
	return m.used, nil
}

type mockReportBalances struct {
	balances []models.StaffBalance
}

func (m *mockReportBalances) ComputeBalances(ctx context.Context, building string) ([]models.StaffBalance, error) {
	return m.balances, nil
}

func (m *mockReportBalances) MemberBalance(ctx context.Context, email, building string) (*models.StaffBalance, error) {
	for i := range m.balances {
		if m.balances[i].Email == strings.ToLower(email) {
			return &m.balances[i], nil
		}
	}
	return nil, appErrors.ErrNotFound
}

type mockReportSender struct {
	sent []mail.Message
}

func (m *mockReportSender) Send(ctx context.Context, msg mail.Message) {
	m.sent = append(m.sent, msg)
}

func newReportFixture() (*ReportService, *mockReportSender) {
	earned := &mockReportLedgers{earned: []models.EarnedRequest{
		{ID: "e-1", CoveredName: "Jamie Olson", Period: "Period 3", Date: time.Date(2026, time.February, 10, 0, 0, 0, 0, time.UTC), Hours: 1, Status: models.StatusApproved},
		{ID: "e-2", CoveredName: "Pat Carver", Period: "Period 6", Date: time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC), Hours: 0.5, Status: models.StatusPending},
	}}
	used := &mockReportUsed{used: []models.UsedRequest{
		{ID: "u-1", Date: time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC), Amount: 2, Note: "Personal day", Status: models.StatusApproved},
	}}
	balances := &mockReportBalances{balances: []models.StaffBalance{
		{Email: "alpha@orono.k12.mn.us", FullName: "Alex Park", CarryOver: 1, EarnedHours: 2, UsedHours: 0.5, Balance: 2.5},
		{FullName: "No Email"},
	}}
	sender := &mockReportSender{}
	svc := NewReportService(earned, used, balances, sender, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC) }
	return svc, sender
}

func TestHistoryMergesNewestFirst(t *testing.T) {
	svc, _ := newReportFixture()

	entries, err := svc.History(context.Background(), "alpha@orono.k12.mn.us")
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "e-2", entries[0].ID)
	assert.Equal(t, "u-1", entries[1].ID)
	assert.Equal(t, "e-1", entries[2].ID)

	assert.Equal(t, models.HistoryUsed, entries[1].Kind)
	assert.Equal(t, -2.0, entries[1].Hours)
	assert.Equal(t, "Personal day", entries[1].Description)
}

func TestHistoryRequiresEmail(t *testing.T) {
	svc, _ := newReportFixture()

	_, err := svc.History(context.Background(), "  ")
	require.Error(t, err)
}

func TestExportBalancesCSV(t *testing.T) {
	svc, _ := newReportFixture()

	data, filename, err := svc.ExportBalances(context.Background(), "OMS", "csv")
	require.NoError(t, err)

	assert.Equal(t, "balances-oms-2026-05-01.csv", filename)
	body := string(data)
	assert.Contains(t, body, "Name,Email,Carry Over,Earned,Used,Balance")
	assert.Contains(t, body, "Alex Park,alpha@orono.k12.mn.us,1,2,0.5,2.5")
}

func TestExportBalancesPDF(t *testing.T) {
	svc, _ := newReportFixture()

	data, filename, err := svc.ExportBalances(context.Background(), "OMS", "pdf")
	require.NoError(t, err)
	assert.Equal(t, "balances-oms-2026-05-01.pdf", filename)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))
}

func TestExportBalancesRejectsUnknownFormat(t *testing.T) {
	svc, _ := newReportFixture()

	_, _, err := svc.ExportBalances(context.Background(), "OMS", "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestExportHistoryCSV(t *testing.T) {
	svc, _ := newReportFixture()

	data, filename, err := svc.ExportHistory(context.Background(), "alpha@orono.k12.mn.us", "")
	require.NoError(t, err)
	assert.Equal(t, "history-2026-05-01.csv", filename)
	assert.Contains(t, string(data), "2026-03-05,USED,Personal day,-2,APPROVED")
}

func TestSendStatusEmail(t *testing.T) {
	svc, sender := newReportFixture()

	require.NoError(t, svc.SendStatusEmail(context.Background(), "alpha@orono.k12.mn.us", "OMS"))
	require.Len(t, sender.sent, 1)

	msg := sender.sent[0]
	assert.Equal(t, []string{"alpha@orono.k12.mn.us"}, msg.To)
	assert.Equal(t, "Your Sub Time Balance", msg.Subject)
	assert.Contains(t, msg.HTML, "2.5")
}

func TestSendStatusEmailsCountsFailures(t *testing.T) {
	svc, sender := newReportFixture()

	result, err := svc.SendStatusEmails(context.Background(), "OMS")
	require.NoError(t, err)

	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "No Email", result.Errors[0].ID)
	assert.Len(t, sender.sent, 1)
}
