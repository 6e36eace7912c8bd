package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/orono-schools/tst-bank-api/internal/models"
	appErrors "github.com/orono-schools/tst-bank-api/pkg/errors"
	"github.com/orono-schools/tst-bank-api/pkg/export"
	"github.com/orono-schools/tst-bank-api/pkg/mail"
)

// Export formats accepted by the report endpoints.
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

type reportEarnedReader interface {
	List(ctx context.Context, filter models.RequestFilter) ([]models.EarnedRequest, error)
}

type reportUsedReader interface {
	List(ctx context.Context, filter models.RequestFilter) ([]models.UsedRequest, error)
}

type reportBalances interface {
	ComputeBalances(ctx context.Context, building string) ([]models.StaffBalance, error)
	MemberBalance(ctx context.Context, email, building string) (*models.StaffBalance, error)
}

type reportSender interface {
	Send(ctx context.Context, msg mail.Message)
}

// ReportService produces merged history views, file exports, and per-member
// balance status emails.
type ReportService struct {
	earned   reportEarnedReader
	used     reportUsedReader
	balances reportBalances
	sender   reportSender
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	logger   *zap.Logger
	now      func() time.Time
}

// NewReportService constructs the service.
func NewReportService(earned reportEarnedReader, used reportUsedReader, balances reportBalances, sender reportSender, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		earned:   earned,
		used:     used,
		balances: balances,
		sender:   sender,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		logger:   logger,
		now:      time.Now,
	}
}

// History returns one member's earned and used rows merged into a single
// newest-first timeline.
func (s *ReportService) History(ctx context.Context, email string) ([]models.HistoryEntry, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "email is required")
	}

	earned, err := s.earned.List(ctx, models.RequestFilter{Email: email})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load earned history")
	}
	used, err := s.used.List(ctx, models.RequestFilter{Email: email})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load usage history")
	}

	entries := make([]models.HistoryEntry, 0, len(earned)+len(used))
	for _, req := range earned {
		entries = append(entries, models.HistoryEntry{
			ID:          req.ID,
			Kind:        models.HistoryEarned,
			Date:        req.Date,
			Description: fmt.Sprintf("Covered %s (%s)", req.CoveredName, req.Period),
			Hours:       req.Hours,
			Status:      req.Status,
		})
	}
	for _, req := range used {
		description := "Used banked time"
		if req.Note != "" {
			description = req.Note
		}
		entries = append(entries, models.HistoryEntry{
			ID:          req.ID,
			Kind:        models.HistoryUsed,
			Date:        req.Date,
			Description: description,
			Hours:       -req.Amount,
			Status:      req.Status,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.After(entries[j].Date)
	})
	return entries, nil
}

// ExportBalances renders the building's balance sheet as CSV or PDF.
func (s *ReportService) ExportBalances(ctx context.Context, building, format string) ([]byte, string, error) {
	balances, err := s.balances.ComputeBalances(ctx, building)
	if err != nil {
		return nil, "", err
	}

	dataset := export.Dataset{
		Headers: []string{"Name", "Email", "Carry Over", "Earned", "Used", "Balance"},
	}
	for _, b := range balances {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Name":       b.FullName,
			"Email":      b.Email,
			"Carry Over": formatHours(b.CarryOver),
			"Earned":     formatHours(b.EarnedHours),
			"Used":       formatHours(b.UsedHours),
			"Balance":    formatHours(b.Balance),
		})
	}

	stamp := s.now().UTC().Format("2006-01-02")
	switch strings.ToLower(format) {
	case FormatCSV, "":
		data, err := s.csv.Render(dataset)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return data, fmt.Sprintf("balances-%s-%s.csv", strings.ToLower(building), stamp), nil
	case FormatPDF:
		data, err := s.pdf.Render(dataset, fmt.Sprintf("%s Sub Time Balances", building))
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return data, fmt.Sprintf("balances-%s-%s.pdf", strings.ToLower(building), stamp), nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}

// ExportHistory renders one member's merged timeline as CSV or PDF.
func (s *ReportService) ExportHistory(ctx context.Context, email, format string) ([]byte, string, error) {
	entries, err := s.History(ctx, email)
	if err != nil {
		return nil, "", err
	}

	dataset := export.Dataset{
		Headers: []string{"Date", "Type", "Description", "Hours", "Status"},
	}
	for _, entry := range entries {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Date":        entry.Date.Format("2006-01-02"),
			"Type":        string(entry.Kind),
			"Description": entry.Description,
			"Hours":       formatHours(entry.Hours),
			"Status":      string(entry.Status),
		})
	}

	stamp := s.now().UTC().Format("2006-01-02")
	switch strings.ToLower(format) {
	case FormatCSV, "":
		data, err := s.csv.Render(dataset)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return data, fmt.Sprintf("history-%s.csv", stamp), nil
	case FormatPDF:
		data, err := s.pdf.Render(dataset, "Sub Time History")
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return data, fmt.Sprintf("history-%s.pdf", stamp), nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}

// SendStatusEmail emails one member their current balance summary.
func (s *ReportService) SendStatusEmail(ctx context.Context, email, building string) error {
	balance, err := s.balances.MemberBalance(ctx, email, building)
	if err != nil {
		return err
	}
	s.sender.Send(ctx, s.statusMessage(balance))
	return nil
}

// SendStatusEmails emails every active member in the building their balance
// summary. Per-member failures are counted, not fatal.
func (s *ReportService) SendStatusEmails(ctx context.Context, building string) (models.BatchResult, error) {
	balances, err := s.balances.ComputeBalances(ctx, building)
	if err != nil {
		return models.BatchResult{}, err
	}

	result := models.BatchResult{}
	for i := range balances {
		b := &balances[i]
		if b.Email == "" {
			result.Failed++
			result.Errors = append(result.Errors, models.BatchItemError{ID: b.FullName, Error: "member has no email"})
			continue
		}
		s.sender.Send(ctx, s.statusMessage(b))
		result.Succeeded++
	}
	return result, nil
}

func (s *ReportService) statusMessage(b *models.StaffBalance) mail.Message {
	body := mail.Paragraph(fmt.Sprintf("Hi %s, here is your current sub time balance.", b.FullName)) +
		mail.DetailTable([][2]string{
			{"Carry Over", formatHours(b.CarryOver)},
			{"Earned This Year", formatHours(b.EarnedHours)},
			{"Used This Year", formatHours(b.UsedHours)},
			{"Current Balance", formatHours(b.Balance)},
		})
	return mail.Message{
		To:      []string{b.Email},
		Subject: "Your Sub Time Balance",
		HTML:    mail.RenderShell("Balance Update", body),
	}
}

func formatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}
