package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/orono-schools/tst-bank-api/internal/models"
	appErrors "github.com/orono-schools/tst-bank-api/pkg/errors"
)

// monthOrder is the school-year month sequence used for schedule views.
var monthOrder = []string{
	"September", "October", "November", "December", "January",
	"February", "March", "April", "May", "June",
}

var weekdayOrder = map[string]int{
	"Monday": 0, "Mon": 0,
	"Tuesday": 1, "Tue": 1,
	"Wednesday": 2, "Wed": 2,
	"Thursday": 3, "Thu": 3,
	"Friday": 4, "Fri": 4,
}

type scheduleStore interface {
	ListCell(ctx context.Context, month, period, building string) ([]models.AvailabilitySlot, error)
	ReplaceCell(ctx context.Context, month, period, building string, slots []models.AvailabilitySlot) error
}

type scheduleEarnedReader interface {
	ListApprovedBetween(ctx context.Context, building string, from, to time.Time) ([]models.EarnedRequest, error)
	List(ctx context.Context, filter models.RequestFilter) ([]models.EarnedRequest, error)
}

type scheduleDirectory interface {
	FindByEmail(ctx context.Context, email string) (*models.StaffMember, error)
}

// ScheduleService syncs the availability grid with stored rows and enriches
// reads with each teacher's school-year hours and pending requests.
type ScheduleService struct {
	slots  scheduleStore
	earned scheduleEarnedReader
	staff  scheduleDirectory
	logger *zap.Logger
	now    func() time.Time
}

// NewScheduleService constructs the service.
func NewScheduleService(slots scheduleStore, earned scheduleEarnedReader, staff scheduleDirectory, logger *zap.Logger) *ScheduleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{
		slots:  slots,
		earned: earned,
		staff:  staff,
		logger: logger,
		now:    time.Now,
	}
}

// ReadCell returns the enriched schedule rows for one (month, period) cell.
func (s *ScheduleService) ReadCell(ctx context.Context, month, period, building string) ([]models.ScheduleRow, error) {
	month = strings.TrimSpace(month)
	if !validMonth(month) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "month must be a school-year month")
	}
	if strings.TrimSpace(period) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "period is required")
	}

	slots, err := s.slots.ListCell(ctx, month, period, building)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read schedule cell")
	}

	from, to := SchoolYearWindow(s.now().UTC())
	approved, err := s.earned.ListApprovedBetween(ctx, building, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load approved hours")
	}
	hoursByEmail := make(map[string]map[string]float64)
	for _, req := range approved {
		email := strings.ToLower(req.Email)
		if hoursByEmail[email] == nil {
			hoursByEmail[email] = make(map[string]float64)
		}
		hoursByEmail[email][req.Date.Month().String()] += req.Hours
	}

	pendingStatus := models.StatusPending
	pending, err := s.earned.List(ctx, models.RequestFilter{Building: building, Status: &pendingStatus})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load pending requests")
	}
	pendingByEmail := make(map[string][]models.PendingSummary)
	for _, req := range pending {
		email := strings.ToLower(req.Email)
		pendingByEmail[email] = append(pendingByEmail[email], models.PendingSummary{
			ID:          req.ID,
			Date:        req.Date,
			Period:      req.Period,
			CoveredName: req.CoveredName,
			Hours:       req.Hours,
		})
	}

	rows := make([]models.ScheduleRow, 0, len(slots))
	for _, slot := range slots {
		email := strings.ToLower(slot.TeacherEmail)
		rows = append(rows, models.ScheduleRow{
			TeacherEmail:    email,
			TeacherName:     slot.TeacherName,
			Days:            splitDays(slot.Days),
			MonthlyHours:    hoursByEmail[email],
			PendingRequests: pendingByEmail[email],
		})
	}
	return rows, nil
}

// WriteCell rebuilds one (month, period) cell from a day-to-teachers grid.
// The stored rows are fully replaced, so writing the same grid twice leaves
// the same state.
func (s *ScheduleService) WriteCell(ctx context.Context, update models.ScheduleUpdate) error {
	update.Month = strings.TrimSpace(update.Month)
	if !validMonth(update.Month) {
		return appErrors.Clone(appErrors.ErrValidation, "month must be a school-year month")
	}
	if strings.TrimSpace(update.Period) == "" {
		return appErrors.Clone(appErrors.ErrValidation, "period is required")
	}

	// Invert day -> emails into email -> ordered day set.
	daysByEmail := make(map[string][]string)
	for day, emails := range update.Days {
		day = strings.TrimSpace(day)
		if day == "" {
			continue
		}
		for _, email := range emails {
			email = strings.ToLower(strings.TrimSpace(email))
			if email == "" {
				continue
			}
			daysByEmail[email] = append(daysByEmail[email], day)
		}
	}

	emails := make([]string, 0, len(daysByEmail))
	for email := range daysByEmail {
		emails = append(emails, email)
	}
	sort.Strings(emails)

	slots := make([]models.AvailabilitySlot, 0, len(emails))
	for _, email := range emails {
		days := daysByEmail[email]
		sortDays(days)
		slots = append(slots, models.AvailabilitySlot{
			TeacherEmail: email,
			TeacherName:  s.teacherName(ctx, email),
			Days:         strings.Join(days, ","),
		})
	}

	if err := s.slots.ReplaceCell(ctx, update.Month, update.Period, update.Building, slots); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to rebuild schedule cell")
	}
	return nil
}

func (s *ScheduleService) teacherName(ctx context.Context, email string) string {
	member, err := s.staff.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("directory lookup failed during schedule write", zap.String("email", email), zap.Error(err))
		}
		return email
	}
	return member.FullName
}

// SchoolYearWindow returns the [Aug 1, Aug 1) interval containing ts.
func SchoolYearWindow(ts time.Time) (time.Time, time.Time) {
	startYear := ts.Year()
	if ts.Month() < time.August {
		startYear--
	}
	from := time.Date(startYear, time.August, 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(1, 0, 0)
}

// MonthOrder exposes the school-year month sequence.
func MonthOrder() []string {
	out := make([]string, len(monthOrder))
	copy(out, monthOrder)
	return out
}

func validMonth(month string) bool {
	for _, m := range monthOrder {
		if strings.EqualFold(m, month) {
			return true
		}
	}
	return false
}

func splitDays(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	days := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			days = append(days, trimmed)
		}
	}
	return days
}

func sortDays(days []string) {
	sort.SliceStable(days, func(i, j int) bool {
		oi, iok := weekdayOrder[days[i]]
		oj, jok := weekdayOrder[days[j]]
		if iok && jok {
			return oi < oj
		}
		if iok != jok {
			return iok
		}
		return days[i] < days[j]
	})
}
