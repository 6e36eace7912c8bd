package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/orono-schools/tst-bank-api/internal/models"
	"github.com/orono-schools/tst-bank-api/pkg/config"
	"github.com/orono-schools/tst-bank-api/pkg/jobs"
	"github.com/orono-schools/tst-bank-api/pkg/mail"
)

// NotificationService delivers outbound email through a background queue so
// delivery failures never affect the triggering transition.
type NotificationService struct {
	queue  *jobs.Queue
	mailer mail.Mailer
	cfg    config.NotificationsConfig
	logger *zap.Logger
}

// NewNotificationService constructs the service and its delivery queue.
func NewNotificationService(mailer mail.Mailer, cfg config.NotificationsConfig, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if mailer == nil {
		mailer = mail.NopMailer{}
	}
	s := &NotificationService{mailer: mailer, cfg: cfg, logger: logger}
	s.queue = jobs.NewQueue("notifications", s.deliver, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return s
}

// Start begins background delivery.
func (s *NotificationService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the delivery workers.
func (s *NotificationService) Stop() {
	s.queue.Stop()
}

// Send enqueues an arbitrary message. Errors are logged, not returned: mail
// is always fire-and-forget here.
func (s *NotificationService) Send(ctx context.Context, msg mail.Message) {
	if !s.cfg.Enabled {
		return
	}
	job := jobs.Job{ID: uuid.NewString(), Type: "email", Payload: msg}
	if err := s.queue.Enqueue(job); err != nil {
		s.logger.Warn("failed to enqueue notification", zap.String("subject", msg.Subject), zap.Error(err))
	}
}

// EarnedApproved notifies the requester that their credit claim was approved.
func (s *NotificationService) EarnedApproved(ctx context.Context, req *models.EarnedRequest) {
	body := mail.Paragraph(fmt.Sprintf("Hi %s, your sub time request has been approved.", req.RequesterName)) +
		s.earnedDetails(req) +
		mail.Paragraph(fmt.Sprintf("%.1f hour(s) have been added to your bank.", req.Hours))
	s.Send(ctx, mail.Message{
		To:      []string{req.Email},
		Subject: "Sub Time Request Approved",
		HTML:    mail.RenderShell("Request Approved", body),
	})
}

// EarnedDenied notifies the requester that their credit claim was denied.
func (s *NotificationService) EarnedDenied(ctx context.Context, req *models.EarnedRequest, reason string) {
	body := mail.Paragraph(fmt.Sprintf("Hi %s, your sub time request has been denied.", req.RequesterName)) +
		s.earnedDetails(req) +
		mail.Paragraph(fmt.Sprintf("Reason: %s", reason)) +
		mail.Paragraph("If you believe this is a mistake, please contact your building office.")
	s.Send(ctx, mail.Message{
		To:      []string{req.Email},
		Subject: "Sub Time Request Denied",
		HTML:    mail.RenderShell("Request Denied", body),
	})
}

// UsageApproved notifies the requester that their redemption was approved.
func (s *NotificationService) UsageApproved(ctx context.Context, req *models.UsedRequest) {
	body := mail.Paragraph(fmt.Sprintf("Hi %s, your request to use banked sub time has been approved.", req.RequesterName)) +
		mail.DetailTable([][2]string{
			{"Date", req.Date.Format("January 2, 2006")},
			{"Amount", fmt.Sprintf("%.1f hour(s)", req.Amount)},
			{"Note", req.Note},
		})
	s.Send(ctx, mail.Message{
		To:      []string{req.Email},
		Subject: "Sub Time Usage Approved",
		HTML:    mail.RenderShell("Usage Approved", body),
	})
}

// CoverageRequested asks a teacher to cover a slot with signed action links.
func (s *NotificationService) CoverageRequested(ctx context.Context, cov *models.CoverageRequest, acceptURL, declineURL string) {
	body := mail.Paragraph(fmt.Sprintf("Hi %s, can you cover for %s?", cov.TeacherName, cov.CoveredName)) +
		mail.DetailTable([][2]string{
			{"Date", cov.Date.Format("January 2, 2006")},
			{"Period", cov.Period},
			{"Building", cov.Building},
		}) +
		mail.Button("Accept", acceptURL, "#1b5e20") +
		mail.Button("Decline", declineURL, "#b71c1c")
	s.Send(ctx, mail.Message{
		To:      []string{cov.TeacherEmail},
		Subject: "Coverage Request",
		HTML:    mail.RenderShell("Coverage Request", body),
	})
}

// CoverageAnswered tells the requesting admin how the teacher responded.
func (s *NotificationService) CoverageAnswered(ctx context.Context, cov *models.CoverageRequest) {
	verb := "declined"
	if cov.Status == models.CoverageAccepted {
		verb = "accepted"
	}
	body := mail.Paragraph(fmt.Sprintf("%s has %s the coverage request for %s.", cov.TeacherName, verb, cov.CoveredName)) +
		mail.DetailTable([][2]string{
			{"Date", cov.Date.Format("January 2, 2006")},
			{"Period", cov.Period},
			{"Building", cov.Building},
		})
	s.Send(ctx, mail.Message{
		To:      []string{cov.RequestedBy},
		Subject: fmt.Sprintf("Coverage Request %s", capitalize(verb)),
		HTML:    mail.RenderShell("Coverage Response", body),
	})
}

func (s *NotificationService) earnedDetails(req *models.EarnedRequest) string {
	return mail.DetailTable([][2]string{
		{"Date", req.Date.Format("January 2, 2006")},
		{"Period", req.Period},
		{"Covered For", req.CoveredName},
		{"Hours", fmt.Sprintf("%.1f", req.Hours)},
		{"Building", req.Building},
	})
}

func (s *NotificationService) deliver(ctx context.Context, job jobs.Job) error {
	msg, ok := job.Payload.(mail.Message)
	if !ok {
		s.logger.Error("notification job carried unexpected payload", zap.String("job_id", job.ID))
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	return s.mailer.Send(ctx, msg)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
