package models

import "time"

// CoverageStatus is the lifecycle state of a coverage request.
type CoverageStatus string

const (
	CoveragePending  CoverageStatus = "PENDING"
	CoverageAccepted CoverageStatus = "ACCEPTED"
	CoverageDeclined CoverageStatus = "DECLINED"
)

// CoverageRequest is an admin's ask for a specific teacher to cover a slot.
// The teacher responds through signed accept/decline links.
type CoverageRequest struct {
	ID           string         `db:"id" json:"id"`
	TeacherEmail string         `db:"teacher_email" json:"teacher_email"`
	TeacherName  string         `db:"teacher_name" json:"teacher_name"`
	CoveredName  string         `db:"covered_name" json:"covered_name"`
	Date         time.Time      `db:"date" json:"date"`
	Period       string         `db:"period" json:"period"`
	DurationType string         `db:"duration_type" json:"duration_type"`
	Building     string         `db:"building" json:"building"`
	RequestedBy  string         `db:"requested_by" json:"requested_by"`
	Status       CoverageStatus `db:"status" json:"status"`
	RespondedAt  *time.Time     `db:"responded_at" json:"responded_at,omitempty"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
}

// CoverageRequestInput is the admin-facing creation payload.
type CoverageRequestInput struct {
	TeacherEmail string    `json:"teacher_email" validate:"required,email"`
	CoveredName  string    `json:"covered_name" validate:"required"`
	Date         time.Time `json:"date" validate:"required"`
	Period       string    `json:"period" validate:"required"`
	DurationType string    `json:"duration_type"`
	Building     string    `json:"building"`
}
