package models

import "time"

// AvailabilitySlot is one stored schedule row: a teacher's day set for a
// (month, period) cell. Days is a sorted comma-joined list ("Mon, Wed").
type AvailabilitySlot struct {
	ID           string    `db:"id" json:"id"`
	Month        string    `db:"month" json:"month"`
	Period       string    `db:"period" json:"period"`
	Days         string    `db:"days" json:"days"`
	TeacherEmail string    `db:"teacher_email" json:"teacher_email"`
	TeacherName  string    `db:"teacher_name" json:"teacher_name"`
	Building     string    `db:"building" json:"building"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// PendingSummary is a compact view of one pending earned request, shown next
// to a teacher's schedule row.
type PendingSummary struct {
	ID          string    `json:"id"`
	Date        time.Time `json:"date"`
	Period      string    `json:"period"`
	CoveredName string    `json:"covered_name"`
	Hours       float64   `json:"hours"`
}

// ScheduleRow is the enriched read model for one teacher in one (month,
// period) cell: stored days plus school-year hours and pending work.
type ScheduleRow struct {
	TeacherEmail    string             `json:"teacher_email"`
	TeacherName     string             `json:"teacher_name"`
	Days            []string           `json:"days"`
	MonthlyHours    map[string]float64 `json:"monthly_hours"`
	PendingRequests []PendingSummary   `json:"pending_requests"`
}

// ScheduleUpdate is a full replacement of one (month, period) cell: for each
// weekday, the emails of the teachers available that day.
type ScheduleUpdate struct {
	Month    string              `json:"month" validate:"required"`
	Period   string              `json:"period" validate:"required"`
	Building string              `json:"building"`
	Days     map[string][]string `json:"days" validate:"required"`
}
