package models

import "time"

// RequestStatus is the lifecycle state of a ledger row.
type RequestStatus string

const (
	StatusPending  RequestStatus = "PENDING"
	StatusApproved RequestStatus = "APPROVED"
	StatusDenied   RequestStatus = "DENIED"
)

// EarnedRequest is a credit claim: the requester covered a colleague's duty.
type EarnedRequest struct {
	ID            string        `db:"id" json:"id"`
	Email         string        `db:"email" json:"email"`
	RequesterName string        `db:"requester_name" json:"requester_name"`
	CoveredName   string        `db:"covered_name" json:"covered_name"`
	Date          time.Time     `db:"date" json:"date"`
	Period        string        `db:"period" json:"period"`
	DurationType  string        `db:"duration_type" json:"duration_type"`
	Hours         float64       `db:"hours" json:"hours"`
	Building      string        `db:"building" json:"building"`
	Status        RequestStatus `db:"status" json:"status"`
	ApprovedAt    *time.Time    `db:"approved_at" json:"approved_at,omitempty"`
	DeniedAt      *time.Time    `db:"denied_at" json:"denied_at,omitempty"`
	DenialReason  *string       `db:"denial_reason" json:"denial_reason,omitempty"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updated_at"`
}

// UsedRequest is a redemption claim against the requester's balance.
// Used rows only move between PENDING and APPROVED.
type UsedRequest struct {
	ID            string        `db:"id" json:"id"`
	Email         string        `db:"email" json:"email"`
	RequesterName string        `db:"requester_name" json:"requester_name"`
	Date          time.Time     `db:"date" json:"date"`
	Amount        float64       `db:"amount" json:"amount"`
	Note          string        `db:"note" json:"note"`
	Building      string        `db:"building" json:"building"`
	Status        RequestStatus `db:"status" json:"status"`
	ApprovedAt    *time.Time    `db:"approved_at" json:"approved_at,omitempty"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updated_at"`
}

// ArchiveRecord mirrors an earned submission in the long-term archive sheet.
// RequestID links back to the canonical ledger row; legacy rows imported from
// the old system have it NULL and are matched by key instead.
type ArchiveRecord struct {
	ID           string    `db:"id" json:"id"`
	RequestID    *string   `db:"request_id" json:"request_id,omitempty"`
	Email        string    `db:"email" json:"email"`
	CoveredName  string    `db:"covered_name" json:"covered_name"`
	Date         time.Time `db:"date" json:"date"`
	Period       string    `db:"period" json:"period"`
	DurationType string    `db:"duration_type" json:"duration_type"`
	Hours        float64   `db:"hours" json:"hours"`
	SubmittedAt  time.Time `db:"submitted_at" json:"submitted_at"`
}

// ArchiveKey identifies an archive row for legacy fallback matching.
type ArchiveKey struct {
	Email  string
	Date   time.Time
	Period string
}

// EarnedRequestEdit carries the updatable fields of an earned row.
type EarnedRequestEdit struct {
	Email        string    `json:"email" validate:"required,email"`
	CoveredName  string    `json:"covered_name" validate:"required"`
	Date         time.Time `json:"date" validate:"required"`
	Period       string    `json:"period" validate:"required"`
	DurationType string    `json:"duration_type"`
	Hours        float64   `json:"hours" validate:"gte=0"`
}

// RequestFilter narrows ledger listings.
type RequestFilter struct {
	Building string
	Email    string
	Status   *RequestStatus
}

// HistoryKind discriminates merged history entries.
type HistoryKind string

const (
	HistoryEarned HistoryKind = "EARNED"
	HistoryUsed   HistoryKind = "USED"
)

// HistoryEntry is one row of a member's merged earned+used history.
type HistoryEntry struct {
	ID          string        `json:"id"`
	Kind        HistoryKind   `json:"kind"`
	Date        time.Time     `json:"date"`
	Description string        `json:"description"`
	Hours       float64       `json:"hours"`
	Status      RequestStatus `json:"status"`
}
