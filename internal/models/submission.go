package models

import "time"

// SubmitEarnedRequest is the ingestion payload for a credit claim.
// RequesterName and Building are resolved from the directory when omitted;
// Hours falls back to the period calculation when zero.
type SubmitEarnedRequest struct {
	Email         string    `json:"email" validate:"required,email"`
	RequesterName string    `json:"requester_name"`
	CoveredName   string    `json:"covered_name" validate:"required"`
	Date          time.Time `json:"date" validate:"required"`
	Period        string    `json:"period" validate:"required"`
	DurationType  string    `json:"duration_type"`
	Hours         float64   `json:"hours" validate:"gte=0"`
	Building      string    `json:"building"`
}

// SubmitUsageRequest is the ingestion payload for a redemption claim.
type SubmitUsageRequest struct {
	Email         string    `json:"email" validate:"required,email"`
	RequesterName string    `json:"requester_name"`
	Date          time.Time `json:"date" validate:"required"`
	Amount        float64   `json:"amount" validate:"required,gt=0"`
	Note          string    `json:"note"`
	Building      string    `json:"building"`
}
