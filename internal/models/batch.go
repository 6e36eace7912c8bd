package models

// BatchRequest applies one operation to a set of ledger rows.
type BatchRequest struct {
	IDs    []string `json:"ids" validate:"required,min=1,dive,required"`
	Reason string   `json:"reason"`
	Note   string   `json:"note"`
}

// BatchItemError records one failed id inside a batch.
type BatchItemError struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

// BatchResult aggregates per-item outcomes of a batch operation.
type BatchResult struct {
	Succeeded int              `json:"succeeded"`
	Failed    int              `json:"failed"`
	Errors    []BatchItemError `json:"errors,omitempty"`
}
