package models

import "time"

// Request represents a saved financial request
type Request struct {
	ID          string     `json:"id"`
	ProjectName string     `json:"project_name"`
	Province    string     `json:"province"`
	ContractRef string     `json:"contract_ref"`
	Requester   string     `json:"requester"`
	Status      string     `json:"status"` // DRAFT, SUBMITTED, APPROVED, REJECTED
	FormData    string     `json:"form_data"` // JSON blob of the wizard payload
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// RequestItem represents a single line item on a request
type RequestItem struct {
	ID             string    `json:"id"`
	RequestID      string    `json:"request_id"`
	Label          string    `json:"label"`
	Quantity       int       `json:"quantity"`
	UnitPrice      float64   `json:"unit_price"`
	TaxRatePercent float64   `json:"tax_rate_percent"`
	Authority      string    `json:"financial_authority"` // DGI, DGDA, DGRAD
	Total          float64   `json:"total"`
	TaxAmount      float64   `json:"tax_amount"`
	VATIncluded    float64   `json:"vat_included"`
	CreatedAt      time.Time `json:"created_at"`
}

// Request status constants
const (
	RequestStatusDraft     = "DRAFT"
	RequestStatusSubmitted = "SUBMITTED"
	RequestStatusApproved  = "APPROVED"
	RequestStatusRejected  = "REJECTED"
)
