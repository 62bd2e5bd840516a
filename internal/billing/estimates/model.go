package estimates

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/keystone-billing/keystone/internal/billing/shared"
	"github.com/keystone-billing/keystone/internal/money"
)

// EstimateStatus enumerates estimate lifecycle states.
type EstimateStatus string

const (
	StatusDraft    EstimateStatus = "DRAFT"
	StatusPending  EstimateStatus = "PENDING"
	StatusApproved EstimateStatus = "APPROVED"
	StatusRejected EstimateStatus = "REJECTED"
)

// Estimate is a quoted document presented to a customer before work
// begins. Monetary totals are always derived from the line set and tax
// rate; they are never stored columns that could drift from their inputs.
type Estimate struct {
	ID         int64               `json:"id"`
	Number     string              `json:"number"`
	ProjectID  int64               `json:"project_id"`
	DateIssued time.Time           `json:"date_issued"`
	ValidUntil time.Time           `json:"valid_until"`
	TaxRate    decimal.Decimal     `json:"tax_rate"`
	Status     EstimateStatus      `json:"status"`
	Notes      *string             `json:"notes,omitempty"`
	Lines      shared.LineItemSet  `json:"lines,omitempty"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

// Subtotal sums the rounded line totals.
func (e *Estimate) Subtotal() money.Money {
	return e.Lines.Subtotal()
}

// TaxAmount derives the tax on the subtotal.
func (e *Estimate) TaxAmount() money.Money {
	return shared.TaxAmount(e.Subtotal(), e.TaxRate)
}

// Total is subtotal plus tax.
func (e *Estimate) Total() money.Money {
	return e.Subtotal().Add(e.TaxAmount())
}

// Editable reports whether the line set may still be replaced.
func (e *Estimate) Editable() bool {
	return e.Status == StatusDraft
}
