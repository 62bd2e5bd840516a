package payterms

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/keystone-billing/keystone/internal/money"
)

// TermKind distinguishes percentage-derived terms from fixed amounts.
type TermKind string

const (
	KindPercentage TermKind = "PERCENTAGE"
	KindFixed      TermKind = "FIXED"
)

// TermStatus tracks whether a term has been settled.
type TermStatus string

const (
	StatusPending TermStatus = "PENDING"
	StatusPaid    TermStatus = "PAID"
)

// PayTerm is one installment derived from an estimate. For percentage
// terms Amount is computed once at generation time and then frozen;
// later estimate edits never reflow issued terms.
type PayTerm struct {
	ID         int64            `json:"id"`
	EstimateID int64            `json:"estimate_id"`
	ProjectID  int64            `json:"project_id"`
	Kind       TermKind         `json:"kind"`
	Label      string           `json:"label"`
	Percentage *decimal.Decimal `json:"percentage,omitempty"`
	Amount     money.Money      `json:"amount"`
	DueTrigger string           `json:"due_trigger"`
	Status     TermStatus       `json:"status"`
	InvoiceID  *int64           `json:"invoice_id,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}
