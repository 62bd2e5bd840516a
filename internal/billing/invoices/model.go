package invoices

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/keystone-billing/keystone/internal/billing/shared"
	"github.com/keystone-billing/keystone/internal/money"
)

// InvoiceStatus enumerates invoice lifecycle states.
type InvoiceStatus string

const (
	StatusDraft     InvoiceStatus = "DRAFT"
	StatusSent      InvoiceStatus = "SENT"
	StatusPartial   InvoiceStatus = "PARTIAL"
	StatusPaid      InvoiceStatus = "PAID"
	StatusCancelled InvoiceStatus = "CANCELLED"
)

// settlementTolerance treats a residual balance at or below half a cent
// as fully paid, so rounding can never strand an invoice in PARTIAL over
// a $0.00 display balance.
var settlementTolerance = money.FromDecimal(decimal.New(5, -3))

// Invoice is a billing document requesting payment. Subtotal, tax, total
// and balance due are always derived from the line set, tax rate and paid
// amount; only paidAmount and status are stored, and status itself is a
// pure function of (total, paidAmount) except for the sticky CANCELLED.
type Invoice struct {
	ID         int64              `json:"id"`
	Number     string             `json:"number"`
	ProjectID  int64              `json:"project_id"`
	EstimateID *int64             `json:"estimate_id,omitempty"`
	DateIssued time.Time          `json:"date_issued"`
	DueDate    time.Time          `json:"due_date"`
	TaxRate    decimal.Decimal    `json:"tax_rate"`
	Status     InvoiceStatus      `json:"status"`
	PaidAmount money.Money        `json:"paid_amount"`
	Notes      *string            `json:"notes,omitempty"`
	Lines      shared.LineItemSet `json:"lines,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// Subtotal sums the rounded line totals.
func (inv *Invoice) Subtotal() money.Money {
	return inv.Lines.Subtotal()
}

// TaxAmount derives the tax on the subtotal.
func (inv *Invoice) TaxAmount() money.Money {
	return shared.TaxAmount(inv.Subtotal(), inv.TaxRate)
}

// Total is subtotal plus tax.
func (inv *Invoice) Total() money.Money {
	return inv.Subtotal().Add(inv.TaxAmount())
}

// BalanceDue is total minus paid amount. Never stored.
func (inv *Invoice) BalanceDue() money.Money {
	return inv.Total().Sub(inv.PaidAmount)
}

// DeriveStatus computes the status mandated by (total, paid). CANCELLED
// is sticky and exempt. A balance within the settlement tolerance counts
// as paid, which also makes a zero-total invoice immediately PAID.
func DeriveStatus(current InvoiceStatus, total, paid money.Money) InvoiceStatus {
	if current == StatusCancelled {
		return StatusCancelled
	}
	switch {
	case !total.Sub(paid).GreaterThan(settlementTolerance):
		return StatusPaid
	case paid.IsZero():
		if current == StatusDraft || current == "" {
			return StatusDraft
		}
		return StatusSent
	default:
		return StatusPartial
	}
}

// Payment is one ledger entry against an invoice. The ledger is
// append-only: corrections go through void or amend, which reverse their
// effect on the invoice in the same transaction.
type Payment struct {
	ID        int64       `json:"id"`
	InvoiceID int64       `json:"invoice_id"`
	Amount    money.Money `json:"amount"`
	Date      time.Time   `json:"date"`
	Method    string      `json:"method"`
	Reference string      `json:"reference"`
	CreatedAt time.Time   `json:"created_at"`
}
