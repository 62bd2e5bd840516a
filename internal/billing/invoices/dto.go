package invoices

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/keystone-billing/keystone/internal/money"
)

// LineItemRequest is one line of a manual invoice.
type LineItemRequest struct {
	Description string          `json:"description" validate:"required,max=500"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitRate    money.Money     `json:"unit_rate"`
}

// CreateInvoiceRequest creates a draft invoice from a manually supplied
// line set. TaxRate falls back to the configured default when omitted.
type CreateInvoiceRequest struct {
	ProjectID  int64             `json:"project_id" validate:"required,gt=0"`
	DateIssued time.Time         `json:"date_issued" validate:"required"`
	DueDate    time.Time         `json:"due_date" validate:"required"`
	TaxRate    *decimal.Decimal  `json:"tax_rate,omitempty"`
	Notes      *string           `json:"notes,omitempty"`
	Lines      []LineItemRequest `json:"lines" validate:"required,min=1,dive"`
}

// FromEstimateRequest converts an estimate into an invoice, copying its
// line set and tax rate at the moment of conversion.
type FromEstimateRequest struct {
	EstimateID int64     `json:"estimate_id" validate:"required,gt=0"`
	DateIssued time.Time `json:"date_issued" validate:"required"`
	DueDate    time.Time `json:"due_date" validate:"required"`
	Notes      *string   `json:"notes,omitempty"`
}

// FromPayTermsRequest turns one or more pending pay terms into an
// invoice of single-line items. Term amounts already include tax, so the
// resulting invoice carries a zero tax rate.
type FromPayTermsRequest struct {
	EstimateID int64     `json:"estimate_id" validate:"required,gt=0"`
	TermIDs    []int64   `json:"term_ids" validate:"required,min=1"`
	DateIssued time.Time `json:"date_issued" validate:"required"`
	DueDate    time.Time `json:"due_date" validate:"required"`
	Notes      *string   `json:"notes,omitempty"`
}

// UpdateInvoiceRequest edits a draft. A non-nil Lines replaces the whole
// line set.
type UpdateInvoiceRequest struct {
	DateIssued *time.Time         `json:"date_issued,omitempty"`
	DueDate    *time.Time         `json:"due_date,omitempty"`
	TaxRate    *decimal.Decimal   `json:"tax_rate,omitempty"`
	Notes      *string            `json:"notes,omitempty"`
	Lines      *[]LineItemRequest `json:"lines,omitempty" validate:"omitempty,min=1,dive"`
}

// ListInvoicesRequest filters the invoice list.
type ListInvoicesRequest struct {
	ProjectID  *int64         `json:"project_id,omitempty"`
	EstimateID *int64         `json:"estimate_id,omitempty"`
	Status     *InvoiceStatus `json:"status,omitempty"`
	Limit      int            `json:"limit" validate:"gte=0,lte=1000"`
	Offset     int            `json:"offset" validate:"gte=0"`
}

// PostPaymentRequest records a payment against an invoice. Reference is
// generated when omitted.
type PostPaymentRequest struct {
	Amount    money.Money `json:"amount"`
	Date      time.Time   `json:"date" validate:"required"`
	Method    string      `json:"method" validate:"required,max=50"`
	Reference string      `json:"reference,omitempty" validate:"max=100"`
}

// AmendPaymentRequest corrects an existing payment in place.
type AmendPaymentRequest struct {
	Amount    *money.Money `json:"amount,omitempty"`
	Date      *time.Time   `json:"date,omitempty"`
	Method    *string      `json:"method,omitempty" validate:"omitempty,max=50"`
	Reference *string      `json:"reference,omitempty" validate:"omitempty,max=100"`
}

// InvoiceResponse is the wire shape of an invoice with derived amounts
// resolved.
type InvoiceResponse struct {
	Invoice
	Subtotal   money.Money `json:"subtotal"`
	TaxAmount  money.Money `json:"tax_amount"`
	Total      money.Money `json:"total"`
	BalanceDue money.Money `json:"balance_due"`
}

// ToResponse resolves the derived amounts of an invoice.
func ToResponse(inv *Invoice) InvoiceResponse {
	return InvoiceResponse{
		Invoice:    *inv,
		Subtotal:   inv.Subtotal(),
		TaxAmount:  inv.TaxAmount(),
		Total:      inv.Total(),
		BalanceDue: inv.BalanceDue(),
	}
}
