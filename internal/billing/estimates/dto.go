package estimates

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/keystone-billing/keystone/internal/money"
)

// LineItemRequest is one line of a create or update request.
type LineItemRequest struct {
	Description string          `json:"description" validate:"required,max=500"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitRate    money.Money     `json:"unit_rate"`
}

// CreateEstimateRequest creates a draft estimate. TaxRate falls back to
// the configured default when omitted.
type CreateEstimateRequest struct {
	ProjectID  int64             `json:"project_id" validate:"required,gt=0"`
	DateIssued time.Time         `json:"date_issued" validate:"required"`
	ValidUntil time.Time         `json:"valid_until" validate:"required"`
	TaxRate    *decimal.Decimal  `json:"tax_rate,omitempty"`
	Notes      *string           `json:"notes,omitempty"`
	Lines      []LineItemRequest `json:"lines" validate:"required,min=1,dive"`
}

// UpdateEstimateRequest edits a draft. A non-nil Lines replaces the whole
// line set; there are no partial line patches.
type UpdateEstimateRequest struct {
	DateIssued *time.Time         `json:"date_issued,omitempty"`
	ValidUntil *time.Time         `json:"valid_until,omitempty"`
	TaxRate    *decimal.Decimal   `json:"tax_rate,omitempty"`
	Notes      *string            `json:"notes,omitempty"`
	Lines      *[]LineItemRequest `json:"lines,omitempty" validate:"omitempty,min=1,dive"`
}

// ListEstimatesRequest filters the estimate list.
type ListEstimatesRequest struct {
	ProjectID *int64          `json:"project_id,omitempty"`
	Status    *EstimateStatus `json:"status,omitempty"`
	Limit     int             `json:"limit" validate:"gte=0,lte=1000"`
	Offset    int             `json:"offset" validate:"gte=0"`
}

// EstimateResponse is the wire shape of an estimate with derived totals
// resolved for rendering and API consumers.
type EstimateResponse struct {
	Estimate
	Subtotal  money.Money `json:"subtotal"`
	TaxAmount money.Money `json:"tax_amount"`
	Total     money.Money `json:"total"`
}

// ToResponse resolves the derived totals of an estimate.
func ToResponse(e *Estimate) EstimateResponse {
	return EstimateResponse{
		Estimate:  *e,
		Subtotal:  e.Subtotal(),
		TaxAmount: e.TaxAmount(),
		Total:     e.Total(),
	}
}
