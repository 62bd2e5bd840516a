package payterms

import (
	"github.com/shopspring/decimal"

	"github.com/keystone-billing/keystone/internal/money"
)

// Allocation policies accepted by GenerateTermsRequest.
const (
	PolicyFullOnAcceptance = "full_on_acceptance"
	PolicySplitOnPermit    = "split_on_permit"
	PolicyCustom           = "custom"
)

// CustomTermRequest is one caller-defined installment.
type CustomTermRequest struct {
	Label      string      `json:"label" validate:"required,max=200"`
	Amount     money.Money `json:"amount"`
	DueTrigger string      `json:"due_trigger" validate:"max=100"`
}

// GenerateTermsRequest asks for a fresh term set on an estimate. For
// split_on_permit the percentages default to 75/25 when omitted.
type GenerateTermsRequest struct {
	Policy        string              `json:"policy" validate:"required,oneof=full_on_acceptance split_on_permit custom"`
	FirstPercent  *decimal.Decimal    `json:"first_percent,omitempty"`
	SecondPercent *decimal.Decimal    `json:"second_percent,omitempty"`
	Custom        []CustomTermRequest `json:"custom,omitempty" validate:"omitempty,dive"`
}
