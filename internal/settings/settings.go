// Package settings holds operator-tunable configuration read by the
// billing services at document-creation time: numbering prefixes and
// floors, the default tax rate, and company letterhead fields. Values
// live in PostgreSQL behind a read-through Redis cache; the billing
// core only ever sees resolved values.
package settings

import (
	"github.com/shopspring/decimal"
)

// Well-known setting keys.
const (
	KeyEstimatePrefix = "numbering.estimate.prefix"
	KeyEstimateFloor  = "numbering.estimate.floor"
	KeyInvoicePrefix  = "numbering.invoice.prefix"
	KeyInvoiceFloor   = "numbering.invoice.floor"
	KeyDefaultTaxRate = "billing.default_tax_rate"
	KeyCompanyName    = "company.name"
	KeyCompanyAddress = "company.address"
	KeyCompanyPhone   = "company.phone"
)

// Defaults applied when a key has never been set.
type Defaults struct {
	EstimatePrefix string
	EstimateFloor  int64
	InvoicePrefix  string
	InvoiceFloor   int64
	TaxRate        decimal.Decimal
	CompanyName    string
}

// Letterhead is the company identity block printed on documents.
type Letterhead struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}
