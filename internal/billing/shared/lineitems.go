// Package shared holds the line-item calculations and error kinds used by
// every billing document type.
package shared

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/keystone-billing/keystone/internal/money"
)

// LineItem is one priced row on an estimate or invoice.
type LineItem struct {
	ID          int64           `json:"id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitRate    money.Money     `json:"unit_rate"`
	SortOrder   int             `json:"sort_order"`
}

// Total returns quantity × unit rate rounded to the minor unit.
func (li LineItem) Total() money.Money {
	return li.UnitRate.MulQuantity(li.Quantity)
}

// LineItemSet is an ordered collection of line items. Order is the
// printed order and is persisted through SortOrder.
type LineItemSet []LineItem

// Subtotal sums the rounded line totals. Zero-quantity placeholder lines
// contribute nothing but are kept in the set.
func (s LineItemSet) Subtotal() money.Money {
	total := money.Zero
	for _, li := range s {
		total = total.Add(li.Total())
	}
	return total
}

// Reindex assigns a dense 0-based sort order. Called whenever a document's
// line set is replaced; rendering relies on contiguous ordering.
func (s LineItemSet) Reindex() {
	for i := range s {
		s[i].SortOrder = i
	}
}

// Validate checks the set is usable on a document.
func (s LineItemSet) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("%w: at least one line item required", ErrValidation)
	}
	for i, li := range s {
		if li.Description == "" {
			return fmt.Errorf("%w: line %d missing description", ErrValidation, i)
		}
		if li.Quantity.IsNegative() {
			return fmt.Errorf("%w: line %d quantity must not be negative", ErrValidation, i)
		}
		if li.UnitRate.IsNegative() {
			return fmt.Errorf("%w: line %d unit rate must not be negative", ErrValidation, i)
		}
	}
	return nil
}

// Clone copies the set with fresh IDs so a derived document owns its
// lines independently of the source document.
func (s LineItemSet) Clone() LineItemSet {
	out := make(LineItemSet, len(s))
	for i, li := range s {
		li.ID = 0
		out[i] = li
	}
	out.Reindex()
	return out
}

// TaxAmount returns subtotal × rate (rate in [0,1]) rounded half-up.
func TaxAmount(subtotal money.Money, rate decimal.Decimal) money.Money {
	return subtotal.RateOf(rate)
}

// ValidTaxRate reports whether rate lies in [0,1].
func ValidTaxRate(rate decimal.Decimal) bool {
	return !rate.IsNegative() && rate.LessThanOrEqual(decimal.NewFromInt(1))
}
