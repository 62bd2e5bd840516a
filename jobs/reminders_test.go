package jobs

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/keystone-billing/keystone/internal/billing/shared"
	"github.com/keystone-billing/keystone/internal/money"
)

func TestOverdueBalanceRoundsPerLine(t *testing.T) {
	// Two half-unit lines at $0.33 each round to $0.17 before summing.
	// An unrounded sum would report $0.33 and disagree with the API.
	inv := overdueInvoice{
		TaxRate: decimal.Zero,
		Paid:    money.Zero,
		Lines: shared.LineItemSet{
			{Quantity: decimal.RequireFromString("0.5"), UnitRate: money.MustParse("0.33")},
			{Quantity: decimal.RequireFromString("0.5"), UnitRate: money.MustParse("0.33")},
		},
	}
	require.True(t, inv.Balance().Equal(money.MustParse("0.34")))
}

func TestOverdueBalanceMatchesInvoiceMath(t *testing.T) {
	inv := overdueInvoice{
		TaxRate: decimal.RequireFromString("0.0875"),
		Paid:    money.MustParse("300.00"),
		Lines: shared.LineItemSet{
			{Quantity: decimal.NewFromInt(10), UnitRate: money.MustParse("35.00")},
			{Quantity: decimal.NewFromInt(1), UnitRate: money.MustParse("150.00")},
		},
	}
	// 500 subtotal, 43.75 tax, 543.75 total, 300 paid.
	require.True(t, inv.Balance().Equal(money.MustParse("243.75")))
}
