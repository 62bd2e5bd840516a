package payterms

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/keystone-billing/keystone/internal/money"
)

func TestFullOnAcceptanceSingleTerm(t *testing.T) {
	total := money.MustParse("543.75")
	allocations := FullOnAcceptance(total)

	require.Len(t, allocations, 1)
	require.Equal(t, KindPercentage, allocations[0].Kind)
	require.True(t, allocations[0].Amount.Equal(total))
	require.True(t, allocations[0].Percentage.Equal(decimal.NewFromInt(100)))
}

func TestSplitOnPermitRoundTotal(t *testing.T) {
	total := money.MustParse("1000.00")
	allocations, err := SplitOnPermit(total, decimal.NewFromInt(75), decimal.NewFromInt(25))
	require.NoError(t, err)

	require.Len(t, allocations, 2)
	require.Equal(t, "750.00", allocations[0].Amount.String())
	require.Equal(t, "250.00", allocations[1].Amount.String())
	require.True(t, allocations[0].Amount.Add(allocations[1].Amount).Equal(total))
}

func TestSplitOnPermitResidualOnLastTerm(t *testing.T) {
	// 75% of 333.33 is 249.9975, which rounds to 250.00. The second term
	// takes the residual so the pair still sums to the total exactly.
	total := money.MustParse("333.33")
	allocations, err := SplitOnPermit(total, decimal.NewFromInt(75), decimal.NewFromInt(25))
	require.NoError(t, err)

	require.Equal(t, "250.00", allocations[0].Amount.String())
	require.Equal(t, "83.33", allocations[1].Amount.String())
	require.True(t, allocations[0].Amount.Add(allocations[1].Amount).Equal(total))
}

func TestSplitOnPermitUnevenPercentages(t *testing.T) {
	total := money.MustParse("100.01")
	first := decimal.RequireFromString("33.33")
	second := decimal.RequireFromString("66.67")
	allocations, err := SplitOnPermit(total, first, second)
	require.NoError(t, err)
	require.True(t, allocations[0].Amount.Add(allocations[1].Amount).Equal(total))
}

func TestSplitOnPermitRejectsBadPercentages(t *testing.T) {
	total := money.MustParse("100.00")

	_, err := SplitOnPermit(total, decimal.NewFromInt(60), decimal.NewFromInt(30))
	require.Error(t, err)

	_, err = SplitOnPermit(total, decimal.NewFromInt(120), decimal.NewFromInt(-20))
	require.Error(t, err)
}

func TestCustomTermsNoSummingGuarantee(t *testing.T) {
	allocations, err := Custom([]CustomTerm{
		{Label: "Mobilization", Amount: money.MustParse("500.00")},
		{Label: "Holdback", Amount: money.MustParse("10.00")},
	})
	require.NoError(t, err)
	require.Len(t, allocations, 2)
	require.Equal(t, KindFixed, allocations[0].Kind)
	require.Nil(t, allocations[0].Percentage)
}

func TestCustomTermsValidation(t *testing.T) {
	_, err := Custom(nil)
	require.Error(t, err)

	_, err = Custom([]CustomTerm{{Label: "", Amount: money.MustParse("10.00")}})
	require.Error(t, err)

	_, err = Custom([]CustomTerm{{Label: "Bad", Amount: money.MustParse("-1.00")}})
	require.Error(t, err)
}
