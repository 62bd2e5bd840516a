package payterms

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/keystone-billing/keystone/internal/billing/shared"
	"github.com/keystone-billing/keystone/internal/money"
)

// Allocation is one planned installment before persistence.
type Allocation struct {
	Kind       TermKind
	Label      string
	Percentage *decimal.Decimal
	Amount     money.Money
	DueTrigger string
}

var oneHundred = decimal.NewFromInt(100)

// FullOnAcceptance produces a single 100% term due on acceptance.
func FullOnAcceptance(total money.Money) []Allocation {
	pct := oneHundred
	return []Allocation{{
		Kind:       KindPercentage,
		Label:      "Full payment on acceptance",
		Percentage: &pct,
		Amount:     total,
		DueTrigger: "on_acceptance",
	}}
}

// SplitOnPermit produces two percentage terms, the first due on permit
// approval and the second on completion. Percentages must sum to 100.
// Each amount is rounded to the minor unit, then the last term absorbs
// the residual so the pair sums exactly to the estimate total.
func SplitOnPermit(total money.Money, first, second decimal.Decimal) ([]Allocation, error) {
	if first.IsNegative() || second.IsNegative() || !first.Add(second).Equal(oneHundred) {
		return nil, fmt.Errorf("%w: split percentages must be non-negative and sum to 100", shared.ErrValidation)
	}
	firstAmount := total.PercentOf(first)
	return []Allocation{
		{
			Kind:       KindPercentage,
			Label:      fmt.Sprintf("%s%% on permit approval", first.String()),
			Percentage: &first,
			Amount:     firstAmount,
			DueTrigger: "on_permit",
		},
		{
			Kind:       KindPercentage,
			Label:      fmt.Sprintf("%s%% on completion", second.String()),
			Percentage: &second,
			Amount:     total.Sub(firstAmount),
			DueTrigger: "on_completion",
		},
	}, nil
}

// CustomTerm is a caller-supplied fixed installment.
type CustomTerm struct {
	Label      string
	Amount     money.Money
	DueTrigger string
}

// Custom produces fixed-amount terms with no percentage semantics and no
// guarantee that they sum to the estimate total.
func Custom(terms []CustomTerm) ([]Allocation, error) {
	if len(terms) == 0 {
		return nil, fmt.Errorf("%w: custom terms require at least one entry", shared.ErrValidation)
	}
	out := make([]Allocation, len(terms))
	for i, t := range terms {
		if t.Label == "" {
			return nil, fmt.Errorf("%w: custom term %d has no label", shared.ErrValidation, i)
		}
		if t.Amount.IsNegative() {
			return nil, fmt.Errorf("%w: custom term %q has a negative amount", shared.ErrValidation, t.Label)
		}
		out[i] = Allocation{
			Kind:       KindFixed,
			Label:      t.Label,
			Amount:     t.Amount,
			DueTrigger: t.DueTrigger,
		}
	}
	return out, nil
}
