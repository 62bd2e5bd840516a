package payterms

import (
	"context"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/keystone-billing/keystone/internal/billing/estimates"
	"github.com/keystone-billing/keystone/internal/billing/shared"
	"github.com/keystone-billing/keystone/internal/money"
)

type memoryRepo struct {
	terms  map[int64]*PayTerm
	nextID int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{terms: make(map[int64]*PayTerm)}
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return fn(ctx, r)
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (*PayTerm, error) {
	t, ok := r.terms[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *memoryRepo) GetMany(ctx context.Context, ids []int64) ([]PayTerm, error) {
	var out []PayTerm
	for _, id := range ids {
		if t, ok := r.terms[id]; ok {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *memoryRepo) ListByEstimate(ctx context.Context, estimateID int64) ([]PayTerm, error) {
	var out []PayTerm
	for id := int64(1); id <= r.nextID; id++ {
		if t, ok := r.terms[id]; ok && t.EstimateID == estimateID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *memoryRepo) Insert(ctx context.Context, term PayTerm) (int64, error) {
	r.nextID++
	term.ID = r.nextID
	r.terms[term.ID] = &term
	return term.ID, nil
}

func (r *memoryRepo) DeletePending(ctx context.Context, estimateID int64) error {
	for id, t := range r.terms {
		if t.EstimateID == estimateID && t.Status == StatusPending {
			delete(r.terms, id)
		}
	}
	return nil
}

func (r *memoryRepo) SetStatus(ctx context.Context, id int64, status TermStatus) error {
	t, ok := r.terms[id]
	if !ok {
		return shared.ErrNotFound
	}
	t.Status = status
	return nil
}

func (r *memoryRepo) AttachInvoice(ctx context.Context, ids []int64, invoiceID int64) error {
	for _, id := range ids {
		if t, ok := r.terms[id]; ok {
			inv := invoiceID
			t.InvoiceID = &inv
		}
	}
	return nil
}

func (r *memoryRepo) MarkPaidForInvoice(ctx context.Context, invoiceID int64) error {
	for _, t := range r.terms {
		if t.InvoiceID != nil && *t.InvoiceID == invoiceID {
			t.Status = StatusPaid
		}
	}
	return nil
}

type fakeEstimates struct {
	estimate *estimates.Estimate
}

func (f *fakeEstimates) Get(ctx context.Context, id int64) (*estimates.Estimate, error) {
	if f.estimate == nil || f.estimate.ID != id {
		return nil, shared.ErrNotFound
	}
	return f.estimate, nil
}

func estimateWithTotal(t *testing.T, total string) *estimates.Estimate {
	t.Helper()
	return &estimates.Estimate{
		ID:        1,
		ProjectID: 7,
		Status:    estimates.StatusPending,
		TaxRate:   decimal.Zero,
		Lines: shared.LineItemSet{{
			Description: "Construction work",
			Quantity:    decimal.NewFromInt(1),
			UnitRate:    money.MustParse(total),
		}},
	}
}

func newTestService(t *testing.T, total string) (*Service, *memoryRepo) {
	t.Helper()
	repo := newMemoryRepo()
	est := &fakeEstimates{estimate: estimateWithTotal(t, total)}
	return NewService(repo, est, slog.Default()), repo
}

func TestGenerateSplitOnPermit(t *testing.T) {
	svc, _ := newTestService(t, "1000.00")

	terms, err := svc.Generate(context.Background(), 1, GenerateTermsRequest{Policy: PolicySplitOnPermit})
	require.NoError(t, err)
	require.Len(t, terms, 2)
	require.Equal(t, "750.00", terms[0].Amount.String())
	require.Equal(t, "250.00", terms[1].Amount.String())
	require.Equal(t, StatusPending, terms[0].Status)
	require.Equal(t, int64(7), terms[0].ProjectID)
}

func TestGenerateReplacesPendingOnly(t *testing.T) {
	svc, repo := newTestService(t, "1000.00")

	first, err := svc.Generate(context.Background(), 1, GenerateTermsRequest{Policy: PolicySplitOnPermit})
	require.NoError(t, err)
	require.Len(t, first, 2)

	// Settle one term, then regenerate. The paid term must survive.
	require.NoError(t, repo.SetStatus(context.Background(), first[0].ID, StatusPaid))

	second, err := svc.Generate(context.Background(), 1, GenerateTermsRequest{Policy: PolicyFullOnAcceptance})
	require.NoError(t, err)
	require.Len(t, second, 2)

	var paid, pending int
	for _, term := range second {
		switch term.Status {
		case StatusPaid:
			paid++
			require.Equal(t, "750.00", term.Amount.String())
		case StatusPending:
			pending++
			require.Equal(t, "1000.00", term.Amount.String())
		}
	}
	require.Equal(t, 1, paid)
	require.Equal(t, 1, pending)
}

func TestGenerateRejectedEstimateBlocked(t *testing.T) {
	svc, _ := newTestService(t, "1000.00")
	svcEst := svc.estimates.(*fakeEstimates)
	svcEst.estimate.Status = estimates.StatusRejected

	_, err := svc.Generate(context.Background(), 1, GenerateTermsRequest{Policy: PolicyFullOnAcceptance})
	require.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestGenerateUnknownPolicy(t *testing.T) {
	svc, _ := newTestService(t, "1000.00")

	_, err := svc.Generate(context.Background(), 1, GenerateTermsRequest{Policy: "milestones"})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestTermsForConversionGuards(t *testing.T) {
	svc, repo := newTestService(t, "1000.00")

	terms, err := svc.Generate(context.Background(), 1, GenerateTermsRequest{Policy: PolicySplitOnPermit})
	require.NoError(t, err)

	_, err = svc.TermsForConversion(context.Background(), 1, nil)
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.TermsForConversion(context.Background(), 1, []int64{999})
	require.ErrorIs(t, err, shared.ErrNotFound)

	_, err = svc.TermsForConversion(context.Background(), 2, []int64{terms[0].ID})
	require.ErrorIs(t, err, shared.ErrValidation)

	require.NoError(t, repo.SetStatus(context.Background(), terms[0].ID, StatusPaid))
	_, err = svc.TermsForConversion(context.Background(), 1, []int64{terms[0].ID})
	require.ErrorIs(t, err, shared.ErrInvalidState)

	resolved, err := svc.TermsForConversion(context.Background(), 1, []int64{terms[1].ID})
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	require.Equal(t, "250.00", resolved[0].Amount.String())
}

func TestAttachAndSettleByInvoice(t *testing.T) {
	svc, _ := newTestService(t, "1000.00")

	terms, err := svc.Generate(context.Background(), 1, GenerateTermsRequest{Policy: PolicySplitOnPermit})
	require.NoError(t, err)

	require.NoError(t, svc.AttachInvoice(context.Background(), []int64{terms[0].ID}, 42))

	_, err = svc.TermsForConversion(context.Background(), 1, []int64{terms[0].ID})
	require.ErrorIs(t, err, shared.ErrInvalidState)

	require.NoError(t, svc.MarkPaidForInvoice(context.Background(), 42))

	settled, err := svc.Get(context.Background(), terms[0].ID)
	require.NoError(t, err)
	require.Equal(t, StatusPaid, settled.Status)

	untouched, err := svc.Get(context.Background(), terms[1].ID)
	require.NoError(t, err)
	require.Equal(t, StatusPending, untouched.Status)
}

func TestMarkPaidIdempotent(t *testing.T) {
	svc, _ := newTestService(t, "500.00")

	terms, err := svc.Generate(context.Background(), 1, GenerateTermsRequest{Policy: PolicyFullOnAcceptance})
	require.NoError(t, err)

	paid, err := svc.MarkPaid(context.Background(), terms[0].ID)
	require.NoError(t, err)
	require.Equal(t, StatusPaid, paid.Status)

	again, err := svc.MarkPaid(context.Background(), terms[0].ID)
	require.NoError(t, err)
	require.Equal(t, StatusPaid, again.Status)
}
