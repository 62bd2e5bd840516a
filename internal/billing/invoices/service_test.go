package invoices

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/keystone-billing/keystone/internal/billing/estimates"
	"github.com/keystone-billing/keystone/internal/billing/payterms"
	"github.com/keystone-billing/keystone/internal/billing/shared"
	"github.com/keystone-billing/keystone/internal/money"
)

type memoryRepo struct {
	invoices      map[int64]*Invoice
	lines         map[int64]shared.LineItemSet
	payments      map[int64]*Payment
	nextID        int64
	nextLineID    int64
	nextPaymentID int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		invoices: make(map[int64]*Invoice),
		lines:    make(map[int64]shared.LineItemSet),
		payments: make(map[int64]*Payment),
	}
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return fn(ctx, r)
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (*Invoice, error) {
	inv, ok := r.invoices[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *inv
	cp.Lines = append(shared.LineItemSet(nil), r.lines[id]...)
	return &cp, nil
}

func (r *memoryRepo) GetByNumber(ctx context.Context, number string) (*Invoice, error) {
	for id, inv := range r.invoices {
		if inv.Number == number {
			return r.Get(ctx, id)
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memoryRepo) List(ctx context.Context, req ListInvoicesRequest) ([]Invoice, int, error) {
	var out []Invoice
	for _, inv := range r.invoices {
		if req.Status != nil && inv.Status != *req.Status {
			continue
		}
		if req.ProjectID != nil && inv.ProjectID != *req.ProjectID {
			continue
		}
		if req.EstimateID != nil && (inv.EstimateID == nil || *inv.EstimateID != *req.EstimateID) {
			continue
		}
		out = append(out, *inv)
	}
	return out, len(out), nil
}

func (r *memoryRepo) Create(ctx context.Context, inv Invoice) (int64, error) {
	for _, existing := range r.invoices {
		if existing.Number == inv.Number {
			return 0, shared.ErrDuplicateNumber
		}
	}
	r.nextID++
	inv.ID = r.nextID
	r.invoices[inv.ID] = &inv
	return inv.ID, nil
}

func (r *memoryRepo) UpdateHeader(ctx context.Context, id int64, updates map[string]any) error {
	inv, ok := r.invoices[id]
	if !ok {
		return shared.ErrNotFound
	}
	for col, val := range updates {
		switch col {
		case "date_issued":
			inv.DateIssued = val.(time.Time)
		case "due_date":
			inv.DueDate = val.(time.Time)
		case "tax_rate":
			inv.TaxRate = val.(decimal.Decimal)
		case "notes":
			notes := val.(string)
			inv.Notes = &notes
		default:
			return fmt.Errorf("unexpected column %q", col)
		}
	}
	return nil
}

func (r *memoryRepo) SetPaidStatus(ctx context.Context, id int64, paid money.Money, status InvoiceStatus) error {
	inv, ok := r.invoices[id]
	if !ok {
		return shared.ErrNotFound
	}
	inv.PaidAmount = paid
	inv.Status = status
	return nil
}

func (r *memoryRepo) InsertLine(ctx context.Context, invoiceID int64, line shared.LineItem) (int64, error) {
	r.nextLineID++
	line.ID = r.nextLineID
	r.lines[invoiceID] = append(r.lines[invoiceID], line)
	return line.ID, nil
}

func (r *memoryRepo) DeleteLines(ctx context.Context, invoiceID int64) error {
	delete(r.lines, invoiceID)
	return nil
}

func (r *memoryRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.invoices[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.invoices, id)
	delete(r.lines, id)
	return nil
}

func (r *memoryRepo) InsertPayment(ctx context.Context, p Payment) (int64, error) {
	r.nextPaymentID++
	p.ID = r.nextPaymentID
	r.payments[p.ID] = &p
	return p.ID, nil
}

func (r *memoryRepo) GetPayment(ctx context.Context, id int64) (*Payment, error) {
	p, ok := r.payments[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memoryRepo) ListPayments(ctx context.Context, invoiceID int64) ([]Payment, error) {
	var out []Payment
	for id := int64(1); id <= r.nextPaymentID; id++ {
		if p, ok := r.payments[id]; ok && p.InvoiceID == invoiceID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memoryRepo) UpdatePayment(ctx context.Context, p Payment) error {
	if _, ok := r.payments[p.ID]; !ok {
		return shared.ErrNotFound
	}
	r.payments[p.ID] = &p
	return nil
}

func (r *memoryRepo) DeletePayment(ctx context.Context, id int64) error {
	if _, ok := r.payments[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.payments, id)
	return nil
}

func (r *memoryRepo) PaymentCount(ctx context.Context, invoiceID int64) (int, error) {
	n := 0
	for _, p := range r.payments {
		if p.InvoiceID == invoiceID {
			n++
		}
	}
	return n, nil
}

func (r *memoryRepo) NumbersByPrefix(ctx context.Context, prefix string) ([]string, error) {
	var numbers []string
	for _, inv := range r.invoices {
		if strings.HasPrefix(inv.Number, prefix+"-") {
			numbers = append(numbers, inv.Number)
		}
	}
	return numbers, nil
}

type fakeNumbers struct {
	next int64
}

func (f *fakeNumbers) Next(ctx context.Context, prefix string, floor int64) (string, error) {
	f.next++
	seq := f.next
	if seq < floor {
		seq = floor
	}
	return fmt.Sprintf("%s-%04d", prefix, seq), nil
}

type fakeSettings struct{}

func (fakeSettings) InvoiceNumbering(ctx context.Context) (string, int64, error) {
	return "INV", 1, nil
}

func (fakeSettings) DefaultTaxRate(ctx context.Context) (decimal.Decimal, error) {
	return decimal.RequireFromString("0.0875"), nil
}

type fakeEstimates struct {
	estimate *estimates.Estimate
	approved []int64
}

func (f *fakeEstimates) Get(ctx context.Context, id int64) (*estimates.Estimate, error) {
	if f.estimate == nil || f.estimate.ID != id {
		return nil, shared.ErrNotFound
	}
	cp := *f.estimate
	cp.Lines = append(shared.LineItemSet(nil), f.estimate.Lines...)
	return &cp, nil
}

func (f *fakeEstimates) Approve(ctx context.Context, id int64) (*estimates.Estimate, error) {
	f.approved = append(f.approved, id)
	f.estimate.Status = estimates.StatusApproved
	return f.estimate, nil
}

type fakeTerms struct {
	terms    []payterms.PayTerm
	attached map[int64]int64
	settled  []int64
}

func (f *fakeTerms) TermsForConversion(ctx context.Context, estimateID int64, termIDs []int64) ([]payterms.PayTerm, error) {
	var out []payterms.PayTerm
	for _, id := range termIDs {
		for _, t := range f.terms {
			if t.ID == id && t.EstimateID == estimateID {
				out = append(out, t)
			}
		}
	}
	if len(out) != len(termIDs) {
		return nil, shared.ErrNotFound
	}
	return out, nil
}

func (f *fakeTerms) AttachInvoice(ctx context.Context, termIDs []int64, invoiceID int64) error {
	if f.attached == nil {
		f.attached = make(map[int64]int64)
	}
	for _, id := range termIDs {
		f.attached[id] = invoiceID
	}
	return nil
}

func (f *fakeTerms) MarkPaidForInvoice(ctx context.Context, invoiceID int64) error {
	f.settled = append(f.settled, invoiceID)
	return nil
}

var (
	issued = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	due    = time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
)

func newTestService(t *testing.T) (*Service, *memoryRepo, *fakeEstimates, *fakeTerms) {
	t.Helper()
	repo := newMemoryRepo()
	est := &fakeEstimates{}
	terms := &fakeTerms{}
	svc := NewService(repo, &fakeNumbers{}, fakeSettings{}, est, terms, slog.Default())
	return svc, repo, est, terms
}

// Two lines at the default 8.75% rate: subtotal 500.00, tax 43.75,
// total 543.75.
func standardLines() []LineItemRequest {
	return []LineItemRequest{
		{Description: "Framing labor", Quantity: decimal.NewFromInt(10), UnitRate: money.MustParse("35.00")},
		{Description: "Lumber package", Quantity: decimal.NewFromInt(1), UnitRate: money.MustParse("150.00")},
	}
}

func TestCreateDerivesTotalsAndNumber(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	inv, err := svc.Create(context.Background(), CreateInvoiceRequest{
		ProjectID:  7,
		DateIssued: issued,
		DueDate:    due,
		Lines:      standardLines(),
	})
	require.NoError(t, err)
	require.Equal(t, "INV-0001", inv.Number)
	require.Equal(t, StatusDraft, inv.Status)
	require.Equal(t, "500.00", inv.Subtotal().String())
	require.Equal(t, "43.75", inv.TaxAmount().String())
	require.Equal(t, "543.75", inv.Total().String())
	require.Equal(t, "543.75", inv.BalanceDue().String())
	require.True(t, inv.PaidAmount.IsZero())
}

func TestCreateRejectsDueBeforeIssued(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.Create(context.Background(), CreateInvoiceRequest{
		ProjectID:  7,
		DateIssued: due,
		DueDate:    issued,
		Lines:      standardLines(),
	})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestZeroTotalInvoiceImmediatelyPaid(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	inv, err := svc.Create(context.Background(), CreateInvoiceRequest{
		ProjectID:  7,
		DateIssued: issued,
		DueDate:    due,
		Lines: []LineItemRequest{
			{Description: "Placeholder", Quantity: decimal.Zero, UnitRate: money.MustParse("100.00")},
		},
	})
	require.NoError(t, err)
	require.Equal(t, StatusPaid, inv.Status)

	// Nothing is owed, so any payment is an overpayment.
	_, err = svc.PostPayment(context.Background(), inv.ID, PostPaymentRequest{
		Amount: money.MustParse("1.00"), Date: issued, Method: "check",
	})
	require.ErrorIs(t, err, shared.ErrOverpayment)
}

func TestPaymentLifecycle(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	inv, err := svc.Create(context.Background(), CreateInvoiceRequest{
		ProjectID: 7, DateIssued: issued, DueDate: due, Lines: standardLines(),
	})
	require.NoError(t, err)

	inv, err = svc.Send(context.Background(), inv.ID)
	require.NoError(t, err)
	require.Equal(t, StatusSent, inv.Status)

	inv, err = svc.PostPayment(context.Background(), inv.ID, PostPaymentRequest{
		Amount: money.MustParse("300.00"), Date: issued, Method: "check", Reference: "chk-101",
	})
	require.NoError(t, err)
	require.Equal(t, StatusPartial, inv.Status)
	require.Equal(t, "300.00", inv.PaidAmount.String())
	require.Equal(t, "243.75", inv.BalanceDue().String())

	inv, err = svc.PostPayment(context.Background(), inv.ID, PostPaymentRequest{
		Amount: money.MustParse("243.75"), Date: issued, Method: "ach",
	})
	require.NoError(t, err)
	require.Equal(t, StatusPaid, inv.Status)
	require.True(t, inv.BalanceDue().IsZero())

	payments, err := svc.ListPayments(context.Background(), inv.ID)
	require.NoError(t, err)
	require.Len(t, payments, 2)
	require.NotEmpty(t, payments[1].Reference, "omitted reference gets generated")

	// Voiding the second payment reopens the balance.
	inv, err = svc.VoidPayment(context.Background(), payments[1].ID)
	require.NoError(t, err)
	require.Equal(t, StatusPartial, inv.Status)
	require.Equal(t, "300.00", inv.PaidAmount.String())

	// Voiding the first as well drops back to SENT, not DRAFT.
	inv, err = svc.VoidPayment(context.Background(), payments[0].ID)
	require.NoError(t, err)
	require.Equal(t, StatusSent, inv.Status)
	require.True(t, inv.PaidAmount.IsZero())
}

func TestPostPaymentRejections(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	inv, err := svc.Create(context.Background(), CreateInvoiceRequest{
		ProjectID: 7, DateIssued: issued, DueDate: due, Lines: standardLines(),
	})
	require.NoError(t, err)

	_, err = svc.PostPayment(context.Background(), inv.ID, PostPaymentRequest{
		Amount: money.Zero, Date: issued, Method: "check",
	})
	require.ErrorIs(t, err, shared.ErrInvalidAmount)

	_, err = svc.PostPayment(context.Background(), inv.ID, PostPaymentRequest{
		Amount: money.MustParse("-5.00"), Date: issued, Method: "check",
	})
	require.ErrorIs(t, err, shared.ErrInvalidAmount)

	// One cent over the balance is rejected, never clamped.
	_, err = svc.PostPayment(context.Background(), inv.ID, PostPaymentRequest{
		Amount: money.MustParse("543.76"), Date: issued, Method: "check",
	})
	require.ErrorIs(t, err, shared.ErrOverpayment)

	// The invoice is untouched by the rejections.
	inv, err = svc.Get(context.Background(), inv.ID)
	require.NoError(t, err)
	require.True(t, inv.PaidAmount.IsZero())
	require.Equal(t, StatusDraft, inv.Status)
	n, err := svc.ListPayments(context.Background(), inv.ID)
	require.NoError(t, err)
	require.Empty(t, n)
}

func TestPaidAmountInvariantHolds(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	inv, err := svc.Create(context.Background(), CreateInvoiceRequest{
		ProjectID: 7, DateIssued: issued, DueDate: due, Lines: standardLines(),
	})
	require.NoError(t, err)

	amounts := []string{"100.00", "200.00", "43.75", "200.00"}
	for _, a := range amounts {
		inv, err = svc.PostPayment(context.Background(), inv.ID, PostPaymentRequest{
			Amount: money.MustParse(a), Date: issued, Method: "check",
		})
		require.NoError(t, err)
		require.False(t, inv.PaidAmount.IsNegative())
		require.False(t, inv.PaidAmount.GreaterThan(inv.Total()))
		require.Equal(t, DeriveStatus(inv.Status, inv.Total(), inv.PaidAmount), inv.Status)
	}
	require.Equal(t, StatusPaid, inv.Status)
}

func TestAmendPayment(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	inv, err := svc.Create(context.Background(), CreateInvoiceRequest{
		ProjectID: 7, DateIssued: issued, DueDate: due, Lines: standardLines(),
	})
	require.NoError(t, err)

	inv, err = svc.PostPayment(context.Background(), inv.ID, PostPaymentRequest{
		Amount: money.MustParse("300.00"), Date: issued, Method: "check",
	})
	require.NoError(t, err)

	payments, err := svc.ListPayments(context.Background(), inv.ID)
	require.NoError(t, err)
	paymentID := payments[0].ID

	// Headroom is balance due plus the old amount, as if voided first.
	full := money.MustParse("543.75")
	inv, err = svc.AmendPayment(context.Background(), paymentID, AmendPaymentRequest{Amount: &full})
	require.NoError(t, err)
	require.Equal(t, StatusPaid, inv.Status)
	require.Equal(t, "543.75", inv.PaidAmount.String())

	over := money.MustParse("543.76")
	_, err = svc.AmendPayment(context.Background(), paymentID, AmendPaymentRequest{Amount: &over})
	require.ErrorIs(t, err, shared.ErrOverpayment)

	bad := money.MustParse("-1.00")
	_, err = svc.AmendPayment(context.Background(), paymentID, AmendPaymentRequest{Amount: &bad})
	require.ErrorIs(t, err, shared.ErrInvalidAmount)

	// Metadata-only amendments leave the paid amount alone.
	method := "wire"
	inv, err = svc.AmendPayment(context.Background(), paymentID, AmendPaymentRequest{Method: &method})
	require.NoError(t, err)
	require.Equal(t, "543.75", inv.PaidAmount.String())
	payments, err = svc.ListPayments(context.Background(), inv.ID)
	require.NoError(t, err)
	require.Equal(t, "wire", payments[0].Method)
}

func TestCancelRules(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	inv, err := svc.Create(context.Background(), CreateInvoiceRequest{
		ProjectID: 7, DateIssued: issued, DueDate: due, Lines: standardLines(),
	})
	require.NoError(t, err)

	cancelled, err := svc.Cancel(context.Background(), inv.ID)
	require.NoError(t, err)
	require.Equal(t, StatusCancelled, cancelled.Status)

	// Cancelled is sticky: no payments, no re-send.
	_, err = svc.PostPayment(context.Background(), inv.ID, PostPaymentRequest{
		Amount: money.MustParse("10.00"), Date: issued, Method: "check",
	})
	require.ErrorIs(t, err, shared.ErrInvalidState)
	_, err = svc.Send(context.Background(), inv.ID)
	require.ErrorIs(t, err, shared.ErrInvalidState)
	_, err = svc.Cancel(context.Background(), inv.ID)
	require.ErrorIs(t, err, shared.ErrInvalidState)

	// An invoice with payments cannot be cancelled.
	second, err := svc.Create(context.Background(), CreateInvoiceRequest{
		ProjectID: 7, DateIssued: issued, DueDate: due, Lines: standardLines(),
	})
	require.NoError(t, err)
	_, err = svc.PostPayment(context.Background(), second.ID, PostPaymentRequest{
		Amount: money.MustParse("100.00"), Date: issued, Method: "check",
	})
	require.NoError(t, err)
	_, err = svc.Cancel(context.Background(), second.ID)
	require.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestDeleteBlockedByPayments(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	inv, err := svc.Create(context.Background(), CreateInvoiceRequest{
		ProjectID: 7, DateIssued: issued, DueDate: due, Lines: standardLines(),
	})
	require.NoError(t, err)
	_, err = svc.PostPayment(context.Background(), inv.ID, PostPaymentRequest{
		Amount: money.MustParse("100.00"), Date: issued, Method: "check",
	})
	require.NoError(t, err)

	err = svc.Delete(context.Background(), inv.ID)
	require.ErrorIs(t, err, shared.ErrReferentialIntegrity)
}

func TestUpdateDraftOnlyAndStatusTracksTotal(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	inv, err := svc.Create(context.Background(), CreateInvoiceRequest{
		ProjectID: 7, DateIssued: issued, DueDate: due, Lines: standardLines(),
	})
	require.NoError(t, err)

	newLines := []LineItemRequest{
		{Description: "Revised scope", Quantity: decimal.NewFromInt(1), UnitRate: money.MustParse("100.00")},
	}
	inv, err = svc.Update(context.Background(), inv.ID, UpdateInvoiceRequest{Lines: &newLines})
	require.NoError(t, err)
	require.Equal(t, "108.75", inv.Total().String())
	require.Len(t, inv.Lines, 1)
	require.Equal(t, 0, inv.Lines[0].SortOrder)

	_, err = svc.Send(context.Background(), inv.ID)
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), inv.ID, UpdateInvoiceRequest{Lines: &newLines})
	require.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestCreateFromEstimate(t *testing.T) {
	svc, _, est, _ := newTestService(t)
	est.estimate = &estimates.Estimate{
		ID:        3,
		ProjectID: 7,
		Status:    estimates.StatusPending,
		TaxRate:   decimal.RequireFromString("0.0875"),
		Lines: shared.LineItemSet{
			{Description: "Framing labor", Quantity: decimal.NewFromInt(10), UnitRate: money.MustParse("35.00"), SortOrder: 0},
			{Description: "Lumber package", Quantity: decimal.NewFromInt(1), UnitRate: money.MustParse("150.00"), SortOrder: 1},
		},
	}

	inv, err := svc.CreateFromEstimate(context.Background(), FromEstimateRequest{
		EstimateID: 3, DateIssued: issued, DueDate: due,
	})
	require.NoError(t, err)
	require.Equal(t, "543.75", inv.Total().String())
	require.Equal(t, int64(3), *inv.EstimateID)
	require.Equal(t, []int64{3}, est.approved)

	// The copied line set is independent of later estimate edits.
	est.estimate.Lines[0].UnitRate = money.MustParse("999.00")
	got, err := svc.Get(context.Background(), inv.ID)
	require.NoError(t, err)
	require.Equal(t, "543.75", got.Total().String())
}

func TestCreateFromEstimateRejectedBlocked(t *testing.T) {
	svc, _, est, _ := newTestService(t)
	est.estimate = &estimates.Estimate{
		ID: 3, ProjectID: 7, Status: estimates.StatusRejected,
		Lines: shared.LineItemSet{
			{Description: "Work", Quantity: decimal.NewFromInt(1), UnitRate: money.MustParse("100.00")},
		},
	}

	_, err := svc.CreateFromEstimate(context.Background(), FromEstimateRequest{
		EstimateID: 3, DateIssued: issued, DueDate: due,
	})
	require.ErrorIs(t, err, shared.ErrInvalidState)
	require.Empty(t, est.approved)
}

func TestCreateFromPayTermsAndSettlement(t *testing.T) {
	svc, _, est, terms := newTestService(t)
	est.estimate = &estimates.Estimate{
		ID: 3, ProjectID: 7, Status: estimates.StatusPending,
		TaxRate: decimal.Zero,
		Lines: shared.LineItemSet{
			{Description: "Work", Quantity: decimal.NewFromInt(1), UnitRate: money.MustParse("1000.00")},
		},
	}
	terms.terms = []payterms.PayTerm{
		{ID: 11, EstimateID: 3, Label: "75% on permit approval", Amount: money.MustParse("750.00")},
		{ID: 12, EstimateID: 3, Label: "25% on completion", Amount: money.MustParse("250.00")},
	}

	inv, err := svc.CreateFromPayTerms(context.Background(), FromPayTermsRequest{
		EstimateID: 3, TermIDs: []int64{11}, DateIssued: issued, DueDate: due,
	})
	require.NoError(t, err)
	require.Len(t, inv.Lines, 1)
	require.Equal(t, "75% on permit approval", inv.Lines[0].Description)
	require.True(t, inv.TaxRate.IsZero(), "term amounts are tax inclusive")
	require.Equal(t, "750.00", inv.Total().String())
	require.Equal(t, inv.ID, terms.attached[11])
	require.Equal(t, []int64{3}, est.approved)

	// Full payment settles the covered terms.
	_, err = svc.PostPayment(context.Background(), inv.ID, PostPaymentRequest{
		Amount: money.MustParse("750.00"), Date: issued, Method: "wire",
	})
	require.NoError(t, err)
	require.Equal(t, []int64{inv.ID}, terms.settled)
}

func TestDeriveStatusTransitions(t *testing.T) {
	total := money.MustParse("100.00")

	require.Equal(t, StatusDraft, DeriveStatus(StatusDraft, total, money.Zero))
	require.Equal(t, StatusSent, DeriveStatus(StatusSent, total, money.Zero))
	require.Equal(t, StatusPartial, DeriveStatus(StatusSent, total, money.MustParse("40.00")))
	require.Equal(t, StatusPaid, DeriveStatus(StatusPartial, total, total))
	require.Equal(t, StatusCancelled, DeriveStatus(StatusCancelled, total, money.Zero))

	// A residual at or under half a cent counts as settled.
	require.Equal(t, StatusPaid, DeriveStatus(StatusPartial, total, money.MustParse("99.995")))
	require.Equal(t, StatusPartial, DeriveStatus(StatusPartial, total, money.MustParse("99.99")))
	require.Equal(t, StatusPaid, DeriveStatus(StatusDraft, money.Zero, money.Zero))
}
