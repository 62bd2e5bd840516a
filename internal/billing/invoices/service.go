package invoices

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/keystone-billing/keystone/internal/billing/estimates"
	"github.com/keystone-billing/keystone/internal/billing/payterms"
	"github.com/keystone-billing/keystone/internal/billing/shared"
	"github.com/keystone-billing/keystone/internal/money"
)

// Numbers issues document numbers for a prefix series.
type Numbers interface {
	Next(ctx context.Context, prefix string, floor int64) (string, error)
}

// Settings supplies configured defaults at document-creation time.
type Settings interface {
	InvoiceNumbering(ctx context.Context) (prefix string, floor int64, err error)
	DefaultTaxRate(ctx context.Context) (decimal.Decimal, error)
}

// EstimateSource resolves and approves estimates during conversion.
type EstimateSource interface {
	Get(ctx context.Context, id int64) (*estimates.Estimate, error)
	Approve(ctx context.Context, id int64) (*estimates.Estimate, error)
}

// TermSource resolves pay terms during conversion and records their
// settlement once the covering invoice is paid.
type TermSource interface {
	TermsForConversion(ctx context.Context, estimateID int64, termIDs []int64) ([]payterms.PayTerm, error)
	AttachInvoice(ctx context.Context, termIDs []int64, invoiceID int64) error
	MarkPaidForInvoice(ctx context.Context, invoiceID int64) error
}

// Service handles invoice business logic and the payment ledger.
type Service struct {
	repo      Repository
	numbers   Numbers
	settings  Settings
	estimates EstimateSource
	terms     TermSource
	logger    *slog.Logger
}

// NewService builds a Service instance. terms may be nil when pay-term
// conversion is not wired.
func NewService(repo Repository, numbers Numbers, settings Settings, est EstimateSource, terms TermSource, logger *slog.Logger) *Service {
	return &Service{repo: repo, numbers: numbers, settings: settings, estimates: est, terms: terms, logger: logger}
}

// Create opens a draft invoice from a manually supplied line set.
func (s *Service) Create(ctx context.Context, req CreateInvoiceRequest) (*Invoice, error) {
	if req.DueDate.Before(req.DateIssued) {
		return nil, fmt.Errorf("%w: due_date must not precede date_issued", shared.ErrValidation)
	}

	taxRate := decimal.Zero
	if req.TaxRate != nil {
		if !shared.ValidTaxRate(*req.TaxRate) {
			return nil, fmt.Errorf("%w: tax rate must lie in [0,1]", shared.ErrValidation)
		}
		taxRate = *req.TaxRate
	} else {
		rate, err := s.settings.DefaultTaxRate(ctx)
		if err != nil {
			return nil, fmt.Errorf("default tax rate: %w", err)
		}
		taxRate = rate
	}

	lines := linesFromRequests(req.Lines)
	if err := lines.Validate(); err != nil {
		return nil, err
	}
	lines.Reindex()

	return s.insert(ctx, Invoice{
		ProjectID:  req.ProjectID,
		DateIssued: req.DateIssued,
		DueDate:    req.DueDate,
		TaxRate:    taxRate,
		Notes:      req.Notes,
	}, lines)
}

// CreateFromEstimate converts an estimate into an invoice. The line set
// and tax rate are copied at this moment; later estimate edits never
// propagate. Conversion is what moves the estimate to APPROVED.
func (s *Service) CreateFromEstimate(ctx context.Context, req FromEstimateRequest) (*Invoice, error) {
	if req.DueDate.Before(req.DateIssued) {
		return nil, fmt.Errorf("%w: due_date must not precede date_issued", shared.ErrValidation)
	}

	est, err := s.estimates.Get(ctx, req.EstimateID)
	if err != nil {
		return nil, fmt.Errorf("load estimate: %w", err)
	}
	if est.Status == estimates.StatusRejected {
		return nil, fmt.Errorf("%w: rejected estimates cannot be invoiced", shared.ErrInvalidState)
	}
	if err := est.Lines.Validate(); err != nil {
		return nil, err
	}

	inv, err := s.insert(ctx, Invoice{
		ProjectID:  est.ProjectID,
		EstimateID: &est.ID,
		DateIssued: req.DateIssued,
		DueDate:    req.DueDate,
		TaxRate:    est.TaxRate,
		Notes:      req.Notes,
	}, est.Lines.Clone())
	if err != nil {
		return nil, err
	}

	if _, err := s.estimates.Approve(ctx, est.ID); err != nil {
		return nil, fmt.Errorf("approve estimate: %w", err)
	}
	return inv, nil
}

// CreateFromPayTerms turns pending pay terms into an invoice of
// single-line items. Term amounts are derived from the tax-inclusive
// estimate total, so the invoice carries a zero tax rate.
func (s *Service) CreateFromPayTerms(ctx context.Context, req FromPayTermsRequest) (*Invoice, error) {
	if s.terms == nil {
		return nil, fmt.Errorf("%w: pay-term conversion not configured", shared.ErrValidation)
	}
	if req.DueDate.Before(req.DateIssued) {
		return nil, fmt.Errorf("%w: due_date must not precede date_issued", shared.ErrValidation)
	}

	terms, err := s.terms.TermsForConversion(ctx, req.EstimateID, req.TermIDs)
	if err != nil {
		return nil, err
	}

	est, err := s.estimates.Get(ctx, req.EstimateID)
	if err != nil {
		return nil, fmt.Errorf("load estimate: %w", err)
	}

	lines := make(shared.LineItemSet, len(terms))
	for i, term := range terms {
		lines[i] = shared.LineItem{
			Description: term.Label,
			Quantity:    decimal.NewFromInt(1),
			UnitRate:    term.Amount,
		}
	}
	lines.Reindex()

	inv, err := s.insert(ctx, Invoice{
		ProjectID:  est.ProjectID,
		EstimateID: &est.ID,
		DateIssued: req.DateIssued,
		DueDate:    req.DueDate,
		TaxRate:    decimal.Zero,
		Notes:      req.Notes,
	}, lines)
	if err != nil {
		return nil, err
	}

	if err := s.terms.AttachInvoice(ctx, req.TermIDs, inv.ID); err != nil {
		return nil, fmt.Errorf("attach terms to invoice: %w", err)
	}
	if _, err := s.estimates.Approve(ctx, est.ID); err != nil {
		return nil, fmt.Errorf("approve estimate: %w", err)
	}
	return inv, nil
}

func (s *Service) insert(ctx context.Context, inv Invoice, lines shared.LineItemSet) (*Invoice, error) {
	prefix, floor, err := s.settings.InvoiceNumbering(ctx)
	if err != nil {
		return nil, fmt.Errorf("invoice numbering settings: %w", err)
	}
	inv.Number, err = s.numbers.Next(ctx, prefix, floor)
	if err != nil {
		return nil, fmt.Errorf("generate invoice number: %w", err)
	}

	inv.PaidAmount = money.Zero
	inv.Lines = lines
	// A zero-total invoice is trivially satisfied from the start.
	inv.Status = DeriveStatus(StatusDraft, inv.Total(), inv.PaidAmount)

	var invoiceID int64
	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		id, err := repo.Create(ctx, inv)
		if err != nil {
			return fmt.Errorf("create invoice: %w", err)
		}
		invoiceID = id
		for _, line := range lines {
			if _, err := repo.InsertLine(ctx, invoiceID, line); err != nil {
				return fmt.Errorf("insert invoice line: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, invoiceID)
}

// Update edits a draft invoice, replacing its line set when provided.
func (s *Service) Update(ctx context.Context, id int64, req UpdateInvoiceRequest) (*Invoice, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.Status != StatusDraft {
		return nil, fmt.Errorf("%w: only DRAFT invoices can be edited", shared.ErrInvalidState)
	}

	updates := make(map[string]any)
	if req.DateIssued != nil {
		updates["date_issued"] = *req.DateIssued
	}
	if req.DueDate != nil {
		updates["due_date"] = *req.DueDate
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	if req.TaxRate != nil {
		if !shared.ValidTaxRate(*req.TaxRate) {
			return nil, fmt.Errorf("%w: tax rate must lie in [0,1]", shared.ErrValidation)
		}
		updates["tax_rate"] = *req.TaxRate
	}

	var lines shared.LineItemSet
	if req.Lines != nil {
		lines = linesFromRequests(*req.Lines)
		if err := lines.Validate(); err != nil {
			return nil, err
		}
		lines.Reindex()
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if len(updates) > 0 {
			if err := repo.UpdateHeader(ctx, id, updates); err != nil {
				return fmt.Errorf("update invoice: %w", err)
			}
		}
		if req.Lines != nil {
			if err := repo.DeleteLines(ctx, id); err != nil {
				return fmt.Errorf("delete invoice lines: %w", err)
			}
			for _, line := range lines {
				if _, err := repo.InsertLine(ctx, id, line); err != nil {
					return fmt.Errorf("insert invoice line: %w", err)
				}
			}
		}
		// Replacing lines can change the total; the stored status must
		// track the transition function.
		inv, err := repo.Get(ctx, id)
		if err != nil {
			return err
		}
		next := DeriveStatus(inv.Status, inv.Total(), inv.PaidAmount)
		if next != inv.Status {
			return repo.SetPaidStatus(ctx, id, inv.PaidAmount, next)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// Send marks a draft invoice as issued to the customer.
func (s *Service) Send(ctx context.Context, id int64) (*Invoice, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.Status != StatusDraft {
		return nil, fmt.Errorf("%w: can only send DRAFT invoices", shared.ErrInvalidState)
	}
	if err := s.repo.SetPaidStatus(ctx, id, existing.PaidAmount, StatusSent); err != nil {
		return nil, fmt.Errorf("send invoice: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// Cancel terminates an unpaid invoice. Only DRAFT and SENT invoices with
// an empty ledger can be cancelled; the state is sticky.
func (s *Service) Cancel(ctx context.Context, id int64) (*Invoice, error) {
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		inv, err := repo.Get(ctx, id)
		if err != nil {
			return err
		}
		if inv.Status != StatusDraft && inv.Status != StatusSent {
			return fmt.Errorf("%w: can only cancel DRAFT or SENT invoices", shared.ErrInvalidState)
		}
		n, err := repo.PaymentCount(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: invoice has recorded payments", shared.ErrInvalidState)
		}
		return repo.SetPaidStatus(ctx, id, inv.PaidAmount, StatusCancelled)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// Delete removes an invoice unless payments exist against it.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	n, err := s.repo.PaymentCount(ctx, id)
	if err != nil {
		return fmt.Errorf("count payments: %w", err)
	}
	if n > 0 {
		return fmt.Errorf("%w: %d payment(s) recorded against this invoice", shared.ErrReferentialIntegrity, n)
	}
	return s.repo.Delete(ctx, id)
}

// Get returns one invoice with its lines.
func (s *Service) Get(ctx context.Context, id int64) (*Invoice, error) {
	return s.repo.Get(ctx, id)
}

// List returns invoices matching the filter plus the unpaged count.
func (s *Service) List(ctx context.Context, req ListInvoicesRequest) ([]Invoice, int, error) {
	if req.Limit <= 0 {
		req.Limit = 50
	}
	return s.repo.List(ctx, req)
}

// ListPayments returns the ledger of one invoice in posting order.
func (s *Service) ListPayments(ctx context.Context, invoiceID int64) ([]Payment, error) {
	if _, err := s.repo.Get(ctx, invoiceID); err != nil {
		return nil, err
	}
	return s.repo.ListPayments(ctx, invoiceID)
}

// PostPayment appends a ledger entry and updates the invoice's paid
// amount and status in the same transaction. Rejections are explicit:
// the ledger never clamps an amount.
func (s *Service) PostPayment(ctx context.Context, invoiceID int64, req PostPaymentRequest) (*Invoice, error) {
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: got %s", shared.ErrInvalidAmount, req.Amount)
	}
	reference := req.Reference
	if reference == "" {
		reference = uuid.NewString()
	}

	var paidInFull bool
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		inv, err := repo.Get(ctx, invoiceID)
		if err != nil {
			return err
		}
		if inv.Status == StatusCancelled {
			return fmt.Errorf("%w: invoice is cancelled", shared.ErrInvalidState)
		}
		if req.Amount.GreaterThan(inv.BalanceDue()) {
			return fmt.Errorf("%w: %s exceeds balance due %s", shared.ErrOverpayment, req.Amount, inv.BalanceDue())
		}

		if _, err := repo.InsertPayment(ctx, Payment{
			InvoiceID: invoiceID,
			Amount:    req.Amount,
			Date:      req.Date,
			Method:    req.Method,
			Reference: reference,
		}); err != nil {
			return fmt.Errorf("insert payment: %w", err)
		}

		paid := inv.PaidAmount.Add(req.Amount)
		status := DeriveStatus(inv.Status, inv.Total(), paid)
		paidInFull = status == StatusPaid
		return repo.SetPaidStatus(ctx, invoiceID, paid, status)
	})
	if err != nil {
		return nil, err
	}

	if paidInFull {
		s.settleTerms(ctx, invoiceID)
	}
	return s.repo.Get(ctx, invoiceID)
}

// VoidPayment removes a ledger entry, reversing its effect on the
// invoice in the same transaction. May move PAID back to PARTIAL or
// PARTIAL back to SENT.
func (s *Service) VoidPayment(ctx context.Context, paymentID int64) (*Invoice, error) {
	var invoiceID int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		payment, err := repo.GetPayment(ctx, paymentID)
		if err != nil {
			return err
		}
		invoiceID = payment.InvoiceID

		inv, err := repo.Get(ctx, invoiceID)
		if err != nil {
			return err
		}

		if err := repo.DeletePayment(ctx, paymentID); err != nil {
			return fmt.Errorf("delete payment: %w", err)
		}

		paid := inv.PaidAmount.Sub(payment.Amount)
		if paid.IsNegative() {
			// Ledger and invoice disagree; refuse to make it worse.
			return fmt.Errorf("%w: void would drive paid amount negative", shared.ErrValidation)
		}
		return repo.SetPaidStatus(ctx, invoiceID, paid, DeriveStatus(inv.Status, inv.Total(), paid))
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, invoiceID)
}

// AmendPayment corrects a ledger entry in place. The new amount is
// validated as if the old payment were first voided.
func (s *Service) AmendPayment(ctx context.Context, paymentID int64, req AmendPaymentRequest) (*Invoice, error) {
	var invoiceID int64
	var paidInFull bool
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		payment, err := repo.GetPayment(ctx, paymentID)
		if err != nil {
			return err
		}
		invoiceID = payment.InvoiceID

		inv, err := repo.Get(ctx, invoiceID)
		if err != nil {
			return err
		}
		if inv.Status == StatusCancelled {
			return fmt.Errorf("%w: invoice is cancelled", shared.ErrInvalidState)
		}

		amended := *payment
		if req.Date != nil {
			amended.Date = *req.Date
		}
		if req.Method != nil {
			amended.Method = *req.Method
		}
		if req.Reference != nil {
			amended.Reference = *req.Reference
		}
		paid := inv.PaidAmount
		if req.Amount != nil {
			if !req.Amount.IsPositive() {
				return fmt.Errorf("%w: got %s", shared.ErrInvalidAmount, *req.Amount)
			}
			headroom := inv.BalanceDue().Add(payment.Amount)
			if req.Amount.GreaterThan(headroom) {
				return fmt.Errorf("%w: %s exceeds balance due %s after reversal", shared.ErrOverpayment, *req.Amount, headroom)
			}
			amended.Amount = *req.Amount
			paid = inv.PaidAmount.Sub(payment.Amount).Add(*req.Amount)
		}

		if err := repo.UpdatePayment(ctx, amended); err != nil {
			return fmt.Errorf("update payment: %w", err)
		}
		status := DeriveStatus(inv.Status, inv.Total(), paid)
		paidInFull = status == StatusPaid && inv.Status != StatusPaid
		return repo.SetPaidStatus(ctx, invoiceID, paid, status)
	})
	if err != nil {
		return nil, err
	}

	if paidInFull {
		s.settleTerms(ctx, invoiceID)
	}
	return s.repo.Get(ctx, invoiceID)
}

// settleTerms marks pay terms covered by a fully paid invoice as PAID.
// Best effort after commit; drift here is reported by the integrity scan.
func (s *Service) settleTerms(ctx context.Context, invoiceID int64) {
	if s.terms == nil {
		return
	}
	if err := s.terms.MarkPaidForInvoice(ctx, invoiceID); err != nil && s.logger != nil {
		s.logger.Error("mark pay terms paid", slog.Any("error", err), slog.Int64("invoice_id", invoiceID))
	}
}

func linesFromRequests(reqs []LineItemRequest) shared.LineItemSet {
	lines := make(shared.LineItemSet, len(reqs))
	for i, lr := range reqs {
		lines[i] = shared.LineItem{
			Description: lr.Description,
			Quantity:    lr.Quantity,
			UnitRate:    lr.UnitRate,
		}
	}
	return lines
}
