package payterms

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/keystone-billing/keystone/internal/billing/estimates"
	"github.com/keystone-billing/keystone/internal/billing/shared"
)

// EstimateSource resolves the estimate whose total the allocator splits.
type EstimateSource interface {
	Get(ctx context.Context, id int64) (*estimates.Estimate, error)
}

// Service manages installment terms for estimates.
type Service struct {
	repo      Repository
	estimates EstimateSource
	logger    *slog.Logger
}

// NewService builds a Service instance.
func NewService(repo Repository, est EstimateSource, logger *slog.Logger) *Service {
	return &Service{repo: repo, estimates: est, logger: logger}
}

var (
	defaultFirstPercent  = decimal.NewFromInt(75)
	defaultSecondPercent = decimal.NewFromInt(25)
)

// Generate derives a fresh term set from the estimate's current total.
// Pending terms for the estimate are replaced; Paid terms are kept as-is.
func (s *Service) Generate(ctx context.Context, estimateID int64, req GenerateTermsRequest) ([]PayTerm, error) {
	est, err := s.estimates.Get(ctx, estimateID)
	if err != nil {
		return nil, fmt.Errorf("load estimate: %w", err)
	}
	if est.Status == estimates.StatusRejected {
		return nil, fmt.Errorf("%w: rejected estimates cannot carry pay terms", shared.ErrInvalidState)
	}

	var allocations []Allocation
	switch req.Policy {
	case PolicyFullOnAcceptance:
		allocations = FullOnAcceptance(est.Total())
	case PolicySplitOnPermit:
		first, second := defaultFirstPercent, defaultSecondPercent
		if req.FirstPercent != nil {
			first = *req.FirstPercent
		}
		if req.SecondPercent != nil {
			second = *req.SecondPercent
		}
		allocations, err = SplitOnPermit(est.Total(), first, second)
		if err != nil {
			return nil, err
		}
	case PolicyCustom:
		custom := make([]CustomTerm, len(req.Custom))
		for i, c := range req.Custom {
			custom[i] = CustomTerm{Label: c.Label, Amount: c.Amount, DueTrigger: c.DueTrigger}
		}
		allocations, err = Custom(custom)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: unknown allocation policy %q", shared.ErrValidation, req.Policy)
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := repo.DeletePending(ctx, estimateID); err != nil {
			return fmt.Errorf("clear pending terms: %w", err)
		}
		for _, a := range allocations {
			term := PayTerm{
				EstimateID: estimateID,
				ProjectID:  est.ProjectID,
				Kind:       a.Kind,
				Label:      a.Label,
				Percentage: a.Percentage,
				Amount:     a.Amount,
				DueTrigger: a.DueTrigger,
				Status:     StatusPending,
			}
			if _, err := repo.Insert(ctx, term); err != nil {
				return fmt.Errorf("insert pay term: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.repo.ListByEstimate(ctx, estimateID)
}

// List returns all terms of one estimate, oldest first.
func (s *Service) List(ctx context.Context, estimateID int64) ([]PayTerm, error) {
	if _, err := s.estimates.Get(ctx, estimateID); err != nil {
		return nil, fmt.Errorf("load estimate: %w", err)
	}
	return s.repo.ListByEstimate(ctx, estimateID)
}

// Get returns one term.
func (s *Service) Get(ctx context.Context, id int64) (*PayTerm, error) {
	return s.repo.Get(ctx, id)
}

// MarkPaid settles a single term directly, outside invoice conversion.
func (s *Service) MarkPaid(ctx context.Context, id int64) (*PayTerm, error) {
	term, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if term.Status == StatusPaid {
		return term, nil
	}
	if err := s.repo.SetStatus(ctx, id, StatusPaid); err != nil {
		return nil, fmt.Errorf("mark term paid: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// TermsForConversion resolves the terms an invoice will cover and checks
// each one is a pending, uninvoiced term of the given estimate.
func (s *Service) TermsForConversion(ctx context.Context, estimateID int64, termIDs []int64) ([]PayTerm, error) {
	if len(termIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one pay term required", shared.ErrValidation)
	}
	terms, err := s.repo.GetMany(ctx, termIDs)
	if err != nil {
		return nil, err
	}
	if len(terms) != len(termIDs) {
		return nil, fmt.Errorf("%w: one or more pay terms", shared.ErrNotFound)
	}
	for _, term := range terms {
		if term.EstimateID != estimateID {
			return nil, fmt.Errorf("%w: term %d belongs to another estimate", shared.ErrValidation, term.ID)
		}
		if term.Status != StatusPending {
			return nil, fmt.Errorf("%w: term %d is already paid", shared.ErrInvalidState, term.ID)
		}
		if term.InvoiceID != nil {
			return nil, fmt.Errorf("%w: term %d is already invoiced", shared.ErrInvalidState, term.ID)
		}
	}
	return terms, nil
}

// AttachInvoice links terms to the invoice created from them.
func (s *Service) AttachInvoice(ctx context.Context, termIDs []int64, invoiceID int64) error {
	return s.repo.AttachInvoice(ctx, termIDs, invoiceID)
}

// MarkPaidForInvoice settles every term covered by a fully paid invoice.
func (s *Service) MarkPaidForInvoice(ctx context.Context, invoiceID int64) error {
	return s.repo.MarkPaidForInvoice(ctx, invoiceID)
}
