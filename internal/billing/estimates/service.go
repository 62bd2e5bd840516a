package estimates

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/keystone-billing/keystone/internal/billing/shared"
)

// Numbers issues document numbers for a prefix series.
type Numbers interface {
	Next(ctx context.Context, prefix string, floor int64) (string, error)
}

// Settings supplies configured defaults at document-creation time. The
// core never reads settings mid-lifecycle.
type Settings interface {
	EstimateNumbering(ctx context.Context) (prefix string, floor int64, err error)
	DefaultTaxRate(ctx context.Context) (decimal.Decimal, error)
}

// Service handles estimate business logic.
type Service struct {
	repo     Repository
	numbers  Numbers
	settings Settings
}

// NewService builds a Service instance.
func NewService(repo Repository, numbers Numbers, settings Settings) *Service {
	return &Service{repo: repo, numbers: numbers, settings: settings}
}

// Create opens a new draft estimate, assigning its document number.
func (s *Service) Create(ctx context.Context, req CreateEstimateRequest) (*Estimate, error) {
	if req.ValidUntil.Before(req.DateIssued) {
		return nil, fmt.Errorf("%w: valid_until must not precede date_issued", shared.ErrValidation)
	}

	taxRate, err := s.resolveTaxRate(ctx, req.TaxRate)
	if err != nil {
		return nil, err
	}

	lines := linesFromRequests(req.Lines)
	if err := lines.Validate(); err != nil {
		return nil, err
	}
	lines.Reindex()

	prefix, floor, err := s.settings.EstimateNumbering(ctx)
	if err != nil {
		return nil, fmt.Errorf("estimate numbering settings: %w", err)
	}
	number, err := s.numbers.Next(ctx, prefix, floor)
	if err != nil {
		return nil, fmt.Errorf("generate estimate number: %w", err)
	}

	estimate := Estimate{
		Number:     number,
		ProjectID:  req.ProjectID,
		DateIssued: req.DateIssued,
		ValidUntil: req.ValidUntil,
		TaxRate:    taxRate,
		Status:     StatusDraft,
		Notes:      req.Notes,
	}

	var estimateID int64
	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		id, err := repo.Create(ctx, estimate)
		if err != nil {
			return fmt.Errorf("create estimate: %w", err)
		}
		estimateID = id
		for _, line := range lines {
			if _, err := repo.InsertLine(ctx, estimateID, line); err != nil {
				return fmt.Errorf("insert estimate line: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.repo.Get(ctx, estimateID)
}

// Update edits a draft estimate. Supplying lines discards the previous
// line set entirely and re-indexes the new one from zero.
func (s *Service) Update(ctx context.Context, id int64, req UpdateEstimateRequest) (*Estimate, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !existing.Editable() {
		return nil, fmt.Errorf("%w: only DRAFT estimates can be edited", shared.ErrInvalidState)
	}

	updates := make(map[string]any)
	if req.DateIssued != nil {
		updates["date_issued"] = *req.DateIssued
	}
	if req.ValidUntil != nil {
		updates["valid_until"] = *req.ValidUntil
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
				return fmt.Errorf("update estimate: %w", err)
			}
		}
		if req.Lines != nil {
			if err := repo.DeleteLines(ctx, id); err != nil {
				return fmt.Errorf("delete estimate lines: %w", err)
			}
			for _, line := range lines {
				if _, err := repo.InsertLine(ctx, id, line); err != nil {
					return fmt.Errorf("insert estimate line: %w", err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.repo.Get(ctx, id)
}

// Submit moves a draft to PENDING for customer review.
func (s *Service) Submit(ctx context.Context, id int64) (*Estimate, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.Status != StatusDraft {
		return nil, fmt.Errorf("%w: can only submit DRAFT estimates", shared.ErrInvalidState)
	}
	if err := s.repo.UpdateStatus(ctx, id, StatusPending); err != nil {
		return nil, fmt.Errorf("submit estimate: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// Reject marks a pending estimate as declined by the customer.
func (s *Service) Reject(ctx context.Context, id int64) (*Estimate, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.Status != StatusPending {
		return nil, fmt.Errorf("%w: can only reject PENDING estimates", shared.ErrInvalidState)
	}
	if err := s.repo.UpdateStatus(ctx, id, StatusRejected); err != nil {
		return nil, fmt.Errorf("reject estimate: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// Approve transitions an estimate to APPROVED. Reached only through
// invoice conversion; rejected estimates stay rejected.
func (s *Service) Approve(ctx context.Context, id int64) (*Estimate, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	switch existing.Status {
	case StatusApproved:
		return existing, nil
	case StatusRejected:
		return nil, fmt.Errorf("%w: rejected estimates cannot be approved", shared.ErrInvalidState)
	}
	if err := s.repo.UpdateStatus(ctx, id, StatusApproved); err != nil {
		return nil, fmt.Errorf("approve estimate: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// Delete removes an estimate unless dependent documents reference it.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	n, err := s.repo.InvoiceCount(ctx, id)
	if err != nil {
		return fmt.Errorf("count referencing invoices: %w", err)
	}
	if n > 0 {
		return fmt.Errorf("%w: %d invoice(s) reference this estimate", shared.ErrReferentialIntegrity, n)
	}
	return s.repo.Delete(ctx, id)
}

// Get returns one estimate with its lines.
func (s *Service) Get(ctx context.Context, id int64) (*Estimate, error) {
	return s.repo.Get(ctx, id)
}

// List returns estimates matching the filter plus the unpaged count.
func (s *Service) List(ctx context.Context, req ListEstimatesRequest) ([]Estimate, int, error) {
	if req.Limit <= 0 {
		req.Limit = 50
	}
	return s.repo.List(ctx, req)
}

func (s *Service) resolveTaxRate(ctx context.Context, requested *decimal.Decimal) (decimal.Decimal, error) {
	if requested != nil {
		if !shared.ValidTaxRate(*requested) {
			return decimal.Zero, fmt.Errorf("%w: tax rate must lie in [0,1]", shared.ErrValidation)
		}
		return *requested, nil
	}
	rate, err := s.settings.DefaultTaxRate(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("default tax rate: %w", err)
	}
	return rate, nil
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
