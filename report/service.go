package report

import (
	"context"
	"fmt"

	"golang.org/x/sync/singleflight"

	"github.com/keystone-billing/keystone/internal/billing/estimates"
	"github.com/keystone-billing/keystone/internal/billing/invoices"
	"github.com/keystone-billing/keystone/internal/billing/shared"
	"github.com/keystone-billing/keystone/internal/projects"
	"github.com/keystone-billing/keystone/internal/settings"
)

// EstimateSource resolves estimates for rendering.
type EstimateSource interface {
	Get(ctx context.Context, id int64) (*estimates.Estimate, error)
}

// InvoiceSource resolves invoices for rendering.
type InvoiceSource interface {
	Get(ctx context.Context, id int64) (*invoices.Invoice, error)
}

// ProjectSource resolves project master data for the document header.
type ProjectSource interface {
	Get(ctx context.Context, id int64) (*projects.Project, error)
}

// Settings supplies the letterhead printed on documents.
type Settings interface {
	CompanyLetterhead(ctx context.Context) (settings.Letterhead, error)
}

// Service assembles snapshots and drives the PDF pipeline. Concurrent
// renders of the same document are collapsed into one Gotenberg call.
type Service struct {
	client    *Client
	estimates EstimateSource
	invoices  InvoiceSource
	projects  ProjectSource
	settings  Settings
	renders   singleflight.Group
}

// NewService builds a Service instance.
func NewService(client *Client, est EstimateSource, inv InvoiceSource, proj ProjectSource, st Settings) *Service {
	return &Service{client: client, estimates: est, invoices: inv, projects: proj, settings: st}
}

func (s *Service) header(ctx context.Context, projectID int64) (settings.Letterhead, *projects.Project, error) {
	letterhead, err := s.settings.CompanyLetterhead(ctx)
	if err != nil {
		return settings.Letterhead{}, nil, fmt.Errorf("load letterhead: %w", err)
	}
	project, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return settings.Letterhead{}, nil, fmt.Errorf("load project: %w", err)
	}
	return letterhead, project, nil
}

func snapshotLines(set shared.LineItemSet) []SnapshotLine {
	lines := make([]SnapshotLine, len(set))
	for i, li := range set {
		lines[i] = SnapshotLine{
			Description: li.Description,
			Quantity:    li.Quantity,
			UnitRate:    li.UnitRate,
			Total:       li.Total(),
		}
	}
	return lines
}

// EstimateSnapshot resolves an estimate into a renderable snapshot.
func (s *Service) EstimateSnapshot(ctx context.Context, id int64) (Snapshot, error) {
	est, err := s.estimates.Get(ctx, id)
	if err != nil {
		return Snapshot{}, err
	}
	letterhead, project, err := s.header(ctx, est.ProjectID)
	if err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{
		Kind:        "Estimate",
		Number:      est.Number,
		Status:      string(est.Status),
		Company:     letterhead,
		ProjectName: project.Name,
		Client:      project.Client,
		DateIssued:  est.DateIssued,
		DateDue:     est.ValidUntil,
		Lines:       snapshotLines(est.Lines),
		Subtotal:    est.Subtotal(),
		TaxRate:     est.TaxRate,
		TaxAmount:   est.TaxAmount(),
		Total:       est.Total(),
	}
	if est.Notes != nil {
		snap.Notes = *est.Notes
	}
	return snap, nil
}

// InvoiceSnapshot resolves an invoice into a renderable snapshot.
func (s *Service) InvoiceSnapshot(ctx context.Context, id int64) (Snapshot, error) {
	inv, err := s.invoices.Get(ctx, id)
	if err != nil {
		return Snapshot{}, err
	}
	letterhead, project, err := s.header(ctx, inv.ProjectID)
	if err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{
		Kind:        "Invoice",
		Number:      inv.Number,
		Status:      string(inv.Status),
		Company:     letterhead,
		ProjectName: project.Name,
		Client:      project.Client,
		DateIssued:  inv.DateIssued,
		DateDue:     inv.DueDate,
		Lines:       snapshotLines(inv.Lines),
		Subtotal:    inv.Subtotal(),
		TaxRate:     inv.TaxRate,
		TaxAmount:   inv.TaxAmount(),
		Total:       inv.Total(),
		PaidAmount:  inv.PaidAmount,
		BalanceDue:  inv.BalanceDue(),
		ShowBalance: true,
	}
	if inv.Notes != nil {
		snap.Notes = *inv.Notes
	}
	return snap, nil
}

// RenderPDF converts a snapshot to PDF through Gotenberg. The
// singleflight key collapses concurrent identical requests.
func (s *Service) RenderPDF(ctx context.Context, snap Snapshot) ([]byte, error) {
	key := fmt.Sprintf("%s:%s:%s:%s", snap.Kind, snap.Number, snap.PaidAmount, snap.Status)
	pdf, err, _ := s.renders.Do(key, func() (any, error) {
		html, err := RenderHTML(snap)
		if err != nil {
			return nil, err
		}
		return s.client.RenderHTML(ctx, html)
	})
	if err != nil {
		return nil, err
	}
	return pdf.([]byte), nil
}
