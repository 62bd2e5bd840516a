package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/keystone-billing/keystone/internal/billing/shared"
	"github.com/keystone-billing/keystone/internal/money"
	"github.com/keystone-billing/keystone/internal/observability"
)

// ReminderSweeper finds overdue SENT and PARTIAL invoices and queues a
// reminder email per invoice. Dispatch itself goes through the generic
// send-email task.
type ReminderSweeper struct {
	pool    *pgxpool.Pool
	client  *Client
	logger  *slog.Logger
	metrics *observability.Metrics
	to      string
}

// NewReminderSweeper builds a ReminderSweeper. Reminders are addressed
// to the billing inbox; per-client addressing needs contact data the
// project record does not carry yet. metrics may be nil.
func NewReminderSweeper(pool *pgxpool.Pool, client *Client, logger *slog.Logger, metrics *observability.Metrics, to string) *ReminderSweeper {
	return &ReminderSweeper{pool: pool, client: client, logger: logger, metrics: metrics, to: to}
}

// HandleTask processes TaskTypeInvoiceReminders tasks.
func (s *ReminderSweeper) HandleTask(ctx context.Context, t *asynq.Task) error {
	queued, err := s.Sweep(ctx, time.Now().UTC())
	if err != nil {
		return err
	}
	s.logger.Info("invoice reminder sweep finished", slog.Int("queued", queued))
	return nil
}

type overdueInvoice struct {
	ID      int64
	Number  string
	Project string
	Client  string
	DueDate time.Time
	TaxRate decimal.Decimal
	Paid    money.Money
	Lines   shared.LineItemSet
}

// Balance matches the rounding the API reports: each line rounds to the
// minor unit before summing, then tax is applied to the rounded subtotal.
func (inv overdueInvoice) Balance() money.Money {
	subtotal := inv.Lines.Subtotal()
	return subtotal.Add(shared.TaxAmount(subtotal, inv.TaxRate)).Sub(inv.Paid)
}

// Sweep queues one reminder for every invoice overdue as of now.
func (s *ReminderSweeper) Sweep(ctx context.Context, now time.Time) (int, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT i.id, i.number, pr.name, pr.client, i.due_date, i.tax_rate, i.paid_amount,
		       COALESCE(li.quantity, 0), COALESCE(li.unit_rate, 0)
		FROM invoices i
		JOIN projects pr ON pr.id = i.project_id
		LEFT JOIN invoice_line_items li ON li.invoice_id = i.id
		WHERE i.status IN ('SENT', 'PARTIAL') AND i.due_date < $1
		ORDER BY i.id, li.sort_order`, now)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var overdue []*overdueInvoice
	byID := make(map[int64]*overdueInvoice)
	for rows.Next() {
		var (
			id       int64
			number   string
			project  string
			client   string
			dueDate  time.Time
			taxRate  decimal.Decimal
			paid     money.Money
			quantity decimal.Decimal
			unitRate money.Money
		)
		if err := rows.Scan(&id, &number, &project, &client, &dueDate, &taxRate, &paid, &quantity, &unitRate); err != nil {
			return 0, err
		}
		inv, ok := byID[id]
		if !ok {
			inv = &overdueInvoice{ID: id, Number: number, Project: project, Client: client, DueDate: dueDate, TaxRate: taxRate, Paid: paid}
			byID[id] = inv
			overdue = append(overdue, inv)
		}
		inv.Lines = append(inv.Lines, shared.LineItem{Quantity: quantity, UnitRate: unitRate})
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	queued := 0
	for _, inv := range overdue {
		payload := SendEmailPayload{
			To:      s.to,
			Subject: fmt.Sprintf("Invoice %s for %s is overdue", inv.Number, inv.Project),
			Body: fmt.Sprintf("Invoice %s (%s, %s) was due %s with %s outstanding.",
				inv.Number, inv.Project, inv.Client, inv.DueDate.Format("2006-01-02"), inv.Balance()),
		}
		if _, err := s.client.EnqueueSendEmail(ctx, payload); err != nil {
			s.logger.Error("queue invoice reminder", slog.Any("error", err), slog.Int64("invoice_id", inv.ID))
			continue
		}
		queued++
		if s.metrics != nil {
			s.metrics.RemindersQueued.Inc()
		}
	}
	return queued, nil
}
