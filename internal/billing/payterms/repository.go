package payterms

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/keystone-billing/keystone/internal/billing/shared"
	"github.com/keystone-billing/keystone/internal/platform/db"
)

// Repository defines data access for pay terms.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, id int64) (*PayTerm, error)
	GetMany(ctx context.Context, ids []int64) ([]PayTerm, error)
	ListByEstimate(ctx context.Context, estimateID int64) ([]PayTerm, error)
	Insert(ctx context.Context, term PayTerm) (int64, error)
	DeletePending(ctx context.Context, estimateID int64) error
	SetStatus(ctx context.Context, id int64, status TermStatus) error
	AttachInvoice(ctx context.Context, ids []int64, invoiceID int64) error
	MarkPaidForInvoice(ctx context.Context, invoiceID int64) error
}

type dbtx interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

const termColumns = `id, estimate_id, project_id, kind, label, percentage, amount, due_trigger, status, invoice_id, created_at, updated_at`

func scanTerm(row pgx.Row) (*PayTerm, error) {
	var t PayTerm
	err := row.Scan(&t.ID, &t.EstimateID, &t.ProjectID, &t.Kind, &t.Label, &t.Percentage,
		&t.Amount, &t.DueTrigger, &t.Status, &t.InvoiceID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *repository) Get(ctx context.Context, id int64) (*PayTerm, error) {
	return scanTerm(r.db.QueryRow(ctx,
		`SELECT `+termColumns+` FROM pay_terms WHERE id = $1`, id))
}

func (r *repository) collect(rows pgx.Rows) ([]PayTerm, error) {
	defer rows.Close()
	var out []PayTerm
	for rows.Next() {
		var t PayTerm
		if err := rows.Scan(&t.ID, &t.EstimateID, &t.ProjectID, &t.Kind, &t.Label, &t.Percentage,
			&t.Amount, &t.DueTrigger, &t.Status, &t.InvoiceID, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *repository) GetMany(ctx context.Context, ids []int64) ([]PayTerm, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+termColumns+` FROM pay_terms WHERE id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return nil, err
	}
	return r.collect(rows)
}

func (r *repository) ListByEstimate(ctx context.Context, estimateID int64) ([]PayTerm, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+termColumns+` FROM pay_terms WHERE estimate_id = $1 ORDER BY id`, estimateID)
	if err != nil {
		return nil, err
	}
	return r.collect(rows)
}

func (r *repository) Insert(ctx context.Context, term PayTerm) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO pay_terms (estimate_id, project_id, kind, label, percentage, amount, due_trigger, status, invoice_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING id`,
		term.EstimateID, term.ProjectID, term.Kind, term.Label, term.Percentage,
		term.Amount, term.DueTrigger, term.Status, term.InvoiceID).Scan(&id)
	return id, err
}

func (r *repository) DeletePending(ctx context.Context, estimateID int64) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM pay_terms WHERE estimate_id = $1 AND status = $2`, estimateID, StatusPending)
	return err
}

func (r *repository) SetStatus(ctx context.Context, id int64, status TermStatus) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE pay_terms SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) AttachInvoice(ctx context.Context, ids []int64, invoiceID int64) error {
	_, err := r.db.Exec(ctx,
		`UPDATE pay_terms SET invoice_id = $1, updated_at = NOW() WHERE id = ANY($2)`, invoiceID, ids)
	return err
}

func (r *repository) MarkPaidForInvoice(ctx context.Context, invoiceID int64) error {
	_, err := r.db.Exec(ctx,
		`UPDATE pay_terms SET status = $1, updated_at = NOW() WHERE invoice_id = $2`, StatusPaid, invoiceID)
	return err
}
