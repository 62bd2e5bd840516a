package estimates

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/keystone-billing/keystone/internal/billing/shared"
	"github.com/keystone-billing/keystone/internal/platform/db"
)

// Repository defines data access for estimates.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, id int64) (*Estimate, error)
	GetByNumber(ctx context.Context, number string) (*Estimate, error)
	List(ctx context.Context, req ListEstimatesRequest) ([]Estimate, int, error)
	Create(ctx context.Context, e Estimate) (int64, error)
	UpdateHeader(ctx context.Context, id int64, updates map[string]any) error
	UpdateStatus(ctx context.Context, id int64, status EstimateStatus) error
	InsertLine(ctx context.Context, estimateID int64, line shared.LineItem) (int64, error)
	DeleteLines(ctx context.Context, estimateID int64) error
	Delete(ctx context.Context, id int64) error
	InvoiceCount(ctx context.Context, estimateID int64) (int, error)
	NumbersByPrefix(ctx context.Context, prefix string) ([]string, error)
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

const estimateColumns = `id, number, project_id, date_issued, valid_until, tax_rate, status, notes, created_at, updated_at`

func scanEstimate(row pgx.Row) (*Estimate, error) {
	var e Estimate
	err := row.Scan(&e.ID, &e.Number, &e.ProjectID, &e.DateIssued, &e.ValidUntil,
		&e.TaxRate, &e.Status, &e.Notes, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *repository) Get(ctx context.Context, id int64) (*Estimate, error) {
	e, err := scanEstimate(r.db.QueryRow(ctx,
		`SELECT `+estimateColumns+` FROM estimates WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	e.Lines, err = r.lines(ctx, id)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *repository) GetByNumber(ctx context.Context, number string) (*Estimate, error) {
	e, err := scanEstimate(r.db.QueryRow(ctx,
		`SELECT `+estimateColumns+` FROM estimates WHERE number = $1`, number))
	if err != nil {
		return nil, err
	}
	e.Lines, err = r.lines(ctx, e.ID)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *repository) lines(ctx context.Context, estimateID int64) (shared.LineItemSet, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, description, quantity, unit_rate, sort_order
		FROM estimate_line_items
		WHERE estimate_id = $1
		ORDER BY sort_order`, estimateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines shared.LineItemSet
	for rows.Next() {
		var li shared.LineItem
		if err := rows.Scan(&li.ID, &li.Description, &li.Quantity, &li.UnitRate, &li.SortOrder); err != nil {
			return nil, err
		}
		lines = append(lines, li)
	}
	return lines, rows.Err()
}

func (r *repository) List(ctx context.Context, req ListEstimatesRequest) ([]Estimate, int, error) {
	var conditions []string
	var args []any
	argPos := 1

	if req.ProjectID != nil {
		conditions = append(conditions, fmt.Sprintf("project_id = $%d", argPos))
		args = append(args, *req.ProjectID)
		argPos++
	}
	if req.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, *req.Status)
		argPos++
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM estimates`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + estimateColumns + ` FROM estimates` + where +
		fmt.Sprintf(" ORDER BY date_issued DESC, id DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, req.Limit, req.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Estimate
	for rows.Next() {
		var e Estimate
		if err := rows.Scan(&e.ID, &e.Number, &e.ProjectID, &e.DateIssued, &e.ValidUntil,
			&e.TaxRate, &e.Status, &e.Notes, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, e)
	}
	return out, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, e Estimate) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO estimates (number, project_id, date_issued, valid_until, tax_rate, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id`,
		e.Number, e.ProjectID, e.DateIssued, e.ValidUntil, e.TaxRate, e.Status, e.Notes).Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return 0, fmt.Errorf("%w: estimate number %s", shared.ErrDuplicateNumber, e.Number)
		}
		return 0, err
	}
	return id, nil
}

func (r *repository) UpdateHeader(ctx context.Context, id int64, updates map[string]any) error {
	sets := make([]string, 0, len(updates)+1)
	args := make([]any, 0, len(updates)+1)
	argPos := 1
	for col, val := range updates {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, argPos))
		args = append(args, val)
		argPos++
	}
	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)

	tag, err := r.db.Exec(ctx,
		fmt.Sprintf("UPDATE estimates SET %s WHERE id = $%d", strings.Join(sets, ", "), argPos), args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, status EstimateStatus) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE estimates SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) InsertLine(ctx context.Context, estimateID int64, line shared.LineItem) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO estimate_line_items (estimate_id, description, quantity, unit_rate, sort_order)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		estimateID, line.Description, line.Quantity, line.UnitRate, line.SortOrder).Scan(&id)
	return id, err
}

func (r *repository) DeleteLines(ctx context.Context, estimateID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM estimate_line_items WHERE estimate_id = $1`, estimateID)
	return err
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM estimate_line_items WHERE estimate_id = $1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM estimates WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
	if err != nil && db.IsForeignKeyViolation(err) {
		return fmt.Errorf("%w: estimate %d is referenced", shared.ErrReferentialIntegrity, id)
	}
	return err
}

func (r *repository) InvoiceCount(ctx context.Context, estimateID int64) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM invoices WHERE estimate_id = $1`, estimateID).Scan(&n)
	return n, err
}

func (r *repository) NumbersByPrefix(ctx context.Context, prefix string) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT number FROM estimates WHERE number LIKE $1 || '-%'`, prefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var numbers []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		numbers = append(numbers, n)
	}
	return numbers, rows.Err()
}
