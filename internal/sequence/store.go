package sequence

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore keeps sequence state in the document_sequences table.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore constructs a store over the given pool.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// Increment advances the prefix sequence atomically. GREATEST applies the
// floor both on first issue and when an operator raised it mid-series.
func (s *PGStore) Increment(ctx context.Context, prefix string, floor int64) (int64, error) {
	var seq int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO document_sequences (prefix, seq)
		VALUES ($1, GREATEST(1, $2))
		ON CONFLICT (prefix)
		DO UPDATE SET seq = GREATEST(document_sequences.seq + 1, $2)
		RETURNING seq
	`, prefix, floor).Scan(&seq)
	if err != nil {
		return 0, err
	}
	return seq, nil
}

// Raise lifts the stored sequence to at least min.
func (s *PGStore) Raise(ctx context.Context, prefix string, min int64) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO document_sequences (prefix, seq)
		VALUES ($1, $2)
		ON CONFLICT (prefix)
		DO UPDATE SET seq = GREATEST(document_sequences.seq, $2)
	`, prefix, min)
	return err
}
