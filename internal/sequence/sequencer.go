// Package sequence generates human-readable document numbers such as
// EST-0001 and INV-1150. Numbers are strictly increasing per prefix and
// gap-tolerant; a configurable floor lets an operator fast-forward a
// series past legacy numbers without seeding fake rows.
package sequence

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// Store persists the last issued sequence value per prefix.
type Store interface {
	// Increment advances the prefix sequence and returns the new value,
	// never below floor. The update must be atomic against the store.
	Increment(ctx context.Context, prefix string, floor int64) (int64, error)
	// Raise lifts the stored sequence to at least min without issuing a
	// number. Used to fast-forward past an imported legacy series.
	Raise(ctx context.Context, prefix string, min int64) error
}

// Sequencer issues document numbers. Issuance is serialized per prefix so
// concurrent document creation cannot mint duplicates.
type Sequencer struct {
	store Store

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New constructs a Sequencer over the given store.
func New(store Store) *Sequencer {
	return &Sequencer{store: store, locks: make(map[string]*sync.Mutex)}
}

func (s *Sequencer) prefixLock(prefix string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[prefix]
	if !ok {
		l = &sync.Mutex{}
		s.locks[prefix] = l
	}
	return l
}

// Next issues the next number for prefix, at least floor, formatted as
// PREFIX-nnnn with zero-padding to four digits.
func (s *Sequencer) Next(ctx context.Context, prefix string, floor int64) (string, error) {
	if prefix == "" {
		return "", fmt.Errorf("sequence: prefix required")
	}
	if floor < 1 {
		floor = 1
	}

	l := s.prefixLock(prefix)
	l.Lock()
	defer l.Unlock()

	seq, err := s.store.Increment(ctx, prefix, floor)
	if err != nil {
		return "", fmt.Errorf("sequence: increment %s: %w", prefix, err)
	}
	return Format(prefix, seq), nil
}

// NumberSource reports the issued document numbers carrying a prefix.
// Document repositories satisfy it so startup can seed from live data.
type NumberSource interface {
	NumbersByPrefix(ctx context.Context, prefix string) ([]string, error)
}

// SeedFrom fast-forwards the prefix sequence past the highest number the
// source reports. Numbers with missing or non-numeric suffixes are
// skipped; a source with no parseable numbers leaves the sequence alone.
func (s *Sequencer) SeedFrom(ctx context.Context, src NumberSource, prefix string) error {
	numbers, err := src.NumbersByPrefix(ctx, prefix)
	if err != nil {
		return fmt.Errorf("sequence: seed %s: %w", prefix, err)
	}
	var highest int64
	found := false
	for _, n := range numbers {
		if v, ok := ParseSuffix(n, prefix); ok && v > highest {
			highest = v
			found = true
		}
	}
	if !found {
		return nil
	}
	l := s.prefixLock(prefix)
	l.Lock()
	defer l.Unlock()
	if err := s.store.Raise(ctx, prefix, highest); err != nil {
		return fmt.Errorf("sequence: seed %s: %w", prefix, err)
	}
	return nil
}

// Format renders a document number with at least four suffix digits.
func Format(prefix string, seq int64) string {
	return fmt.Sprintf("%s-%04d", prefix, seq)
}

// ParseSuffix extracts the numeric suffix of a PREFIX-nnnn number.
// Returns false for numbers that do not carry a usable suffix.
func ParseSuffix(number, prefix string) (int64, bool) {
	rest, ok := strings.CutPrefix(number, prefix+"-")
	if !ok || rest == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
