// Package registry provides the append-only keyed store of raw observations.
// The registry owns storage and nothing else: calculators read snapshots from
// it and never mutate. Append order per key is the read order; the registry
// does not enforce timestamp monotonicity because callers may backfill.
package registry

import (
	"context"
	"time"
)

// Record is implemented by every observation kind the registry can hold.
type Record interface {
	// OccurredAt is the observation's domain timestamp, used for range
	// queries and window arithmetic.
	OccurredAt() time.Time
}

// TimeRange bounds a query. A zero From or To leaves that side unbounded.
type TimeRange struct {
	From time.Time
	To   time.Time
}

// All matches every record.
func All() TimeRange { return TimeRange{} }

// Since matches records at or after t.
func Since(t time.Time) TimeRange { return TimeRange{From: t} }

// Between matches records in [from, to).
func Between(from, to time.Time) TimeRange { return TimeRange{From: from, To: to} }

// Contains reports whether t falls inside the range.
func (r TimeRange) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && !t.Before(r.To) {
		return false
	}
	return true
}

// Store is the registry contract. Append is linearizable per key; queries on
// an unknown key yield an empty snapshot, never an error.
type Store[R Record] interface {
	// Append adds a record under key, after all earlier appends to that key.
	Append(ctx context.Context, key string, rec R) error

	// Query returns the records under key whose timestamp falls in rng, in
	// append order. The returned slice is a snapshot safe to iterate
	// repeatedly.
	Query(ctx context.Context, key string, rng TimeRange) ([]R, error)

	// Keys lists every key with at least one record.
	Keys(ctx context.Context) ([]string, error)

	// Count returns the number of records under key.
	Count(ctx context.Context, key string) (int, error)
}
