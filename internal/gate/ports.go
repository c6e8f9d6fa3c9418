package gate

import (
	"context"

	"vigil/pkg/domain"
	"vigil/pkg/platform/audit"
)

//go:generate mockgen -source=ports.go -destination=mocks/counter_store_mock.go -package=mocks

// CounterStore holds the per-actor concurrency counters and cooldown entries.
// Acquire must be a single atomic check-and-increment: under concurrent calls
// at most limit acquisitions may succeed for one actor.
type CounterStore interface {
	// Acquire increments the actor's in-flight count if it is below limit.
	// It returns false, leaving the count unchanged, when the limit is reached.
	Acquire(ctx context.Context, id domain.ActorID, limit int) (bool, error)

	// Release decrements the actor's in-flight count, flooring at zero.
	Release(ctx context.Context, id domain.ActorID) error

	// InFlight returns the actor's current in-flight count.
	InFlight(ctx context.Context, id domain.ActorID) (int, error)

	// Cooldown returns the actor's cooldown entry, or nil when none is
	// recorded. Callers decide whether the entry is still active.
	Cooldown(ctx context.Context, id domain.ActorID) (*CooldownEntry, error)

	// SetCooldown installs or replaces the actor's cooldown. An actor has at
	// most one.
	SetCooldown(ctx context.Context, entry CooldownEntry) error

	// ClearCooldown removes the actor's cooldown entry if present.
	ClearCooldown(ctx context.Context, id domain.ActorID) error
}

// FatigueScorer supplies the observer fatigue score the gate consults at
// admission time.
type FatigueScorer interface {
	FatigueScore(ctx context.Context, id domain.ActorID) (int, error)
}

// AuditPublisher records gate decisions on the audit trail.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}
