package alerting

import (
	"context"
	"time"

	"github.com/google/uuid"

	"vigil/internal/metric"
	"vigil/pkg/platform/audit"
)

// Store persists alerts. Implementations are pure I/O; suppression and
// resolution policy live in the engine.
type Store interface {
	// Insert persists a new alert.
	Insert(ctx context.Context, alert *Alert) error

	// Get returns the alert by id, nil when unknown.
	Get(ctx context.Context, id uuid.UUID) (*Alert, error)

	// Latest returns the most recently detected alert for (layer, dedupKey),
	// nil when none exists.
	Latest(ctx context.Context, layer metric.Layer, dedupKey string) (*Alert, error)

	// List returns alerts, newest first. An empty layer matches all layers.
	List(ctx context.Context, layer metric.Layer) ([]*Alert, error)

	// MarkResolved sets the resolution time on an alert.
	MarkResolved(ctx context.Context, id uuid.UUID, at time.Time) error

	// MarkResolvedByKey resolves every open alert for (layer, dedupKey) and
	// returns how many were closed.
	MarkResolvedByKey(ctx context.Context, layer metric.Layer, dedupKey string, at time.Time) (int, error)
}

// AuditPublisher emits audit events for security-relevant operations.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}
