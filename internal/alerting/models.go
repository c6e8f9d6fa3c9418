// Package alerting implements the generic threshold alert engine: raise on
// breach, suppress duplicates, resolve only on explicit request. The Alert
// type structurally has no reason or explanation field; adding one requires a
// type change, which is the intended guardrail.
package alerting

import (
	"time"

	"github.com/google/uuid"

	"vigil/internal/metric"
)

// Alert is the record the engine emits. Resolution is driven by an external
// collaborator; recomputing a metric never resolves an alert.
type Alert struct {
	ID         uuid.UUID    `json:"id"`
	Layer      metric.Layer `json:"layer"`
	Magnitude  float64      `json:"magnitude"`
	Threshold  float64      `json:"threshold"`
	DetectedAt time.Time    `json:"detected_at"`
	ResolvedAt *time.Time   `json:"resolved_at,omitempty"`

	// DedupKey scopes duplicate suppression (e.g. beneficiary, purpose id).
	// It is storage detail, not part of the alert's wire shape.
	DedupKey string `json:"-"`
}

// Resolved reports whether the alert has been explicitly closed.
func (a *Alert) Resolved() bool { return a.ResolvedAt != nil }

// Config holds the engine's adjustable dedup windows.
type Config struct {
	// DedupWindows suppress a repeat alert for the same (layer, dedup key)
	// raised within the window of the previous one.
	DedupWindows map[metric.Layer]time.Duration
}

// DefaultConfig returns the stock dedup windows.
func DefaultConfig() Config {
	return Config{
		DedupWindows: map[metric.Layer]time.Duration{
			metric.LayerFrameworkDominance: 24 * time.Hour,
			metric.LayerQuestionEntropy:    24 * time.Hour,
			metric.LayerOutcomeRisk:        7 * 24 * time.Hour,
			metric.LayerObserverFatigue:    24 * time.Hour,
			metric.LayerPurposeDrift:       24 * time.Hour,
		},
	}
}

// Window returns the dedup window for a layer, zero when none is configured.
func (c Config) Window(layer metric.Layer) time.Duration {
	return c.DedupWindows[layer]
}
