// Package frames tracks reasoning-framework usage per decision domain and
// measures dominance: the share of total weighted usage held by the single
// largest framework.
package frames

import (
	"time"

	"vigil/internal/metric"
	"vigil/pkg/domain"
	dErrors "vigil/pkg/domain-errors"
)

// MaxConfidenceWeight is the hard cap on any single submission's declared
// confidence. Never user-overridable.
const MaxConfidenceWeight = 0.95

// FrameUse records one use of an analytical framework at a decision point.
// Immutable once recorded; it ages out of rolling windows by timestamp only.
type FrameUse struct {
	Domain           string            `json:"domain"`
	Framework        string            `json:"framework"`
	ConfidenceWeight float64           `json:"confidence_weight"`
	FirstUsed        time.Time         `json:"first_used"`
	LastUsed         time.Time         `json:"last_used"`
	DecisionPoint    string            `json:"decision_point"`
	ActorID          domain.ActorID    `json:"actor_id"`
	Provenance       domain.Provenance `json:"provenance"`
}

// OccurredAt implements registry.Record.
func (u FrameUse) OccurredAt() time.Time { return u.LastUsed }

// Validate enforces the submission invariants. Invalid records are never
// persisted.
func (u FrameUse) Validate() error {
	if u.Domain == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "domain is required")
	}
	if u.Framework == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "framework is required")
	}
	if u.ConfidenceWeight < 0 || u.ConfidenceWeight > MaxConfidenceWeight {
		return dErrors.Newf(dErrors.CodeInvalidInput,
			"confidence_weight must be in [0, %g]", MaxConfidenceWeight)
	}
	if u.ActorID.IsEmpty() {
		return dErrors.New(dErrors.CodeInvalidInput, "actor_id is required")
	}
	if u.LastUsed.Before(u.FirstUsed) {
		return dErrors.New(dErrors.CodeInvalidInput, "last_used precedes first_used")
	}
	if err := u.Provenance.Validate(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid provenance")
	}
	return nil
}

// Assessment is the dominance calculation over one domain's rolling window.
type Assessment struct {
	Report            metric.Report
	Severity          metric.Severity
	DominantFramework string
	TotalWeight       float64
	WindowSize        int
}

// Config holds the layer's adjustable thresholds and window sizes.
type Config struct {
	// Window is the time span considered; the window widens to WindowEvents
	// most recent uses when fewer fall inside the span.
	Window       time.Duration
	WindowEvents int

	// AlertThreshold trips an alert on a strictly greater dominance;
	// HighThreshold upgrades severity.
	AlertThreshold float64
	HighThreshold  float64

	// RotationSuggestions caps how many alternative frameworks one alert
	// enqueues; RotationQueueCap bounds the queue itself.
	RotationSuggestions int
	RotationQueueCap    int
}

// DefaultConfig returns the stock dominance configuration.
func DefaultConfig() Config {
	return Config{
		Window:              7 * 24 * time.Hour,
		WindowEvents:        30,
		AlertThreshold:      0.70,
		HighThreshold:       0.85,
		RotationSuggestions: 2,
		RotationQueueCap:    64,
	}
}
