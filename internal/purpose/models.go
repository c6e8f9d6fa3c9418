// Package purpose monitors usage of a declared system purpose for drift away
// from its original intent, and forces a pause until a valid recommitment
// when drift runs too far. Similarity is keyword overlap by design, not a
// language model.
package purpose

import (
	"time"

	"vigil/internal/metric"
	"vigil/pkg/domain"
	dErrors "vigil/pkg/domain-errors"
)

// State is the purpose lifecycle state.
type State string

const (
	StateActive  State = "ACTIVE"
	StateAlerted State = "ALERTED"
	StatePaused  State = "PAUSED"
)

// Trend is the qualitative drift direction.
type Trend string

const (
	TrendStable   Trend = "STABLE"
	TrendDrifting Trend = "DRIFTING"
	TrendCritical Trend = "CRITICAL"
)

// SystemPurpose is one monitored purpose declaration. LastRecommitment moves
// only through a valid recommit.
type SystemPurpose struct {
	ID               domain.PurposeID  `json:"id"`
	Domain           string            `json:"domain"`
	OriginalIntent   string            `json:"original_intent"`
	DeclaredAt       time.Time         `json:"declared_at"`
	LastRecommitment time.Time         `json:"last_recommitment"`
	State            State             `json:"state"`
	Provenance       domain.Provenance `json:"provenance"`
}

// Validate enforces the declaration invariants.
func (p SystemPurpose) Validate() error {
	if p.ID.IsEmpty() {
		return dErrors.New(dErrors.CodeInvalidInput, "purpose id is required")
	}
	if p.OriginalIntent == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "original_intent is required")
	}
	if p.LastRecommitment.Before(p.DeclaredAt) {
		return dErrors.New(dErrors.CodeInvalidInput, "last_recommitment precedes declared_at")
	}
	if err := p.Provenance.Validate(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid provenance")
	}
	return nil
}

// UsageEvent is one observed use of the system under a purpose. Immutable.
type UsageEvent struct {
	PurposeID   domain.PurposeID  `json:"purpose_id"`
	EventType   string            `json:"event_type"`
	Description string            `json:"description"`
	EventAt     time.Time         `json:"occurred_at"`
	Provenance  domain.Provenance `json:"provenance"`
}

// OccurredAt implements registry.Record.
func (e UsageEvent) OccurredAt() time.Time { return e.EventAt }

// Validate enforces the tracking invariants; the referenced purpose is
// checked by the service.
func (e UsageEvent) Validate() error {
	if e.PurposeID.IsEmpty() {
		return dErrors.New(dErrors.CodeInvalidInput, "purpose_id is required")
	}
	if e.EventType == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "event_type is required")
	}
	if err := e.Provenance.Validate(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid provenance")
	}
	return nil
}

// Assessment is the drift calculation for one purpose.
type Assessment struct {
	Report             metric.Report
	Severity           metric.Severity
	PurposeID          domain.PurposeID
	Trend              Trend
	State              State
	SemanticDivergence float64
	UsagePatternShift  float64
	EventCount         int
}

// Config holds the layer's adjustable thresholds and windows.
type Config struct {
	// AlertThreshold moves an active purpose to ALERTED; PauseThreshold
	// forces the pause.
	AlertThreshold float64
	PauseThreshold float64

	// DriftingTrend and CriticalTrend grade the qualitative trend.
	DriftingTrend float64
	CriticalTrend float64

	// MinEvents is the history depth below which drift is the neutral 0.
	// RecentEvents and PatternEvents size the divergence and pattern-shift
	// windows.
	MinEvents     int
	RecentEvents  int
	PatternEvents int

	// RecommitOverlap is the minimum keyword overlap with the original
	// intent for a recommitment to count.
	RecommitOverlap float64

	// SemanticWeight and PatternWeight blend the two drift components.
	SemanticWeight float64
	PatternWeight  float64
}

// DefaultConfig returns the stock drift configuration.
func DefaultConfig() Config {
	return Config{
		AlertThreshold:  0.30,
		PauseThreshold:  0.50,
		DriftingTrend:   0.20,
		CriticalTrend:   0.40,
		MinEvents:       10,
		RecentEvents:    20,
		PatternEvents:   10,
		RecommitOverlap: 0.70,
		SemanticWeight:  0.7,
		PatternWeight:   0.3,
	}
}
