// Package observers scores audit-observer fatigue and plans workload
// redistribution away from high-risk observers. The fatigue tier is always
// derived from the composite score, never set directly.
package observers

import (
	"time"

	"vigil/internal/metric"
	"vigil/pkg/domain"
	dErrors "vigil/pkg/domain-errors"
)

// Tier is the derived fatigue risk tier.
type Tier string

const (
	TierLow      Tier = "low"
	TierMedium   Tier = "medium"
	TierHigh     Tier = "high"
	TierCritical Tier = "critical"
)

// ObserverMetric is the one-row-per-observer fatigue picture, upserted on
// every activity report. Cooldown and concurrency counters live in the
// admission gate, which owns them exclusively.
type ObserverMetric struct {
	ObserverID            domain.ActorID `json:"observer_id"`
	AuditsReviewed        int            `json:"audits_reviewed"`
	CorrectionRate        float64        `json:"correction_rate"`
	ContradictionExposure float64        `json:"contradiction_exposure"`
	FatigueScore          int            `json:"fatigue_score"`
	FatigueRisk           Tier           `json:"fatigue_risk"`
	PendingAudits         int            `json:"pending_audits"`
	LastBreak             *time.Time     `json:"last_break,omitempty"`
	UpdatedAt             time.Time      `json:"updated_at"`
}

// Activity is one reported observation of an observer's workload.
type Activity struct {
	ObserverID            domain.ActorID    `json:"observer_id"`
	AuditsReviewed        int               `json:"audits_reviewed"`
	CorrectionRate        float64           `json:"correction_rate"`
	ContradictionExposure float64           `json:"contradiction_exposure"`
	PendingAudits         int               `json:"pending_audits"`
	TookBreak             bool              `json:"took_break"`
	Provenance            domain.Provenance `json:"provenance"`
}

// Validate enforces the reporting invariants.
func (a Activity) Validate() error {
	if a.ObserverID.IsEmpty() {
		return dErrors.New(dErrors.CodeInvalidInput, "observer_id is required")
	}
	if a.AuditsReviewed < 0 || a.PendingAudits < 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "audit counts must be non-negative")
	}
	if a.CorrectionRate < 0 || a.CorrectionRate > 1 {
		return dErrors.New(dErrors.CodeInvalidInput, "correction_rate must be in [0,1]")
	}
	if a.ContradictionExposure < 0 || a.ContradictionExposure > 1 {
		return dErrors.New(dErrors.CodeInvalidInput, "contradiction_exposure must be in [0,1]")
	}
	if err := a.Provenance.Validate(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid provenance")
	}
	return nil
}

// Assessment is the fatigue calculation for one observer.
type Assessment struct {
	Report     metric.Report
	Severity   metric.Severity
	ObserverID domain.ActorID
	Score      int
	Tier       Tier
}

// Reassignment is one planned move of pending audits between observers.
type Reassignment struct {
	From   domain.ActorID `json:"from"`
	To     domain.ActorID `json:"to"`
	Audits int            `json:"audits"`
}

// Config holds the layer's adjustable thresholds.
type Config struct {
	// AlertThreshold is the score at which an observer tiers high;
	// CriticalThreshold is where the gate installs an automatic cooldown.
	AlertThreshold    int
	CriticalThreshold int

	// DefaultHoursSinceBreak is the penalty stand-in when no break is on
	// record.
	DefaultHoursSinceBreak float64

	// RedistributeShare is the fraction of a high-risk observer's pending
	// audits a redistribution may move.
	RedistributeShare float64
}

// DefaultConfig returns the stock fatigue configuration.
func DefaultConfig() Config {
	return Config{
		AlertThreshold:         7,
		CriticalThreshold:      9,
		DefaultHoursSinceBreak: 72,
		RedistributeShare:      0.5,
	}
}
