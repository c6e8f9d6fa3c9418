// Package inquiry measures the entropy gap: how far a domain's current
// question-asking rate has fallen below its own historical baseline. Rises are
// not alertable here, only drops.
package inquiry

import (
	"time"

	"vigil/internal/metric"
	"vigil/pkg/domain"
	dErrors "vigil/pkg/domain-errors"
)

// Question is one registered question about a decision domain. Immutable.
type Question struct {
	Domain      string            `json:"domain"`
	Text        string            `json:"text"`
	AskedBy     domain.ActorID    `json:"asked_by"`
	AskedAt     time.Time         `json:"asked_at"`
	Complexity  int               `json:"complexity"`
	Sensitivity int               `json:"sensitivity"`
	Provenance  domain.Provenance `json:"provenance"`
}

// OccurredAt implements registry.Record.
func (q Question) OccurredAt() time.Time { return q.AskedAt }

// Validate enforces the registration invariants.
func (q Question) Validate() error {
	if q.Domain == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "domain is required")
	}
	if q.Text == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "text is required")
	}
	if q.AskedBy.IsEmpty() {
		return dErrors.New(dErrors.CodeInvalidInput, "asked_by is required")
	}
	if q.Complexity < 1 || q.Complexity > 5 {
		return dErrors.New(dErrors.CodeInvalidInput, "complexity must be in [1,5]")
	}
	if q.Sensitivity < 1 || q.Sensitivity > 5 {
		return dErrors.New(dErrors.CodeInvalidInput, "sensitivity must be in [1,5]")
	}
	if err := q.Provenance.Validate(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid provenance")
	}
	return nil
}

// Assessment is the entropy-gap calculation for one domain.
type Assessment struct {
	Report         metric.Report
	Severity       metric.Severity
	CurrentRate    float64 // questions per week, current window
	HistoricalRate float64 // questions per week, baseline window
	// Suggested holds the template questions attached when the gap alerts.
	// Deliberately a canned lookup, not generated text.
	Suggested []string
}

// Config holds the layer's adjustable thresholds and window sizes.
type Config struct {
	// CurrentWindow is the recent span measured; HistoricalWindow is the
	// baseline span immediately preceding it.
	CurrentWindow    time.Duration
	HistoricalWindow time.Duration

	AlertThreshold float64
	HighThreshold  float64
}

// DefaultConfig returns the stock entropy-gap configuration: a 90-day current
// window against the 90-180 day baseline.
func DefaultConfig() Config {
	return Config{
		CurrentWindow:    90 * 24 * time.Hour,
		HistoricalWindow: 90 * 24 * time.Hour,
		AlertThreshold:   0.50,
		HighThreshold:    0.75,
	}
}
