// Package outcomes tracks who benefited from a decision and how long after
// it, and scores beneficiaries for suspicious lag patterns. Risk scores are
// always derived here, never accepted from the caller.
package outcomes

import (
	"time"

	"vigil/internal/metric"
	"vigil/pkg/domain"
	dErrors "vigil/pkg/domain-errors"
)

// MaxRiskScore clamps the composite risk score.
const MaxRiskScore = 10.0

// LaggedOutcome pairs a decision with a realized benefit. LagDays and
// RiskScore are derived at tracking time; the record is immutable after.
type LaggedOutcome struct {
	DecisionID          domain.DecisionID `json:"decision_id"`
	DecisionDate        time.Time         `json:"decision_date"`
	Beneficiary         string            `json:"beneficiary"`
	BenefitRealizedDate time.Time         `json:"benefit_realized_date"`
	LagDays             int               `json:"lag_days"`
	RiskScore           float64           `json:"risk_score"`
	Provenance          domain.Provenance `json:"provenance"`
}

// OccurredAt implements registry.Record.
func (o LaggedOutcome) OccurredAt() time.Time { return o.BenefitRealizedDate }

// TrackRequest is the caller-supplied part of an outcome. Derived fields are
// intentionally absent.
type TrackRequest struct {
	DecisionID          domain.DecisionID `json:"decision_id"`
	DecisionDate        time.Time         `json:"decision_date"`
	Beneficiary         string            `json:"beneficiary"`
	BenefitRealizedDate time.Time         `json:"benefit_realized_date"`
	Provenance          domain.Provenance `json:"provenance"`
}

// Validate enforces the tracking invariants, in particular that the benefit
// cannot predate the decision.
func (r TrackRequest) Validate() error {
	if r.DecisionID.IsEmpty() {
		return dErrors.New(dErrors.CodeInvalidInput, "decision_id is required")
	}
	if r.Beneficiary == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "beneficiary is required")
	}
	if r.DecisionDate.IsZero() || r.BenefitRealizedDate.IsZero() {
		return dErrors.New(dErrors.CodeInvalidInput, "decision and benefit dates are required")
	}
	if r.BenefitRealizedDate.Before(r.DecisionDate) {
		return dErrors.New(dErrors.CodeInvalidInput, "benefit realized before decision")
	}
	if err := r.Provenance.Validate(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid provenance")
	}
	return nil
}

// Assessment is the running risk picture for one beneficiary.
type Assessment struct {
	Report      metric.Report
	Severity    metric.Severity
	Beneficiary string
	Decisions   int
	AverageRisk float64
	AverageLag  float64
}

// Config holds the layer's adjustable thresholds and windows.
type Config struct {
	// RiskThreshold trips a pattern alert on a strictly greater running
	// average, and MinDecisions gates it on history depth.
	RiskThreshold float64
	MinDecisions  int

	// ConsistencyMinAvgLag is the average lag below which the consistency
	// sub-score is never awarded.
	ConsistencyMinAvgLag float64

	// Window bounds the history considered for beneficiary aggregates.
	Window time.Duration
}

// DefaultConfig returns the stock outcome-risk configuration.
func DefaultConfig() Config {
	return Config{
		RiskThreshold:        7,
		MinDecisions:         3,
		ConsistencyMinAvgLag: 60,
		Window:               180 * 24 * time.Hour,
	}
}
