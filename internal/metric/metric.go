// Package metric defines the shared shape of layer metric outputs. A Report
// deliberately carries only a magnitude, its threshold, the exceeded flag, and
// a timestamp: detection without narrated cause is a product invariant, so the
// type has no field to put an explanation in.
package metric

import "time"

// Layer identifies one of the five monitoring layers. The short codes are the
// wire values alerts and reports carry.
type Layer string

const (
	LayerFrameworkDominance Layer = "RPL"
	LayerQuestionEntropy    Layer = "QEM"
	LayerOutcomeRisk        Layer = "LOA"
	LayerObserverFatigue    Layer = "OLI"
	LayerPurposeDrift       Layer = "PDS"
)

// IsValid checks if the layer is one of the supported enum values.
func (l Layer) IsValid() bool {
	switch l {
	case LayerFrameworkDominance, LayerQuestionEntropy, LayerOutcomeRisk,
		LayerObserverFatigue, LayerPurposeDrift:
		return true
	}
	return false
}

// Severity grades how far past its threshold a metric has moved. It steers
// audit and alert routing; it never appears in magnitude-only responses.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Report is the magnitude-only metric response shared by every layer.
type Report struct {
	Layer      Layer     `json:"layer"`
	Magnitude  float64   `json:"magnitude"`
	Threshold  float64   `json:"threshold"`
	Exceeded   bool      `json:"exceeded"`
	ComputedAt time.Time `json:"computed_at"`
}

// NewReport builds a report, deriving the exceeded flag with a strict
// comparison: a magnitude exactly at threshold does not trip it.
func NewReport(layer Layer, magnitude, threshold float64, at time.Time) Report {
	return Report{
		Layer:      layer,
		Magnitude:  magnitude,
		Threshold:  threshold,
		Exceeded:   magnitude > threshold,
		ComputedAt: at,
	}
}
