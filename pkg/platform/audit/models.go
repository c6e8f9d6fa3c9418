// Package audit defines the transport-agnostic audit event model. Events are
// emitted from domain logic and fanned out to stores and brokers; they carry
// enum action tags and identifiers, never narrative cause text.
package audit

import (
	"time"

	"vigil/pkg/domain"
)

// Severity classifies how urgently an audit event should be surfaced.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Action is the closed set of auditable actions.
type Action string

const (
	ActionAlertRaised       Action = "alert_raised"
	ActionAlertResolved     Action = "alert_resolved"
	ActionAdmissionRejected Action = "admission_rejected"
	ActionCooldownInstalled Action = "cooldown_installed"
	ActionPurposePaused     Action = "purpose_paused"
	ActionPurposeResumed    Action = "purpose_resumed"
	ActionRecommitRejected  Action = "recommit_rejected"
	ActionWorkRedistributed Action = "work_redistributed"
)

// Event captures a security-relevant occurrence. Keep it transport-agnostic
// so stores and sinks can fan out.
type Event struct {
	Action    Action         `json:"action"`
	Subject   string         `json:"subject"`
	ActorID   domain.ActorID `json:"actor_id,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
	Severity  Severity       `json:"severity"`
	Timestamp time.Time      `json:"timestamp"`
	// Metadata holds enum tags and counters only, never free text.
	Metadata map[string]string `json:"metadata,omitempty"`
}
