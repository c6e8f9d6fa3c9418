// Package gate is the admission guard in front of every write that counts as
// new reasoning. It owns the per-actor cooldown and concurrency counters
// exclusively; no other component mutates them.
package gate

import (
	"fmt"
	"time"

	"vigil/pkg/domain"
)

// RejectionKind is the closed set of admission rejection reasons.
type RejectionKind string

const (
	KindCooldownActive        RejectionKind = "CooldownActive"
	KindConcurrencyExceeded   RejectionKind = "ConcurrencyExceeded"
	KindConfidenceCapExceeded RejectionKind = "ConfidenceCapExceeded"
	KindUnauthorizedScope     RejectionKind = "UnauthorizedScope"
)

// Rejection is a structured admission refusal. It is the only error shape the
// gate produces for policy breaches, so transports can map it without string
// matching.
type Rejection struct {
	Kind    RejectionKind `json:"kind"`
	Message string        `json:"message"`
	// RetryAfterMinutes is set only for cooldown rejections.
	RetryAfterMinutes int `json:"retry_after_minutes,omitempty"`
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("admission rejected (%s): %s", r.Kind, r.Message)
}

// CooldownReason tags why a cooldown was installed. An enum tag only; the
// cooldown record never narrates its cause.
type CooldownReason string

const (
	ReasonFatigueCritical CooldownReason = "fatigue_critical"
	ReasonManual          CooldownReason = "manual"
)

// CooldownEntry is the one active cooldown an actor may have.
type CooldownEntry struct {
	ActorID       domain.ActorID `json:"actor_id"`
	StartTime     time.Time      `json:"start_time"`
	DurationHours int            `json:"duration_hours"`
	Reason        CooldownReason `json:"reason"`
}

// ExpiresAt returns when the cooldown lapses.
func (c CooldownEntry) ExpiresAt() time.Time {
	return c.StartTime.Add(time.Duration(c.DurationHours) * time.Hour)
}

// Active reports whether the cooldown still binds at time now.
func (c CooldownEntry) Active(now time.Time) bool {
	return now.Before(c.ExpiresAt())
}

// AdmissionRequest carries everything the gate checks before a submission.
type AdmissionRequest struct {
	ActorID          domain.ActorID
	Role             domain.Role
	ConfidenceWeight float64
	DataScope        domain.DataScope
}

// Config holds the gate's adjustable limits.
type Config struct {
	// RoleLimits caps concurrent audits per actor by role.
	RoleLimits map[domain.Role]int

	// ConfidenceCap is the global ceiling on declared confidence.
	ConfidenceCap float64

	// CriticalFatigueScore is where the gate installs a cooldown on its own;
	// CriticalCooldown is that cooldown's length.
	CriticalFatigueScore int
	CriticalCooldown     time.Duration
}

// DefaultConfig returns the stock admission limits.
func DefaultConfig() Config {
	return Config{
		RoleLimits: map[domain.Role]int{
			domain.RoleObserver: 2,
			domain.RoleAnalyst:  3,
			domain.RoleAdmin:    5,
		},
		ConfidenceCap:        0.95,
		CriticalFatigueScore: 9,
		CriticalCooldown:     72 * time.Hour,
	}
}
