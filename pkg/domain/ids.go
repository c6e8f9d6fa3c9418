// Package domain holds identifier types and closed enumerations shared across
// the monitor's subsystems. Keeping them here avoids import cycles between
// services that exchange actor and purpose references.
package domain

// ActorID identifies a person submitting observations or performing audits.
type ActorID string

func (id ActorID) String() string { return string(id) }

// IsEmpty reports whether the identifier carries no value.
func (id ActorID) IsEmpty() bool { return id == "" }

// PurposeID identifies a declared system purpose under drift monitoring.
type PurposeID string

func (id PurposeID) String() string { return string(id) }

func (id PurposeID) IsEmpty() bool { return id == "" }

// DecisionID identifies an institutional decision whose outcomes are tracked.
type DecisionID string

func (id DecisionID) String() string { return string(id) }

func (id DecisionID) IsEmpty() bool { return id == "" }
