package domain

import "fmt"

// Role is the closed set of actor roles recognized by the admission gate.
// Role strings arrive from the authentication collaborator; parsing them into
// this type eliminates invalid-role states downstream.
type Role string

const (
	RoleObserver Role = "observer"
	RoleAnalyst  Role = "analyst"
	RoleAdmin    Role = "admin"
)

// ParseRole converts a raw claim value into a Role, rejecting unknown values.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.IsValid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// IsValid checks if the role is one of the supported enum values.
func (r Role) IsValid() bool {
	switch r {
	case RoleObserver, RoleAnalyst, RoleAdmin:
		return true
	}
	return false
}

// String returns the string representation.
func (r Role) String() string { return string(r) }
