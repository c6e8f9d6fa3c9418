package domain

import "fmt"

// DataScope classifies how an observation was obtained.
type DataScope string

const (
	ScopeInferred  DataScope = "inferred"
	ScopeObserved  DataScope = "observed"
	ScopeSimulated DataScope = "simulated"
)

// IsValid checks if the scope is one of the supported enum values.
func (s DataScope) IsValid() bool {
	switch s {
	case ScopeInferred, ScopeObserved, ScopeSimulated:
		return true
	}
	return false
}

// EvidenceType classifies the strength of the evidence behind an observation.
type EvidenceType string

const (
	EvidenceDirect    EvidenceType = "direct"
	EvidenceProxy     EvidenceType = "proxy"
	EvidenceEstimated EvidenceType = "estimated"
)

// IsValid checks if the evidence type is one of the supported enum values.
func (t EvidenceType) IsValid() bool {
	switch t {
	case EvidenceDirect, EvidenceProxy, EvidenceEstimated:
		return true
	}
	return false
}

// Provenance is the mandatory triple attached to every recorded observation.
// No record may be persisted without all three fields populated.
type Provenance struct {
	DataScope    DataScope    `json:"data_scope"`
	EvidenceType EvidenceType `json:"evidence_type"`
	Origin       string       `json:"origin"`
}

// Validate enforces the provenance invariant: a known scope, a known evidence
// type, and a non-empty origin.
func (p Provenance) Validate() error {
	if !p.DataScope.IsValid() {
		return fmt.Errorf("invalid data_scope %q", p.DataScope)
	}
	if !p.EvidenceType.IsValid() {
		return fmt.Errorf("invalid evidence_type %q", p.EvidenceType)
	}
	if p.Origin == "" {
		return fmt.Errorf("origin is required")
	}
	return nil
}
