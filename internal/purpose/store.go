package purpose

import (
	"context"
	"sync"

	"vigil/pkg/domain"
)

// PurposeStore persists purpose declarations and their lifecycle state.
type PurposeStore interface {
	// Get returns the purpose by id, nil when unknown.
	Get(ctx context.Context, id domain.PurposeID) (*SystemPurpose, error)

	// Create persists a new declaration; the id must be unused.
	Create(ctx context.Context, p *SystemPurpose) error

	// Update replaces an existing declaration's mutable fields.
	Update(ctx context.Context, p *SystemPurpose) error

	// List returns every monitored purpose.
	List(ctx context.Context) ([]*SystemPurpose, error)
}

// MemoryPurposeStore keeps purposes in memory.
type MemoryPurposeStore struct {
	mu       sync.RWMutex
	purposes map[domain.PurposeID]*SystemPurpose
}

func NewMemoryPurposeStore() *MemoryPurposeStore {
	return &MemoryPurposeStore{purposes: make(map[domain.PurposeID]*SystemPurpose)}
}

func (s *MemoryPurposeStore) Get(_ context.Context, id domain.PurposeID) (*SystemPurpose, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.purposes[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (s *MemoryPurposeStore) Create(_ context.Context, p *SystemPurpose) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.purposes[p.ID] = &cp
	return nil
}

func (s *MemoryPurposeStore) Update(_ context.Context, p *SystemPurpose) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.purposes[p.ID] = &cp
	return nil
}

func (s *MemoryPurposeStore) List(_ context.Context) ([]*SystemPurpose, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*SystemPurpose, 0, len(s.purposes))
	for _, p := range s.purposes {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}
