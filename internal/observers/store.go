package observers

import (
	"context"
	"sync"

	"vigil/pkg/domain"
)

// Store persists one metric row per observer.
type Store interface {
	// Get returns the observer's row, nil when unknown.
	Get(ctx context.Context, id domain.ActorID) (*ObserverMetric, error)

	// Upsert inserts or replaces the observer's row.
	Upsert(ctx context.Context, m *ObserverMetric) error

	// List returns every observer row.
	List(ctx context.Context) ([]*ObserverMetric, error)
}

// MemoryStore keeps observer rows in memory.
type MemoryStore struct {
	mu   sync.RWMutex
	rows map[domain.ActorID]*ObserverMetric
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[domain.ActorID]*ObserverMetric)}
}

func (s *MemoryStore) Get(_ context.Context, id domain.ActorID) (*ObserverMetric, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if m, ok := s.rows[id]; ok {
		cp := *m
		return &cp, nil
	}
	return nil, nil
}

func (s *MemoryStore) Upsert(_ context.Context, m *ObserverMetric) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *m
	s.rows[m.ObserverID] = &cp
	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]*ObserverMetric, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*ObserverMetric, 0, len(s.rows))
	for _, m := range s.rows {
		cp := *m
		out = append(out, &cp)
	}
	return out, nil
}
