package registry

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore implements Store with an in-process map of ordered slices.
// Append-mostly: many calculators may query concurrently under the read lock.
type MemoryStore[R Record] struct {
	mu   sync.RWMutex
	logs map[string][]R
}

// NewMemoryStore creates an empty in-memory registry.
func NewMemoryStore[R Record]() *MemoryStore[R] {
	return &MemoryStore[R]{logs: make(map[string][]R)}
}

func (s *MemoryStore[R]) Append(_ context.Context, key string, rec R) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs[key] = append(s.logs[key], rec)
	return nil
}

func (s *MemoryStore[R]) Query(_ context.Context, key string, rng TimeRange) ([]R, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	log := s.logs[key]
	out := make([]R, 0, len(log))
	for _, rec := range log {
		if rng.Contains(rec.OccurredAt()) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *MemoryStore[R]) Keys(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.logs))
	for key := range s.logs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *MemoryStore[R]) Count(_ context.Context, key string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.logs[key]), nil
}
