package gate

import (
	"context"
	"sync"

	"vigil/pkg/domain"
)

// MemoryCounterStore is an in-memory CounterStore for tests and single-node
// runs. The store mutex makes Acquire's check-and-increment atomic.
type MemoryCounterStore struct {
	mu        sync.Mutex
	inFlight  map[domain.ActorID]int
	cooldowns map[domain.ActorID]CooldownEntry
}

func NewMemoryCounterStore() *MemoryCounterStore {
	return &MemoryCounterStore{
		inFlight:  make(map[domain.ActorID]int),
		cooldowns: make(map[domain.ActorID]CooldownEntry),
	}
}

func (s *MemoryCounterStore) Acquire(_ context.Context, id domain.ActorID, limit int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[id] >= limit {
		return false, nil
	}
	s.inFlight[id]++
	return true, nil
}

func (s *MemoryCounterStore) Release(_ context.Context, id domain.ActorID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[id] > 0 {
		s.inFlight[id]--
	}
	return nil
}

func (s *MemoryCounterStore) InFlight(_ context.Context, id domain.ActorID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight[id], nil
}

func (s *MemoryCounterStore) Cooldown(_ context.Context, id domain.ActorID) (*CooldownEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.cooldowns[id]
	if !ok {
		return nil, nil
	}
	return &entry, nil
}

func (s *MemoryCounterStore) SetCooldown(_ context.Context, entry CooldownEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cooldowns[entry.ActorID] = entry
	return nil
}

func (s *MemoryCounterStore) ClearCooldown(_ context.Context, id domain.ActorID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cooldowns, id)
	return nil
}
