package alerting

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"vigil/internal/metric"
)

// MemoryStore keeps alerts in memory.
type MemoryStore struct {
	mu     sync.RWMutex
	alerts map[uuid.UUID]*Alert
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{alerts: make(map[uuid.UUID]*Alert)}
}

func (s *MemoryStore) Insert(_ context.Context, alert *Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *alert
	s.alerts[alert.ID] = &cp
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id uuid.UUID) (*Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if a, ok := s.alerts[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (s *MemoryStore) Latest(_ context.Context, layer metric.Layer, dedupKey string) (*Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *Alert
	for _, a := range s.alerts {
		if a.Layer != layer || a.DedupKey != dedupKey {
			continue
		}
		if latest == nil || a.DetectedAt.After(latest.DetectedAt) {
			latest = a
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (s *MemoryStore) List(_ context.Context, layer metric.Layer) ([]*Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Alert, 0, len(s.alerts))
	for _, a := range s.alerts {
		if layer != "" && a.Layer != layer {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].DetectedAt.After(out[j].DetectedAt)
	})
	return out, nil
}

func (s *MemoryStore) MarkResolved(_ context.Context, id uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.alerts[id]; ok && a.ResolvedAt == nil {
		a.ResolvedAt = &at
	}
	return nil
}

func (s *MemoryStore) MarkResolvedByKey(_ context.Context, layer metric.Layer, dedupKey string, at time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	resolved := 0
	for _, a := range s.alerts {
		if a.Layer == layer && a.DedupKey == dedupKey && a.ResolvedAt == nil {
			t := at
			a.ResolvedAt = &t
			resolved++
		}
	}
	return resolved, nil
}
