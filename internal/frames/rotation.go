package frames

import "sync"

// RotationQueue is the FIFO of framework names recommended as alternatives to
// a dominant one. Bounded: when full, new recommendations are dropped rather
// than displacing older ones still awaiting review.
type RotationQueue struct {
	mu    sync.Mutex
	names []string
	cap   int
}

// NewRotationQueue creates a queue bounded at cap entries; cap <= 0 means
// unbounded.
func NewRotationQueue(cap int) *RotationQueue {
	return &RotationQueue{cap: cap}
}

// Enqueue appends names in order, skipping ones that would overflow the cap.
// Returns how many were accepted.
func (q *RotationQueue) Enqueue(names ...string) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	accepted := 0
	for _, name := range names {
		if q.cap > 0 && len(q.names) >= q.cap {
			break
		}
		q.names = append(q.names, name)
		accepted++
	}
	return accepted
}

// Drain removes and returns up to n names from the front of the queue.
func (q *RotationQueue) Drain(n int) []string {
	q.mu.Lock()
	defer q.mu.Unlock()

	if n <= 0 || len(q.names) == 0 {
		return nil
	}
	if n > len(q.names) {
		n = len(q.names)
	}
	out := make([]string, n)
	copy(out, q.names[:n])
	q.names = q.names[n:]
	return out
}

// Len returns the number of queued recommendations.
func (q *RotationQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.names)
}
