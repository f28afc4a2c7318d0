package notify

import (
	"context"
	"sync"
	"time"
)

const defaultMemoryCapacity = 256

// MemorySink keeps the most recent events in a bounded ring. When full the
// oldest event is dropped.
type MemorySink struct {
	mu       sync.Mutex
	events   []Event
	head     int
	count    int
	capacity int
	dropped  int64
	clock    func() time.Time
}

func NewMemorySink(capacity int) *MemorySink {
	if capacity <= 0 {
		capacity = defaultMemoryCapacity
	}
	return &MemorySink{
		events:   make([]Event, capacity),
		capacity: capacity,
		clock:    time.Now,
	}
}

func (s *MemorySink) PublishStatus(_ context.Context, ev StatusEvent) error {
	s.append(Event{Kind: KindStatus, Status: &ev})
	return nil
}

func (s *MemorySink) PublishOutcome(_ context.Context, ev OutcomeEvent) error {
	s.append(Event{Kind: KindOutcome, Outcome: &ev})
	return nil
}

func (s *MemorySink) append(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev.At = s.clock()
	if s.count == s.capacity {
		s.dropped++
	} else {
		s.count++
	}
	s.events[s.head] = ev
	s.head = (s.head + 1) % s.capacity
}

// Recent returns up to n events, oldest first. n <= 0 returns everything held.
func (s *MemorySink) Recent(n int) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n <= 0 || n > s.count {
		n = s.count
	}
	out := make([]Event, 0, n)
	start := (s.head - n + s.capacity) % s.capacity
	for i := 0; i < n; i++ {
		out = append(out, s.events[(start+i)%s.capacity])
	}
	return out
}

// Dropped returns the number of events evicted so far.
func (s *MemorySink) Dropped() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}
