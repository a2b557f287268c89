package history

import (
	"context"
	"sync"
	"time"
)

type memoryBucket struct {
	entries []Entry
	touched time.Time
}

// MemoryStore is the fallback used when Redis is not configured. Buckets
// idle for longer than ttl are removed by Sweep.
type MemoryStore struct {
	mu       sync.Mutex
	buckets  map[string]*memoryBucket
	maxItems int
	ttl      time.Duration
	now      func() time.Time
}

func NewMemoryStore(maxItems int, ttl time.Duration) *MemoryStore {
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}
	return &MemoryStore{
		buckets:  make(map[string]*memoryBucket),
		maxItems: maxItems,
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *MemoryStore) Add(_ context.Context, clientID string, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if entry.Timestamp.IsZero() {
		entry.Timestamp = now
	}

	b, ok := s.buckets[clientID]
	if !ok {
		b = &memoryBucket{}
		s.buckets[clientID] = b
	}

	entries := make([]Entry, 0, s.maxItems)
	entries = append(entries, entry)
	entries = append(entries, b.entries...)
	if len(entries) > s.maxItems {
		entries = entries[:s.maxItems]
	}

	b.entries = entries
	b.touched = now
	return nil
}

func (s *MemoryStore) List(_ context.Context, clientID string) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.buckets[clientID]
	if !ok || s.expired(b) {
		return []Entry{}, nil
	}

	out := make([]Entry, len(b.entries))
	copy(out, b.entries)
	return out, nil
}

func (s *MemoryStore) Clear(_ context.Context, clientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.buckets, clientID)
	return nil
}

// Sweep drops expired buckets and returns how many were removed.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, b := range s.buckets {
		if s.expired(b) {
			delete(s.buckets, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of clients with stored history.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buckets)
}

func (s *MemoryStore) expired(b *memoryBucket) bool {
	return s.ttl > 0 && s.now().Sub(b.touched) > s.ttl
}
