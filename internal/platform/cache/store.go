package cache

import (
	"context"
	"sync"
	"time"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Store is a keyed in-memory store with a fixed TTL. A TTL <= 0 keeps
// entries until they are deleted.
type Store[V any] struct {
	mu      sync.RWMutex
	entries map[string]entry[V]
	ttl     time.Duration
	now     func() time.Time
}

func NewStore[V any](ttl time.Duration) *Store[V] {
	return &Store[V]{
		entries: make(map[string]entry[V]),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *Store[V]) Get(_ context.Context, key string) (V, bool) {
	var zero V
	if key == "" {
		return zero, false
	}

	now := s.now()
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return zero, false
	}
	if s.expired(e, now) {
		s.mu.Lock()
		if current, ok := s.entries[key]; ok && s.expired(current, now) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return zero, false
	}

	return e.value, true
}

func (s *Store[V]) Set(_ context.Context, key string, value V) {
	if key == "" {
		return
	}

	expiresAt := time.Time{}
	if s.ttl > 0 {
		expiresAt = s.now().Add(s.ttl)
	}

	s.mu.Lock()
	s.entries[key] = entry[V]{
		value:     value,
		expiresAt: expiresAt,
	}
	s.mu.Unlock()
}

// Delete removes key and reports whether a live entry was present.
func (s *Store[V]) Delete(_ context.Context, key string) bool {
	if key == "" {
		return false
	}

	s.mu.Lock()
	e, ok := s.entries[key]
	delete(s.entries, key)
	s.mu.Unlock()

	return ok && !s.expired(e, s.now())
}

// Len counts unexpired entries.
func (s *Store[V]) Len() int {
	now := s.now()
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, e := range s.entries {
		if !s.expired(e, now) {
			n++
		}
	}
	return n
}

// Sweep drops expired entries and returns how many were dropped.
func (s *Store[V]) Sweep() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	dropped := 0
	for key, e := range s.entries {
		if s.expired(e, now) {
			delete(s.entries, key)
			dropped++
		}
	}
	return dropped
}

func (s *Store[V]) expired(e entry[V], now time.Time) bool {
	return s.ttl > 0 && !e.expiresAt.After(now)
}
