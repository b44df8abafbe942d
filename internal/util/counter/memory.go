package counter_utils

import (
	"sync"
	"time"
)

// MemoryStore is a process-local Store used by unit tests and local
// development without a valkey instance.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
}

type memoryEntry struct {
	value     int64
	expiresAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: map[string]*memoryEntry{},
	}
}

func (s *MemoryStore) Increment(key string, delta int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.getLocked(key)
	if entry == nil {
		entry = &memoryEntry{}
		s.entries[key] = entry
	}

	entry.value += delta
	return entry.value, nil
}

func (s *MemoryStore) Expire(key string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry := s.getLocked(key); entry != nil {
		entry.expiresAt = time.Now().Add(ttl)
	}

	return nil
}

func (s *MemoryStore) Get(key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.getLocked(key)
	if entry == nil {
		return 0, nil
	}

	return entry.value, nil
}

func (s *MemoryStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

func (s *MemoryStore) Ping() error {
	return nil
}

func (s *MemoryStore) getLocked(key string) *memoryEntry {
	entry, ok := s.entries[key]
	if !ok {
		return nil
	}

	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		delete(s.entries, key)
		return nil
	}

	return entry
}
