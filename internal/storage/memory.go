package storage

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	data        []byte
	contentType string
	expiresAt   time.Time
}

// MemoryStorage keeps uploads in process memory. Entries older than the TTL
// are dropped on the next write.
type MemoryStorage struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryStorage(ttl time.Duration) *MemoryStorage {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &MemoryStorage{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStorage) Upload(_ context.Context, key string, data []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.evictLocked(now)

	buf := make([]byte, len(data))
	copy(buf, data)
	s.entries[key] = memoryEntry{
		data:        buf,
		contentType: contentType,
		expiresAt:   now.Add(s.ttl),
	}
	return nil
}

func (s *MemoryStorage) Download(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok || !s.now().Before(entry.expiresAt) {
		delete(s.entries, key)
		return nil, ErrNotFound
	}
	return entry.data, nil
}

func (s *MemoryStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

// Len reports the number of live entries.
func (s *MemoryStorage) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictLocked(s.now())
	return len(s.entries)
}

func (s *MemoryStorage) evictLocked(now time.Time) {
	for key, entry := range s.entries {
		if !now.Before(entry.expiresAt) {
			delete(s.entries, key)
		}
	}
}
