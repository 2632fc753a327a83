package idempotency

import (
	"context"
	"sync"
	"time"
)

const defaultTTL = 24 * time.Hour

type memoryEntry struct {
	record    Record
	expiresAt time.Time
}

// MemoryStore — потокобезопасное in-memory хранилище идемпотентных ключей.
// Подходит для разработки и тестов; в production используется redis.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore создаёт in-memory store с заданным TTL ключей.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
	}
}

// Get возвращает сохранённый результат по ключу.
func (s *MemoryStore) Get(_ context.Context, key string) (Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return Record{}, false, nil
	}
	if time.Now().After(entry.expiresAt) {
		delete(s.entries, key)
		return Record{}, false, nil
	}
	return entry.record, true, nil
}

// Put сохраняет результат, если ключ ещё не занят.
func (s *MemoryStore) Put(_ context.Context, key string, record Record) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.entries[key]; ok && time.Now().Before(entry.expiresAt) {
		return false, nil
	}

	s.entries[key] = memoryEntry{
		record:    record,
		expiresAt: time.Now().Add(s.ttl),
	}
	return true, nil
}
