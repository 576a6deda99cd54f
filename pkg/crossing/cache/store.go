package cache

import (
	"sync"
)

// Store is a byte-oriented key/value store for solver results.
// Implementations are safe for concurrent use.
type Store interface {
	// Get returns the value stored under key and whether it was found.
	Get(key string) ([]byte, bool, error)
	Put(key string, value []byte) error
	Close() error
}

type memoryStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewMemory returns a Store that lives in process memory.
func NewMemory() Store {
	return &memoryStore{values: make(map[string][]byte)}
}

func (s *memoryStore) Get(key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (s *memoryStore) Put(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = append([]byte(nil), value...)
	return nil
}

func (s *memoryStore) Close() error {
	return nil
}
