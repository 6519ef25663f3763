package cache

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// MemoryResponseStore is the single-instance store. Entries expire after the
// ttl and the least recently used are evicted past size.
type MemoryResponseStore struct {
	mu  sync.Mutex
	lru *expirable.LRU[string, []byte]
}

func NewMemoryResponseStore(size int, ttl time.Duration) *MemoryResponseStore {
	if size <= 0 {
		size = 1024
	}
	return &MemoryResponseStore{lru: expirable.NewLRU[string, []byte](size, nil, ttlOrDefault(ttl))}
}

func (s *MemoryResponseStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	body, ok := s.lru.Get(key)
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), body...), true, nil
}

func (s *MemoryResponseStore) Put(_ context.Context, key string, body []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lru.Contains(key) {
		return nil
	}
	s.lru.Add(key, append([]byte(nil), body...))
	return nil
}

var _ ResponseStore = (*MemoryResponseStore)(nil)
