// Package kv provides the snapshot key-value stores backing the ledger.
// Every value is an opaque JSON blob written as a full replace.
package kv

import (
	"context"
	"errors"
	"sync"
)

// ErrNoSnapshot indicates no value has been stored under a key yet.
var ErrNoSnapshot = errors.New("kv: no snapshot")

// Store persists whole-collection snapshots by key.
type Store interface {
	Save(ctx context.Context, key string, data []byte) error
	Load(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// BatchStore is implemented by stores that can write a set of snapshots
// atomically. Callers fall back to individual Save calls otherwise.
type BatchStore interface {
	SaveAll(ctx context.Context, snapshots map[string][]byte) error
}

// MemoryStore keeps snapshots in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore builds an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (s *MemoryStore) Save(ctx context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	s.data[key] = buf
	return nil
}

func (s *MemoryStore) Load(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.data[key]
	if !ok {
		return nil, ErrNoSnapshot
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	return buf, nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}
