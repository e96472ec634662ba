package memory

import (
	"context"
	"sync"

	"github.com/aevon-lab/project-idmint/internal/core/storage"
)

type slotKey struct {
	partition string
	slot      uint8
}

// Store is an in-memory implementation of storage.Store and storage.NextShardStore.
// Useful for testing and development. State is lost on restart.
type Store struct {
	mu        sync.RWMutex
	counters  map[slotKey]uint64
	shards    map[string]uint16
	nextShard uint64
	scheme    string
	hasScheme bool
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		counters: make(map[slotKey]uint64),
		shards:   make(map[string]uint16),
	}
}

func (s *Store) LoadCounter(ctx context.Context, partition string, slot uint8) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counters[slotKey{partition, slot}], nil
}

func (s *Store) StoreCounter(ctx context.Context, partition string, slot uint8, prev, next uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := slotKey{partition, slot}
	if s.counters[key] != prev {
		return storage.ErrConflict
	}
	s.counters[key] = next
	return nil
}

func (s *Store) LoadShard(ctx context.Context, partition string) (uint16, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	shard, ok := s.shards[partition]
	return shard, ok, nil
}

func (s *Store) StoreShard(ctx context.Context, partition string, shard uint16) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.shards[partition]; ok && existing != shard {
		return storage.ErrConflict
	}
	s.shards[partition] = shard
	return nil
}

func (s *Store) LoadNextShard(ctx context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nextShard, nil
}

func (s *Store) StoreNextShard(ctx context.Context, prev, next uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.nextShard != prev {
		return storage.ErrConflict
	}
	s.nextShard = next
	return nil
}

func (s *Store) LoadScheme(ctx context.Context) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scheme, s.hasScheme, nil
}

func (s *Store) StoreScheme(ctx context.Context, scheme string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheme = scheme
	s.hasScheme = true
	return nil
}

func (s *Store) Ping(ctx context.Context) error { return nil }

func (s *Store) Close() error { return nil }
