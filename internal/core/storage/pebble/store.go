package pebblestore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/cockroachdb/pebble"

	"github.com/aevon-lab/project-idmint/internal/core/idlayout"
	"github.com/aevon-lab/project-idmint/internal/core/storage"
)

// Store implements storage.Store and storage.NextShardStore on Pebble.
// Pebble holds an exclusive lock on its directory, so compare-and-set only
// has to be serialized within this process.
type Store struct {
	db *db
	mu sync.Mutex
}

// Open creates or opens the store in opts.DataDir.
func Open(opts Options) (*Store, error) {
	d, err := openDB(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open pebble store at %s: %w", opts.DataDir, err)
	}
	slog.Info("[Pebble] Store opened", "path", opts.DataDir, "fsync", opts.Fsync)
	return &Store{db: d}, nil
}

func (s *Store) loadUint(key []byte) (uint64, bool, error) {
	v, err := s.db.get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	n, err := decodeBE8(v)
	if err != nil {
		return 0, false, fmt.Errorf("key %q: %w", key, err)
	}
	return n, true, nil
}

func (s *Store) casUint(key []byte, prev, next uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, _, err := s.loadUint(key)
	if err != nil {
		return err
	}
	if current != prev {
		return storage.ErrConflict
	}
	return s.db.set(key, appendBE8(nil, next))
}

func (s *Store) LoadCounter(ctx context.Context, partition string, slot uint8) (uint64, error) {
	n, _, err := s.loadUint(keyCounter(partition, slot))
	if err != nil {
		return 0, fmt.Errorf("failed to load counter %s/%d: %w", partition, slot, err)
	}
	return n, nil
}

func (s *Store) StoreCounter(ctx context.Context, partition string, slot uint8, prev, next uint64) error {
	if err := s.casUint(keyCounter(partition, slot), prev, next); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return err
		}
		return fmt.Errorf("failed to store counter %s/%d: %w", partition, slot, err)
	}
	return nil
}

func (s *Store) LoadShard(ctx context.Context, partition string) (uint16, bool, error) {
	n, ok, err := s.loadUint(keyShard(partition))
	if err != nil {
		return 0, false, fmt.Errorf("failed to load shard for %s: %w", partition, err)
	}
	if n > idlayout.MaxShard {
		return 0, false, fmt.Errorf("stored shard %d for %s exceeds %d bits", n, partition, idlayout.ShardBits)
	}
	return uint16(n), ok, nil
}

func (s *Store) StoreShard(ctx context.Context, partition string, shard uint16) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := keyShard(partition)
	existing, ok, err := s.loadUint(key)
	if err != nil {
		return fmt.Errorf("failed to load shard for %s: %w", partition, err)
	}
	if ok {
		if existing != uint64(shard) {
			return storage.ErrConflict
		}
		return nil
	}
	if err := s.db.set(key, appendBE8(nil, uint64(shard))); err != nil {
		return fmt.Errorf("failed to store shard for %s: %w", partition, err)
	}
	return nil
}

func (s *Store) LoadNextShard(ctx context.Context) (uint64, error) {
	n, _, err := s.loadUint(keyNextShard)
	if err != nil {
		return 0, fmt.Errorf("failed to load next shard: %w", err)
	}
	return n, nil
}

func (s *Store) StoreNextShard(ctx context.Context, prev, next uint64) error {
	if err := s.casUint(keyNextShard, prev, next); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return err
		}
		return fmt.Errorf("failed to store next shard: %w", err)
	}
	return nil
}

func (s *Store) LoadScheme(ctx context.Context) (string, bool, error) {
	v, err := s.db.get(keyScheme)
	if errors.Is(err, pebble.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(v), true, nil
}

func (s *Store) StoreScheme(ctx context.Context, scheme string) error {
	return s.db.set(keyScheme, []byte(scheme))
}

// Ping reports whether the store is still open.
func (s *Store) Ping(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil || s.db.inner == nil {
		return errClosed
	}
	return nil
}

// Close releases the database. Further calls fail with a closed-store error.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.close()
}
