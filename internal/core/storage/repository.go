package storage

import (
	"context"
	"errors"
	"fmt"

	iderr "github.com/aevon-lab/project-idmint/internal/core/errors"
)

// ErrConflict is returned when a compare-and-set write finds a different stored value
// than the one the caller read. It means another writer owns the same partition key.
var ErrConflict = errors.New("stored value changed underneath writer")

// CounterStore is the per-partition durable state of a partition actor.
// Only the actor owning a partition reads or writes that partition's keys.
type CounterStore interface {
	// LoadCounter returns the slot counter, 0 when the slot was never used.
	LoadCounter(ctx context.Context, partition string, slot uint8) (uint64, error)

	// StoreCounter persists next if the stored counter still equals prev.
	// Returns ErrConflict otherwise.
	StoreCounter(ctx context.Context, partition string, slot uint8, prev, next uint64) error

	// LoadShard returns the persisted shard id and whether one exists.
	LoadShard(ctx context.Context, partition string) (uint16, bool, error)

	// StoreShard persists the shard id once. Returns ErrConflict when a different id is stored.
	StoreShard(ctx context.Context, partition string, shard uint16) error
}

// NextShardStore holds the authority's global "next shard" value.
type NextShardStore interface {
	// LoadNextShard returns the next unassigned shard id, 0 when absent.
	LoadNextShard(ctx context.Context) (uint64, error)

	// StoreNextShard persists next if the stored value still equals prev.
	StoreNextShard(ctx context.Context, prev, next uint64) error
}

// SchemeStore records which identity scheme a store was first used with.
type SchemeStore interface {
	LoadScheme(ctx context.Context) (string, bool, error)
	StoreScheme(ctx context.Context, scheme string) error
}

// Store is the full surface a storage backend offers to the service.
type Store interface {
	CounterStore
	SchemeStore
	Ping(ctx context.Context) error
	Close() error
}

// EnsureScheme records scheme on first use and refuses to continue when the
// store was initialised under a different one.
func EnsureScheme(ctx context.Context, s SchemeStore, scheme string) error {
	stored, ok, err := s.LoadScheme(ctx)
	if err != nil {
		return fmt.Errorf("failed to load identity scheme: %w", err)
	}
	if !ok {
		if err := s.StoreScheme(ctx, scheme); err != nil {
			return fmt.Errorf("failed to store identity scheme: %w", err)
		}
		return nil
	}
	if stored != scheme {
		return &iderr.ConfigError{
			Setting: "generator.shard_mode",
			Reason:  fmt.Sprintf("store was initialised with identity scheme %q, refusing to run as %q", stored, scheme),
		}
	}
	return nil
}
