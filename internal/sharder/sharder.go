// Package sharder allocates sequential shard ids to partitions on first contact.
//
// Exactly one logical authority exists per deployment, addressed by the
// well-known name SHARDER. Each call hands out the persisted "next" value and
// advances it in one indivisible step, so no value is ever handed out twice.
// The authority does not enforce the 9-bit bound; callers validate the ids
// they receive.
package sharder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aevon-lab/project-idmint/internal/actor"
	"github.com/aevon-lab/project-idmint/internal/core/storage"
)

// Name is the fixed identity of the singleton authority.
const Name = "SHARDER"

// Authority hands out shard ids. Implementations must never return the same
// value twice across the whole deployment.
type Authority interface {
	Allocate(ctx context.Context) (uint64, error)
}

type localState struct{}

// Local is the authority as a single actor over a NextShardStore.
type Local struct {
	host  *actor.Host[localState]
	store storage.NextShardStore
}

// NewLocal creates the authority. Only one Local per store may exist.
func NewLocal(store storage.NextShardStore, opts actor.Options) *Local {
	return &Local{
		host:  actor.NewHost("Sharder", func(string) *localState { return &localState{} }, opts),
		store: store,
	}
}

// Allocate reads next (absent means 0), persists next+1 and returns next.
func (l *Local) Allocate(ctx context.Context) (uint64, error) {
	var allocated uint64
	err := l.host.Do(ctx, Name, func(ctx context.Context, _ *localState) error {
		next, err := l.store.LoadNextShard(ctx)
		if err != nil {
			return fmt.Errorf("failed to read next shard: %w", err)
		}
		if err := l.store.StoreNextShard(ctx, next, next+1); err != nil {
			if errors.Is(err, storage.ErrConflict) {
				return fmt.Errorf("another authority is writing the shard sequence: %w", err)
			}
			return fmt.Errorf("failed to advance shard sequence: %w", err)
		}
		allocated = next
		return nil
	})
	if err != nil {
		return 0, err
	}
	slog.Info("[Sharder] Shard allocated", "shard", allocated)
	return allocated, nil
}

// Close stops the authority actor.
func (l *Local) Close() error {
	return l.host.Close()
}
