// Package counter issues composed ids from per-partition slot counters.
//
// Each partition is an actor: its shard resolution and every
// read-increment-write of a slot counter run inside one serialized turn, so
// two requests for the same partition never observe the same counter value.
// Partitions run in parallel and share nothing but the one-time call to the
// shard authority.
package counter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aevon-lab/project-idmint/internal/actor"
	iderr "github.com/aevon-lab/project-idmint/internal/core/errors"
	"github.com/aevon-lab/project-idmint/internal/core/idlayout"
	"github.com/aevon-lab/project-idmint/internal/core/partition"
	"github.com/aevon-lab/project-idmint/internal/core/storage"
	"github.com/aevon-lab/project-idmint/internal/encoding"
	"github.com/aevon-lab/project-idmint/internal/sharder"
)

// DefaultMaxCount bounds a single batch when Config.MaxCount is unset.
const DefaultMaxCount = 8192

// debugLogLimit truncates id lists in debug log lines.
const debugLogLimit = 1024

// Config tunes an Issuer.
type Config struct {
	MaxCount  int
	ShardMode partition.ShardMode
	Debug     bool
	Actor     actor.Options
}

// Allocation is the result of one Issue call.
type Allocation struct {
	Partition string
	Shard     uint16
	Slot      uint8
	// Previous is the slot counter before this call, Counter the persisted value after it.
	Previous uint64
	Counter  uint64
	// IDs are the composed ids for counters Counter, Counter-1, ..., Previous+1.
	IDs     []uint64
	Encoded []string
}

type partitionState struct {
	identity   string
	shard      uint16
	shardKnown bool
}

// Issuer hands out ids for any number of partitions.
type Issuer struct {
	store     storage.CounterStore
	authority sharder.Authority
	codec     encoding.Codec
	slots     SlotSource
	cfg       Config
	host      *actor.Host[partitionState]
}

// Option customises an Issuer.
type Option func(*Issuer)

// WithSlotSource replaces the crypto/rand slot source.
func WithSlotSource(s SlotSource) Option {
	return func(i *Issuer) { i.slots = s }
}

// New creates an Issuer. A nil codec is accepted so the process can start and
// report the missing salt, but every Issue call then fails with a ConfigError.
// authority may be nil in hash shard mode.
func New(store storage.CounterStore, authority sharder.Authority, codec encoding.Codec, cfg Config, opts ...Option) (*Issuer, error) {
	if store == nil {
		return nil, errors.New("counter: store must not be nil")
	}
	if cfg.ShardMode == "" {
		cfg.ShardMode = partition.ShardModeAuthority
	}
	if _, err := partition.ParseShardMode(string(cfg.ShardMode)); err != nil {
		return nil, &iderr.ConfigError{Setting: "generator.shard_mode", Reason: err.Error()}
	}
	if cfg.ShardMode == partition.ShardModeAuthority && authority == nil {
		return nil, &iderr.ConfigError{Setting: "authority.mode", Reason: "authority shard mode needs a shard authority"}
	}
	if cfg.MaxCount <= 0 {
		cfg.MaxCount = DefaultMaxCount
	}

	i := &Issuer{
		store:     store,
		authority: authority,
		codec:     codec,
		slots:     CryptoSlots{},
		cfg:       cfg,
	}
	for _, opt := range opts {
		opt(i)
	}
	i.host = actor.NewHost("Issuer", func(identity string) *partitionState {
		return &partitionState{identity: identity}
	}, cfg.Actor)
	return i, nil
}

// MaxCount is the effective batch bound.
func (i *Issuer) MaxCount() int {
	return i.cfg.MaxCount
}

// Issue allocates count ids for partitionID with a single counter write.
//
// Nothing is read or written when the codec is missing or count is out of
// [1, MaxCount]. An overflowing counter is rejected after the read and before
// the write. A successful write is final: if the caller never sees the
// result, that range is simply never used.
func (i *Issuer) Issue(ctx context.Context, partitionID string, count int) (*Allocation, error) {
	if i.codec == nil {
		return nil, &iderr.ConfigError{Setting: "generator.encoding_salt", Reason: "no encoding salt configured; refusing to issue ids"}
	}
	if err := i.validate(partitionID, count); err != nil {
		return nil, err
	}

	var alloc *Allocation
	err := i.host.Do(ctx, partitionID, func(ctx context.Context, st *partitionState) error {
		a, err := i.allocate(ctx, st, uint64(count))
		alloc = a
		return err
	})
	if err != nil {
		return nil, err
	}

	alloc.Encoded = make([]string, len(alloc.IDs))
	for n, id := range alloc.IDs {
		s, err := i.codec.Encode(id)
		if err != nil {
			return nil, fmt.Errorf("failed to encode id %d: %w", id, err)
		}
		alloc.Encoded[n] = s
	}

	if i.cfg.Debug {
		slog.Debug("[Issuer] Issued ids",
			"partition", alloc.Partition,
			"shard", alloc.Shard,
			"slot", alloc.Slot,
			"previous", alloc.Previous,
			"counter", alloc.Counter,
			"ids", truncate(strings.Join(alloc.Encoded, ","), debugLogLimit))
	}
	return alloc, nil
}

func (i *Issuer) validate(partitionID string, count int) error {
	if partitionID == "" {
		return &iderr.ValidationError{Field: "partition", Reason: "must not be empty"}
	}
	if count < 1 || count > i.cfg.MaxCount {
		return &iderr.ValidationError{
			Field:  "count",
			Reason: fmt.Sprintf("%d is outside [1, %d]", count, i.cfg.MaxCount),
		}
	}
	return nil
}

// allocate is one partition turn.
func (i *Issuer) allocate(ctx context.Context, st *partitionState, count uint64) (*Allocation, error) {
	slot, err := i.slots.Slot()
	if err != nil {
		return nil, err
	}
	if uint64(slot) > idlayout.MaxSlot {
		return nil, fmt.Errorf("slot source returned %d, outside %d bits", slot, idlayout.SlotBits)
	}

	if err := i.resolveShard(ctx, st); err != nil {
		return nil, err
	}

	current, err := i.store.LoadCounter(ctx, st.identity, slot)
	if err != nil {
		return nil, err
	}
	if current > idlayout.MaxCounter || count > idlayout.MaxCounter-current {
		return nil, &iderr.OverflowError{
			Partition: st.identity,
			Slot:      slot,
			Current:   current,
			Requested: count,
		}
	}
	next := current + count

	if err := i.store.StoreCounter(ctx, st.identity, slot, current, next); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			slog.Error("[Issuer] Counter moved underneath partition actor; another process owns this partition",
				"partition", st.identity, "slot", slot, "expected", current)
			return nil, fmt.Errorf("partition %q slot %d: %w", st.identity, slot, err)
		}
		return nil, err
	}

	ids := make([]uint64, count)
	for n := uint64(0); n < count; n++ {
		ids[n] = idlayout.MustCompose(next-n, st.shard, slot)
	}

	return &Allocation{
		Partition: st.identity,
		Shard:     st.shard,
		Slot:      slot,
		Previous:  current,
		Counter:   next,
		IDs:       ids,
	}, nil
}

// resolveShard runs at most once per materialized actor: it reuses the
// persisted shard, or derives or allocates one and persists it.
func (i *Issuer) resolveShard(ctx context.Context, st *partitionState) error {
	if st.shardKnown {
		return nil
	}

	shard, ok, err := i.store.LoadShard(ctx, st.identity)
	if err != nil {
		return err
	}
	if ok {
		st.shard, st.shardKnown = shard, true
		return nil
	}

	var raw uint64
	switch i.cfg.ShardMode {
	case partition.ShardModeHash:
		raw = uint64(partition.ShardFor(st.identity))
	default:
		raw, err = i.authority.Allocate(ctx)
		if err != nil {
			return fmt.Errorf("failed to allocate shard for partition %q: %w", st.identity, err)
		}
	}
	if raw > idlayout.MaxShard {
		slog.Error("[Issuer] Shard authority returned an id outside the shard space",
			"partition", st.identity, "shard", raw)
		return &iderr.AssignmentError{Partition: st.identity, Shard: raw}
	}

	if err := i.store.StoreShard(ctx, st.identity, uint16(raw)); err != nil {
		return fmt.Errorf("failed to persist shard for partition %q: %w", st.identity, err)
	}
	st.shard, st.shardKnown = uint16(raw), true
	slog.Info("[Issuer] Shard assigned", "partition", st.identity, "shard", raw, "mode", i.cfg.ShardMode)
	return nil
}

// Close stops every partition actor. Queued calls fail with actor.ErrHostClosed.
func (i *Issuer) Close() error {
	return i.host.Close()
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
