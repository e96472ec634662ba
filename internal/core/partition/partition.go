package partition

import (
	"fmt"
	"hash/fnv"

	"github.com/aevon-lab/project-idmint/internal/core/idlayout"
)

// ShardMode selects how a partition obtains its shard id.
// Pick one per deployment and never change it after first production use.
type ShardMode string

const (
	// ShardModeAuthority assigns sequential shard ids from the singleton authority.
	ShardModeAuthority ShardMode = "authority"
	// ShardModeHash derives the shard id from the partition identity.
	// Distinct partitions may share a shard id; uniqueness still holds because
	// every partition owns its counters independently.
	ShardModeHash ShardMode = "hash"
)

// ParseShardMode validates a configured mode string.
func ParseShardMode(s string) (ShardMode, error) {
	switch ShardMode(s) {
	case ShardModeAuthority, ShardModeHash:
		return ShardMode(s), nil
	default:
		return "", fmt.Errorf("unknown shard mode %q (must be authority or hash)", s)
	}
}

// Scheme is the identity-scheme marker persisted on first use of a store.
func (m ShardMode) Scheme() string {
	return fmt.Sprintf("c%d-s%d-t%d/%s", idlayout.CounterBits, idlayout.ShardBits, idlayout.SlotBits, m)
}

// ShardFor derives the hash-mode shard id: FNV-32a of the identity, reduced
// into the 9-bit shard space. The mapping is persisted implicitly by every id
// issued, so the hash function must never change.
func ShardFor(identity string) uint16 {
	h := fnv.New32a()
	h.Write([]byte(identity))
	return uint16(h.Sum32() % idlayout.ShardCount)
}
