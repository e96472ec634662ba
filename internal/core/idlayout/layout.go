// Package idlayout packs a slot counter, a shard id and a slot number into one
// 64-bit identifier and unpacks it again.
//
// Layout, most significant bit first:
//
//	| counter (48) | shard (9) | slot (7) |
//
// For a fixed (shard, slot) pair ids grow strictly with the counter. Distinct
// (counter, shard, slot) triples never collide, so the same counter value may
// be reused under another slot or shard without losing uniqueness.
package idlayout

import "fmt"

const (
	CounterBits = 48
	ShardBits   = 9
	SlotBits    = 7

	slotShift    = 0
	shardShift   = SlotBits
	counterShift = SlotBits + ShardBits

	MaxCounter uint64 = 1<<CounterBits - 1
	MaxShard   uint64 = 1<<ShardBits - 1
	MaxSlot    uint64 = 1<<SlotBits - 1

	// SlotCount is the number of parallel counters per partition.
	SlotCount = 1 << SlotBits
	// ShardCount is the number of distinct shard labels.
	ShardCount = 1 << ShardBits
)

// Parts is the decomposed form of a composed id.
type Parts struct {
	Counter uint64 `json:"counter"`
	Shard   uint16 `json:"shard"`
	Slot    uint8  `json:"slot"`
}

// Compose packs the three fields. Out-of-domain fields are rejected rather than masked.
func Compose(counter uint64, shard uint16, slot uint8) (uint64, error) {
	if counter > MaxCounter {
		return 0, fmt.Errorf("counter %d exceeds %d bits", counter, CounterBits)
	}
	if uint64(shard) > MaxShard {
		return 0, fmt.Errorf("shard %d exceeds %d bits", shard, ShardBits)
	}
	if uint64(slot) > MaxSlot {
		return 0, fmt.Errorf("slot %d exceeds %d bits", slot, SlotBits)
	}
	return counter<<counterShift | uint64(shard)<<shardShift | uint64(slot)<<slotShift, nil
}

// MustCompose is Compose for callers that validated the fields already.
func MustCompose(counter uint64, shard uint16, slot uint8) uint64 {
	id, err := Compose(counter, shard, slot)
	if err != nil {
		panic(err)
	}
	return id
}

// Decompose is the exact inverse of Compose.
func Decompose(id uint64) Parts {
	return Parts{
		Counter: id >> counterShift,
		Shard:   uint16(id >> shardShift & MaxShard),
		Slot:    uint8(id & MaxSlot),
	}
}

// Compose re-packs p.
func (p Parts) Compose() (uint64, error) {
	return Compose(p.Counter, p.Shard, p.Slot)
}
