package pebblestore

import (
	"encoding/binary"
	"fmt"
)

// Keyspace, byte-wise:
//   - p/{len_be4}{partition}/c/{slot}
//   - p/{len_be4}{partition}/s
//   - sharder/next
//   - meta/scheme
//
// The length prefix keeps partition identities containing '/' from aliasing
// another partition's keys.

var (
	partitionPrefix = []byte("p/")
	counterSeg      = []byte("/c/")
	shardSuffix     = []byte("/s")
	keyNextShard    = []byte("sharder/next")
	keyScheme       = []byte("meta/scheme")
)

func appendBE4(dst []byte, v uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return append(dst, b[:]...)
}

func appendBE8(dst []byte, v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return append(dst, b[:]...)
}

func appendPartition(dst []byte, partition string) []byte {
	dst = append(dst, partitionPrefix...)
	dst = appendBE4(dst, uint32(len(partition)))
	return append(dst, partition...)
}

func keyCounter(partition string, slot uint8) []byte {
	k := make([]byte, 0, len(partition)+16)
	k = appendPartition(k, partition)
	k = append(k, counterSeg...)
	return append(k, slot)
}

func keyShard(partition string) []byte {
	k := make([]byte, 0, len(partition)+16)
	k = appendPartition(k, partition)
	return append(k, shardSuffix...)
}

func decodeBE8(v []byte) (uint64, error) {
	if len(v) != 8 {
		return 0, fmt.Errorf("corrupt value: want 8 bytes, got %d", len(v))
	}
	return binary.BigEndian.Uint64(v), nil
}
