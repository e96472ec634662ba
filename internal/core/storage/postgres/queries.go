package postgres

// SQL for partition counters, shard assignment and store metadata.

const (
	// queryLoadCounter reads one slot counter. No row means the slot was never used.
	queryLoadCounter = `
		SELECT counter
		FROM slot_counters
		WHERE partition_id = $1 AND slot = $2
	`

	// queryInsertCounter creates a slot's first counter row.
	// ON CONFLICT DO NOTHING makes a concurrent first writer visible as 0 rows affected.
	queryInsertCounter = `
		INSERT INTO slot_counters (partition_id, slot, counter)
		VALUES ($1, $2, $3)
		ON CONFLICT (partition_id, slot) DO NOTHING
	`

	// queryUpdateCounter is a compare-and-set on the previous counter value.
	// 0 rows affected means another writer moved the counter.
	queryUpdateCounter = `
		UPDATE slot_counters
		SET counter = $4, updated_at = NOW()
		WHERE partition_id = $1 AND slot = $2 AND counter = $3
	`

	queryLoadShard = `
		SELECT shard_id
		FROM partition_shards
		WHERE partition_id = $1
	`

	// queryInsertShard persists a partition's shard once. An existing row is kept.
	queryInsertShard = `
		INSERT INTO partition_shards (partition_id, shard_id)
		VALUES ($1, $2)
		ON CONFLICT (partition_id) DO NOTHING
	`

	// queryAllocateShard hands out the sequence value and advances it in one statement.
	// Row-level locking on the UPDATE serializes concurrent allocators across processes.
	queryAllocateShard = `
		UPDATE shard_sequence
		SET next_shard = next_shard + 1
		WHERE name = $1
		RETURNING next_shard - 1
	`

	queryLoadMeta = `
		SELECT value
		FROM store_meta
		WHERE key = $1
	`

	queryInsertMeta = `
		INSERT INTO store_meta (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO NOTHING
	`
)

// metaKeyScheme is the store_meta key holding the identity scheme marker.
const metaKeyScheme = "identity_scheme"

// requiredTables must exist before the adapter prepares statements.
var requiredTables = []string{"slot_counters", "partition_shards", "shard_sequence", "store_meta"}
