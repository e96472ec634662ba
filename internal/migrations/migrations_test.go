package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMigrationFiles_PairedUpAndDown(t *testing.T) {
	entries, err := fs.ReadDir(MigrationFiles, ".")
	require.NoError(t, err)

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		}
	}
	require.NotEmpty(t, ups)
	require.Equal(t, ups, downs)
}

func TestMigrationFiles_SeedShardSequence(t *testing.T) {
	b, err := fs.ReadFile(MigrationFiles, "000001_create_idmint_tables.up.sql")
	require.NoError(t, err)
	require.Contains(t, string(b), "('SHARDER', 0)")
	for _, table := range []string{"slot_counters", "partition_shards", "shard_sequence", "store_meta"} {
		require.Contains(t, string(b), "CREATE TABLE IF NOT EXISTS "+table)
	}
}
