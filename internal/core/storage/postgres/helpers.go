package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/aevon-lab/project-idmint/internal/core/storage"
)

// counterArg converts a counter to the BIGINT column type.
// Counters never exceed 48 bits, so the conversion is lossless.
func counterArg(v uint64) int64 {
	return int64(v)
}

// casResult maps an UPDATE/INSERT result to storage.ErrConflict when nothing changed.
func casResult(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected for %s: %w", op, err)
	}
	if n == 0 {
		return storage.ErrConflict
	}
	return nil
}

// scanOptionalInt64 scans a single int64 column, reporting absence instead of sql.ErrNoRows.
func scanOptionalInt64(row *sql.Row) (int64, bool, error) {
	var v int64
	if err := row.Scan(&v); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return v, true, nil
}
