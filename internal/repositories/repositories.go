package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
)

var tableName = regexp.MustCompile(`^[a-z_]+$`)

// NextSequence atomically increments and returns the next sequence number for the given table.
//
// The counter lives in "<table>_sequence", a single-row table created by the migrations.
func NextSequence(ctx context.Context, db *sql.DB, table string) (int, error) {
	if !tableName.MatchString(table) {
		return 0, fmt.Errorf("invalid table name %q", table)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	sequenceTable := table + "_sequence"

	if _, err = tx.ExecContext(ctx, fmt.Sprintf("UPDATE %s SET value = value + 1 WHERE id = 1", sequenceTable)); err != nil {
		return 0, fmt.Errorf("failed to increment sequence: %w", err)
	}

	var sequence int
	if err = tx.QueryRowContext(ctx, fmt.Sprintf("SELECT value FROM %s WHERE id = 1", sequenceTable)).Scan(&sequence); err != nil {
		return 0, fmt.Errorf("failed to get sequence value: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit sequence transaction: %w", err)
	}

	return sequence, nil
}
