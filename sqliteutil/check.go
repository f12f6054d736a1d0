// Package sqliteutil provides a bounded integrity check for SQLite inputs.
// Historian exports arrive over USB sticks and network shares and are
// occasionally truncated; checking up front turns a confusing mid-scan error
// into a clear one before any samples are read.
package sqliteutil

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver (pure Go)
)

// Check opens the database read-only and runs a quick_check bounded by
// timeout. Input files are never renamed or repaired; a bad export stays
// where the operator put it.
func Check(path string, timeout time.Duration) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("sqliteutil: empty path")
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return fmt.Errorf("sqliteutil: open: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	if err := quickCheck(ctx, db); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("sqliteutil: quick_check timed out after %s", timeout)
		}
		return fmt.Errorf("sqliteutil: %w", err)
	}
	return nil
}

func quickCheck(ctx context.Context, db *sql.DB) error {
	rows, err := db.QueryContext(ctx, "pragma quick_check")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		if scanErr := rows.Scan(&status); scanErr != nil {
			return scanErr
		}
		if strings.TrimSpace(status) != "ok" {
			return fmt.Errorf("quick_check reported %q", status)
		}
	}
	return rows.Err()
}
