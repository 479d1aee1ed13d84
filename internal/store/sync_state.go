package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Keys used for import bookkeeping.
const (
	StateLastImportFile  = "last_import_file"
	StateLastImportCount = "last_import_count"
)

// GetSyncState retrieves a sync state entry by key
func (db *DB) GetSyncState(ctx context.Context, key string) (*SyncState, error) {
	var s SyncState
	var updatedAt string
	err := db.QueryRowContext(ctx, `
		SELECT key, value, updated_at FROM sync_state WHERE key = ?
	`, key).Scan(&s.Key, &s.Value, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrStateNotFound
	}
	if err != nil {
		return nil, err
	}

	s.UpdatedAt, err = time.Parse(time.DateTime, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing updated_at %q: %w", updatedAt, err)
	}
	return &s, nil
}

// SetSyncState sets a sync state value
func (db *DB) SetSyncState(ctx context.Context, key, value string) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO sync_state (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`, key, value)
	return err
}
