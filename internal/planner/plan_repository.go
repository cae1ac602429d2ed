package planner

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// StateRepository is a database-backed RecordStore for plan state snapshots.
type StateRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewStateRepository creates a new StateRepository.
func NewStateRepository(d *sql.DB) *StateRepository {
	return &StateRepository{db: d, now: time.Now}
}

// Get returns the record stored under key, or nil if there is none.
func (r *StateRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var data string
	err := r.db.QueryRowContext(ctx, `SELECT data FROM plan_state WHERE key = ?`, key).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get plan state %s: %w", key, err)
	}
	return []byte(data), nil
}

// Put inserts or replaces the record stored under key.
func (r *StateRepository) Put(ctx context.Context, key string, data []byte) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO plan_state (key, data, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		key, string(data), r.now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to save plan state %s: %w", key, err)
	}
	return nil
}
