package database

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// StateRepository is a string-keyed blob store backed by the app_state table
type StateRepository struct {
	db *sqlx.DB
}

// NewStateRepository creates a new repository instance
func NewStateRepository(db *sqlx.DB) *StateRepository {
	return &StateRepository{db: db}
}

// Get returns the payload stored under key, or nil when the key is absent
func (r *StateRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var payload string
	err := r.db.GetContext(ctx, &payload, r.db.Rebind("SELECT payload FROM app_state WHERE state_key = ?"), key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read state %q", key)
	}
	return []byte(payload), nil
}

// Set stores payload under key, replacing any previous value
func (r *StateRepository) Set(ctx context.Context, key string, payload []byte) error {
	query := r.db.Rebind(`
		INSERT INTO app_state (state_key, payload, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (state_key) DO UPDATE SET
			payload = excluded.payload,
			updated_at = CURRENT_TIMESTAMP
	`)
	if _, err := r.db.ExecContext(ctx, query, key, string(payload)); err != nil {
		return errors.Wrapf(err, "failed to write state %q", key)
	}
	return nil
}

// Remove deletes key; removing a missing key is not an error
func (r *StateRepository) Remove(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, r.db.Rebind("DELETE FROM app_state WHERE state_key = ?"), key); err != nil {
		return errors.Wrapf(err, "failed to remove state %q", key)
	}
	return nil
}
