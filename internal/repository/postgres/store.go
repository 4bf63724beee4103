package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Store implements repository.Store on a PostgreSQL kv_store table
type Store struct {
	db *sql.DB
}

// NewStore creates a new key-value store
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Get returns the value stored under key
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	query := `SELECT value FROM kv_store WHERE key = $1`
	err := s.db.QueryRowContext(ctx, query, key).Scan(&value)

	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get key %s: %w", key, err)
	}

	return value, true, nil
}

// Set stores value under key, replacing any previous value
func (s *Store) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`
	if _, err := s.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

// Remove deletes key. Removing a missing key is not an error.
func (s *Store) Remove(ctx context.Context, key string) error {
	query := `DELETE FROM kv_store WHERE key = $1`
	if _, err := s.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("failed to remove key %s: %w", key, err)
	}
	return nil
}

// RemoveMany deletes all keys in a single transaction
func (s *Store) RemoveMany(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `DELETE FROM kv_store WHERE key = $1`
	for _, key := range keys {
		if _, err := tx.ExecContext(ctx, query, key); err != nil {
			return fmt.Errorf("failed to remove key %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit key removal: %w", err)
	}
	return nil
}

// ListKeys returns every stored key in lexical order
func (s *Store) ListKeys(ctx context.Context) ([]string, error) {
	query := `SELECT key FROM kv_store ORDER BY key`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan key: %w", err)
		}
		keys = append(keys, key)
	}

	return keys, rows.Err()
}
