package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Storage keys. activeSession is absent when no session is running.
const (
	KeyFocusLists    = "focusLists"
	KeyBlockLists    = "blockLists"
	KeyGarden        = "garden"
	KeyStats         = "stats"
	KeyActiveSession = "activeSession"
	KeySettings      = "settings"
)

// KVRepository is the durable key-value store backing the engine. Values are
// JSON documents. Transitions that read-modify-write multiple keys do so
// inside a single transaction, so the session write and its accrual writes
// commit atomically.
type KVRepository struct {
	db *sql.DB
}

func NewKVRepository(db *sql.DB) *KVRepository {
	return &KVRepository{db: db}
}

func (r *KVRepository) BeginTx(ctx context.Context) (*sql.Tx, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return tx, nil
}

func (r *KVRepository) Get(ctx context.Context, key string) (json.RawMessage, error) {
	row := r.db.QueryRowContext(ctx, `SELECT value FROM kv_store WHERE key = ?`, key)
	return scanValue(row, key)
}

func (r *KVRepository) GetTx(ctx context.Context, tx *sql.Tx, key string) (json.RawMessage, error) {
	row := tx.QueryRowContext(ctx, `SELECT value FROM kv_store WHERE key = ?`, key)
	return scanValue(row, key)
}

func (r *KVRepository) Set(ctx context.Context, key string, value interface{}) error {
	raw, now, err := encodeValue(key, value)
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, upsertQuery, key, raw, now); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (r *KVRepository) SetTx(ctx context.Context, tx *sql.Tx, key string, value interface{}) error {
	raw, now, err := encodeValue(key, value)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, upsertQuery, key, raw, now); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (r *KVRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM kv_store WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (r *KVRepository) DeleteTx(ctx context.Context, tx *sql.Tx, key string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM kv_store WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

const upsertQuery = `
	INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

func scanValue(row *sql.Row, key string) (json.RawMessage, error) {
	var raw string
	if err := row.Scan(&raw); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return json.RawMessage(raw), nil
}

func encodeValue(key string, value interface{}) (string, string, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return "", "", fmt.Errorf("marshal %s: %w", key, err)
	}
	return string(raw), time.Now().UTC().Format(time.RFC3339Nano), nil
}
