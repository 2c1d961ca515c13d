package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"rocketcart/internal/types"

	"github.com/lib/pq"
)

const DefaultTable = "cart_slots"

// KV keeps slots as rows of a (key, value, updated_at) table, written with an upsert.
type KV struct {
	db    *sql.DB
	table string
}

// NewKV wraps db and creates the slot table if it does not exist.
func NewKV(ctx context.Context, db *sql.DB, table string) (*KV, error) {
	if table == "" {
		table = DefaultTable
	}
	s := &KV{db: db, table: pq.QuoteIdentifier(table)}
	if _, err := db.ExecContext(ctx, s.createTableSQL()); err != nil {
		return nil, types.Err(types.ErrDataStoreAccess, err, "create table %s", table)
	}
	return s, nil
}

func (s *KV) createTableSQL() string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (key TEXT PRIMARY KEY, value TEXT NOT NULL, updated_at TIMESTAMPTZ NOT NULL DEFAULT now())`, s.table)
}

func (s *KV) Get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT value FROM %s WHERE key = $1`, s.table), key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, types.Err(types.ErrDataStoreAccess, err, "select %s", key)
	}
	return v, true, nil
}

func (s *KV) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (key, value, updated_at) VALUES ($1, $2, now()) ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`, s.table),
		key, value)
	if err != nil {
		return types.Err(types.ErrDataStoreAccess, err, "upsert %s", key)
	}
	return nil
}

// Delete removes the slot. Used in tests only.
func (s *KV) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE key = $1`, s.table), key)
	return err
}
