package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smartdine/smartdine/internal/platform/db"
)

// PostgresStore keeps the same key-value snapshot semantics in a single
// key -> jsonb table. Every Save is a full-replace upsert, so the write
// model matches the Redis store exactly.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore opens a pool, verifies the connection and ensures the
// snapshot table exists.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := db.New(ctx, dsn)
	if err != nil {
		return nil, err
	}

	const ddl = `CREATE TABLE IF NOT EXISTS ledger_snapshots (
		key        text PRIMARY KEY,
		value      jsonb NOT NULL,
		updated_at timestamptz NOT NULL DEFAULT now()
	)`
	if _, err := pool.Exec(ctx, ddl); err != nil {
		pool.Close()
		return nil, fmt.Errorf("platform/kv: ensure table: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Save(ctx context.Context, key string, data []byte) error {
	const query = `INSERT INTO ledger_snapshots (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`
	if _, err := s.pool.Exec(ctx, query, key, data); err != nil {
		return fmt.Errorf("platform/kv: upsert %s: %w", key, err)
	}
	return nil
}

// SaveAll writes a set of snapshots in one transaction, so readers never
// observe a half-written ledger.
func (s *PostgresStore) SaveAll(ctx context.Context, snapshots map[string][]byte) error {
	const query = `INSERT INTO ledger_snapshots (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`
	return db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		for key, data := range snapshots {
			if _, err := tx.Exec(ctx, query, key, data); err != nil {
				return fmt.Errorf("platform/kv: upsert %s: %w", key, err)
			}
		}
		return nil
	})
}

func (s *PostgresStore) Load(ctx context.Context, key string) ([]byte, error) {
	const query = `SELECT value FROM ledger_snapshots WHERE key = $1`
	var data []byte
	if err := s.pool.QueryRow(ctx, query, key).Scan(&data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("platform/kv: select %s: %w", key, err)
	}
	return data, nil
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	const query = `DELETE FROM ledger_snapshots WHERE key = $1`
	if _, err := s.pool.Exec(ctx, query, key); err != nil {
		return fmt.Errorf("platform/kv: delete %s: %w", key, err)
	}
	return nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}
