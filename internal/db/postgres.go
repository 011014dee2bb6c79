package db

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresBlobs keeps blobs in a kv_blobs table on Postgres.
type PostgresBlobs struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to dsn, pings it and ensures the blob table exists.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresBlobs, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}
	log.Println("[store] connected to Postgres")

	if err := ensureBlobTable(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &PostgresBlobs{pool: pool}, nil
}

// ensureBlobTable creates kv_blobs if missing
func ensureBlobTable(ctx context.Context, pool *pgxpool.Pool) error {
	var exists bool
	_ = pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = 'public' AND table_name = 'kv_blobs'
		)`).Scan(&exists)
	if exists {
		return nil
	}
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS kv_blobs (
			key TEXT PRIMARY KEY,
			value BYTEA NOT NULL,
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
		)`)
	if err != nil {
		return fmt.Errorf("failed to create kv_blobs: %w", err)
	}
	log.Printf("[store] kv_blobs table ensured")
	return nil
}

func (p *PostgresBlobs) Close() {
	p.pool.Close()
}

// Ping is used by the readiness probe.
func (p *PostgresBlobs) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *PostgresBlobs) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := p.pool.QueryRow(ctx, `SELECT value FROM kv_blobs WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBlobNotFound
		}
		return nil, err
	}
	return value, nil
}

func (p *PostgresBlobs) Set(ctx context.Context, key string, value []byte) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO kv_blobs (key, value, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		key, value,
	)
	return err
}

func (p *PostgresBlobs) Delete(ctx context.Context, key string) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM kv_blobs WHERE key = $1`, key)
	return err
}
