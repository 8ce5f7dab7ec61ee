package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq"
)

// PostgresStore persists each collection as one jsonb row. The schema
// is a single table:
//
//	CREATE TABLE IF NOT EXISTS collections (
//	    name TEXT PRIMARY KEY,
//	    data JSONB NOT NULL,
//	    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
//	)
//
// which NewPostgresStore creates on first connect.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens the database and ensures the schema exists.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS collections (
		name TEXT PRIMARY KEY,
		data JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// Get returns the collection's records, or an empty list when the
// collection has never been written.
func (s *PostgresStore) Get(ctx context.Context, collection Collection) ([]json.RawMessage, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM collections WHERE name = $1`, string(collection)).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read collection %s: %w", collection, err)
	}

	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("corrupt collection %s: %w", collection, err)
	}
	return records, nil
}

// Put replaces the collection's records with an upsert.
func (s *PostgresStore) Put(ctx context.Context, collection Collection, records []json.RawMessage) error {
	if records == nil {
		records = []json.RawMessage{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode collection %s: %w", collection, err)
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO collections (name, data, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
		string(collection), data)
	if err != nil {
		return fmt.Errorf("failed to write collection %s: %w", collection, err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
