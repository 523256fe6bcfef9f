package repo

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLite stores each collection as one row in a key-value table.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(dbPath string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	r := &SQLite{db: db}
	if err := r.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return r, nil
}

func (r *SQLite) initSchema() error {
	query := `CREATE TABLE IF NOT EXISTS collections (
		name TEXT PRIMARY KEY,
		value BLOB,
		updated_at DATETIME
	);`
	if _, err := r.db.Exec(query); err != nil {
		return fmt.Errorf("failed to init schema: %w", err)
	}
	return nil
}

func (r *SQLite) Get(ctx context.Context, collection string) ([]byte, error) {
	query := `SELECT value FROM collections WHERE name = ?`
	row := r.db.QueryRowContext(ctx, query, collection)

	var value []byte
	if err := row.Scan(&value); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read collection %s: %w", collection, err)
	}
	return value, nil
}

func (r *SQLite) Set(ctx context.Context, collection string, data []byte) error {
	query := `INSERT INTO collections (name, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	if _, err := r.db.ExecContext(ctx, query, collection, data, time.Now()); err != nil {
		return fmt.Errorf("failed to write collection %s: %w", collection, err)
	}
	return nil
}

func (r *SQLite) Delete(ctx context.Context, collection string) error {
	query := `DELETE FROM collections WHERE name = ?`
	if _, err := r.db.ExecContext(ctx, query, collection); err != nil {
		return fmt.Errorf("failed to delete collection %s: %w", collection, err)
	}
	return nil
}

func (r *SQLite) Close() error {
	return r.db.Close()
}
