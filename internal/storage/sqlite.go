package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLiteCache persists cache entries in a single SQLite table.
type SQLiteCache struct {
	db *sql.DB
}

func NewSQLiteCache(dbPath string) (*SQLiteCache, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer keeps SQLITE_BUSY out of concurrent saves.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteCache{db: db}, nil
}

func (c *SQLiteCache) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

func (c *SQLiteCache) Get(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := c.db.QueryRowContext(ctx, `SELECT value FROM local_cache WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return []byte(value), nil
}

func (c *SQLiteCache) Set(ctx context.Context, key string, value []byte) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO local_cache (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(value))
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (c *SQLiteCache) Remove(ctx context.Context, key string) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM local_cache WHERE key = ?`, key); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

// CompareAndSet is a single UPDATE, so it holds across processes sharing
// the database file.
func (c *SQLiteCache) CompareAndSet(ctx context.Context, key string, old, value []byte) (bool, error) {
	res, err := c.db.ExecContext(ctx, `
		UPDATE local_cache SET value = ?, updated_at = CURRENT_TIMESTAMP
		WHERE key = ? AND value = ?`,
		string(value), key, string(old))
	if err != nil {
		return false, fmt.Errorf("compare and set %s: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("compare and set %s: %w", key, err)
	}
	return n == 1, nil
}

// Keys returns every key starting with prefix, in ascending order.
func (c *SQLiteCache) Keys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT key FROM local_cache WHERE substr(key, 1, ?) = ? ORDER BY key`, len(prefix), prefix)
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate keys: %w", err)
	}
	return keys, nil
}

// Ping reports whether the database is reachable; used by readiness checks.
func (c *SQLiteCache) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}
