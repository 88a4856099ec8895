// Package storage implements the local durable cache that every save hits
// before the network is touched.
package storage

import (
	"context"
	"errors"
)

// RecordKeyPrefix prefixes the cache key of every daily record.
const RecordKeyPrefix = "inventory_"

// CategoriesKey holds the last category table fetched from the remote store.
const CategoriesKey = "categories"

var ErrNotFound = errors.New("not found")

// Cache is a small key-value store. Get returns ErrNotFound for missing keys.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
	// CompareAndSet replaces the value of key only while it still equals
	// old, and reports whether it did. A missing key never matches.
	CompareAndSet(ctx context.Context, key string, old, value []byte) (bool, error)
}

// RecordKey returns the cache key for the record of date (YYYY-MM-DD).
func RecordKey(date string) string {
	return RecordKeyPrefix + date
}
