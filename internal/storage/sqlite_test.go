package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func newTestSQLite(t *testing.T) *SQLiteCache {
	t.Helper()
	c, err := NewSQLiteCache(filepath.Join(t.TempDir(), "nested", "cache.db"))
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestCaches(t *testing.T) {
	impls := map[string]func(t *testing.T) Cache{
		"sqlite": func(t *testing.T) Cache { return newTestSQLite(t) },
		"memory": func(t *testing.T) Cache { return NewMemoryCache() },
	}
	for name, mk := range impls {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			c := mk(t)

			if _, err := c.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
			if err := c.Set(ctx, RecordKey("2025-01-02"), []byte(`{"a":1}`)); err != nil {
				t.Fatalf("set: %v", err)
			}
			if err := c.Set(ctx, RecordKey("2025-01-01"), []byte(`{}`)); err != nil {
				t.Fatalf("set: %v", err)
			}
			if err := c.Set(ctx, RecordKey("2025-01-02"), []byte(`{"a":2}`)); err != nil {
				t.Fatalf("overwrite: %v", err)
			}
			if err := c.Set(ctx, "other", []byte(`x`)); err != nil {
				t.Fatalf("set: %v", err)
			}

			got, err := c.Get(ctx, RecordKey("2025-01-02"))
			if err != nil || string(got) != `{"a":2}` {
				t.Fatalf("expected overwritten value, got %q err=%v", got, err)
			}

			keys, err := c.Keys(ctx, RecordKeyPrefix)
			if err != nil {
				t.Fatalf("keys: %v", err)
			}
			if len(keys) != 2 || keys[0] != "inventory_2025-01-01" || keys[1] != "inventory_2025-01-02" {
				t.Fatalf("unexpected keys %v", keys)
			}

			if err := c.Remove(ctx, RecordKey("2025-01-01")); err != nil {
				t.Fatalf("remove: %v", err)
			}
			if _, err := c.Get(ctx, RecordKey("2025-01-01")); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected removed key to be gone, got %v", err)
			}
			key := RecordKey("2025-01-02")
			if ok, err := c.CompareAndSet(ctx, key, []byte(`{"a":1}`), []byte(`{"a":3}`)); err != nil || ok {
				t.Fatalf("stale compare must not swap, ok=%v err=%v", ok, err)
			}
			if ok, err := c.CompareAndSet(ctx, key, []byte(`{"a":2}`), []byte(`{"a":3}`)); err != nil || !ok {
				t.Fatalf("expected swap, ok=%v err=%v", ok, err)
			}
			if got, _ := c.Get(ctx, key); string(got) != `{"a":3}` {
				t.Fatalf("expected swapped value, got %q", got)
			}
			if ok, err := c.CompareAndSet(ctx, RecordKey("2025-01-01"), []byte(`{}`), []byte(`x`)); err != nil || ok {
				t.Fatalf("missing key must not swap, ok=%v err=%v", ok, err)
			}

			// Removing a missing key is not an error.
			if err := c.Remove(ctx, "nope"); err != nil {
				t.Fatalf("remove missing: %v", err)
			}
		})
	}
}

func TestSQLiteCacheReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	c, err := NewSQLiteCache(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := c.Set(context.Background(), "k", []byte("v")); err != nil {
		t.Fatalf("set: %v", err)
	}
	c.Close()

	c, err = NewSQLiteCache(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer c.Close()
	got, err := c.Get(context.Background(), "k")
	if err != nil || string(got) != "v" {
		t.Fatalf("expected value to survive reopen, got %q err=%v", got, err)
	}
}
