package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"jard/internal/core"
)

// Records stores daily inventory records in a Cache under inventory_<date>.
type Records struct {
	cache Cache
}

func NewRecords(cache Cache) *Records {
	return &Records{cache: cache}
}

// Get returns the cached record for date, or ErrNotFound.
func (r *Records) Get(ctx context.Context, date core.Date) (core.DailyInventoryRecord, error) {
	raw, err := r.cache.Get(ctx, RecordKey(date.String()))
	if err != nil {
		return core.DailyInventoryRecord{}, err
	}
	return decodeRecord(raw, date)
}

func decodeRecord(raw []byte, date core.Date) (core.DailyInventoryRecord, error) {
	var cached core.CachedRecord
	if err := json.Unmarshal(raw, &cached); err != nil {
		return core.DailyInventoryRecord{}, fmt.Errorf("decode cached record %s: %w", date, err)
	}
	rec := cached.Record()
	if rec.Date.IsZero() {
		rec.Date = date
	}
	return rec, nil
}

// Put writes rec, replacing any previous copy for the same date.
func (r *Records) Put(ctx context.Context, rec core.DailyInventoryRecord) error {
	raw, err := json.Marshal(rec.Cached())
	if err != nil {
		return fmt.Errorf("encode record %s: %w", rec.Date, err)
	}
	return r.cache.Set(ctx, RecordKey(rec.Date.String()), raw)
}

// ErrConflict is returned by Update when the record kept changing under it.
var ErrConflict = errors.New("record changed concurrently")

const updateAttempts = 5

// Update applies fn to the stored record for date and writes the result only
// if nobody replaced the record in between. When fn returns false nothing is
// written and the current record is returned as is. A missing record yields
// ErrNotFound.
func (r *Records) Update(ctx context.Context, date core.Date, fn func(current core.DailyInventoryRecord) (core.DailyInventoryRecord, bool)) (core.DailyInventoryRecord, error) {
	key := RecordKey(date.String())
	for i := 0; i < updateAttempts; i++ {
		raw, err := r.cache.Get(ctx, key)
		if err != nil {
			return core.DailyInventoryRecord{}, err
		}
		current, err := decodeRecord(raw, date)
		if err != nil {
			return core.DailyInventoryRecord{}, err
		}
		next, ok := fn(current)
		if !ok {
			return current, nil
		}
		encoded, err := json.Marshal(next.Cached())
		if err != nil {
			return core.DailyInventoryRecord{}, fmt.Errorf("encode record %s: %w", date, err)
		}
		swapped, err := r.cache.CompareAndSet(ctx, key, raw, encoded)
		if err != nil {
			return core.DailyInventoryRecord{}, err
		}
		if swapped {
			return next, nil
		}
	}
	return core.DailyInventoryRecord{}, fmt.Errorf("update %s: %w", date, ErrConflict)
}

func (r *Records) Remove(ctx context.Context, date core.Date) error {
	return r.cache.Remove(ctx, RecordKey(date.String()))
}

// List returns every cached record, newest first. Entries that fail to decode
// are skipped.
func (r *Records) List(ctx context.Context) ([]core.DailyInventoryRecord, error) {
	keys, err := r.cache.Keys(ctx, RecordKeyPrefix)
	if err != nil {
		return nil, err
	}
	out := make([]core.DailyInventoryRecord, 0, len(keys))
	for _, k := range keys {
		date, err := core.ParseDate(strings.TrimPrefix(k, RecordKeyPrefix))
		if err != nil {
			slog.WarnContext(ctx, "Skipping malformed cache key", "key", k)
			continue
		}
		rec, err := r.Get(ctx, date)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			slog.WarnContext(ctx, "Skipping unreadable cached record", "key", k, "error", err)
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

// Pending returns up to limit records that still need a remote write,
// oldest first. A limit <= 0 means no limit.
func (r *Records) Pending(ctx context.Context, limit int) ([]core.DailyInventoryRecord, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	var pending []core.DailyInventoryRecord
	for i := len(all) - 1; i >= 0; i-- {
		if all[i].IsPending() {
			pending = append(pending, all[i])
			if limit > 0 && len(pending) == limit {
				break
			}
		}
	}
	return pending, nil
}

// SaveCategories keeps a copy of the category table for offline start-up.
func (r *Records) SaveCategories(ctx context.Context, entries []core.CategoryEntry) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode categories: %w", err)
	}
	return r.cache.Set(ctx, CategoriesKey, raw)
}

// LoadCategories returns the last saved category table or ErrNotFound.
func (r *Records) LoadCategories(ctx context.Context) ([]core.CategoryEntry, error) {
	raw, err := r.cache.Get(ctx, CategoriesKey)
	if err != nil {
		return nil, err
	}
	var entries []core.CategoryEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	return entries, nil
}
