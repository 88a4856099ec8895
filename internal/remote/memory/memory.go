// Package memory is an in-process stand-in for the hosted backend, used in
// development and tests.
package memory

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"jard/internal/core"
	"jard/internal/remote"
)

type Store struct {
	mu            sync.Mutex
	cats          []core.CategoryEntry
	rows          map[string]core.RecordPayload
	notifications []core.Notification
	unavailable   bool
	now           func() time.Time
}

func New(cats []core.CategoryEntry) *Store {
	return &Store{
		cats: append([]core.CategoryEntry(nil), cats...),
		rows: make(map[string]core.RecordPayload),
		now:  time.Now,
	}
}

// NewFromFiles seeds categories from base/seed_categories.txt. Each line is
// "item|main|sub|order"; sub and order are optional. A default table is used
// when the file is missing or empty.
func NewFromFiles(base string) *Store {
	cats := readCategories(filepath.Join(base, "seed_categories.txt"))
	if len(cats) == 0 {
		cats = defaultCategories()
	}
	return New(cats)
}

// SetUnavailable makes every call fail with remote.ErrUnavailable, to
// simulate a lost connection.
func (s *Store) SetUnavailable(v bool) {
	s.mu.Lock()
	s.unavailable = v
	s.mu.Unlock()
}

// SetCategories replaces the category table.
func (s *Store) SetCategories(cats []core.CategoryEntry) {
	s.mu.Lock()
	s.cats = append([]core.CategoryEntry(nil), cats...)
	s.mu.Unlock()
}

func (s *Store) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.unavailable {
		return remote.ErrUnavailable
	}
	return nil
}

func (s *Store) Upsert(ctx context.Context, p core.RecordPayload) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return time.Time{}, err
	}
	ts := s.now().UTC()
	p.UpdatedAt = &ts
	p.PurchaseItems = copyItems(p.PurchaseItems)
	s.rows[p.InventoryDate.String()] = p
	return ts, nil
}

func (s *Store) Select(ctx context.Context, date core.Date) (core.RecordPayload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return core.RecordPayload{}, err
	}
	p, ok := s.rows[date.String()]
	if !ok {
		return core.RecordPayload{}, remote.ErrNotFound
	}
	p.PurchaseItems = copyItems(p.PurchaseItems)
	return p, nil
}

func (s *Store) SelectRange(ctx context.Context, from, to core.Date) ([]core.RecordPayload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	var out []core.RecordPayload
	for _, p := range s.sortedLocked() {
		if p.InventoryDate.Before(from) || p.InventoryDate.After(to) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *Store) List(ctx context.Context, limit int) ([]core.RecordPayload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	all := s.sortedLocked()
	out := make([]core.RecordPayload, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		out = append(out, all[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *Store) Delete(ctx context.Context, date core.Date) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return err
	}
	delete(s.rows, date.String())
	return nil
}

func (s *Store) SalesStats(ctx context.Context) (remote.SalesStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return remote.SalesStats{}, err
	}
	stats := remote.SalesStats{Total: decimal.Zero}
	for _, p := range s.rows {
		stats.Days++
		stats.Total = stats.Total.Add(p.TotalSales.Decimal())
		if p.InventoryDate.After(stats.Latest) {
			stats.Latest = p.InventoryDate
		}
	}
	return stats, nil
}

func (s *Store) Ping(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.check(ctx)
}

func (s *Store) FetchCategories(ctx context.Context) ([]core.CategoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	out := make([]core.CategoryEntry, 0, len(s.cats))
	for _, c := range s.cats {
		if c.Active {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Store) InsertNotification(ctx context.Context, n core.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return err
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.now().UTC()
	}
	s.notifications = append(s.notifications, n)
	return nil
}

func (s *Store) HasNotificationSince(ctx context.Context, typ string, since time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return false, err
	}
	for _, n := range s.notifications {
		if n.Type == typ && !n.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) ListNotifications(ctx context.Context, limit int) ([]core.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	out := append([]core.Notification(nil), s.notifications...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) MarkAllRead(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return 0, err
	}
	n := 0
	for i := range s.notifications {
		if !s.notifications[i].Read {
			s.notifications[i].Read = true
			n++
		}
	}
	return n, nil
}

func (s *Store) Close() error { return nil }

var _ remote.Backend = (*Store)(nil)

func (s *Store) sortedLocked() []core.RecordPayload {
	out := make([]core.RecordPayload, 0, len(s.rows))
	for _, p := range s.rows {
		p.PurchaseItems = copyItems(p.PurchaseItems)
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InventoryDate.Before(out[j].InventoryDate) })
	return out
}

func copyItems(in map[string]core.Amount) map[string]core.Amount {
	out := make(map[string]core.Amount, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func readCategories(path string) []core.CategoryEntry {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []core.CategoryEntry
	seen := map[string]struct{}{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, "|")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		if len(parts) < 2 || parts[0] == "" {
			continue
		}
		main, ok := core.ParseMainCategory(parts[1])
		if !ok {
			continue
		}
		if _, dup := seen[parts[0]]; dup {
			continue
		}
		seen[parts[0]] = struct{}{}
		e := core.CategoryEntry{ItemName: parts[0], MainCategory: main, Active: true}
		if len(parts) > 2 {
			e.SubCategory = core.CanonicalSubCategory(parts[2])
		}
		if len(parts) > 3 {
			e.DisplayOrder, _ = strconv.Atoi(parts[3])
		}
		out = append(out, e)
	}
	return out
}

func defaultCategories() []core.CategoryEntry {
	return []core.CategoryEntry{
		{ItemName: "دجاج", MainCategory: core.MainPurchases, DisplayOrder: 1, Active: true},
		{ItemName: "خضار", MainCategory: core.MainPurchases, DisplayOrder: 2, Active: true},
		{ItemName: "خبز", MainCategory: core.MainPurchases, DisplayOrder: 3, Active: true},
		{ItemName: "إتلاف طعام", MainCategory: core.MainExpenses, SubCategory: core.SubDamage, DisplayOrder: 1, Active: true},
		{ItemName: "ضيافة زبائن", MainCategory: core.MainExpenses, SubCategory: core.SubHospitality, DisplayOrder: 1, Active: true},
		{ItemName: "وجبات الموظفين", MainCategory: core.MainExpenses, SubCategory: core.SubPayroll, DisplayOrder: 1, Active: true},
		{ItemName: "رواتب", MainCategory: core.MainExpenses, SubCategory: core.SubPayroll, DisplayOrder: 2, Active: true},
		{ItemName: "أدوات مطبخ", MainCategory: core.MainExpenses, SubCategory: core.SubAssetsTools, DisplayOrder: 1, Active: true},
	}
}
