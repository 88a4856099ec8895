package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"jard/internal/core"
	"jard/internal/remote"
	"jard/internal/storage"
)

// SyncPublisher announces dates that still need a remote write.
type SyncPublisher interface {
	PublishInventorySync(ctx context.Context, date core.Date, savedAt time.Time) error
}

// SaveInput is one submitted day of the inventory form.
type SaveInput struct {
	Date      core.Date
	Sales     decimal.Decimal
	Entries   []core.LineEntry
	Notes     string
	CreatedBy string
}

// Preview is the live total shown while the form is being filled in.
type Preview struct {
	Totals     core.DailyTotals `json:"totals"`
	TotalSales decimal.Decimal  `json:"total_sales"`
	ItemsTotal decimal.Decimal  `json:"items_total"`
}

// SyncResult reports one pass over pending records.
type SyncResult struct {
	Attempted int `json:"attempted"`
	Synced    int `json:"synced"`
	Failed    int `json:"failed"`
}

// SyncStatus summarises the coordinator state for the UI indicator.
type SyncStatus struct {
	Online          bool     `json:"online"`
	Pending         int      `json:"pending"`
	PendingDates    []string `json:"pending_dates"`
	RegistryVersion uint64   `json:"registry_version"`
	Categories      int      `json:"categories"`
}

// SalesAverage is the mean daily sales over every stored day.
type SalesAverage struct {
	Average decimal.Decimal `json:"average"`
	Total   decimal.Decimal `json:"total"`
	Days    int             `json:"days"`
	Latest  core.Date       `json:"latest"`
}

type InventoryConfig struct {
	// RemoteTimeout bounds every call to the hosted store. Expiry counts as
	// a remote failure.
	RemoteTimeout time.Duration
	Publisher     SyncPublisher
}

// InventoryService is the offline-first persistence coordinator. Every save
// lands in the local cache first; the hosted store is written only when the
// connectivity flag is set, and pending records are retried later.
type InventoryService struct {
	local      *storage.Records
	store      remote.RecordStore
	categories remote.CategorySource
	conn       *Connectivity
	registry   *core.Registry
	agg        *core.Aggregator
	publisher  SyncPublisher
	timeout    time.Duration
	inflight   singleflight.Group
	now        func() time.Time
	onChange   []func()
}

func NewInventoryService(
	local *storage.Records,
	store remote.RecordStore,
	categories remote.CategorySource,
	conn *Connectivity,
	config InventoryConfig,
) *InventoryService {
	if config.RemoteTimeout <= 0 {
		config.RemoteTimeout = 15 * time.Second
	}
	registry := core.NewRegistry(nil)
	s := &InventoryService{
		local:      local,
		store:      store,
		categories: categories,
		conn:       conn,
		registry:   registry,
		publisher:  config.Publisher,
		timeout:    config.RemoteTimeout,
		now:        time.Now,
	}
	s.agg = core.NewAggregator(registry, func(item string) {
		slog.Debug("Unknown item classified as purchase", "component", "inventory", "item_name", item)
	})
	return s
}

func (s *InventoryService) Registry() *core.Registry     { return s.registry }
func (s *InventoryService) Aggregator() *core.Aggregator { return s.agg }
func (s *InventoryService) Connectivity() *Connectivity  { return s.conn }

// OnRecordsChanged registers fn to run after any save, sync, load or delete
// that changes stored data.
func (s *InventoryService) OnRecordsChanged(fn func()) {
	s.onChange = append(s.onChange, fn)
}

func (s *InventoryService) changed() {
	for _, fn := range s.onChange {
		fn()
	}
}

// RefreshCategories reloads the registry from the category source. When the
// source is unreachable the last locally saved table is used instead.
func (s *InventoryService) RefreshCategories(ctx context.Context) (int, error) {
	var (
		entries []core.CategoryEntry
		err     error
	)
	if s.conn.Online() {
		rctx, cancel := context.WithTimeout(ctx, s.timeout)
		entries, err = s.categories.FetchCategories(rctx)
		cancel()
	} else {
		err = ErrOffline
	}

	if err == nil {
		s.registry.Load(entries)
		if serr := s.local.SaveCategories(ctx, entries); serr != nil {
			slog.WarnContext(ctx, "Failed to cache categories locally", "error", serr)
		}
		s.changed()
		slog.InfoContext(ctx, "Categories loaded", "component", "inventory",
			"count", s.registry.Len(), "version", s.registry.Version())
		return s.registry.Len(), nil
	}

	cached, lerr := s.local.LoadCategories(ctx)
	if lerr != nil {
		if errors.Is(err, ErrOffline) {
			return 0, err
		}
		return 0, fmt.Errorf("%w: fetch categories: %v", ErrRemoteSync, err)
	}
	s.registry.Load(cached)
	s.changed()
	slog.WarnContext(ctx, "Using locally cached categories", "component", "inventory",
		"count", s.registry.Len(), "error", err)
	return s.registry.Len(), nil
}

// Preview computes live totals from raw form text. It never fails; bad
// amounts count as zero.
func (s *InventoryService) Preview(sales string, items map[string]string) Preview {
	entries := make([]core.LineEntry, 0, len(items))
	for name, raw := range items {
		entries = append(entries, core.LineEntry{ItemName: name, Amount: core.AmountOrZero(raw)})
	}
	salesAmount := core.AmountOrZero(sales)
	return Preview{
		Totals:     s.agg.Aggregate(salesAmount, entries),
		TotalSales: salesAmount,
		ItemsTotal: core.ItemsTotal(entries),
	}
}

// Build derives the record that a save of in would store.
func (s *InventoryService) Build(in SaveInput) core.DailyInventoryRecord {
	return core.DailyInventoryRecord{
		Date:        in.Date,
		TotalSales:  in.Sales,
		LineEntries: core.PurchaseItems(in.Entries),
		Totals:      s.agg.Aggregate(in.Sales, in.Entries),
		Notes:       in.Notes,
		CreatedBy:   in.CreatedBy,
		SyncState:   core.SyncLocalPending,
		SavedAt:     s.now().UTC(),
	}
}

// Save writes the record locally and, when online, attempts one remote
// upsert. Only a local write failure is returned; remote failures leave the
// record pending.
func (s *InventoryService) Save(ctx context.Context, in SaveInput) (core.DailyInventoryRecord, error) {
	if err := in.Date.Validate(); err != nil {
		return core.DailyInventoryRecord{}, err
	}
	rec := s.Build(in)
	if prev, err := s.local.Get(ctx, in.Date); err == nil {
		rec.SyncedAt = prev.SyncedAt
		rec.UpdatedAt = prev.UpdatedAt
	}
	if err := s.local.Put(ctx, rec); err != nil {
		return core.DailyInventoryRecord{}, fmt.Errorf("%w: %v", ErrLocalWrite, err)
	}
	s.changed()

	if s.conn.Online() {
		synced, err := s.syncRecord(ctx, rec)
		if err == nil {
			return synced, nil
		}
	}

	s.publishPending(ctx, rec)
	slog.InfoContext(ctx, "Inventory record saved locally", "component", "inventory",
		"inventory_date", rec.Date.String(), "sync_state", string(rec.SyncState))
	return rec, nil
}

// syncRecord upserts rec remotely. Concurrent calls for the same date share
// one in-flight write.
func (s *InventoryService) syncRecord(ctx context.Context, rec core.DailyInventoryRecord) (core.DailyInventoryRecord, error) {
	key := rec.Date.String()
	var (
		v      any
		err    error
		shared bool
	)
	// A call that joined an in-flight upsert of an older copy runs once more
	// so its own edit reaches the remote.
	for attempt := 0; attempt < 2; attempt++ {
		v, err, shared = s.inflight.Do(key, func() (any, error) {
			return s.upsert(ctx, rec)
		})
		if err != nil {
			return rec, err
		}
		if !shared || !v.(core.DailyInventoryRecord).SavedAt.Before(rec.SavedAt) {
			break
		}
	}
	return v.(core.DailyInventoryRecord), nil
}

// upsert pushes the freshest local copy of rec's date. The Syncing state is
// never persisted: only settle writes, and only onto the copy it pushed.
func (s *InventoryService) upsert(ctx context.Context, rec core.DailyInventoryRecord) (core.DailyInventoryRecord, error) {
	current, err := s.local.Get(ctx, rec.Date)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return rec, fmt.Errorf("%w: %s", ErrNotFound, rec.Date)
	case err != nil:
		return rec, fmt.Errorf("read local record %s: %w", rec.Date, err)
	}
	if !current.SavedAt.Before(rec.SavedAt) {
		rec = current
	}
	if !rec.IsPending() {
		return rec, nil
	}

	rctx, cancel := context.WithTimeout(ctx, s.timeout)
	updatedAt, err := s.store.Upsert(rctx, rec.Payload())
	cancel()
	if err != nil {
		s.settle(ctx, rec, core.SyncLocalPending, time.Time{})
		slog.WarnContext(ctx, "Remote sync failed, record stays pending", "component", "inventory",
			"inventory_date", rec.Date.String(), "error", err)
		return rec, fmt.Errorf("%w: %s: %v", ErrRemoteSync, rec.Date, err)
	}

	synced := s.settle(ctx, rec, core.SyncSynced, updatedAt)
	slog.InfoContext(ctx, "Inventory record synced", "component", "inventory",
		"inventory_date", rec.Date.String(), "sync_state", string(synced.SyncState))
	return synced, nil
}

// settle applies state to the stored record only while it is still the copy
// that was pushed. A newer save, or a removed record, is left untouched.
func (s *InventoryService) settle(ctx context.Context, rec core.DailyInventoryRecord, state core.SyncState, updatedAt time.Time) core.DailyInventoryRecord {
	out, err := s.local.Update(ctx, rec.Date, func(current core.DailyInventoryRecord) (core.DailyInventoryRecord, bool) {
		if !current.SavedAt.Equal(rec.SavedAt) {
			return current, false
		}
		current.SyncState = state
		if state == core.SyncSynced {
			current.SyncedAt = s.now().UTC()
			current.UpdatedAt = updatedAt
		}
		return current, true
	})
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			slog.WarnContext(ctx, "Failed to record sync state", "inventory_date", rec.Date.String(),
				"sync_state", string(state), "error", err)
		}
		return rec
	}
	s.changed()
	return out
}

func (s *InventoryService) publishPending(ctx context.Context, rec core.DailyInventoryRecord) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishInventorySync(ctx, rec.Date, rec.SavedAt); err != nil {
		slog.WarnContext(ctx, "Failed to publish sync message",
			"inventory_date", rec.Date.String(), "error", err)
	}
}

// SyncDate retries the remote write for one date. Records that are not
// pending are returned unchanged.
func (s *InventoryService) SyncDate(ctx context.Context, date core.Date) (core.DailyInventoryRecord, error) {
	rec, err := s.local.Get(ctx, date)
	if errors.Is(err, storage.ErrNotFound) {
		return core.DailyInventoryRecord{}, ErrNotFound
	}
	if err != nil {
		return core.DailyInventoryRecord{}, err
	}
	if !rec.IsPending() {
		return rec, nil
	}
	if !s.conn.Online() {
		return rec, ErrOffline
	}
	return s.syncRecord(ctx, rec)
}

// SyncPending retries up to limit pending records, oldest first. It is a
// no-op while offline.
func (s *InventoryService) SyncPending(ctx context.Context, limit int) (SyncResult, error) {
	var res SyncResult
	if !s.conn.Online() {
		return res, nil
	}
	pending, err := s.local.Pending(ctx, limit)
	if err != nil {
		return res, fmt.Errorf("list pending records: %w", err)
	}
	for _, rec := range pending {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		res.Attempted++
		if _, err := s.syncRecord(ctx, rec); err != nil {
			res.Failed++
			continue
		}
		res.Synced++
	}
	if res.Attempted > 0 {
		slog.InfoContext(ctx, "Pending records scanned", "component", "inventory",
			"attempted", res.Attempted, "synced", res.Synced, "failed", res.Failed)
	}
	return res, nil
}

// Load returns the record for date. A pending local copy wins over the
// remote row; otherwise the remote row refreshes the local cache.
func (s *InventoryService) Load(ctx context.Context, date core.Date) (core.DailyInventoryRecord, error) {
	local, lerr := s.local.Get(ctx, date)
	if lerr != nil && !errors.Is(lerr, storage.ErrNotFound) {
		slog.WarnContext(ctx, "Failed to read local record", "inventory_date", date.String(), "error", lerr)
	}
	haveLocal := lerr == nil
	if haveLocal && local.IsPending() {
		return local, nil
	}
	if !s.conn.Online() {
		if haveLocal {
			return local, nil
		}
		return core.DailyInventoryRecord{}, ErrNotFound
	}

	rctx, cancel := context.WithTimeout(ctx, s.timeout)
	payload, err := s.store.Select(rctx, date)
	cancel()
	switch {
	case errors.Is(err, remote.ErrNotFound):
		if haveLocal {
			if rerr := s.local.Remove(ctx, date); rerr != nil {
				slog.WarnContext(ctx, "Failed to drop stale local record", "inventory_date", date.String(), "error", rerr)
			}
		}
		return core.DailyInventoryRecord{}, ErrNotFound
	case err != nil:
		if haveLocal {
			return local, nil
		}
		return core.DailyInventoryRecord{}, fmt.Errorf("%w: select %s: %v", ErrRemoteSync, date, err)
	}

	rec := payload.Record()
	if rec.Date.IsZero() {
		rec.Date = date
	}
	now := s.now().UTC()
	rec.SyncState = core.SyncSynced
	rec.SavedAt = now
	rec.SyncedAt = now
	if err := s.local.Put(ctx, rec); err != nil {
		slog.WarnContext(ctx, "Failed to cache remote record", "inventory_date", date.String(), "error", err)
	}
	return rec, nil
}

// Delete removes the remote row, then the local copy. It needs the hosted
// store, so it fails with ErrOffline while offline.
func (s *InventoryService) Delete(ctx context.Context, date core.Date) error {
	if !s.conn.Online() {
		return ErrOffline
	}
	rctx, cancel := context.WithTimeout(ctx, s.timeout)
	err := s.store.Delete(rctx, date)
	cancel()
	if err != nil {
		return fmt.Errorf("%w: delete %s: %v", ErrRemoteSync, date, err)
	}
	if err := s.local.Remove(ctx, date); err != nil && !errors.Is(err, storage.ErrNotFound) {
		slog.WarnContext(ctx, "Failed to remove local record", "inventory_date", date.String(), "error", err)
	}
	s.changed()
	slog.InfoContext(ctx, "Inventory record deleted", "component", "inventory", "inventory_date", date.String())
	return nil
}

// History returns the most recent records, newest first, with totals
// re-derived from their line entries. Pending local edits replace the
// remote copy of the same date.
func (s *InventoryService) History(ctx context.Context, limit int) ([]core.DailyInventoryRecord, error) {
	if limit <= 0 {
		limit = 30
	}
	var (
		rows     []core.RecordPayload
		remoteOK bool
	)
	if s.conn.Online() {
		rctx, cancel := context.WithTimeout(ctx, s.timeout)
		var err error
		rows, err = s.store.List(rctx, limit)
		cancel()
		if err != nil {
			slog.WarnContext(ctx, "Falling back to local history", "component", "inventory", "error", err)
		} else {
			remoteOK = true
		}
	}

	out, err := s.merge(ctx, rows, remoteOK, func(core.Date) bool { return true })
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i] = s.agg.Rederive(out[i])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Range returns every record in [from, to] ascending. Stored totals are
// left as they are; reports re-derive them.
func (s *InventoryService) Range(ctx context.Context, from, to core.Date) ([]core.DailyInventoryRecord, error) {
	var (
		rows     []core.RecordPayload
		remoteOK bool
	)
	if s.conn.Online() {
		rctx, cancel := context.WithTimeout(ctx, s.timeout)
		var err error
		rows, err = s.store.SelectRange(rctx, from, to)
		cancel()
		if err != nil {
			slog.WarnContext(ctx, "Falling back to local range", "component", "inventory",
				"from", from.String(), "to", to.String(), "error", err)
		} else {
			remoteOK = true
		}
	}

	out, err := s.merge(ctx, rows, remoteOK, func(d core.Date) bool {
		return !d.Before(from) && !d.After(to)
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// merge combines remote rows with the local cache. Pending local records
// always win. Synced local copies are only used when the remote rows could
// not be read; otherwise a synced copy missing remotely was deleted
// elsewhere and is ignored.
func (s *InventoryService) merge(ctx context.Context, rows []core.RecordPayload, remoteOK bool, keep func(core.Date) bool) ([]core.DailyInventoryRecord, error) {
	byDate := make(map[string]core.DailyInventoryRecord, len(rows))
	for _, p := range rows {
		rec := p.Record()
		rec.SyncState = core.SyncSynced
		byDate[rec.Date.String()] = rec
	}

	locals, err := s.local.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list local records: %w", err)
	}
	for _, rec := range locals {
		if !keep(rec.Date) {
			continue
		}
		if rec.IsPending() || !remoteOK {
			byDate[rec.Date.String()] = rec
		}
	}

	out := make([]core.DailyInventoryRecord, 0, len(byDate))
	for _, rec := range byDate {
		out = append(out, rec)
	}
	return out, nil
}

// AverageSales returns mean sales per stored day.
func (s *InventoryService) AverageSales(ctx context.Context) (SalesAverage, error) {
	if !s.conn.Online() {
		return SalesAverage{}, ErrOffline
	}
	rctx, cancel := context.WithTimeout(ctx, s.timeout)
	stats, err := s.store.SalesStats(rctx)
	cancel()
	if err != nil {
		return SalesAverage{}, fmt.Errorf("%w: sales stats: %v", ErrRemoteSync, err)
	}
	avg := SalesAverage{Average: decimal.Zero, Total: stats.Total, Days: stats.Days, Latest: stats.Latest}
	if stats.Days > 0 {
		avg.Average = stats.Total.Div(decimal.NewFromInt(int64(stats.Days))).Round(2)
	}
	return avg, nil
}

// Status reports the online flag and the dates still waiting for sync.
func (s *InventoryService) Status(ctx context.Context) (SyncStatus, error) {
	pending, err := s.local.Pending(ctx, 0)
	if err != nil {
		return SyncStatus{}, fmt.Errorf("list pending records: %w", err)
	}
	st := SyncStatus{
		Online:          s.conn.Online(),
		Pending:         len(pending),
		PendingDates:    make([]string, 0, len(pending)),
		RegistryVersion: s.registry.Version(),
		Categories:      s.registry.Len(),
	}
	for _, rec := range pending {
		st.PendingDates = append(st.PendingDates, rec.Date.String())
	}
	return st, nil
}
