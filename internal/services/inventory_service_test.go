package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"jard/internal/core"
	"jard/internal/remote"
	"jard/internal/remote/memory"
	"jard/internal/storage"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testCategories() []core.CategoryEntry {
	return []core.CategoryEntry{
		{ItemName: "Chicken", MainCategory: core.MainPurchases, DisplayOrder: 1, Active: true},
		{ItemName: "Food waste", MainCategory: core.MainExpenses, SubCategory: core.SubDamage, Active: true},
		{ItemName: "Salary", MainCategory: core.MainExpenses, SubCategory: core.SubPayroll, Active: true},
		{ItemName: "Staff meals", MainCategory: core.MainExpenses, SubCategory: core.SubPayroll, Active: true},
		{ItemName: "Knives", MainCategory: core.MainExpenses, SubCategory: core.SubAssetsTools, Active: true},
	}
}

type recordingPublisher struct {
	mu    sync.Mutex
	dates []string
}

func (p *recordingPublisher) PublishInventorySync(_ context.Context, date core.Date, _ time.Time) error {
	p.mu.Lock()
	p.dates = append(p.dates, date.String())
	p.mu.Unlock()
	return nil
}

type testEnv struct {
	svc       *InventoryService
	remote    *memory.Store
	local     *storage.Records
	conn      *Connectivity
	publisher *recordingPublisher
}

func newTestEnv(t *testing.T, online bool) *testEnv {
	t.Helper()
	store := memory.New(testCategories())
	local := storage.NewRecords(storage.NewMemoryCache())
	conn := NewConnectivity(online)
	pub := &recordingPublisher{}
	svc := NewInventoryService(local, store, store, conn, InventoryConfig{
		RemoteTimeout: time.Second,
		Publisher:     pub,
	})
	if online {
		if _, err := svc.RefreshCategories(context.Background()); err != nil {
			t.Fatalf("refresh categories: %v", err)
		}
	}
	return &testEnv{svc: svc, remote: store, local: local, conn: conn, publisher: pub}
}

func sampleInput(date core.Date) SaveInput {
	return SaveInput{
		Date:  date,
		Sales: dec("500"),
		Entries: []core.LineEntry{
			{ItemName: "Chicken", Amount: dec("100")},
			{ItemName: "Food waste", Amount: dec("20")},
			{ItemName: "Salary", Amount: dec("50")},
			{ItemName: "Staff meals", Amount: dec("10")},
			{ItemName: "Unused", Amount: decimal.Zero},
		},
		Notes:     "busy friday",
		CreatedBy: "manager",
	}
}

func TestInventoryService_SaveOnline(t *testing.T) {
	env := newTestEnv(t, true)
	ctx := context.Background()
	date := core.NewDate(2024, 3, 1)

	rec, err := env.svc.Save(ctx, sampleInput(date))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if rec.SyncState != core.SyncSynced {
		t.Errorf("expected synced, got %s", rec.SyncState)
	}
	if rec.UpdatedAt.IsZero() || rec.SyncedAt.IsZero() {
		t.Error("expected server and sync timestamps")
	}

	checks := map[string]struct{ got, want decimal.Decimal }{
		"purchases":      {rec.Totals.Purchases, dec("150")},
		"damage":         {rec.Totals.Damage, dec("20")},
		"salaries":       {rec.Totals.Salaries, dec("50")},
		"employee_meals": {rec.Totals.EmployeeMeals, dec("10")},
		"expenses":       {rec.Totals.Expenses, dec("30")},
		"net_cash":       {rec.Totals.NetCash, dec("350")},
		"net_profit":     {rec.Totals.NetProfit, dec("320")},
	}
	for name, c := range checks {
		if !c.got.Equal(c.want) {
			t.Errorf("%s: expected %s, got %s", name, c.want, c.got)
		}
	}
	if _, ok := rec.LineEntries["Unused"]; ok {
		t.Error("zero amount entries must not be stored")
	}

	row, err := env.remote.Select(ctx, date)
	if err != nil {
		t.Fatalf("remote select: %v", err)
	}
	if !row.TotalPurchases.Decimal().Equal(dec("150")) {
		t.Errorf("remote purchases: expected 150, got %s", row.TotalPurchases.Decimal())
	}

	cached, err := env.local.Get(ctx, date)
	if err != nil {
		t.Fatalf("local get: %v", err)
	}
	if cached.SyncState != core.SyncSynced {
		t.Errorf("local copy: expected synced, got %s", cached.SyncState)
	}
	if len(env.publisher.dates) != 0 {
		t.Errorf("no sync message expected for a synced save, got %v", env.publisher.dates)
	}
}

func TestInventoryService_SaveOfflineThenSync(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()
	date := core.NewDate(2024, 3, 2)

	rec, err := env.svc.Save(ctx, sampleInput(date))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if rec.SyncState != core.SyncLocalPending {
		t.Fatalf("expected pending, got %s", rec.SyncState)
	}
	if _, err := env.remote.Select(ctx, date); !errors.Is(err, remote.ErrNotFound) {
		t.Fatalf("remote must not be written while offline, got %v", err)
	}
	if len(env.publisher.dates) != 1 || env.publisher.dates[0] != "2024-03-02" {
		t.Errorf("expected one sync message, got %v", env.publisher.dates)
	}

	res, err := env.svc.SyncPending(ctx, 10)
	if err != nil || res.Attempted != 0 {
		t.Fatalf("sync while offline must be a no-op, got %+v, %v", res, err)
	}

	env.conn.Set(ctx, true)
	res, err = env.svc.SyncPending(ctx, 10)
	if err != nil {
		t.Fatalf("sync pending: %v", err)
	}
	if res.Attempted != 1 || res.Synced != 1 || res.Failed != 0 {
		t.Errorf("unexpected result %+v", res)
	}
	if _, err := env.remote.Select(ctx, date); err != nil {
		t.Errorf("expected remote row after sync: %v", err)
	}
	cached, _ := env.local.Get(ctx, date)
	if cached.SyncState != core.SyncSynced {
		t.Errorf("expected synced after retry, got %s", cached.SyncState)
	}
}

func TestInventoryService_SaveRemoteFailureStaysPending(t *testing.T) {
	env := newTestEnv(t, true)
	ctx := context.Background()
	date := core.NewDate(2024, 3, 3)

	env.remote.SetUnavailable(true)
	rec, err := env.svc.Save(ctx, sampleInput(date))
	if err != nil {
		t.Fatalf("remote failure must not fail the save: %v", err)
	}
	if rec.SyncState != core.SyncLocalPending {
		t.Errorf("expected pending, got %s", rec.SyncState)
	}

	if _, err := env.svc.SyncDate(ctx, date); !errors.Is(err, ErrRemoteSync) {
		t.Errorf("expected ErrRemoteSync, got %v", err)
	}

	env.remote.SetUnavailable(false)
	synced, err := env.svc.SyncDate(ctx, date)
	if err != nil {
		t.Fatalf("sync date: %v", err)
	}
	if synced.SyncState != core.SyncSynced {
		t.Errorf("expected synced, got %s", synced.SyncState)
	}
}

func TestInventoryService_SyncDate(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()

	if _, err := env.svc.SyncDate(ctx, core.NewDate(2024, 1, 1)); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	date := core.NewDate(2024, 1, 2)
	if _, err := env.svc.Save(ctx, sampleInput(date)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := env.svc.SyncDate(ctx, date); !errors.Is(err, ErrOffline) {
		t.Errorf("expected ErrOffline, got %v", err)
	}
}

// hookStore runs onUpsert before delegating, to simulate an edit landing
// while a remote write is in flight.
type hookStore struct {
	*memory.Store
	onUpsert func()
}

func (h *hookStore) Upsert(ctx context.Context, p core.RecordPayload) (time.Time, error) {
	if h.onUpsert != nil {
		h.onUpsert()
	}
	return h.Store.Upsert(ctx, p)
}

func TestInventoryService_NewerEditDuringSyncStaysPending(t *testing.T) {
	store := memory.New(testCategories())
	local := storage.NewRecords(storage.NewMemoryCache())
	hook := &hookStore{Store: store}
	svc := NewInventoryService(local, hook, store, NewConnectivity(true), InventoryConfig{RemoteTimeout: time.Second})
	ctx := context.Background()
	date := core.NewDate(2024, 4, 1)

	newer := svc.Build(SaveInput{Date: date, Sales: dec("900")})
	newer.SavedAt = time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	hook.onUpsert = func() {
		if err := local.Put(ctx, newer); err != nil {
			t.Errorf("put newer: %v", err)
		}
	}

	if _, err := svc.Save(ctx, sampleInput(date)); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := local.Get(ctx, date)
	if err != nil {
		t.Fatalf("local get: %v", err)
	}
	if got.SyncState != core.SyncLocalPending {
		t.Errorf("newer edit must stay pending, got %s", got.SyncState)
	}
	if !got.TotalSales.Equal(dec("900")) {
		t.Errorf("newer edit overwritten: sales %s", got.TotalSales)
	}
}

// saveDuringGet wraps a cache and runs onGet once, after the first read of
// key, handing the caller the value it read before onGet ran.
type saveDuringGet struct {
	storage.Cache
	key   string
	onGet func()
}

func (c *saveDuringGet) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := c.Cache.Get(ctx, key)
	if key == c.key && c.onGet != nil {
		fn := c.onGet
		c.onGet = nil
		fn()
	}
	return raw, err
}

func TestInventoryService_SaveDuringSyncPendingSurvives(t *testing.T) {
	ctx := context.Background()
	date := core.NewDate(2024, 4, 2)
	store := memory.New(testCategories())
	cache := &saveDuringGet{Cache: storage.NewMemoryCache(), key: storage.RecordKey(date.String())}
	local := storage.NewRecords(cache)
	conn := NewConnectivity(false)
	svc := NewInventoryService(local, store, store, conn, InventoryConfig{RemoteTimeout: time.Second})
	clock := time.Date(2024, 4, 2, 20, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	old := sampleInput(date)
	old.Notes = "old"
	if _, err := svc.Save(ctx, old); err != nil {
		t.Fatalf("offline save: %v", err)
	}
	conn.Set(ctx, true)

	newer := sampleInput(date)
	newer.Notes = "new"
	newer.Sales = dec("999")
	cache.onGet = func() {
		if _, err := svc.Save(ctx, newer); err != nil {
			t.Errorf("save newer: %v", err)
		}
	}

	if _, err := svc.SyncPending(ctx, 0); err != nil {
		t.Fatalf("sync pending: %v", err)
	}

	got, err := local.Get(ctx, date)
	if err != nil {
		t.Fatalf("local get: %v", err)
	}
	if got.Notes != "new" || !got.TotalSales.Equal(dec("999")) {
		t.Errorf("newer local edit lost: notes %q sales %s", got.Notes, got.TotalSales)
	}
	if got.SyncState != core.SyncSynced {
		t.Errorf("expected newer edit synced, got %s", got.SyncState)
	}
	row, err := store.Select(ctx, date)
	if err != nil {
		t.Fatalf("remote select: %v", err)
	}
	if row.Notes != "new" || !row.TotalSales.Decimal().Equal(dec("999")) {
		t.Errorf("remote holds stale copy: notes %q sales %s", row.Notes, row.TotalSales.Decimal())
	}
}

// blockingStore never answers an upsert until the caller gives up.
type blockingStore struct {
	*memory.Store
}

func (b *blockingStore) Upsert(ctx context.Context, _ core.RecordPayload) (time.Time, error) {
	<-ctx.Done()
	return time.Time{}, ctx.Err()
}

func TestInventoryService_SaveRemoteTimeoutStaysPending(t *testing.T) {
	ctx := context.Background()
	store := memory.New(testCategories())
	local := storage.NewRecords(storage.NewMemoryCache())
	svc := NewInventoryService(local, &blockingStore{Store: store}, store, NewConnectivity(true),
		InventoryConfig{RemoteTimeout: 20 * time.Millisecond})
	date := core.NewDate(2024, 4, 3)

	rec, err := svc.Save(ctx, sampleInput(date))
	if err != nil {
		t.Fatalf("save must succeed locally, got %v", err)
	}
	if rec.SyncState != core.SyncLocalPending {
		t.Errorf("returned state %s, want local_pending", rec.SyncState)
	}
	got, err := local.Get(ctx, date)
	if err != nil {
		t.Fatalf("local get: %v", err)
	}
	if got.SyncState != core.SyncLocalPending {
		t.Errorf("stored state %s, want local_pending", got.SyncState)
	}
	if _, err := store.Select(ctx, date); !errors.Is(err, remote.ErrNotFound) {
		t.Errorf("timed out upsert must not reach the store, got %v", err)
	}
}

func TestInventoryService_Load(t *testing.T) {
	ctx := context.Background()

	t.Run("pending local wins over remote", func(t *testing.T) {
		env := newTestEnv(t, true)
		date := core.NewDate(2024, 5, 1)
		if _, err := env.svc.Save(ctx, sampleInput(date)); err != nil {
			t.Fatalf("save: %v", err)
		}
		env.conn.Set(ctx, false)
		in := sampleInput(date)
		in.Sales = dec("777")
		if _, err := env.svc.Save(ctx, in); err != nil {
			t.Fatalf("offline save: %v", err)
		}
		env.conn.Set(ctx, true)

		got, err := env.svc.Load(ctx, date)
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if !got.TotalSales.Equal(dec("777")) || got.SyncState != core.SyncLocalPending {
			t.Errorf("expected pending local copy, got sales %s state %s", got.TotalSales, got.SyncState)
		}
	})

	t.Run("offline without local copy", func(t *testing.T) {
		env := newTestEnv(t, false)
		if _, err := env.svc.Load(ctx, core.NewDate(2024, 5, 2)); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("remote row refreshes local cache", func(t *testing.T) {
		env := newTestEnv(t, true)
		date := core.NewDate(2024, 5, 3)
		rec := env.svc.Build(sampleInput(date))
		if _, err := env.remote.Upsert(ctx, rec.Payload()); err != nil {
			t.Fatalf("seed remote: %v", err)
		}
		got, err := env.svc.Load(ctx, date)
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if got.SyncState != core.SyncSynced {
			t.Errorf("expected synced, got %s", got.SyncState)
		}
		if _, err := env.local.Get(ctx, date); err != nil {
			t.Errorf("expected local copy after load: %v", err)
		}
	})

	t.Run("deleted remotely drops stale local copy", func(t *testing.T) {
		env := newTestEnv(t, true)
		date := core.NewDate(2024, 5, 4)
		if _, err := env.svc.Save(ctx, sampleInput(date)); err != nil {
			t.Fatalf("save: %v", err)
		}
		if err := env.remote.Delete(ctx, date); err != nil {
			t.Fatalf("remote delete: %v", err)
		}
		if _, err := env.svc.Load(ctx, date); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		if _, err := env.local.Get(ctx, date); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected local copy removed, got %v", err)
		}
	})

	t.Run("remote error falls back to local", func(t *testing.T) {
		env := newTestEnv(t, true)
		date := core.NewDate(2024, 5, 5)
		if _, err := env.svc.Save(ctx, sampleInput(date)); err != nil {
			t.Fatalf("save: %v", err)
		}
		env.remote.SetUnavailable(true)
		got, err := env.svc.Load(ctx, date)
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if !got.TotalSales.Equal(dec("500")) {
			t.Errorf("expected local copy, got sales %s", got.TotalSales)
		}
	})
}

func TestInventoryService_Delete(t *testing.T) {
	env := newTestEnv(t, true)
	ctx := context.Background()
	date := core.NewDate(2024, 6, 1)
	if _, err := env.svc.Save(ctx, sampleInput(date)); err != nil {
		t.Fatalf("save: %v", err)
	}

	env.conn.Set(ctx, false)
	if err := env.svc.Delete(ctx, date); !errors.Is(err, ErrOffline) {
		t.Errorf("expected ErrOffline, got %v", err)
	}

	env.conn.Set(ctx, true)
	if err := env.svc.Delete(ctx, date); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := env.remote.Select(ctx, date); !errors.Is(err, remote.ErrNotFound) {
		t.Errorf("expected remote row gone, got %v", err)
	}
	if _, err := env.local.Get(ctx, date); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected local copy gone, got %v", err)
	}
}

func TestInventoryService_HistoryAndRange(t *testing.T) {
	env := newTestEnv(t, true)
	ctx := context.Background()
	for day := 1; day <= 3; day++ {
		if _, err := env.svc.Save(ctx, sampleInput(core.NewDate(2024, 7, day))); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	env.conn.Set(ctx, false)
	pending := sampleInput(core.NewDate(2024, 7, 4))
	pending.Sales = dec("50")
	if _, err := env.svc.Save(ctx, pending); err != nil {
		t.Fatalf("offline save: %v", err)
	}
	env.conn.Set(ctx, true)

	history, err := env.svc.History(ctx, 10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 4 {
		t.Fatalf("expected 4 records, got %d", len(history))
	}
	if history[0].Date.String() != "2024-07-04" || history[0].SyncState != core.SyncLocalPending {
		t.Errorf("expected pending record first, got %s %s", history[0].Date, history[0].SyncState)
	}
	if !history[0].Totals.NetCash.Equal(dec("-100")) {
		t.Errorf("expected re-derived net cash -100, got %s", history[0].Totals.NetCash)
	}

	limited, err := env.svc.History(ctx, 2)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("expected limit 2, got %d", len(limited))
	}

	rng, err := env.svc.Range(ctx, core.NewDate(2024, 7, 2), core.NewDate(2024, 7, 4))
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	var dates []string
	for _, r := range rng {
		dates = append(dates, r.Date.String())
	}
	want := []string{"2024-07-02", "2024-07-03", "2024-07-04"}
	if len(dates) != len(want) {
		t.Fatalf("expected %v, got %v", want, dates)
	}
	for i := range want {
		if dates[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], dates[i])
		}
	}

	env.remote.SetUnavailable(true)
	localRange, err := env.svc.Range(ctx, core.NewDate(2024, 7, 1), core.NewDate(2024, 7, 4))
	if err != nil {
		t.Fatalf("range fallback: %v", err)
	}
	if len(localRange) != 4 {
		t.Fatalf("expected local range fallback with 4 records, got %d", len(localRange))
	}
	if localRange[0].Date.String() != "2024-07-01" || localRange[3].SyncState != core.SyncLocalPending {
		t.Errorf("unexpected fallback order or state: %s first, last %s", localRange[0].Date, localRange[3].SyncState)
	}
	offline, err := env.svc.History(ctx, 10)
	if err != nil {
		t.Fatalf("history fallback: %v", err)
	}
	if len(offline) != 4 {
		t.Errorf("expected local fallback with 4 records, got %d", len(offline))
	}
}

func TestInventoryService_RefreshCategories(t *testing.T) {
	ctx := context.Background()

	t.Run("offline without cached table", func(t *testing.T) {
		env := newTestEnv(t, false)
		if _, err := env.svc.RefreshCategories(ctx); !errors.Is(err, ErrOffline) {
			t.Errorf("expected ErrOffline, got %v", err)
		}
	})

	t.Run("remote failure without cached table", func(t *testing.T) {
		env := newTestEnv(t, false)
		env.conn.Set(ctx, true)
		env.remote.SetUnavailable(true)
		if _, err := env.svc.RefreshCategories(ctx); !errors.Is(err, ErrRemoteSync) {
			t.Errorf("expected ErrRemoteSync, got %v", err)
		}
	})

	t.Run("offline uses cached table", func(t *testing.T) {
		store := memory.New(testCategories())
		local := storage.NewRecords(storage.NewMemoryCache())
		conn := NewConnectivity(true)
		first := NewInventoryService(local, store, store, conn, InventoryConfig{})
		if _, err := first.RefreshCategories(ctx); err != nil {
			t.Fatalf("refresh: %v", err)
		}

		second := NewInventoryService(local, store, store, NewConnectivity(false), InventoryConfig{})
		n, err := second.RefreshCategories(ctx)
		if err != nil {
			t.Fatalf("offline refresh: %v", err)
		}
		if n != len(testCategories()) {
			t.Errorf("expected %d categories, got %d", len(testCategories()), n)
		}
		if _, ok := second.Registry().Lookup("Salary"); !ok {
			t.Error("expected Salary in registry")
		}
	})
}

func TestInventoryService_Preview(t *testing.T) {
	env := newTestEnv(t, true)

	p := env.svc.Preview("200", map[string]string{
		"Chicken": "50",
		"Knives":  "abc",
		"Salary":  "20.5",
		"Mystery": "5",
	})
	if !p.TotalSales.Equal(dec("200")) {
		t.Errorf("sales: expected 200, got %s", p.TotalSales)
	}
	if !p.Totals.Purchases.Equal(dec("75.5")) {
		t.Errorf("purchases: expected 75.5, got %s", p.Totals.Purchases)
	}
	if !p.ItemsTotal.Equal(dec("75.5")) {
		t.Errorf("items total: expected 75.5, got %s", p.ItemsTotal)
	}
}

func TestInventoryService_AverageSalesAndStatus(t *testing.T) {
	env := newTestEnv(t, true)
	ctx := context.Background()

	for i, sales := range []string{"100", "200", "101"} {
		in := sampleInput(core.NewDate(2024, 8, i+1))
		in.Sales = dec(sales)
		if _, err := env.svc.Save(ctx, in); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	avg, err := env.svc.AverageSales(ctx)
	if err != nil {
		t.Fatalf("average: %v", err)
	}
	if avg.Days != 3 || !avg.Average.Equal(dec("133.67")) {
		t.Errorf("unexpected average %+v", avg)
	}
	if avg.Latest.String() != "2024-08-03" {
		t.Errorf("expected latest 2024-08-03, got %s", avg.Latest)
	}

	env.conn.Set(ctx, false)
	if _, err := env.svc.AverageSales(ctx); !errors.Is(err, ErrOffline) {
		t.Errorf("expected ErrOffline, got %v", err)
	}
	if _, err := env.svc.Save(ctx, sampleInput(core.NewDate(2024, 8, 9))); err != nil {
		t.Fatalf("offline save: %v", err)
	}

	st, err := env.svc.Status(ctx)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if st.Online || st.Pending != 1 || st.PendingDates[0] != "2024-08-09" {
		t.Errorf("unexpected status %+v", st)
	}
	if st.Categories != len(testCategories()) {
		t.Errorf("expected %d categories, got %d", len(testCategories()), st.Categories)
	}
}

func TestInventoryService_OnRecordsChanged(t *testing.T) {
	env := newTestEnv(t, false)
	calls := 0
	env.svc.OnRecordsChanged(func() { calls++ })

	if _, err := env.svc.Save(context.Background(), sampleInput(core.NewDate(2024, 9, 1))); err != nil {
		t.Fatalf("save: %v", err)
	}
	if calls == 0 {
		t.Error("expected change callback after save")
	}
}

func TestInventoryService_SaveRejectsZeroDate(t *testing.T) {
	env := newTestEnv(t, false)
	if _, err := env.svc.Save(context.Background(), SaveInput{}); !errors.Is(err, core.ErrInvalidDate) {
		t.Errorf("expected ErrInvalidDate, got %v", err)
	}
}
