// Package postgres implements the remote ports on a hosted Postgres
// database (daily_inventory, purchase_categories, notifications).
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"jard/internal/core"
	"jard/internal/remote"
)

// Amounts and dates cross the wire as text and are cast server side, which
// keeps decimal precision without a custom pgtype codec.
const recordColumns = `inventory_date::text, total_sales::text, total_purchases::text, purchase_items::text,
	total_damage::text, total_salaries::text, total_hospitality::text, total_employee_meals::text,
	total_assets::text, total_expenses::text, notes, created_by, updated_at`

type Store struct {
	pool *pgxpool.Pool
}

// Open connects to dsn, applies migrations and returns a Store.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if err := RunMigrations(dsn); err != nil {
		return nil, err
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Store{pool: pool}, nil
}

// New wraps an existing pool. Migrations are the caller's concern.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", remote.ErrUnavailable, err)
	}
	return nil
}

func (s *Store) Upsert(ctx context.Context, p core.RecordPayload) (time.Time, error) {
	items, err := json.Marshal(p.PurchaseItems)
	if err != nil {
		return time.Time{}, fmt.Errorf("encode purchase items: %w", err)
	}
	if p.PurchaseItems == nil {
		items = []byte("{}")
	}

	var updatedAt time.Time
	err = s.pool.QueryRow(ctx, `
		INSERT INTO daily_inventory (
			inventory_date, total_sales, total_purchases, purchase_items, total_damage,
			total_salaries, total_hospitality, total_employee_meals, total_assets, total_expenses,
			notes, created_by, updated_at
		) VALUES (
			$1::text::date, $2::text::numeric, $3::text::numeric, $4::text::jsonb, $5::text::numeric,
			$6::text::numeric, $7::text::numeric, $8::text::numeric, $9::text::numeric, $10::text::numeric,
			$11, $12, now()
		)
		ON CONFLICT (inventory_date) DO UPDATE SET
			total_sales = excluded.total_sales,
			total_purchases = excluded.total_purchases,
			purchase_items = excluded.purchase_items,
			total_damage = excluded.total_damage,
			total_salaries = excluded.total_salaries,
			total_hospitality = excluded.total_hospitality,
			total_employee_meals = excluded.total_employee_meals,
			total_assets = excluded.total_assets,
			total_expenses = excluded.total_expenses,
			notes = excluded.notes,
			created_by = excluded.created_by,
			updated_at = now()
		RETURNING updated_at`,
		p.InventoryDate.String(),
		p.TotalSales.Decimal().String(),
		p.TotalPurchases.Decimal().String(),
		string(items),
		p.TotalDamage.Decimal().String(),
		p.TotalSalaries.Decimal().String(),
		p.TotalHospitality.Decimal().String(),
		p.TotalEmployeeMeals.Decimal().String(),
		p.TotalAssets.Decimal().String(),
		p.TotalExpenses.Decimal().String(),
		p.Notes,
		p.CreatedBy,
	).Scan(&updatedAt)
	if err != nil {
		return time.Time{}, fmt.Errorf("upsert daily inventory %s: %w", p.InventoryDate, err)
	}
	return updatedAt, nil
}

func (s *Store) Select(ctx context.Context, date core.Date) (core.RecordPayload, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+recordColumns+` FROM daily_inventory WHERE inventory_date = $1::text::date`, date.String())
	p, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.RecordPayload{}, remote.ErrNotFound
	}
	if err != nil {
		return core.RecordPayload{}, fmt.Errorf("select daily inventory %s: %w", date, err)
	}
	return p, nil
}

func (s *Store) SelectRange(ctx context.Context, from, to core.Date) ([]core.RecordPayload, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+recordColumns+` FROM daily_inventory
		WHERE inventory_date BETWEEN $1::text::date AND $2::text::date
		ORDER BY inventory_date`, from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("select daily inventory range: %w", err)
	}
	return collectRecords(rows)
}

func (s *Store) List(ctx context.Context, limit int) ([]core.RecordPayload, error) {
	if limit <= 0 {
		limit = 30
	}
	rows, err := s.pool.Query(ctx, `SELECT `+recordColumns+` FROM daily_inventory
		ORDER BY inventory_date DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list daily inventory: %w", err)
	}
	return collectRecords(rows)
}

func (s *Store) Delete(ctx context.Context, date core.Date) error {
	if _, err := s.pool.Exec(ctx,
		`DELETE FROM daily_inventory WHERE inventory_date = $1::text::date`, date.String()); err != nil {
		return fmt.Errorf("delete daily inventory %s: %w", date, err)
	}
	return nil
}

func (s *Store) SalesStats(ctx context.Context) (remote.SalesStats, error) {
	var (
		days   int
		total  string
		latest *string
	)
	err := s.pool.QueryRow(ctx, `SELECT count(*), COALESCE(sum(total_sales), 0)::text, max(inventory_date)::text
		FROM daily_inventory`).Scan(&days, &total, &latest)
	if err != nil {
		return remote.SalesStats{}, fmt.Errorf("sales stats: %w", err)
	}
	stats := remote.SalesStats{Days: days, Total: core.AmountOrZero(total)}
	if latest != nil {
		if d, err := core.ParseDate(*latest); err == nil {
			stats.Latest = d
		}
	}
	return stats, nil
}

func (s *Store) FetchCategories(ctx context.Context) ([]core.CategoryEntry, error) {
	rows, err := s.pool.Query(ctx, `SELECT item_name, main_category, COALESCE(sub_category, ''),
		display_order, is_active, is_meals_line
		FROM purchase_categories WHERE is_active
		ORDER BY main_category, sub_category NULLS FIRST, display_order, item_name`)
	if err != nil {
		return nil, fmt.Errorf("fetch categories: %w", err)
	}
	defer rows.Close()

	var out []core.CategoryEntry
	for rows.Next() {
		var (
			e    core.CategoryEntry
			main string
		)
		if err := rows.Scan(&e.ItemName, &main, &e.SubCategory, &e.DisplayOrder, &e.Active, &e.MealsLine); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		m, ok := core.ParseMainCategory(main)
		if !ok {
			slog.WarnContext(ctx, "Unknown main category in category table", "item_name", e.ItemName, "main_category", main)
			m = core.MainCategory(main)
		}
		e.MainCategory = m
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return out, nil
}

func (s *Store) InsertNotification(ctx context.Context, n core.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx, `INSERT INTO notifications (id, type, severity, title, message, is_read, created_at)
		VALUES ($1::text::uuid, $2, $3, $4, $5, $6, $7)`,
		n.ID, n.Type, n.Severity, n.Title, n.Message, n.Read, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (s *Store) HasNotificationSince(ctx context.Context, typ string, since time.Time) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM notifications WHERE type = $1 AND created_at >= $2)`,
		typ, since).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check notification %s: %w", typ, err)
	}
	return exists, nil
}

func (s *Store) ListNotifications(ctx context.Context, limit int) ([]core.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx, `SELECT id::text, type, severity, title, message, is_read, created_at
		FROM notifications ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var out []core.Notification
	for rows.Next() {
		var n core.Notification
		if err := rows.Scan(&n.ID, &n.Type, &n.Severity, &n.Title, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Store) MarkAllRead(ctx context.Context) (int, error) {
	tag, err := s.pool.Exec(ctx, `UPDATE notifications SET is_read = TRUE WHERE NOT is_read`)
	if err != nil {
		return 0, fmt.Errorf("mark notifications read: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func scanRecord(row pgx.Row) (core.RecordPayload, error) {
	var (
		date, sales, purchases, items, damage, salaries string
		hospitality, meals, assets, expenses            string
		p                                               core.RecordPayload
		updatedAt                                       time.Time
	)
	err := row.Scan(&date, &sales, &purchases, &items, &damage, &salaries,
		&hospitality, &meals, &assets, &expenses, &p.Notes, &p.CreatedBy, &updatedAt)
	if err != nil {
		return core.RecordPayload{}, err
	}
	d, err := core.ParseDate(date)
	if err != nil {
		return core.RecordPayload{}, err
	}
	p.InventoryDate = d
	p.TotalSales = amount(sales)
	p.TotalPurchases = amount(purchases)
	p.TotalDamage = amount(damage)
	p.TotalSalaries = amount(salaries)
	p.TotalHospitality = amount(hospitality)
	p.TotalEmployeeMeals = amount(meals)
	p.TotalAssets = amount(assets)
	p.TotalExpenses = amount(expenses)
	p.UpdatedAt = &updatedAt
	// Older rows may hold strings or nulls in the item map; Amount decodes
	// those leniently.
	if err := json.Unmarshal([]byte(items), &p.PurchaseItems); err != nil {
		p.PurchaseItems = map[string]core.Amount{}
	}
	return p, nil
}

func collectRecords(rows pgx.Rows) ([]core.RecordPayload, error) {
	defer rows.Close()
	var out []core.RecordPayload
	for rows.Next() {
		p, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan daily inventory: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily inventory: %w", err)
	}
	return out, nil
}

func amount(s string) core.Amount {
	return core.Amount(core.AmountOrZero(s))
}

var _ remote.Backend = (*Store)(nil)
