//go:build integration

package postgres

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"jard/internal/core"
	"jard/internal/remote"
)

// Integration tests need a disposable Postgres database.
// Run with: TEST_DATABASE_URL=postgres://... go test -tags=integration ./internal/remote/postgres

func TestIntegration_DailyInventoryFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s, err := Open(ctx, dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	date := core.NewDate(1999, 1, 1)
	t.Cleanup(func() { _ = s.Delete(context.Background(), date) })

	p := core.RecordPayload{
		InventoryDate:  date,
		TotalSales:     core.Amount(decimal.RequireFromString("100.250")),
		TotalPurchases: core.Amount(decimal.NewFromInt(40)),
		PurchaseItems:  map[string]core.Amount{"دجاج": core.Amount(decimal.NewFromInt(40))},
		Notes:          "integration",
	}
	first, err := s.Upsert(ctx, p)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	p.Notes = "second write"
	second, err := s.Upsert(ctx, p)
	if err != nil {
		t.Fatalf("upsert again: %v", err)
	}
	if second.Before(first) {
		t.Fatalf("expected updated_at to move forward")
	}

	got, err := s.Select(ctx, date)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if got.Notes != "second write" || !got.TotalSales.Decimal().Equal(decimal.RequireFromString("100.25")) {
		t.Fatalf("unexpected row %+v", got)
	}
	if !got.PurchaseItems["دجاج"].Decimal().Equal(decimal.NewFromInt(40)) {
		t.Fatalf("unexpected items %v", got.PurchaseItems)
	}

	rows, err := s.SelectRange(ctx, date, date)
	if err != nil || len(rows) != 1 {
		t.Fatalf("expected one row in range, got %d err=%v", len(rows), err)
	}

	if err := s.Delete(ctx, date); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Select(ctx, date); !errors.Is(err, remote.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
