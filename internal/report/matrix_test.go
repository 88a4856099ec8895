package report

import (
	"testing"

	"github.com/shopspring/decimal"

	"jard/internal/core"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testAggregator() *core.Aggregator {
	return core.NewAggregator(core.NewRegistry([]core.CategoryEntry{
		{ItemName: "Chicken", MainCategory: core.MainPurchases, Active: true},
		{ItemName: "Driver salary", MainCategory: core.MainExpenses, SubCategory: core.SubPayroll, Active: true},
		{ItemName: "Ice repair", MainCategory: core.MainExpenses, SubCategory: core.SubDamage, Active: true},
	}), nil)
}

func record(date core.Date, sales string, items map[string]string) core.DailyInventoryRecord {
	entries := map[string]decimal.Decimal{}
	for k, v := range items {
		entries[k] = dec(v)
	}
	return core.DailyInventoryRecord{Date: date, TotalSales: dec(sales), LineEntries: entries}
}

func TestBuildMonthly(t *testing.T) {
	records := []core.DailyInventoryRecord{
		record(core.NewDate(2024, 2, 1), "100", map[string]string{"Chicken": "40", "Driver salary": "20"}),
		record(core.NewDate(2024, 2, 3), "50", map[string]string{"Chicken": "10", "Ice repair": "5"}),
		record(core.NewDate(2024, 3, 1), "999", map[string]string{"Chicken": "999"}),
	}

	m, err := BuildMonthly(testAggregator(), 2024, 2, records)
	if err != nil {
		t.Fatalf("BuildMonthly() error = %v", err)
	}

	if m.Days != 29 {
		t.Errorf("Days = %d, want 29", m.Days)
	}
	if len(m.Items) != 3 {
		t.Fatalf("len(Items) = %d, want 3", len(m.Items))
	}
	if m.Items[0].Label != "Chicken" || !m.Items[0].Total.Equal(dec("50")) {
		t.Errorf("first item = %s total %s, want Chicken total 50", m.Items[0].Label, m.Items[0].Total)
	}
	if !m.Items[0].Cells[2].Equal(dec("10")) || !m.Items[0].Cells[1].IsZero() {
		t.Errorf("Chicken cells = %v", m.Items[0].Cells[:3])
	}

	byKey := map[string]Row{}
	for _, r := range m.Summary {
		byKey[r.Key] = r
	}
	if len(m.Summary) != len(summaryOrder) || m.Summary[0].Key != RowSales {
		t.Fatalf("unexpected summary layout: %+v", m.Summary)
	}

	tests := []struct {
		key   string
		day   int
		want  string
		total string
	}{
		{RowSales, 0, "100", "150"},
		{RowPurchases, 0, "60", "70"},
		{RowSalaries, 0, "20", "20"},
		{RowExpenses, 2, "5", "5"},
		{RowNetCash, 0, "40", "80"},
		{RowNetProfit, 2, "35", "75"},
	}
	for _, tt := range tests {
		r := byKey[tt.key]
		if !r.Cells[tt.day].Equal(dec(tt.want)) {
			t.Errorf("%s day %d = %s, want %s", tt.key, tt.day+1, r.Cells[tt.day], tt.want)
		}
		if !r.Total.Equal(dec(tt.total)) {
			t.Errorf("%s total = %s, want %s", tt.key, r.Total, tt.total)
		}
	}

	if m.Period.Days != 2 {
		t.Errorf("Period.Days = %d, want 2", m.Period.Days)
	}
}

func TestBuildMonthly_InvalidMonth(t *testing.T) {
	if _, err := BuildMonthly(testAggregator(), 2024, 13, nil); err == nil {
		t.Error("expected error for month 13")
	}
}

func TestBuildMonthly_Empty(t *testing.T) {
	m, err := BuildMonthly(testAggregator(), 2024, 4, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Items) != 0 || m.Days != 30 {
		t.Errorf("empty month: items=%d days=%d", len(m.Items), m.Days)
	}
	for _, r := range m.Summary {
		if !r.Total.IsZero() {
			t.Errorf("%s total = %s, want 0", r.Key, r.Total)
		}
	}
}

func TestMatrixRows(t *testing.T) {
	m, _ := BuildMonthly(testAggregator(), 2024, 2, []core.DailyInventoryRecord{
		record(core.NewDate(2024, 2, 2), "10", map[string]string{"Chicken": "4.5"}),
	})
	m.Currency = "JOD"
	rows := m.Rows()

	header := rows[0]
	if header[0] != "Item" || header[1] != "1" || header[len(header)-1] != "Total (JOD)" {
		t.Errorf("header = %v", header)
	}
	item := rows[1]
	if item[0] != "Chicken" || item[1] != "" || item[2] != "4.50" || item[len(item)-1] != "4.50" {
		t.Errorf("item row = %v", item)
	}
	if len(rows) != 1+1+1+len(summaryOrder) {
		t.Errorf("len(rows) = %d", len(rows))
	}
	sales := rows[3]
	if sales[0] != "Sales" || sales[1] != "0.00" || sales[2] != "10.00" {
		t.Errorf("sales row = %v", sales[:3])
	}
}
