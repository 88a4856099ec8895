// Package report builds the monthly item-by-day matrix and renders it for
// export.
package report

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"jard/internal/core"
)

// Summary row keys, in the order they follow the item rows.
const (
	RowSales     = "sales"
	RowPurchases = "purchases"
	RowExpenses  = "expenses"
	RowAssets    = "assets"
	RowSalaries  = "salaries"
	RowNetCash   = "net_cash"
	RowNetProfit = "net_profit"
)

var summaryLabels = map[string]string{
	RowSales:     "Sales",
	RowPurchases: "Purchases",
	RowExpenses:  "Expenses",
	RowAssets:    "Assets",
	RowSalaries:  "Salaries",
	RowNetCash:   "Net cash",
	RowNetProfit: "Net profit",
}

var summaryOrder = []string{RowSales, RowPurchases, RowExpenses, RowAssets, RowSalaries, RowNetCash, RowNetProfit}

// Row is one line of the matrix. Cells holds one value per day of the month;
// a zero cell in an item row means nothing was entered that day.
type Row struct {
	Key   string            `json:"key,omitempty"`
	Label string            `json:"label"`
	Cells []decimal.Decimal `json:"cells"`
	Total decimal.Decimal   `json:"total"`
}

// Matrix is the monthly export: item rows followed by per-day summary rows.
type Matrix struct {
	Year     int                `json:"year"`
	Month    int                `json:"month"`
	Days     int                `json:"days"`
	Items    []Row              `json:"items"`
	Summary  []Row              `json:"summary"`
	Period   core.PeriodSummary `json:"period"`
	Currency string             `json:"currency,omitempty"`
}

// BuildMonthly lays out records of one month. Every per-day figure is
// re-derived through agg; records outside the month are ignored.
func BuildMonthly(agg *core.Aggregator, year, month int, records []core.DailyInventoryRecord) (Matrix, error) {
	first, last, err := core.MonthRange(year, month)
	if err != nil {
		return Matrix{}, err
	}
	days := core.DaysInMonth(year, month)

	itemCells := map[string][]decimal.Decimal{}
	summary := make(map[string][]decimal.Decimal, len(summaryOrder))
	for _, key := range summaryOrder {
		summary[key] = zeros(days)
	}

	var inMonth []core.DailyInventoryRecord
	for _, r := range records {
		if r.Date.Before(first) || r.Date.After(last) {
			continue
		}
		inMonth = append(inMonth, r)
		day := r.Date.Day() - 1

		for name, amount := range r.LineEntries {
			if !amount.IsPositive() {
				continue
			}
			cells, ok := itemCells[name]
			if !ok {
				cells = zeros(days)
				itemCells[name] = cells
			}
			cells[day] = cells[day].Add(amount)
		}

		t := agg.Aggregate(r.TotalSales, r.Entries())
		add(summary[RowSales], day, r.TotalSales)
		add(summary[RowPurchases], day, t.Purchases)
		add(summary[RowExpenses], day, t.Expenses)
		add(summary[RowAssets], day, t.Assets)
		add(summary[RowSalaries], day, t.Salaries)
		add(summary[RowNetCash], day, t.NetCash)
		add(summary[RowNetProfit], day, t.NetProfit)
	}

	names := make([]string, 0, len(itemCells))
	for name := range itemCells {
		names = append(names, name)
	}
	sort.Strings(names)

	m := Matrix{
		Year:   year,
		Month:  month,
		Days:   days,
		Items:  make([]Row, 0, len(names)),
		Period: agg.AggregatePeriod(inMonth),
	}
	for _, name := range names {
		m.Items = append(m.Items, Row{Label: name, Cells: itemCells[name], Total: sum(itemCells[name])})
	}

	totals := map[string]decimal.Decimal{
		RowSales:     m.Period.TotalSales,
		RowPurchases: m.Period.Purchases,
		RowExpenses:  m.Period.Expenses,
		RowAssets:    m.Period.Assets,
		RowSalaries:  m.Period.Salaries,
		RowNetCash:   m.Period.NetCash,
		RowNetProfit: m.Period.NetProfit,
	}
	for _, key := range summaryOrder {
		m.Summary = append(m.Summary, Row{Key: key, Label: summaryLabels[key], Cells: summary[key], Total: totals[key]})
	}
	return m, nil
}

// Title is used as sheet name and file name stem.
func (m Matrix) Title() string {
	return fmt.Sprintf("inventory-%04d-%02d", m.Year, m.Month)
}

// Header returns the column titles: item, one per day, total.
func (m Matrix) Header() []string {
	h := make([]string, 0, m.Days+2)
	h = append(h, "Item")
	for d := 1; d <= m.Days; d++ {
		h = append(h, fmt.Sprintf("%d", d))
	}
	total := "Total"
	if m.Currency != "" {
		total = fmt.Sprintf("Total (%s)", m.Currency)
	}
	return append(h, total)
}

// Rows renders the matrix as text. Item cells with no entry are blank;
// summary cells always carry a value.
func (m Matrix) Rows() [][]string {
	out := make([][]string, 0, len(m.Items)+len(m.Summary)+2)
	out = append(out, m.Header())
	for _, r := range m.Items {
		out = append(out, r.strings(true))
	}
	if len(m.Summary) > 0 {
		out = append(out, make([]string, m.Days+2))
	}
	for _, r := range m.Summary {
		out = append(out, r.strings(false))
	}
	return out
}

func (r Row) strings(blankZero bool) []string {
	row := make([]string, 0, len(r.Cells)+2)
	row = append(row, r.Label)
	for _, c := range r.Cells {
		if blankZero && c.IsZero() {
			row = append(row, "")
			continue
		}
		row = append(row, core.FormatAmount(c))
	}
	return append(row, core.FormatAmount(r.Total))
}

func zeros(n int) []decimal.Decimal {
	out := make([]decimal.Decimal, n)
	for i := range out {
		out[i] = decimal.Zero
	}
	return out
}

func add(cells []decimal.Decimal, day int, v decimal.Decimal) {
	cells[day] = cells[day].Add(v)
}

func sum(cells []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, c := range cells {
		total = total.Add(c)
	}
	return total
}
