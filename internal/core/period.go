package core

import "github.com/shopspring/decimal"

// AggregatePeriod re-derives totals for a set of stored records using the
// aggregator's current registry. Stored totals are ignored. Buckets and
// sales are summed first and the derived figures computed once.
func (a *Aggregator) AggregatePeriod(records []DailyInventoryRecord) PeriodSummary {
	var (
		sum   DailyTotals
		sales = decimal.Zero
	)
	for _, r := range records {
		day := a.Aggregate(r.TotalSales, r.Entries())
		sum.Purchases = sum.Purchases.Add(day.Purchases)
		sum.Damage = sum.Damage.Add(day.Damage)
		sum.Salaries = sum.Salaries.Add(day.Salaries)
		sum.Hospitality = sum.Hospitality.Add(day.Hospitality)
		sum.EmployeeMeals = sum.EmployeeMeals.Add(day.EmployeeMeals)
		sum.Assets = sum.Assets.Add(day.Assets)
		sales = sales.Add(r.TotalSales)
	}
	sum.derive(sales)
	return PeriodSummary{DailyTotals: sum, TotalSales: sales, Days: len(records)}
}

// AggregatePeriod is a convenience wrapper for a one-off computation.
func AggregatePeriod(lookup CategoryLookup, records []DailyInventoryRecord) PeriodSummary {
	return NewAggregator(lookup, nil).AggregatePeriod(records)
}

// Rederive returns a copy of r with Totals recomputed from its line entries.
func (a *Aggregator) Rederive(r DailyInventoryRecord) DailyInventoryRecord {
	r.Totals = a.Aggregate(r.TotalSales, r.Entries())
	return r
}
