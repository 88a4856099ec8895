package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Aggregator derives DailyTotals from line entries. It is the single place
// classification results are accumulated; live totals, saves and period
// reports all go through it.
type Aggregator struct {
	lookup     CategoryLookup
	onFallback func(itemName string)
}

// NewAggregator returns an Aggregator reading categories from lookup.
// onFallback, if not nil, is called for every item that is not in the
// registry.
func NewAggregator(lookup CategoryLookup, onFallback func(itemName string)) *Aggregator {
	return &Aggregator{lookup: lookup, onFallback: onFallback}
}

// Aggregate classifies every entry with a positive amount and derives the
// daily totals. It never fails.
func (a *Aggregator) Aggregate(sales decimal.Decimal, entries []LineEntry) DailyTotals {
	var t DailyTotals
	for _, e := range entries {
		if !e.Amount.IsPositive() {
			continue
		}
		c := Classify(a.lookup, e.ItemName, e.Amount)
		if c.Fallback && a.onFallback != nil {
			a.onFallback(e.ItemName)
		}
		t.credit(c)
	}
	t.derive(sales)
	return t
}

// AggregateText parses free-form input before aggregating. Malformed
// amounts count as zero.
func (a *Aggregator) AggregateText(sales string, items map[string]string) DailyTotals {
	entries := make([]LineEntry, 0, len(items))
	for name, raw := range items {
		entries = append(entries, LineEntry{ItemName: name, Amount: AmountOrZero(raw)})
	}
	return a.Aggregate(AmountOrZero(sales), entries)
}

// Aggregate is a convenience wrapper for a one-off computation.
func Aggregate(lookup CategoryLookup, sales decimal.Decimal, entries []LineEntry) DailyTotals {
	return NewAggregator(lookup, nil).Aggregate(sales, entries)
}

func (t *DailyTotals) credit(c Classification) {
	for _, as := range c.Assignments {
		switch as.Bucket {
		case BucketPurchases:
			t.Purchases = t.Purchases.Add(as.Amount)
		case BucketDamage:
			t.Damage = t.Damage.Add(as.Amount)
		case BucketSalaries:
			t.Salaries = t.Salaries.Add(as.Amount)
		case BucketHospitality:
			t.Hospitality = t.Hospitality.Add(as.Amount)
		case BucketEmployeeMeals:
			t.EmployeeMeals = t.EmployeeMeals.Add(as.Amount)
		case BucketAssets:
			t.Assets = t.Assets.Add(as.Amount)
		}
	}
}

// derive recomputes expenses, net cash and net profit from the buckets.
func (t *DailyTotals) derive(sales decimal.Decimal) {
	t.Expenses = t.Damage.Add(t.Hospitality).Add(t.EmployeeMeals)
	t.NetCash = sales.Sub(t.Purchases)
	t.NetProfit = t.NetCash.Sub(t.Expenses)
}

// Bucket returns the value accumulated in b.
func (t DailyTotals) Bucket(b Bucket) decimal.Decimal {
	switch b {
	case BucketPurchases:
		return t.Purchases
	case BucketDamage:
		return t.Damage
	case BucketSalaries:
		return t.Salaries
	case BucketHospitality:
		return t.Hospitality
	case BucketEmployeeMeals:
		return t.EmployeeMeals
	case BucketAssets:
		return t.Assets
	}
	return decimal.Zero
}

// LineEntriesFromMap converts a stored item map into line entries sorted by
// item name.
func LineEntriesFromMap(items map[string]decimal.Decimal) []LineEntry {
	out := make([]LineEntry, 0, len(items))
	for name, amount := range items {
		out = append(out, LineEntry{ItemName: name, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemName < out[j].ItemName })
	return out
}

// PurchaseItems builds the persisted item map. Entries with a zero, negative
// or blank amount are dropped; repeated names are summed.
func PurchaseItems(entries []LineEntry) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(entries))
	for _, e := range entries {
		if e.ItemName == "" || !e.Amount.IsPositive() {
			continue
		}
		if prev, ok := out[e.ItemName]; ok {
			out[e.ItemName] = prev.Add(e.Amount)
			continue
		}
		out[e.ItemName] = e.Amount
	}
	return out
}

// ItemsTotal sums every positive entry regardless of category.
func ItemsTotal(entries []LineEntry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		if e.Amount.IsPositive() {
			total = total.Add(e.Amount)
		}
	}
	return total
}
