package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecordPayload is the persisted shape of a daily record, shared by the
// hosted table, the local cache and the JSON API.
type RecordPayload struct {
	InventoryDate      Date              `json:"inventory_date"`
	TotalSales         Amount            `json:"total_sales"`
	TotalPurchases     Amount            `json:"total_purchases"`
	PurchaseItems      map[string]Amount `json:"purchase_items"`
	TotalDamage        Amount            `json:"total_damage"`
	TotalSalaries      Amount            `json:"total_salaries"`
	TotalHospitality   Amount            `json:"total_hospitality"`
	TotalEmployeeMeals Amount            `json:"total_employee_meals"`
	TotalAssets        Amount            `json:"total_assets"`
	TotalExpenses      Amount            `json:"total_expenses"`
	Notes              string            `json:"notes"`
	CreatedBy          string            `json:"created_by"`
	UpdatedAt          *time.Time        `json:"updated_at,omitempty"`
}

// CachedRecord is what the local cache stores under inventory_<date>.
type CachedRecord struct {
	RecordPayload
	Synced    bool       `json:"synced"`
	SyncState SyncState  `json:"sync_state,omitempty"`
	SavedAt   time.Time  `json:"savedAt"`
	SyncedAt  *time.Time `json:"syncedAt,omitempty"`
}

// Payload converts a record into its persisted shape.
func (r DailyInventoryRecord) Payload() RecordPayload {
	items := make(map[string]Amount, len(r.LineEntries))
	for name, amount := range r.LineEntries {
		items[name] = Amount(amount)
	}
	p := RecordPayload{
		InventoryDate:      r.Date,
		TotalSales:         Amount(r.TotalSales),
		TotalPurchases:     Amount(r.Totals.Purchases),
		PurchaseItems:      items,
		TotalDamage:        Amount(r.Totals.Damage),
		TotalSalaries:      Amount(r.Totals.Salaries),
		TotalHospitality:   Amount(r.Totals.Hospitality),
		TotalEmployeeMeals: Amount(r.Totals.EmployeeMeals),
		TotalAssets:        Amount(r.Totals.Assets),
		TotalExpenses:      Amount(r.Totals.Expenses),
		Notes:              r.Notes,
		CreatedBy:          r.CreatedBy,
	}
	if !r.UpdatedAt.IsZero() {
		t := r.UpdatedAt
		p.UpdatedAt = &t
	}
	return p
}

// Record converts a persisted payload back into a record. Stored totals are
// copied as-is; callers that need trustworthy figures re-derive them.
// Non-positive stored items are dropped.
func (p RecordPayload) Record() DailyInventoryRecord {
	items := make(map[string]decimal.Decimal, len(p.PurchaseItems))
	for name, amount := range p.PurchaseItems {
		if d := amount.Decimal(); d.IsPositive() {
			items[name] = d
		}
	}
	r := DailyInventoryRecord{
		Date:        p.InventoryDate,
		TotalSales:  p.TotalSales.Decimal(),
		LineEntries: items,
		Totals: DailyTotals{
			Purchases:     p.TotalPurchases.Decimal(),
			Damage:        p.TotalDamage.Decimal(),
			Salaries:      p.TotalSalaries.Decimal(),
			Hospitality:   p.TotalHospitality.Decimal(),
			EmployeeMeals: p.TotalEmployeeMeals.Decimal(),
			Assets:        p.TotalAssets.Decimal(),
			Expenses:      p.TotalExpenses.Decimal(),
		},
		Notes:     p.Notes,
		CreatedBy: p.CreatedBy,
	}
	r.Totals.NetCash = r.TotalSales.Sub(r.Totals.Purchases)
	r.Totals.NetProfit = r.Totals.NetCash.Sub(r.Totals.Expenses)
	if p.UpdatedAt != nil {
		r.UpdatedAt = *p.UpdatedAt
	}
	return r
}

// Cached wraps a record for the local cache.
func (r DailyInventoryRecord) Cached() CachedRecord {
	c := CachedRecord{
		RecordPayload: r.Payload(),
		Synced:        r.SyncState == SyncSynced,
		SyncState:     r.SyncState,
		SavedAt:       r.SavedAt,
	}
	if !r.SyncedAt.IsZero() {
		t := r.SyncedAt
		c.SyncedAt = &t
	}
	return c
}

// Record converts a cached entry back into a record. Entries written without
// an explicit state fall back to the synced flag.
func (c CachedRecord) Record() DailyInventoryRecord {
	r := c.RecordPayload.Record()
	r.SavedAt = c.SavedAt
	if c.SyncedAt != nil {
		r.SyncedAt = *c.SyncedAt
	}
	switch {
	case c.SyncState != "":
		r.SyncState = c.SyncState
	case c.Synced:
		r.SyncState = SyncSynced
	default:
		r.SyncState = SyncLocalPending
	}
	return r
}
