package core

import (
	"sort"
	"strings"
	"sync"
)

// CategoryLookup resolves an item name to its category entry.
type CategoryLookup interface {
	Lookup(itemName string) (CategoryEntry, bool)
}

var mainAliases = map[string]MainCategory{
	"purchases": MainPurchases,
	"المشتريات": MainPurchases,
	"expenses":  MainExpenses,
	"مصاريف":    MainExpenses,
}

var subAliases = map[string]string{
	"damage":       SubDamage,
	"الإتلاف":      SubDamage,
	"hospitality":  SubHospitality,
	"ضيافة":        SubHospitality,
	"payroll":      SubPayroll,
	"رواتب وأجور":  SubPayroll,
	"assets/tools": SubAssetsTools,
	"أصول/أدوات":   SubAssetsTools,
}

// ParseMainCategory maps English or legacy Arabic labels to a MainCategory.
func ParseMainCategory(s string) (MainCategory, bool) {
	m, ok := mainAliases[strings.ToLower(strings.TrimSpace(s))]
	return m, ok
}

// CanonicalSubCategory maps known sub category labels to their canonical
// name. Unknown labels are returned trimmed.
func CanonicalSubCategory(s string) string {
	s = strings.TrimSpace(s)
	if c, ok := subAliases[strings.ToLower(s)]; ok {
		return c
	}
	return s
}

// Registry holds the active category table for a session. It is loaded
// wholesale; reloads are triggered from outside.
type Registry struct {
	mu      sync.RWMutex
	byName  map[string]CategoryEntry
	entries []CategoryEntry
	version uint64
}

func NewRegistry(entries []CategoryEntry) *Registry {
	r := &Registry{}
	r.Load(entries)
	return r
}

// Load replaces the registry content. Inactive entries are skipped; on
// duplicate item names the last one wins.
func (r *Registry) Load(entries []CategoryEntry) {
	byName := make(map[string]CategoryEntry, len(entries))
	for _, e := range entries {
		if !e.Active {
			continue
		}
		e.ItemName = strings.TrimSpace(e.ItemName)
		if e.ItemName == "" {
			continue
		}
		if m, ok := ParseMainCategory(string(e.MainCategory)); ok {
			e.MainCategory = m
		}
		e.SubCategory = CanonicalSubCategory(e.SubCategory)
		byName[e.ItemName] = e
	}

	list := make([]CategoryEntry, 0, len(byName))
	for _, e := range byName {
		list = append(list, e)
	}
	sort.Slice(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a.MainCategory != b.MainCategory {
			return a.MainCategory > b.MainCategory // Purchases before Expenses
		}
		if a.SubCategory != b.SubCategory {
			return a.SubCategory < b.SubCategory
		}
		if a.DisplayOrder != b.DisplayOrder {
			return a.DisplayOrder < b.DisplayOrder
		}
		return a.ItemName < b.ItemName
	})

	r.mu.Lock()
	r.byName = byName
	r.entries = list
	r.version++
	r.mu.Unlock()
}

// Lookup implements CategoryLookup.
func (r *Registry) Lookup(itemName string) (CategoryEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byName[strings.TrimSpace(itemName)]
	return e, ok
}

// Entries returns the active entries in display order.
func (r *Registry) Entries() []CategoryEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]CategoryEntry(nil), r.entries...)
}

// Version increases on every Load.
func (r *Registry) Version() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byName)
}
