package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// mealsTokens mark a payroll line as employee meals when no explicit flag
// is set on the category entry.
var mealsTokens = []string{"meals", "وجبات"}

type (
	// Assignment credits an amount to one bucket.
	Assignment struct {
		Bucket Bucket
		Amount decimal.Decimal
	}

	// Classification is the outcome of classifying one line entry. The same
	// amount may appear in two buckets (Salaries and Assets also roll up
	// into Purchases).
	Classification struct {
		Assignments []Assignment
		// Fallback is set when the item is not in the registry.
		Fallback bool
	}
)

var (
	purchasesOnly     = []Bucket{BucketPurchases}
	damageOnly        = []Bucket{BucketDamage}
	hospitalityOnly   = []Bucket{BucketHospitality}
	employeeMealsOnly = []Bucket{BucketEmployeeMeals}
	salariesRollup    = []Bucket{BucketSalaries, BucketPurchases}
	assetsRollup      = []Bucket{BucketAssets, BucketPurchases}
)

// IsMealsLine reports whether a payroll item counts as employee meals.
func (e CategoryEntry) IsMealsLine() bool {
	if e.MealsLine != nil {
		return *e.MealsLine
	}
	return hasMealsToken(e.ItemName)
}

func hasMealsToken(itemName string) bool {
	lower := strings.ToLower(itemName)
	for _, tok := range mealsTokens {
		if strings.Contains(lower, tok) {
			return true
		}
	}
	return false
}

// BucketsFor returns the buckets an item contributes to. The second return
// value is false when the item is unknown and the Purchases fallback was
// applied.
//
// The table is evaluated top to bottom; the meals check must precede the
// salaries rule.
func BucketsFor(lookup CategoryLookup, itemName string) ([]Bucket, bool) {
	var (
		entry CategoryEntry
		found bool
	)
	if lookup != nil {
		entry, found = lookup.Lookup(itemName)
	}
	if !found {
		return purchasesOnly, false
	}

	switch entry.MainCategory {
	case MainExpenses:
		switch entry.SubCategory {
		case SubDamage:
			return damageOnly, true
		case SubHospitality:
			return hospitalityOnly, true
		case SubPayroll:
			if entry.IsMealsLine() {
				return employeeMealsOnly, true
			}
			return salariesRollup, true
		case SubAssetsTools:
			return assetsRollup, true
		default:
			return purchasesOnly, true
		}
	default:
		// Purchases, and any main category the registry does not recognise.
		return purchasesOnly, true
	}
}

// Classify decides which buckets amount is credited to for itemName.
func Classify(lookup CategoryLookup, itemName string, amount decimal.Decimal) Classification {
	buckets, found := BucketsFor(lookup, itemName)
	out := Classification{
		Assignments: make([]Assignment, len(buckets)),
		Fallback:    !found,
	}
	for i, b := range buckets {
		out.Assignments[i] = Assignment{Bucket: b, Amount: amount}
	}
	return out
}

// Amount returns what the classification credits to bucket b.
func (c Classification) Amount(b Bucket) decimal.Decimal {
	total := decimal.Zero
	for _, a := range c.Assignments {
		if a.Bucket == b {
			total = total.Add(a.Amount)
		}
	}
	return total
}
