package google

import (
	"strings"
	"testing"

	"jard/internal/core"
)

func TestParseCategories(t *testing.T) {
	values := [][]interface{}{
		{"Item", "Main", "Sub", "Order", "Active", "Meals"},
		{"دجاج", "المشتريات", "", 1.0},
		{"Staff lunch", "Expenses", "Payroll", "2", "yes", "true"},
		{"Driver salary", "Expenses", "رواتب وأجور", "3", "", "no"},
		{"Old fryer", "Expenses", "Assets/Tools", "4", "false"},
		{"Mystery", "Other"},
		{"", "Purchases"},
	}

	got, err := parseCategories(values)
	if err != nil {
		t.Fatalf("parse err: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("expected 4 entries, got %d: %+v", len(got), got)
	}

	if got[0].MainCategory != core.MainPurchases || got[0].DisplayOrder != 1 || !got[0].Active {
		t.Errorf("arabic purchases row = %+v", got[0])
	}
	if got[1].MealsLine == nil || !*got[1].MealsLine || got[1].SubCategory != core.SubPayroll {
		t.Errorf("meals row = %+v", got[1])
	}
	if got[2].SubCategory != core.SubPayroll || got[2].MealsLine == nil || *got[2].MealsLine {
		t.Errorf("salary row = %+v", got[2])
	}
	if got[3].Active {
		t.Errorf("inactive row should be inactive: %+v", got[3])
	}
}

func TestParseCategories_MissingHeader(t *testing.T) {
	_, err := parseCategories([][]interface{}{{"Name", "Category"}})
	if err == nil {
		t.Fatal("expected header error")
	}
	if !strings.Contains(err.Error(), "missing Item,Main") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestParseCategories_Empty(t *testing.T) {
	got, err := parseCategories(nil)
	if err != nil || got != nil {
		t.Errorf("parseCategories(nil) = %v, %v", got, err)
	}
}
