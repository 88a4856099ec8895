package core

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"1.0", "1", true},
		{"1.23", "1.23", true},
		{"1,23", "1.23", true},
		{" 2.50 ", "2.5", true},
		{"-1", "-1", true},
		{"0", "0", true},
		{"abc", "0", false},
		{"1.2.3", "0", false},
		{"1,2,3", "0", false},
		{"", "0", false},
		{".5", "0.5", true},
		{"007,250", "7.25", true},
		{"99999999999.999", "99999999999.999", true},
		{"1e9", "0", false},
		{"1E-400", "0", false},
		{"1e50000000", "0", false},
		{"99999999999.9999", "0", false},
		{"100000000000", "0", false},
		{"1.2345", "0", false},
		{"-", "0", false},
		{".", "0", false},
		{"1.", "0", false},
		{"0x10", "0", false},
		{"1 000", "0", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || !got.Equal(decimal.RequireFromString(tc.out)) {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestAmountOrZero(t *testing.T) {
	if got := AmountOrZero("garbage"); !got.IsZero() {
		t.Fatalf("expected zero, got %s", got)
	}
	if got := AmountOrZero("12,5"); !got.Equal(decimal.RequireFromString("12.5")) {
		t.Fatalf("expected 12.5, got %s", got)
	}
}

func TestAmountFromJSON(t *testing.T) {
	cases := map[string]string{
		`12.5`:     "12.5",
		`"7"`:      "7",
		`"3,25"`:   "3.25",
		`null`:     "0",
		`""`:       "0",
		`1e9`:      "0",
		`"1E-400"`: "0",
		`true`:     "0",
		``:         "0",
	}
	for in, want := range cases {
		if got := AmountFromJSON([]byte(in)); !got.Equal(decimal.RequireFromString(want)) {
			t.Fatalf("%q expected %s, got %s", in, want, got)
		}
	}
}

func TestAmountJSON(t *testing.T) {
	var items map[string]Amount
	if err := json.Unmarshal([]byte(`{"a":10,"b":"2.5","c":null,"d":"x"}`), &items); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !items["a"].Decimal().Equal(decimal.NewFromInt(10)) || !items["b"].Decimal().Equal(decimal.RequireFromString("2.5")) {
		t.Fatalf("unexpected values %v", items)
	}
	if !items["c"].Decimal().IsZero() || !items["d"].Decimal().IsZero() {
		t.Fatalf("expected malformed values to decode as zero")
	}

	b, err := json.Marshal(map[string]Amount{"a": Amount(decimal.RequireFromString("12.50"))})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"a":12.5}` {
		t.Fatalf("got %s", b)
	}
}

func TestFormatAmount(t *testing.T) {
	if got := FormatAmount(decimal.RequireFromString("3.1")); got != "3.10" {
		t.Fatalf("got %s", got)
	}
}
