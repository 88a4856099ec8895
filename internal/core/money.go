// Package core provides amount parsing and handling utilities.
//
// Amounts are entered as free-form text. Parsing never panics and the
// aggregation entry points treat anything unparseable as zero.
package core

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Amounts are stored as NUMERIC(14,3): at most 11 integer digits and 3
// fraction digits.
const (
	maxAmountIntDigits  = 11
	maxAmountFracDigits = 3
)

var amountPattern = regexp.MustCompile(`^([+-]?)([0-9]*)(?:[.,]([0-9]+))?$`)

// ParseAmount converts a user-entered decimal string to a decimal.
//
// It accepts plain digits with an optional sign and a single dot (12.34) or
// comma (12,34) decimal separator, plus surrounding whitespace. Exponents,
// more than 3 fraction digits and values of 10^11 or more are rejected with
// ErrInvalidAmount, as is empty or non-numeric input.
//
// Examples:
//   ParseAmount("12.34") -> 12.34, nil
//   ParseAmount(" 12,5 ") -> 12.5, nil
//   ParseAmount("1e9") -> 0, ErrInvalidAmount
//   ParseAmount("abc") -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	m := amountPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return decimal.Zero, ErrInvalidAmount
	}
	sign, whole, frac := m[1], strings.TrimLeft(m[2], "0"), m[3]
	if m[2] == "" && frac == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	if len(whole) > maxAmountIntDigits || len(frac) > maxAmountFracDigits {
		return decimal.Zero, ErrInvalidAmount
	}
	if whole == "" {
		whole = "0"
	}
	if frac != "" {
		whole += "." + frac
	}
	d, err := decimal.NewFromString(sign + whole)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// AmountOrZero parses s and falls back to zero on malformed input.
func AmountOrZero(s string) decimal.Decimal {
	d, err := ParseAmount(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// AmountFromJSON decodes a stored amount. Stored values may be JSON numbers,
// numeric strings, null or garbage left behind by older clients.
func AmountFromJSON(raw []byte) decimal.Decimal {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return decimal.Zero
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return decimal.Zero
		}
		return AmountOrZero(s)
	}
	return AmountOrZero(string(raw))
}

// FormatAmount renders d with two decimals, the precision used on screen and
// in exports.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Amount is a decimal with a lenient JSON decoding and a bare-number
// encoding, matching what the hosted backend stores.
type Amount decimal.Decimal

func (a Amount) Decimal() decimal.Decimal { return decimal.Decimal(a) }

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(a).String()), nil
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	*a = Amount(AmountFromJSON(b))
	return nil
}
