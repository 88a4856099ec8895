// Package http provides the JSON API over the inventory services.
//
// This file implements request parsing and validation: path and query
// parameters, JSON bodies and the validator rules they are checked with.

package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"jard/internal/core"
	"jard/internal/services"
)

const maxBodyBytes = 1 << 20

// AmountText is an amount as typed into the form. Clients may send it as
// a JSON string or number; both keep their exact digits.
type AmountText string

func (a *AmountText) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*a = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = AmountText(s)
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("amount must be a number or a string: %w", err)
		}
		*a = AmountText(n.String())
	}
	return nil
}

// Decimal returns the parsed amount; blank text counts as zero.
func (a AmountText) Decimal() decimal.Decimal {
	return core.AmountOrZero(string(a))
}

// InventoryRequest is the body of PUT /api/inventory/{date} and of a
// draft.
type InventoryRequest struct {
	TotalSales AmountText            `json:"total_sales" validate:"amount"`
	Items      map[string]AmountText `json:"items" validate:"max=500,dive,keys,required,max=120,endkeys,amount"`
	Notes      string                `json:"notes" validate:"max=2000"`
	CreatedBy  string                `json:"created_by" validate:"max=120"`
}

// SaveInput converts the request for the given date. Blank item amounts
// are dropped.
func (req InventoryRequest) SaveInput(date core.Date) services.SaveInput {
	entries := make([]core.LineEntry, 0, len(req.Items))
	for name, raw := range req.Items {
		name = sanitizeInput(name)
		if name == "" || strings.TrimSpace(string(raw)) == "" {
			continue
		}
		entries = append(entries, core.LineEntry{ItemName: name, Amount: raw.Decimal()})
	}
	return services.SaveInput{
		Date:      date,
		Sales:     req.TotalSales.Decimal(),
		Entries:   entries,
		Notes:     sanitizeInput(req.Notes),
		CreatedBy: sanitizeInput(req.CreatedBy),
	}
}

// PreviewRequest carries raw form text. It is never rejected; bad amounts
// count as zero.
type PreviewRequest struct {
	TotalSales AmountText            `json:"total_sales"`
	Items      map[string]AmountText `json:"items"`
}

func (req PreviewRequest) text() (string, map[string]string) {
	return string(req.TotalSales), req.itemsText()
}

func (req PreviewRequest) itemsText() map[string]string {
	items := make(map[string]string, len(req.Items))
	for k, v := range req.Items {
		items[sanitizeInput(k)] = string(v)
	}
	return items
}

// MonthRequest selects one calendar month.
type MonthRequest struct {
	Year  int `json:"year" validate:"required,min=2000,max=2100"`
	Month int `json:"month" validate:"required,min=1,max=12"`
}

// ConnectivityRequest sets the online flag by hand.
type ConnectivityRequest struct {
	Online *bool `json:"online" validate:"required"`
}

// NewValidator returns a validator that reports fields by their JSON name
// and knows the "amount" rule.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("amount", func(fl validator.FieldLevel) bool {
		s := strings.TrimSpace(fl.Field().String())
		if s == "" {
			return true
		}
		_, err := core.ParseAmount(s)
		return err == nil
	})
	return v
}

// validationFields flattens validator errors into field -> rule.
func validationFields(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		field := fe.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		out[field] = fe.Tag()
	}
	return out
}

// decodeJSON reads a JSON body into dst. An empty body leaves dst as is.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// bind decodes and validates a JSON body, writing the error response
// itself. It reports whether the handler should go on.
func (s *Server) bind(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := decodeJSON(w, r, dst); err != nil {
		BadRequestError(err.Error()).Write(w)
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		if fields := validationFields(err); fields != nil {
			ValidationError("invalid request", fields).Write(w)
			return false
		}
		ServiceError(w, r, err)
		return false
	}
	return true
}

// pathDate parses the {date} URL parameter.
func pathDate(r *http.Request) (core.Date, error) {
	return core.ParseDate(chi.URLParam(r, "date"))
}

// parseMonthQuery reads year and month. Both are required.
func parseMonthQuery(q url.Values) (int, int, error) {
	year, err := strconv.Atoi(strings.TrimSpace(q.Get("year")))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: year %q", core.ErrInvalidDate, q.Get("year"))
	}
	month, err := strconv.Atoi(strings.TrimSpace(q.Get("month")))
	if err != nil || month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("%w: month %q", core.ErrInvalidDate, q.Get("month"))
	}
	return year, month, nil
}

// parsePeriodQuery reads the inclusive from/to range.
func parsePeriodQuery(q url.Values) (core.Date, core.Date, error) {
	from, err := core.ParseDate(q.Get("from"))
	if err != nil {
		return core.Date{}, core.Date{}, err
	}
	to, err := core.ParseDate(q.Get("to"))
	if err != nil {
		return core.Date{}, core.Date{}, err
	}
	return from, to, nil
}

// parseLimit reads ?limit=, clamped to [1, max].
func parseLimit(q url.Values, def, max int) int {
	n, err := strconv.Atoi(strings.TrimSpace(q.Get("limit")))
	if err != nil || n < 1 {
		return def
	}
	if n > max {
		return max
	}
	return n
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
