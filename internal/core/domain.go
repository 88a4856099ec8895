package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the ISO date format used for record keys and the wire format.
const DateLayout = "2006-01-02"

const (
	MainPurchases MainCategory = "Purchases"
	MainExpenses  MainCategory = "Expenses"
)

const (
	BucketPurchases     Bucket = "purchases"
	BucketDamage        Bucket = "damage"
	BucketSalaries      Bucket = "salaries"
	BucketHospitality   Bucket = "hospitality"
	BucketEmployeeMeals Bucket = "employee_meals"
	BucketAssets        Bucket = "assets"
)

// Canonical sub categories that drive classification.
const (
	SubDamage      = "Damage"
	SubHospitality = "Hospitality"
	SubPayroll     = "Payroll"
	SubAssetsTools = "Assets/Tools"
)

const (
	SyncUnsaved      SyncState = "unsaved"
	SyncLocalPending SyncState = "pending"
	SyncSyncing      SyncState = "syncing"
	SyncSynced       SyncState = "synced"
)

type (
	MainCategory string
	Bucket       string
	SyncState    string

	Date struct {
		time.Time
	}

	// CategoryEntry maps an item name to its bookkeeping category.
	CategoryEntry struct {
		ItemName     string       `json:"item_name"`
		MainCategory MainCategory `json:"main_category"`
		SubCategory  string       `json:"sub_category,omitempty"` // empty when the item has no sub category
		DisplayOrder int          `json:"display_order"`
		Active       bool         `json:"is_active"`
		// MealsLine marks payroll lines that are employee meals. When nil the
		// item name is checked for a meals token instead.
		MealsLine *bool `json:"is_meals_line,omitempty"`
	}

	// LineEntry is one filled-in amount against one item for a given day.
	LineEntry struct {
		ItemName string
		Amount   decimal.Decimal
	}

	// DailyTotals holds the derived figures for one day. Never hand-edited.
	DailyTotals struct {
		Purchases     decimal.Decimal `json:"purchases"`
		Damage        decimal.Decimal `json:"damage"`
		Salaries      decimal.Decimal `json:"salaries"`
		Hospitality   decimal.Decimal `json:"hospitality"`
		EmployeeMeals decimal.Decimal `json:"employee_meals"`
		Assets        decimal.Decimal `json:"assets"`
		Expenses      decimal.Decimal `json:"expenses"`
		NetCash       decimal.Decimal `json:"net_cash"`
		NetProfit     decimal.Decimal `json:"net_profit"`
	}

	DailyInventoryRecord struct {
		Date        Date
		TotalSales  decimal.Decimal
		LineEntries map[string]decimal.Decimal
		Totals      DailyTotals
		Notes       string
		CreatedBy   string
		SyncState   SyncState
		SavedAt     time.Time
		SyncedAt    time.Time // zero until the remote store acknowledged the write
		UpdatedAt   time.Time // server timestamp from the remote store
	}

	// PeriodSummary is the re-derived sum of a range of daily records.
	PeriodSummary struct {
		DailyTotals
		TotalSales decimal.Decimal `json:"total_sales"`
		Days       int             `json:"days"`
	}
)

var (
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyItemName = errors.New("empty item name")
	ErrInvalidMain   = errors.New("invalid main category")
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

// DateOf truncates t to its calendar day in t's location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// AddDays returns the date n calendar days later (earlier for negative n).
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

func (d Date) Before(o Date) bool { return d.Time.Before(o.Time) }
func (d Date) After(o Date) bool  { return d.Time.After(o.Time) }

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MonthRange returns the first and last day of the given month.
func MonthRange(year, month int) (Date, Date, error) {
	if month < 1 || month > 12 {
		return Date{}, Date{}, fmt.Errorf("%w: month %d", ErrInvalidDate, month)
	}
	first := NewDate(year, month, 1)
	last := Date{Time: first.AddDate(0, 1, -1)}
	return first, last, nil
}

// DaysInMonth returns the number of days of the given month.
func DaysInMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func (e CategoryEntry) Validate() error {
	if strings.TrimSpace(e.ItemName) == "" {
		return ErrEmptyItemName
	}
	if _, ok := ParseMainCategory(string(e.MainCategory)); !ok {
		return fmt.Errorf("%w: %q", ErrInvalidMain, e.MainCategory)
	}
	return nil
}

// IsPending reports whether the record still has a local write the remote
// store has not acknowledged.
func (r DailyInventoryRecord) IsPending() bool {
	return r.SyncState == SyncLocalPending || r.SyncState == SyncSyncing
}

// Entries returns the record's line entries sorted by item name.
func (r DailyInventoryRecord) Entries() []LineEntry {
	return LineEntriesFromMap(r.LineEntries)
}
