package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"jard/internal/cache"
	"jard/internal/core"
	"jard/internal/report"
	"jard/internal/sheets"
)

var (
	ErrInvalidRange = errors.New("invalid date range")

	// ErrSheetsDisabled is returned by PublishMonthly when no spreadsheet
	// target is configured.
	ErrSheetsDisabled = errors.New("no spreadsheet target configured")
)

// RangeSource returns stored records for an inclusive date range.
type RangeSource interface {
	Range(ctx context.Context, from, to core.Date) ([]core.DailyInventoryRecord, error)
}

// ReportService computes period summaries and monthly exports. Every figure
// is re-derived from line entries with the current category registry.
type ReportService struct {
	source    RangeSource
	agg       *core.Aggregator
	registry  *core.Registry
	summaries cache.Cache[core.PeriodSummary]
	writer    sheets.MatrixWriter
	sheetName func(year, month int) string
	currency  string
}

// NewReportService wires reports to the coordinator. summaries may be nil to
// disable caching; cached entries are dropped whenever records change.
func NewReportService(inv *InventoryService, summaries cache.Cache[core.PeriodSummary], currency string) *ReportService {
	s := &ReportService{
		source:    inv,
		agg:       inv.Aggregator(),
		registry:  inv.Registry(),
		summaries: summaries,
		currency:  currency,
		sheetName: func(year, month int) string { return fmt.Sprintf("Inventory %04d-%02d", year, month) },
	}
	if summaries != nil {
		inv.OnRecordsChanged(summaries.Clear)
	}
	return s
}

// WithSheets sets the target used by PublishMonthly. name picks the sheet
// title for a month; nil keeps the default.
func (s *ReportService) WithSheets(w sheets.MatrixWriter, name func(year, month int) string) *ReportService {
	s.writer = w
	if name != nil {
		s.sheetName = name
	}
	return s
}

// Period summarises [from, to].
func (s *ReportService) Period(ctx context.Context, from, to core.Date) (core.PeriodSummary, error) {
	if from.IsZero() || to.IsZero() || to.Before(from) {
		return core.PeriodSummary{}, fmt.Errorf("%w: %s..%s", ErrInvalidRange, from, to)
	}
	// The registry version is part of the key so a category reload never
	// serves summaries computed with the old table.
	key := fmt.Sprintf("%s:%s:v%d", from, to, s.registry.Version())
	var gen uint64
	if s.summaries != nil {
		if sum, ok := s.summaries.Get(key); ok {
			return sum, nil
		}
		gen = s.summaries.Generation()
	}

	records, err := s.source.Range(ctx, from, to)
	if err != nil {
		return core.PeriodSummary{}, err
	}
	sum := s.agg.AggregatePeriod(records)
	if s.summaries != nil {
		// A save during the read already cleared the cache; keep this
		// summary out of it.
		s.summaries.SetAt(key, sum, gen)
	}
	return sum, nil
}

// Monthly summarises one calendar month.
func (s *ReportService) Monthly(ctx context.Context, year, month int) (core.PeriodSummary, error) {
	from, to, err := core.MonthRange(year, month)
	if err != nil {
		return core.PeriodSummary{}, fmt.Errorf("%w: %v", ErrInvalidRange, err)
	}
	return s.Period(ctx, from, to)
}

// MonthlyMatrix builds the item-by-day matrix for one month.
func (s *ReportService) MonthlyMatrix(ctx context.Context, year, month int) (report.Matrix, error) {
	from, to, err := core.MonthRange(year, month)
	if err != nil {
		return report.Matrix{}, fmt.Errorf("%w: %v", ErrInvalidRange, err)
	}
	records, err := s.source.Range(ctx, from, to)
	if err != nil {
		return report.Matrix{}, err
	}
	m, err := report.BuildMonthly(s.agg, year, month, records)
	if err != nil {
		return report.Matrix{}, err
	}
	m.Currency = s.currency
	return m, nil
}

// ExportMonthly renders the monthly matrix to w.
func (s *ReportService) ExportMonthly(ctx context.Context, w io.Writer, year, month int, format report.Format) error {
	m, err := s.MonthlyMatrix(ctx, year, month)
	if err != nil {
		return err
	}
	if err := report.Write(w, format, m); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Monthly matrix exported", "component", "report",
		"year", year, "month", month, "format", string(format), "items", len(m.Items))
	return nil
}

// PublishMonthly writes the monthly matrix to the configured spreadsheet.
func (s *ReportService) PublishMonthly(ctx context.Context, year, month int) (string, error) {
	if s.writer == nil {
		return "", ErrSheetsDisabled
	}
	m, err := s.MonthlyMatrix(ctx, year, month)
	if err != nil {
		return "", err
	}
	ref, err := s.writer.WriteMatrix(ctx, s.sheetName(year, month), m.Rows())
	if err != nil {
		return "", fmt.Errorf("publish %04d-%02d: %w", year, month, err)
	}
	return ref, nil
}
