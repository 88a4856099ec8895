package http

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"jard/internal/core"
	applog "jard/internal/log"
	"jard/internal/report"
)

func (s *Server) handlePeriodReport(w http.ResponseWriter, r *http.Request) {
	from, to, err := parsePeriodQuery(r.URL.Query())
	if err != nil {
		ServiceError(w, r, err)
		return
	}
	sum, err := s.deps.Reports.Period(r.Context(), from, to)
	if err != nil {
		ServiceError(w, r, err)
		return
	}
	NewResponse().JSON(map[string]any{
		"from":    from,
		"to":      to,
		"summary": sum,
	}).Write(w)
}

func (s *Server) handleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	year, month, err := parseMonthQuery(r.URL.Query())
	if err != nil {
		ServiceError(w, r, err)
		return
	}
	sum, err := s.deps.Reports.Monthly(r.Context(), year, month)
	if err != nil {
		ServiceError(w, r, err)
		return
	}
	m, err := s.deps.Reports.MonthlyMatrix(r.Context(), year, month)
	if err != nil {
		ServiceError(w, r, err)
		return
	}
	NewResponse().JSON(map[string]any{
		"year":    year,
		"month":   month,
		"summary": sum,
		"header":  m.Header(),
		"rows":    m.Rows(),
	}).Write(w)
}

// handleMonthlyExport streams the matrix as a file. It is rendered into a
// buffer first so a failure still yields a clean error response.
func (s *Server) handleMonthlyExport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	year, month, err := parseMonthQuery(q)
	if err != nil {
		ServiceError(w, r, err)
		return
	}
	format, err := report.ParseFormat(q.Get("format"))
	if err != nil {
		ServiceError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := s.deps.Reports.ExportMonthly(r.Context(), &buf, year, month, format); err != nil {
		ServiceError(w, r, err)
		return
	}
	name := fmt.Sprintf("inventory-%04d-%02d.%s", year, month, format)
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (s *Server) handlePublishMonthly(w http.ResponseWriter, r *http.Request) {
	var req MonthRequest
	if !s.bind(w, r, &req) {
		return
	}
	ref, err := s.deps.Reports.PublishMonthly(r.Context(), req.Year, req.Month)
	if err != nil {
		ServiceError(w, r, err)
		return
	}
	applog.FromContext(r.Context()).InfoContext(r.Context(), "Monthly report published",
		applog.FieldYear, req.Year, applog.FieldMonth, req.Month, applog.FieldSheetsRef, ref)
	NewResponse().JSON(map[string]string{"ref": ref}).Write(w)
}

func (s *Server) handleAverageSales(w http.ResponseWriter, r *http.Request) {
	avg, err := s.deps.Inventory.AverageSales(r.Context())
	if err != nil {
		ServiceError(w, r, err)
		return
	}
	NewResponse().JSON(map[string]any{
		"average": core.FormatAmount(avg.Average),
		"total":   core.FormatAmount(avg.Total),
		"days":    avg.Days,
		"latest":  avg.Latest,
	}).Write(w)
}
