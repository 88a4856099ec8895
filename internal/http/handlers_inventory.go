package http

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"jard/internal/core"
	applog "jard/internal/log"
)

// RecordResponse is the JSON view of one daily record.
type RecordResponse struct {
	Date          core.Date                  `json:"inventory_date"`
	TotalSales    decimal.Decimal            `json:"total_sales"`
	PurchaseItems map[string]decimal.Decimal `json:"purchase_items"`
	Totals        core.DailyTotals           `json:"totals"`
	Notes         string                     `json:"notes"`
	CreatedBy     string                     `json:"created_by"`
	SyncState     core.SyncState             `json:"sync_state"`
	SavedAt       *time.Time                 `json:"saved_at,omitempty"`
	SyncedAt      *time.Time                 `json:"synced_at,omitempty"`
	UpdatedAt     *time.Time                 `json:"updated_at,omitempty"`
}

func newRecordResponse(rec core.DailyInventoryRecord) RecordResponse {
	items := rec.LineEntries
	if items == nil {
		items = map[string]decimal.Decimal{}
	}
	return RecordResponse{
		Date:          rec.Date,
		TotalSales:    rec.TotalSales,
		PurchaseItems: items,
		Totals:        rec.Totals,
		Notes:         rec.Notes,
		CreatedBy:     rec.CreatedBy,
		SyncState:     rec.SyncState,
		SavedAt:       timePtr(rec.SavedAt),
		SyncedAt:      timePtr(rec.SyncedAt),
		UpdatedAt:     timePtr(rec.UpdatedAt),
	}
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	reg := s.deps.Inventory.Registry()
	NewResponse().JSON(map[string]any{
		"version":    reg.Version(),
		"categories": reg.Entries(),
	}).Write(w)
}

func (s *Server) handleRefreshCategories(w http.ResponseWriter, r *http.Request) {
	n, err := s.deps.Inventory.RefreshCategories(r.Context())
	if err != nil {
		ServiceError(w, r, err)
		return
	}
	NewResponse().JSON(map[string]any{
		"count":   n,
		"version": s.deps.Inventory.Registry().Version(),
	}).Write(w)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req PreviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	sales, items := req.text()
	NewResponse().JSON(s.deps.Inventory.Preview(sales, items)).Write(w)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	records, err := s.deps.Inventory.History(r.Context(), parseLimit(r.URL.Query(), 30, 366))
	if err != nil {
		ServiceError(w, r, err)
		return
	}
	out := make([]RecordResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, newRecordResponse(rec))
	}
	NewResponse().JSON(map[string]any{"records": out}).Write(w)
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	date, err := pathDate(r)
	if err != nil {
		ServiceError(w, r, err)
		return
	}
	rec, err := s.deps.Inventory.Load(r.Context(), date)
	if err != nil {
		ServiceError(w, r, err)
		return
	}
	NewResponse().JSON(newRecordResponse(rec)).Write(w)
}

func (s *Server) handleSaveRecord(w http.ResponseWriter, r *http.Request) {
	date, err := pathDate(r)
	if err != nil {
		ServiceError(w, r, err)
		return
	}
	var req InventoryRequest
	if !s.bind(w, r, &req) {
		return
	}
	// An explicit save supersedes any draft still waiting for its timer.
	if s.deps.AutoSaver != nil {
		s.deps.AutoSaver.Cancel(date)
	}
	rec, err := s.deps.Inventory.Save(r.Context(), req.SaveInput(date))
	if err != nil {
		ServiceError(w, r, err)
		return
	}
	applog.NewStructuredLogger(applog.FromContext(r.Context())).LogRecordSaved(r.Context(),
		date.String(), string(rec.SyncState),
		core.FormatAmount(rec.TotalSales), core.FormatAmount(rec.Totals.NetProfit))
	NewResponse().JSON(newRecordResponse(rec)).Write(w)
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	date, err := pathDate(r)
	if err != nil {
		ServiceError(w, r, err)
		return
	}
	if s.deps.AutoSaver != nil {
		s.deps.AutoSaver.Cancel(date)
	}
	if err := s.deps.Inventory.Delete(r.Context(), date); err != nil {
		ServiceError(w, r, err)
		return
	}
	NewResponse().Status(http.StatusNoContent).Write(w)
}

func (s *Server) handleDraft(w http.ResponseWriter, r *http.Request) {
	if s.deps.AutoSaver == nil {
		notConfigured(w, "autosave")
		return
	}
	date, err := pathDate(r)
	if err != nil {
		ServiceError(w, r, err)
		return
	}
	var req InventoryRequest
	if !s.bind(w, r, &req) {
		return
	}
	scheduled := s.deps.AutoSaver.Schedule(req.SaveInput(date))
	NewResponse().Status(http.StatusAccepted).JSON(map[string]any{
		"scheduled": scheduled,
		"preview":   s.deps.Inventory.Preview(string(req.TotalSales), PreviewRequest{Items: req.Items}.itemsText()),
	}).Write(w)
}

func (s *Server) handleAutosaveDisable(w http.ResponseWriter, r *http.Request) {
	if s.deps.AutoSaver == nil {
		notConfigured(w, "autosave")
		return
	}
	s.deps.AutoSaver.Disable()
	NewResponse().JSON(map[string]bool{"enabled": false}).Write(w)
}

func (s *Server) handleAutosaveEnable(w http.ResponseWriter, r *http.Request) {
	if s.deps.AutoSaver == nil {
		notConfigured(w, "autosave")
		return
	}
	s.deps.AutoSaver.EnableAfter(s.deps.AutosaveGrace)
	NewResponse().JSON(map[string]any{
		"enabled":    s.deps.AutoSaver.Enabled(),
		"enables_in": s.deps.AutosaveGrace.String(),
	}).Write(w)
}
