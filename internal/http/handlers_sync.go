package http

import (
	"net/http"
	"time"

	"jard/internal/services"
)

// handleSync runs one pass over pending records now.
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	inv := s.deps.Inventory
	if !inv.Connectivity().Online() {
		ServiceError(w, r, services.ErrOffline)
		return
	}
	var (
		res services.SyncResult
		err error
	)
	if s.deps.Sync != nil {
		res = s.deps.Sync.ProcessNow(r.Context())
	} else {
		res, err = inv.SyncPending(r.Context(), s.deps.SyncBatchSize)
	}
	if err != nil {
		ServiceError(w, r, err)
		return
	}
	NewResponse().JSON(res).Write(w)
}

type syncStatusResponse struct {
	services.SyncStatus
	AutosaveEnabled bool                 `json:"autosave_enabled"`
	DraftsPending   int                  `json:"drafts_pending"`
	LastRun         *time.Time           `json:"last_run,omitempty"`
	LastResult      *services.SyncResult `json:"last_result,omitempty"`
}

func (s *Server) handleSyncStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.deps.Inventory.Status(r.Context())
	if err != nil {
		ServiceError(w, r, err)
		return
	}
	resp := syncStatusResponse{SyncStatus: st}
	if s.deps.AutoSaver != nil {
		resp.AutosaveEnabled = s.deps.AutoSaver.Enabled()
		resp.DraftsPending = s.deps.AutoSaver.Pending()
	}
	if s.deps.Sync != nil {
		if res, at := s.deps.Sync.LastResult(); !at.IsZero() {
			resp.LastRun = &at
			resp.LastResult = &res
		}
	}
	NewResponse().JSON(resp).Write(w)
}

// handleGetConnectivity returns the online flag. With ?probe=true the
// hosted store is pinged first.
func (s *Server) handleGetConnectivity(w http.ResponseWriter, r *http.Request) {
	conn := s.deps.Inventory.Connectivity()
	if r.URL.Query().Get("probe") == "true" && s.deps.Pinger != nil {
		conn.Probe(r.Context(), s.deps.Pinger, s.deps.ProbeTimeout)
	}
	NewResponse().JSON(map[string]bool{"online": conn.Online()}).Write(w)
}

func (s *Server) handleSetConnectivity(w http.ResponseWriter, r *http.Request) {
	var req ConnectivityRequest
	if !s.bind(w, r, &req) {
		return
	}
	conn := s.deps.Inventory.Connectivity()
	conn.Set(r.Context(), *req.Online)
	NewResponse().JSON(map[string]bool{"online": conn.Online()}).Write(w)
}
