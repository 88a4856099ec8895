package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"

	applog "jard/internal/log"
	"jard/internal/middleware/security"
	"jard/internal/middleware/trace"
	"jard/internal/services"
)

// Deps are the services the API serves. AutoSaver, Sync, Notifier and
// Pinger are optional; their routes answer 501 when missing.
type Deps struct {
	Inventory *services.InventoryService
	Reports   *services.ReportService
	AutoSaver *services.AutoSaver
	Sync      *services.SyncProcessor
	Notifier  *services.Notifier
	Pinger    services.Pinger
	Logger    *applog.Logger

	// AutosaveGrace is how long autosave stays off after /api/autosave/enable.
	AutosaveGrace time.Duration
	// ProbeTimeout bounds a ?probe=true connectivity check.
	ProbeTimeout time.Duration
	// WriteRateLimit is the per-client budget of mutating requests per minute.
	WriteRateLimit int
	// SyncBatchSize caps one manual sync pass when no SyncProcessor is wired.
	SyncBatchSize int
}

type Server struct {
	http.Server
	deps     Deps
	logger   *applog.Logger
	validate *validator.Validate
	detector *security.Detector
	tracer   *trace.Middleware
	started  time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = applog.New(applog.DefaultConfig())
	}
	if deps.AutosaveGrace < 0 {
		deps.AutosaveGrace = 0
	}
	if deps.ProbeTimeout <= 0 {
		deps.ProbeTimeout = 5 * time.Second
	}
	if deps.WriteRateLimit <= 0 {
		deps.WriteRateLimit = 120
	}
	if deps.SyncBatchSize <= 0 {
		deps.SyncBatchSize = 50
	}

	s := &Server{
		deps:     deps,
		logger:   deps.Logger.WithComponent(applog.ComponentHTTP),
		validate: NewValidator(),
		detector: security.NewDetector(),
		started:  time.Now(),
	}
	s.tracer = trace.NewMiddleware(deps.Logger, s.detector.ExtractClientIP)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.tracer.Handler)
	r.Use(middleware.Recoverer)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	r.Use(s.detector.Middleware(s.deps.Logger, false))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NotFoundError("route not found").Write(w)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusMethodNotAllowed, "method not allowed").Write(w)
	})

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	limitWrites := httprate.Limit(
		s.deps.WriteRateLimit,
		time.Minute,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			return s.detector.ExtractClientIP(r), nil
		}),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			applog.FromContext(r.Context()).WithComponent(applog.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
				applog.FieldClientIP, s.detector.ExtractClientIP(r), applog.FieldPath, r.URL.Path)
			ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded").Write(w)
		}),
	)

	r.Route("/api", func(r chi.Router) {
		r.Get("/categories", s.handleListCategories)

		r.Route("/inventory", func(r chi.Router) {
			r.Get("/", s.handleHistory)
			// Preview and drafts fire on every keystroke, so they stay
			// outside the write budget.
			r.Post("/preview", s.handlePreview)
			r.Get("/{date}", s.handleGetRecord)
			r.Post("/{date}/draft", s.handleDraft)
			r.With(limitWrites).Put("/{date}", s.handleSaveRecord)
			r.With(limitWrites).Delete("/{date}", s.handleDeleteRecord)
		})

		r.Group(func(r chi.Router) {
			r.Use(limitWrites)
			r.Post("/categories/refresh", s.handleRefreshCategories)
			r.Post("/autosave/disable", s.handleAutosaveDisable)
			r.Post("/autosave/enable", s.handleAutosaveEnable)
			r.Post("/sync", s.handleSync)
			r.Put("/connectivity", s.handleSetConnectivity)
			r.Post("/reports/monthly/sheets", s.handlePublishMonthly)
			r.Post("/notifications/evaluate", s.handleEvaluateNotifications)
			r.Post("/notifications/read", s.handleMarkNotificationsRead)
		})

		r.Get("/sync/status", s.handleSyncStatus)
		r.Get("/connectivity", s.handleGetConnectivity)
		r.Get("/reports/period", s.handlePeriodReport)
		r.Get("/reports/monthly", s.handleMonthlyReport)
		r.Get("/reports/monthly/export", s.handleMonthlyExport)
		r.Get("/reports/average-sales", s.handleAverageSales)
		r.Get("/notifications", s.handleListNotifications)
	})
	return r
}

// Shutdown stops accepting requests and drains in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	}).Write(w)
}

// handleReady reports readiness. The app works offline, so only a broken
// local cache makes it not ready.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	checks := map[string]any{}
	status, code := "ready", http.StatusOK

	st, err := s.deps.Inventory.Status(r.Context())
	if err != nil {
		checks["local_cache"] = "failed: " + err.Error()
		status, code = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["local_cache"] = "ok"
		checks["online"] = st.Online
		checks["pending"] = st.Pending
		checks["categories"] = st.Categories
	}
	if s.deps.Sync != nil {
		checks["sync_processor"] = s.deps.Sync.IsRunning()
	}
	tm := s.tracer.GetMetrics()
	checks["requests"] = map[string]int64{
		"total":           tm.TotalRequests,
		"avg_response_us": tm.AverageResponseTime,
		"suspicious":      s.detector.GetMetrics().SuspiciousRequests,
	}

	NewResponse().Status(code).JSON(map[string]any{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    checks,
	}).Write(w)
}

func notConfigured(w http.ResponseWriter, what string) {
	ErrorResponse(http.StatusNotImplemented, what+" is not configured").Write(w)
}
