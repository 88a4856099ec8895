package http

import (
	"net/http"

	"jard/internal/core"
)

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	if s.deps.Notifier == nil {
		notConfigured(w, "notifications")
		return
	}
	list, err := s.deps.Notifier.List(r.Context(), parseLimit(r.URL.Query(), 50, 200))
	if err != nil {
		ServiceError(w, r, err)
		return
	}
	unread := 0
	for _, n := range list {
		if !n.Read {
			unread++
		}
	}
	if list == nil {
		list = []core.Notification{}
	}
	NewResponse().JSON(map[string]any{
		"notifications": list,
		"unread":        unread,
	}).Write(w)
}

// handleEvaluateNotifications runs the checks now instead of waiting for
// the next tick. Checks whose window already holds a notification are
// skipped.
func (s *Server) handleEvaluateNotifications(w http.ResponseWriter, r *http.Request) {
	if s.deps.Notifier == nil {
		notConfigured(w, "notifications")
		return
	}
	created, err := s.deps.Notifier.Evaluate(r.Context())
	if err != nil {
		ServiceError(w, r, err)
		return
	}
	if created == nil {
		created = []core.Notification{}
	}
	NewResponse().JSON(map[string]any{"created": created}).Write(w)
}

func (s *Server) handleMarkNotificationsRead(w http.ResponseWriter, r *http.Request) {
	if s.deps.Notifier == nil {
		notConfigured(w, "notifications")
		return
	}
	n, err := s.deps.Notifier.MarkAllRead(r.Context())
	if err != nil {
		ServiceError(w, r, err)
		return
	}
	NewResponse().JSON(map[string]int{"marked": n}).Write(w)
}
