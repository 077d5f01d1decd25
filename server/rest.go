package server

import (
	"net/http"
	"strconv"
	"time"
)

// statusHandler returns server status with the state of the local snapshots
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	news, schedules := s.news.Snapshot(), s.schedules.Snapshot()
	status := map[string]any{
		"status":  "ok",
		"version": s.version,
		"time":    time.Now().UTC(),
		"news": map[string]any{
			"loaded":     news.Loaded,
			"count":      len(news.Items),
			"generation": news.Generation,
		},
		"schedules": map[string]any{
			"loaded": schedules.Loaded,
			"count":  len(schedules.Items),
		},
		"publish":       s.modal.Snapshot().Phase,
		"edit_sessions": s.editor.Len(),
	}
	renderJSON(w, r, http.StatusOK, status)
}

// activityAPIHandler returns recent journal entries, newest first
func (s *Server) activityAPIHandler(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		renderError(w, r, errJournalDisabled, http.StatusNotFound)
		return
	}

	limit := activityLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			renderError(w, r, errInvalidLimit, http.StatusBadRequest)
			return
		}
		limit = n
	}

	entries, err := s.journal.Recent(r.Context(), limit)
	if err != nil {
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}
	renderJSON(w, r, http.StatusOK, entries)
}
