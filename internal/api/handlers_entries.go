package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/lexgest/internal/output"
)

// handleEntriesByTitle returns every stored entry for a title, one per
// source record.
func (s *Server) handleEntriesByTitle(w http.ResponseWriter, r *http.Request) {
	st := s.orchestrator.Store()
	if st == nil {
		jsonError(w, "entry store not configured", http.StatusServiceUnavailable)
		return
	}

	title := chi.URLParam(r, "title")
	entries, err := st.EntriesByTitle(r.Context(), title)
	if err != nil {
		s.log.Error("lookup entries", "title", title, "error", err)
		jsonError(w, "failed to load entries", http.StatusInternalServerError)
		return
	}
	if len(entries) == 0 {
		jsonError(w, "no entries for "+title, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := output.Write(w, entries); err != nil {
		s.log.Error("write entries", "title", title, "error", err)
	}
}
