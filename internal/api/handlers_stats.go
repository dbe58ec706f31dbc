package api

import (
	"encoding/json"
	"net/http"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"queue_depth": s.orchestrator.QueueDepth(),
		"assembly":    s.orchestrator.Stats().Snapshot(),
	}
	if st := s.orchestrator.Store(); st != nil {
		n, err := st.Count(r.Context())
		if err != nil {
			s.log.Error("count entries", "error", err)
			jsonError(w, "failed to count stored entries", http.StatusInternalServerError)
			return
		}
		resp["stored_entries"] = n
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
