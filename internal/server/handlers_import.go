package server

import (
	"net/http"
)

// handleImportHistory accepts a workout history CSV export in the request body
// and imports it for the calling user.
func (s *Server) handleImportHistory(w http.ResponseWriter, r *http.Request) {
	if s.importer == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "import not configured"})
		return
	}

	result, err := s.importer.Ingest(r.Context(), r.Body, userIDFromRequest(r))
	if err != nil {
		s.log.Error("history import failed", "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, result)
}
