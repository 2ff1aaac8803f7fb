package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ganot/crewsync/internal/domain/gcaccess"
)

// handleGCAccess serves both the PIN-only and the project-scoped variant.
// Every denial returns the same body.
func (s *Server) handleGCAccess(w http.ResponseWriter, r *http.Request) {
	var req gcAccessRequest
	if err := decodeJSON(r, &req); err != nil {
		s.badRequest(w, err)
		return
	}
	if projectID := chi.URLParam(r, "projectID"); projectID != "" {
		req.ProjectID = projectID
	}

	grant, err := s.services.Pins.Validate(r.Context(), gcaccess.ValidateRequest{
		Pin:       req.Pin,
		ProjectID: req.ProjectID,
		IP:        ClientIPFromContext(r.Context()),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, grant)
}
