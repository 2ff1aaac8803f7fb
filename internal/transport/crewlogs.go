package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ganot/crewsync/internal/domain/crewlog"
	"github.com/ganot/crewsync/internal/domain/reconcile"
)

func (s *Server) handleCreateCrewLog(w http.ResponseWriter, r *http.Request) {
	var req createCrewLogRequest
	if err := decodeJSON(r, &req); err != nil {
		s.badRequest(w, err)
		return
	}

	log, err := s.services.CrewLogs.Create(r.Context(), crewlog.CreateRequest{
		ProjectID:       req.ProjectID,
		Date:            req.Date,
		CrewMembers:     req.CrewMembers,
		WorkDescription: req.WorkDescription,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, log)
}

func (s *Server) handleGetCrewLog(w http.ResponseWriter, r *http.Request) {
	log, err := s.services.CrewLogs.Get(r.Context(), chi.URLParam(r, "crewLogID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, log)
}

func (s *Server) handleUpdateCrewLog(w http.ResponseWriter, r *http.Request) {
	var req updateCrewLogRequest
	if err := decodeJSON(r, &req); err != nil {
		s.badRequest(w, err)
		return
	}

	log, err := s.services.CrewLogs.Update(r.Context(), crewlog.UpdateRequest{
		ID:              chi.URLParam(r, "crewLogID"),
		Date:            req.Date,
		CrewMembers:     req.CrewMembers,
		WorkDescription: req.WorkDescription,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, log)
}

// handleManualSync reports the outcome synchronously. A failed sync still
// returns the result body so the caller sees which crew log is stuck.
func (s *Server) handleManualSync(w http.ResponseWriter, r *http.Request) {
	res, err := s.services.Sync.ManualSync(r.Context(), chi.URLParam(r, "crewLogID"))
	if err != nil {
		if res == nil {
			s.writeError(w, r, err)
			return
		}
		apiErr := mapError(err)
		if apiErr.Status >= http.StatusInternalServerError {
			s.logger.Error("manual sync failed", "crew_log_id", res.CrewLogID, "error", err)
		}
		writeJSON(w, apiErr.Status, res)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleListUnsynced(w http.ResponseWriter, r *http.Request) {
	logs, err := s.services.CrewLogs.ListUnsynced(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if logs == nil {
		logs = []crewlog.CrewLog{}
	}
	writeJSON(w, http.StatusOK, logs)
}

func (s *Server) handleRetryPending(w http.ResponseWriter, r *http.Request) {
	results, err := s.services.Sync.RetryPending(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if results == nil {
		results = []reconcile.Result{}
	}
	writeJSON(w, http.StatusOK, results)
}
