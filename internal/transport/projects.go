package transport

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ganot/crewsync/internal/domain/accesslog"
	"github.com/ganot/crewsync/internal/domain/project"
)

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := decodeJSON(r, &req); err != nil {
		s.badRequest(w, err)
		return
	}

	proj, err := s.services.Projects.Create(r.Context(), project.CreateRequest{
		ID:             req.ID,
		Name:           req.Name,
		ClientCompany:  req.ClientCompany,
		GCEmail:        req.GCEmail,
		LaborRate:      req.LaborRate,
		ContractAmount: req.ContractAmount,
		Status:         req.Status,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	operator, _ := OperatorFromContext(r.Context())
	s.logger.Info("project created via api", "project_id", proj.ID, "operator", operator)
	writeJSON(w, http.StatusCreated, toProjectResponse(proj))
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.services.Projects.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if summaries == nil {
		summaries = []project.Summary{}
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	proj, err := s.services.Projects.Get(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProjectResponse(proj))
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := s.services.Projects.Delete(r.Context(), chi.URLParam(r, "projectID")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleEnsurePin(w http.ResponseWriter, r *http.Request) {
	info, err := s.services.Pins.EnsurePin(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleIssuePin(w http.ResponseWriter, r *http.Request) {
	info, err := s.services.Pins.IssuePin(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	operator, _ := OperatorFromContext(r.Context())
	s.logger.Info("gc pin issued via api", "project_id", info.ProjectID, "operator", operator)
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleListAccessLogs(w http.ResponseWriter, r *http.Request) {
	opts := accesslog.ListOptions{ProjectID: chi.URLParam(r, "projectID")}
	if status := r.URL.Query().Get("status"); status != "" {
		st := accesslog.Status(status)
		opts.Status = &st
	}
	var err error
	if opts.Limit, opts.Offset, err = pagination(r); err != nil {
		s.badRequest(w, err)
		return
	}

	entries, err := s.services.AccessLogs.List(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if entries == nil {
		entries = []accesslog.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func pagination(r *http.Request) (limit, offset int, err error) {
	q := r.URL.Query()
	if v := q.Get("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil {
			return 0, 0, err
		}
	}
	if v := q.Get("offset"); v != "" {
		if offset, err = strconv.Atoi(v); err != nil {
			return 0, 0, err
		}
	}
	return limit, offset, nil
}
