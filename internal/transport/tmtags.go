package transport

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ganot/crewsync/internal/domain/tmtag"
)

func (s *Server) handleCreateTag(w http.ResponseWriter, r *http.Request) {
	var req createTagRequest
	if err := decodeJSON(r, &req); err != nil {
		s.badRequest(w, err)
		return
	}

	tag, err := s.services.Tags.Create(r.Context(), tmtag.CreateRequest{
		ProjectID:         req.ProjectID,
		DateOfWork:        req.DateOfWork,
		ProjectName:       req.ProjectName,
		CompanyName:       req.CompanyName,
		GCEmail:           req.GCEmail,
		Title:             req.Title,
		DescriptionOfWork: req.DescriptionOfWork,
		LaborEntries:      req.LaborEntries,
		MaterialEntries:   req.MaterialEntries,
		EquipmentEntries:  req.EquipmentEntries,
		OtherEntries:      req.OtherEntries,
		Status:            req.Status,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tag)
}

func (s *Server) handleGetTag(w http.ResponseWriter, r *http.Request) {
	tag, err := s.services.Tags.Get(r.Context(), chi.URLParam(r, "tagID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tag)
}

func (s *Server) handleUpdateTag(w http.ResponseWriter, r *http.Request) {
	var req updateTagRequest
	if err := decodeJSON(r, &req); err != nil {
		s.badRequest(w, err)
		return
	}

	tag, err := s.services.Tags.Update(r.Context(), tmtag.UpdateRequest{
		ID:                chi.URLParam(r, "tagID"),
		Title:             req.Title,
		DescriptionOfWork: req.DescriptionOfWork,
		LaborEntries:      req.LaborEntries,
		MaterialEntries:   req.MaterialEntries,
		EquipmentEntries:  req.EquipmentEntries,
		OtherEntries:      req.OtherEntries,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tag)
}

func (s *Server) handleTransitionTag(w http.ResponseWriter, r *http.Request) {
	var req transitionRequest
	if err := decodeJSON(r, &req); err != nil {
		s.badRequest(w, err)
		return
	}

	tag, err := s.services.Tags.Transition(r.Context(), chi.URLParam(r, "tagID"), req.Status)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tag)
}

// handleListTags accepts a comma separated status filter.
func (s *Server) handleListTags(w http.ResponseWriter, r *http.Request) {
	opts := tmtag.ListOptions{ProjectID: chi.URLParam(r, "projectID")}
	if raw := r.URL.Query().Get("status"); raw != "" {
		for _, st := range strings.Split(raw, ",") {
			if st = strings.TrimSpace(st); st != "" {
				opts.Statuses = append(opts.Statuses, tmtag.Status(st))
			}
		}
	}
	var err error
	if opts.Limit, opts.Offset, err = pagination(r); err != nil {
		s.badRequest(w, err)
		return
	}

	tags, err := s.services.Tags.List(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if tags == nil {
		tags = []tmtag.Tag{}
	}
	writeJSON(w, http.StatusOK, tags)
}
