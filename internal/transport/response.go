package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/ganot/crewsync/internal/domain/accesslog"
	"github.com/ganot/crewsync/internal/domain/crewlog"
	"github.com/ganot/crewsync/internal/domain/gcaccess"
	"github.com/ganot/crewsync/internal/domain/project"
	"github.com/ganot/crewsync/internal/domain/reconcile"
	"github.com/ganot/crewsync/internal/domain/tmtag"
	"github.com/ganot/crewsync/internal/repository"
)

const maxBodyBytes = 1 << 20

// ErrorBody is the JSON envelope for every failed request.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries a stable code and a human-readable message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// apiError pairs an HTTP status with an error code.
type apiError struct {
	Status  int
	Code    string
	Message string
}

// mapError maps domain errors to HTTP responses. Unknown errors become a
// 500 without leaking the underlying message.
func mapError(err error) apiError {
	switch {
	case errors.Is(err, gcaccess.ErrAccessDenied):
		return apiError{http.StatusUnauthorized, "ACCESS_DENIED", gcaccess.ErrAccessDenied.Error()}
	case errors.Is(err, gcaccess.ErrMalformedPin):
		return apiError{http.StatusBadRequest, "INVALID_PIN_FORMAT", "pin must be four digits"}
	case errors.Is(err, gcaccess.ErrPinSpaceExhausted):
		return apiError{http.StatusServiceUnavailable, "PIN_UNAVAILABLE", "no free pin available, try again"}
	case errors.Is(err, project.ErrProjectNotFound),
		errors.Is(err, gcaccess.ErrProjectNotFound),
		errors.Is(err, reconcile.ErrProjectNotFound):
		return apiError{http.StatusNotFound, "PROJECT_NOT_FOUND", "project not found"}
	case errors.Is(err, crewlog.ErrCrewLogNotFound), errors.Is(err, reconcile.ErrCrewLogNotFound):
		return apiError{http.StatusNotFound, "CREW_LOG_NOT_FOUND", "crew log not found"}
	case errors.Is(err, tmtag.ErrTagNotFound):
		return apiError{http.StatusNotFound, "TM_TAG_NOT_FOUND", "t&m tag not found"}
	case errors.Is(err, tmtag.ErrInvalidTransition):
		return apiError{http.StatusConflict, "INVALID_TRANSITION", "invalid status transition"}
	case errors.Is(err, repository.ErrDuplicate):
		return apiError{http.StatusConflict, "DUPLICATE", "resource already exists"}
	case errors.Is(err, reconcile.ErrNoCrewData):
		return apiError{http.StatusUnprocessableEntity, "NO_CREW_DATA", "no crew data"}
	case errors.Is(err, reconcile.ErrMissingProject), errors.Is(err, reconcile.ErrMissingDate):
		return apiError{http.StatusUnprocessableEntity, "SYNC_PRECONDITION", err.Error()}
	case errors.Is(err, project.ErrInvalidInput),
		errors.Is(err, crewlog.ErrInvalidInput),
		errors.Is(err, tmtag.ErrInvalidInput),
		errors.Is(err, accesslog.ErrInvalidInput):
		return apiError{http.StatusBadRequest, "INVALID_INPUT", err.Error()}
	default:
		return apiError{http.StatusInternalServerError, "INTERNAL", "internal error"}
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeErrorBody(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorBody{Error: ErrorDetail{Code: code, Message: message}})
}

// decodeJSON reads a single JSON object from the request body.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("parse error: %w", err)
	}
	return nil
}
