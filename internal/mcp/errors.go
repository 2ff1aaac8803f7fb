package mcp

import (
	"errors"
	"fmt"

	"github.com/ganot/crewsync/internal/domain/accesslog"
	"github.com/ganot/crewsync/internal/domain/crewlog"
	"github.com/ganot/crewsync/internal/domain/gcaccess"
	"github.com/ganot/crewsync/internal/domain/project"
	"github.com/ganot/crewsync/internal/domain/reconcile"
	"github.com/ganot/crewsync/internal/repository"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	if e.RecoveryHint != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.RecoveryHint)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to MCP error codes. Unknown errors are
// returned unchanged.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, project.ErrProjectNotFound),
		errors.Is(err, gcaccess.ErrProjectNotFound),
		errors.Is(err, reconcile.ErrProjectNotFound):
		return &APIError{Code: "PROJECT_NOT_FOUND", Message: "project not found", RecoveryHint: "Check the project id or restore the project, then retry"}
	case errors.Is(err, crewlog.ErrCrewLogNotFound), errors.Is(err, reconcile.ErrCrewLogNotFound):
		return &APIError{Code: "CREW_LOG_NOT_FOUND", Message: "crew log not found", RecoveryHint: "Use list_unsynced_crew_logs to find ids"}
	case errors.Is(err, reconcile.ErrNoCrewData):
		return &APIError{Code: "NO_CREW_DATA", Message: "no crew data"}
	case errors.Is(err, reconcile.ErrMissingProject), errors.Is(err, reconcile.ErrMissingDate):
		return &APIError{Code: "SYNC_PRECONDITION", Message: err.Error(), RecoveryHint: "Fix the crew log's project or date"}
	case errors.Is(err, gcaccess.ErrPinSpaceExhausted):
		return &APIError{Code: "PIN_UNAVAILABLE", Message: "no free pin available", RecoveryHint: "Retry shortly"}
	case errors.Is(err, repository.ErrDuplicate):
		return &APIError{Code: "DUPLICATE", Message: "resource already exists"}
	case errors.Is(err, project.ErrInvalidInput),
		errors.Is(err, crewlog.ErrInvalidInput),
		errors.Is(err, accesslog.ErrInvalidInput):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error()}
	default:
		return err
	}
}
