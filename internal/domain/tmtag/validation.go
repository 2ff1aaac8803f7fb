package tmtag

import (
	"strings"

	"github.com/ganot/crewsync/internal/calendar"
)

// ValidateCreateInput validates fields required to create a tag.
func ValidateCreateInput(req CreateRequest) error {
	if strings.TrimSpace(req.ProjectID) == "" {
		return ErrInvalidInput
	}
	if _, err := calendar.Normalize(req.DateOfWork); err != nil {
		return ErrInvalidInput
	}
	if err := validateLaborEntries(req.LaborEntries); err != nil {
		return err
	}
	if req.Status != "" && !knownStatus(req.Status) {
		return ErrInvalidInput
	}
	return nil
}

// validateLaborEntries rejects blank worker names and negative hours in
// any bucket.
func validateLaborEntries(entries []LaborEntry) error {
	for _, e := range entries {
		if strings.TrimSpace(e.WorkerName) == "" {
			return ErrInvalidInput
		}
		if e.StHours < 0 || e.OtHours < 0 || e.DtHours < 0 || e.PotHours < 0 || e.TotalHours < 0 {
			return ErrInvalidInput
		}
	}
	return nil
}

// ValidateTransition validates a requested status change.
func ValidateTransition(from, to Status) error {
	valid := false
	switch from {
	case StatusPendingReview:
		valid = to == StatusApproved || to == StatusRejected
	case StatusApproved:
		valid = to == StatusCompleted || to == StatusPendingReview
	case StatusRejected:
		valid = to == StatusPendingReview
	case StatusCompleted:
		valid = false
	}
	if !valid {
		return ErrInvalidTransition
	}
	return nil
}

func knownStatus(s Status) bool {
	switch s {
	case StatusPendingReview, StatusApproved, StatusCompleted, StatusRejected:
		return true
	}
	return false
}
