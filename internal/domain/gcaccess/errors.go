package gcaccess

import "errors"

var (
	// ErrAccessDenied covers every failed validation. It never says which
	// part of the request was wrong.
	ErrAccessDenied = errors.New("invalid or already used")
	// ErrMalformedPin indicates a PIN that is not four ASCII digits.
	ErrMalformedPin = errors.New("pin format is invalid")
	// ErrProjectNotFound indicates the project doesn't exist.
	ErrProjectNotFound = errors.New("project not found")
	// ErrPinSpaceExhausted indicates no free PIN was found within the
	// configured number of attempts.
	ErrPinSpaceExhausted = errors.New("no free pin available")
)

// failureReason is what the audit trail records for a denied attempt.
const failureReason = "Invalid PIN or PIN already used"
