package tmtag

import "errors"

var (
	// ErrTagNotFound indicates the T&M tag doesn't exist.
	ErrTagNotFound = errors.New("t&m tag not found")
	// ErrInvalidTransition indicates an invalid status change.
	ErrInvalidTransition = errors.New("invalid t&m tag status transition")
	// ErrInvalidInput indicates invalid T&M tag input.
	ErrInvalidInput = errors.New("invalid t&m tag input")
)
