package crewlog

import "errors"

var (
	// ErrCrewLogNotFound indicates the crew log doesn't exist.
	ErrCrewLogNotFound = errors.New("crew log not found")
	// ErrInvalidInput indicates invalid crew log input.
	ErrInvalidInput = errors.New("invalid crew log input")
)
