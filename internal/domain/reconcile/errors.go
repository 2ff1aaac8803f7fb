package reconcile

import "errors"

var (
	// ErrMissingProject indicates a record without a project reference.
	ErrMissingProject = errors.New("project id missing")
	// ErrMissingDate indicates a record whose date is absent or unparseable.
	ErrMissingDate = errors.New("date missing or unparseable")
	// ErrNoCrewData indicates there are no hours to carry across.
	ErrNoCrewData = errors.New("no crew data")
	// ErrProjectNotFound indicates the referenced project doesn't exist.
	ErrProjectNotFound = errors.New("project not found")
	// ErrCrewLogNotFound indicates the crew log doesn't exist.
	ErrCrewLogNotFound = errors.New("crew log not found")
)
