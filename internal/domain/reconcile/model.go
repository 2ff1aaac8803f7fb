package reconcile

// Outcome is the result of one fire-and-forget sync attempt.
// Err is never returned to the write path that triggered the sync.
type Outcome struct {
	CrewLogID string
	TMTagID   string
	// Created is set when a counterpart was created rather than updated.
	Created bool
	// Skipped is set when nothing was written.
	Skipped bool
	Err     error
}

// OK reports whether the attempt finished without error.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Result is the synchronous report of a manual sync.
type Result struct {
	CrewLogID string `json:"crew_log_id"`
	TMTagID   string `json:"tm_tag_id,omitempty"`
	Created   bool   `json:"created"`
	Error     string `json:"error,omitempty"`
}
