package accesslog

import "time"

// Status is the outcome of a PIN validation attempt
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Entry is one GC dashboard access attempt. Entries are append-only.
type Entry struct {
	ID            int64     `json:"id"`
	ProjectID     string    `json:"project_id"`
	Timestamp     time.Time `json:"timestamp"`
	IP            string    `json:"ip"`
	Status        Status    `json:"status"`
	UsedPin       string    `json:"used_pin"`
	NewPin        *string   `json:"new_pin,omitempty"`
	FailureReason *string   `json:"failure_reason,omitempty"`
}
