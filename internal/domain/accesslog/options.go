package accesslog

// ListOptions provides filtering options for listing access attempts.
type ListOptions struct {
	ProjectID string
	Status    *Status
	Limit     int
	Offset    int
}
