package tmtag

// ListOptions provides filtering options for listing tags.
type ListOptions struct {
	ProjectID string
	Statuses  []Status
	Limit     int
	Offset    int
}
