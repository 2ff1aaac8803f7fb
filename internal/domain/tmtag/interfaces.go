package tmtag

import "context"

// Repository provides persistence for T&M tags.
type Repository interface {
	Create(ctx context.Context, tag *Tag) error
	Get(ctx context.Context, id string) (*Tag, error)
	Update(ctx context.Context, tag *Tag) error
	List(ctx context.Context, opts ListOptions) ([]Tag, error)
	MarkCrewLogSynced(ctx context.Context, id, crewLogID string) error
	// FindByDatePrefix returns the oldest tag of the project whose
	// date_of_work matches the LIKE pattern.
	FindByDatePrefix(ctx context.Context, projectID, pattern string) (*Tag, error)
	// FindByDate returns the oldest tag of the project whose date_of_work,
	// interpreted by the store as a date value, equals day.
	FindByDate(ctx context.Context, projectID, day string) (*Tag, error)
}

// Syncer creates a crew log counterpart for a saved tag.
// Implementations must not return errors to the caller's write path.
type Syncer interface {
	SyncTag(ctx context.Context, tag *Tag)
}
