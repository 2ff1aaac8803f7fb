package crewlog

import "context"

// Repository provides persistence for crew logs.
type Repository interface {
	Create(ctx context.Context, log *CrewLog) error
	Get(ctx context.Context, id string) (*CrewLog, error)
	Update(ctx context.Context, log *CrewLog) error
	MarkSynced(ctx context.Context, id, tmTagID string) error
	// FindByDatePrefix returns the oldest crew log of the project whose date
	// matches the LIKE pattern.
	FindByDatePrefix(ctx context.Context, projectID, pattern string) (*CrewLog, error)
	// FindByDate returns the oldest crew log of the project whose date,
	// interpreted by the store as a date value, equals day.
	FindByDate(ctx context.Context, projectID, day string) (*CrewLog, error)
	ListUnsynced(ctx context.Context, projectID string) ([]CrewLog, error)
}

// Syncer reconciles a saved crew log with its T&M tag counterpart.
// Implementations must not return errors to the caller's write path.
type Syncer interface {
	SyncCrewLog(ctx context.Context, log *CrewLog)
}
