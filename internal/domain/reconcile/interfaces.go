package reconcile

import (
	"context"

	"github.com/ganot/crewsync/internal/domain/crewlog"
	"github.com/ganot/crewsync/internal/domain/project"
	"github.com/ganot/crewsync/internal/domain/tmtag"
)

// ProjectRepository is the subset of project persistence used when seeding
// new tags.
type ProjectRepository interface {
	Get(ctx context.Context, id string) (*project.Project, error)
}

// CrewLogRepository is the subset of crew log persistence used by the engine.
type CrewLogRepository interface {
	Create(ctx context.Context, log *crewlog.CrewLog) error
	Get(ctx context.Context, id string) (*crewlog.CrewLog, error)
	MarkSynced(ctx context.Context, id, tmTagID string) error
	FindByDatePrefix(ctx context.Context, projectID, pattern string) (*crewlog.CrewLog, error)
	FindByDate(ctx context.Context, projectID, day string) (*crewlog.CrewLog, error)
	ListUnsynced(ctx context.Context, projectID string) ([]crewlog.CrewLog, error)
}

// TagRepository is the subset of T&M tag persistence used by the engine.
type TagRepository interface {
	Create(ctx context.Context, tag *tmtag.Tag) error
	Get(ctx context.Context, id string) (*tmtag.Tag, error)
	Update(ctx context.Context, tag *tmtag.Tag) error
	MarkCrewLogSynced(ctx context.Context, id, crewLogID string) error
	FindByDatePrefix(ctx context.Context, projectID, pattern string) (*tmtag.Tag, error)
	FindByDate(ctx context.Context, projectID, day string) (*tmtag.Tag, error)
}
