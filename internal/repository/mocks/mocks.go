package mocks

import (
	"context"
	"time"

	"github.com/ganot/crewsync/internal/domain/accesslog"
	"github.com/ganot/crewsync/internal/domain/crewlog"
	"github.com/ganot/crewsync/internal/domain/project"
	"github.com/ganot/crewsync/internal/domain/tmtag"
	"github.com/stretchr/testify/mock"
)

// ProjectRepository is a mock for project.Repository.
type ProjectRepository struct {
	mock.Mock
}

func (m *ProjectRepository) Create(ctx context.Context, proj *project.Project) error {
	args := m.Called(ctx, proj)
	return args.Error(0)
}

func (m *ProjectRepository) Get(ctx context.Context, id string) (*project.Project, error) {
	args := m.Called(ctx, id)
	if proj, ok := args.Get(0).(*project.Project); ok {
		return proj, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) List(ctx context.Context) ([]project.Summary, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]project.Summary); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *ProjectRepository) SetPinIfAbsent(ctx context.Context, id, pin string) error {
	args := m.Called(ctx, id, pin)
	return args.Error(0)
}

func (m *ProjectRepository) ReplacePin(ctx context.Context, id, pin string) error {
	args := m.Called(ctx, id, pin)
	return args.Error(0)
}

func (m *ProjectRepository) RotatePin(ctx context.Context, id, oldPin, newPin string, at time.Time, ip string) error {
	args := m.Called(ctx, id, oldPin, newPin, at, ip)
	return args.Error(0)
}

func (m *ProjectRepository) FindByActivePin(ctx context.Context, pin string) (*project.Project, error) {
	args := m.Called(ctx, pin)
	if proj, ok := args.Get(0).(*project.Project); ok {
		return proj, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) PinInUse(ctx context.Context, pin string) (bool, error) {
	args := m.Called(ctx, pin)
	return args.Bool(0), args.Error(1)
}

// CrewLogRepository is a mock for crewlog.Repository.
type CrewLogRepository struct {
	mock.Mock
}

func (m *CrewLogRepository) Create(ctx context.Context, log *crewlog.CrewLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *CrewLogRepository) Get(ctx context.Context, id string) (*crewlog.CrewLog, error) {
	args := m.Called(ctx, id)
	if log, ok := args.Get(0).(*crewlog.CrewLog); ok {
		return log, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CrewLogRepository) Update(ctx context.Context, log *crewlog.CrewLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *CrewLogRepository) MarkSynced(ctx context.Context, id, tmTagID string) error {
	args := m.Called(ctx, id, tmTagID)
	return args.Error(0)
}

func (m *CrewLogRepository) FindByDatePrefix(ctx context.Context, projectID, pattern string) (*crewlog.CrewLog, error) {
	args := m.Called(ctx, projectID, pattern)
	if log, ok := args.Get(0).(*crewlog.CrewLog); ok {
		return log, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CrewLogRepository) FindByDate(ctx context.Context, projectID, day string) (*crewlog.CrewLog, error) {
	args := m.Called(ctx, projectID, day)
	if log, ok := args.Get(0).(*crewlog.CrewLog); ok {
		return log, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CrewLogRepository) ListUnsynced(ctx context.Context, projectID string) ([]crewlog.CrewLog, error) {
	args := m.Called(ctx, projectID)
	if list, ok := args.Get(0).([]crewlog.CrewLog); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// TagRepository is a mock for tmtag.Repository.
type TagRepository struct {
	mock.Mock
}

func (m *TagRepository) Create(ctx context.Context, tag *tmtag.Tag) error {
	args := m.Called(ctx, tag)
	return args.Error(0)
}

func (m *TagRepository) Get(ctx context.Context, id string) (*tmtag.Tag, error) {
	args := m.Called(ctx, id)
	if tag, ok := args.Get(0).(*tmtag.Tag); ok {
		return tag, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TagRepository) Update(ctx context.Context, tag *tmtag.Tag) error {
	args := m.Called(ctx, tag)
	return args.Error(0)
}

func (m *TagRepository) List(ctx context.Context, opts tmtag.ListOptions) ([]tmtag.Tag, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]tmtag.Tag); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TagRepository) MarkCrewLogSynced(ctx context.Context, id, crewLogID string) error {
	args := m.Called(ctx, id, crewLogID)
	return args.Error(0)
}

func (m *TagRepository) FindByDatePrefix(ctx context.Context, projectID, pattern string) (*tmtag.Tag, error) {
	args := m.Called(ctx, projectID, pattern)
	if tag, ok := args.Get(0).(*tmtag.Tag); ok {
		return tag, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TagRepository) FindByDate(ctx context.Context, projectID, day string) (*tmtag.Tag, error) {
	args := m.Called(ctx, projectID, day)
	if tag, ok := args.Get(0).(*tmtag.Tag); ok {
		return tag, args.Error(1)
	}
	return nil, args.Error(1)
}

// AccessLogRepository is a mock for accesslog.Repository.
type AccessLogRepository struct {
	mock.Mock
}

func (m *AccessLogRepository) Append(ctx context.Context, entry *accesslog.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *AccessLogRepository) List(ctx context.Context, opts accesslog.ListOptions) ([]accesslog.Entry, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]accesslog.Entry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// CrewLogSyncer is a mock for crewlog.Syncer.
type CrewLogSyncer struct {
	mock.Mock
}

func (m *CrewLogSyncer) SyncCrewLog(ctx context.Context, log *crewlog.CrewLog) {
	m.Called(ctx, log)
}

// TagSyncer is a mock for tmtag.Syncer.
type TagSyncer struct {
	mock.Mock
}

func (m *TagSyncer) SyncTag(ctx context.Context, tag *tmtag.Tag) {
	m.Called(ctx, tag)
}
