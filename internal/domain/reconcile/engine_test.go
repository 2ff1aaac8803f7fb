package reconcile_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ganot/crewsync/internal/domain/crewlog"
	"github.com/ganot/crewsync/internal/domain/project"
	"github.com/ganot/crewsync/internal/domain/reconcile"
	"github.com/ganot/crewsync/internal/domain/tmtag"
	"github.com/ganot/crewsync/internal/repository"
	"github.com/ganot/crewsync/internal/repository/mocks"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	projects *mocks.ProjectRepository
	crewLogs *mocks.CrewLogRepository
	tags     *mocks.TagRepository
	engine   *reconcile.Engine
}

func newFixture() *fixture {
	f := &fixture{
		projects: &mocks.ProjectRepository{},
		crewLogs: &mocks.CrewLogRepository{},
		tags:     &mocks.TagRepository{},
	}
	seq := 0
	f.engine = reconcile.NewEngine(f.projects, f.crewLogs, f.tags, nil,
		reconcile.WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("id-%d", seq)
		}),
		reconcile.WithClock(func() time.Time {
			return time.Date(2024, 1, 15, 18, 0, 0, 0, time.UTC)
		}),
	)
	return f
}

func sampleCrewLog() *crewlog.CrewLog {
	return &crewlog.CrewLog{
		ID:              "crew-1",
		ProjectID:       "P1",
		Date:            "2024-01-15T07:00:00.000Z",
		WorkDescription: "Framing level 2",
		CrewMembers: []crewlog.CrewMember{
			{Name: "Ana Silva", StHours: 8, TotalHours: 8},
		},
	}
}

func sampleProject() *project.Project {
	return &project.Project{
		ID:            "P1",
		Name:          "Riverside Clinic",
		ClientCompany: "Harbor GC",
		GCEmail:       "pm@harborgc.example",
	}
}

func TestSyncCrewLogToTag_CreatesTag(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	log := sampleCrewLog()

	f.tags.On("FindByDatePrefix", ctx, "P1", "2024-01-15%").Return((*tmtag.Tag)(nil), repository.ErrNotFound)
	f.tags.On("FindByDate", ctx, "P1", "2024-01-15").Return((*tmtag.Tag)(nil), repository.ErrNotFound)
	f.projects.On("Get", ctx, "P1").Return(sampleProject(), nil)

	var created *tmtag.Tag
	f.tags.On("Create", ctx, mock.AnythingOfType("*tmtag.Tag")).
		Run(func(args mock.Arguments) { created = args.Get(1).(*tmtag.Tag) }).
		Return(nil)
	f.crewLogs.On("MarkSynced", ctx, "crew-1", "id-1").Return(nil)

	out := f.engine.SyncCrewLogToTag(ctx, log)
	require.NoError(t, out.Err)
	require.True(t, out.Created)
	require.Equal(t, "id-1", out.TMTagID)

	require.NotNil(t, created)
	require.Equal(t, "Auto-generated from Crew Log - 2024-01-15", created.Title)
	require.Equal(t, tmtag.StatusPendingReview, created.Status)
	require.Equal(t, "2024-01-15", created.DateOfWork)
	require.Equal(t, "Harbor GC", created.CompanyName)
	require.True(t, created.CrewLogSynced)
	require.Len(t, created.LaborEntries, 1)
	require.Equal(t, 8.0, created.LaborEntries[0].TotalHours)

	require.True(t, log.SyncedToTM)
	require.Equal(t, "id-1", *log.TMTagID)
	f.crewLogs.AssertExpectations(t)
}

func TestSyncCrewLogToTag_UpdatesExistingTag(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	log := sampleCrewLog()
	log.CrewMembers[0].OtHours = 2
	log.CrewMembers[0].TotalHours = 10

	existing := &tmtag.Tag{
		ID:                "tag-9",
		ProjectID:         "P1",
		DateOfWork:        "2024-01-15",
		DescriptionOfWork: "Typed by foreman",
		Status:            tmtag.StatusPendingReview,
		LaborEntries:      []tmtag.LaborEntry{{ID: "old", WorkerName: "Ana Silva", StHours: 8, TotalHours: 8}},
	}
	f.tags.On("FindByDatePrefix", ctx, "P1", "2024-01-15%").Return(existing, nil)
	f.tags.On("Update", ctx, existing).Return(nil)
	f.crewLogs.On("MarkSynced", ctx, "crew-1", "tag-9").Return(nil)

	out := f.engine.SyncCrewLogToTag(ctx, log)
	require.NoError(t, out.Err)
	require.False(t, out.Created)
	require.Equal(t, "tag-9", out.TMTagID)

	require.Equal(t, tmtag.StatusApproved, existing.Status)
	require.Equal(t, "Typed by foreman", existing.DescriptionOfWork)
	require.Len(t, existing.LaborEntries, 1)
	require.NotEqual(t, "old", existing.LaborEntries[0].ID)
	require.Equal(t, 10.0, existing.LaborEntries[0].TotalHours)
	require.Equal(t, 2.0, existing.LaborEntries[0].OtHours)
	require.Equal(t, "crew-1", *existing.CrewLogID)

	f.tags.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.projects.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestSyncCrewLogToTag_ApprovesRegardlessOfStatus(t *testing.T) {
	for _, status := range []tmtag.Status{
		tmtag.StatusPendingReview,
		tmtag.StatusApproved,
		tmtag.StatusCompleted,
		tmtag.StatusRejected,
	} {
		t.Run(string(status), func(t *testing.T) {
			ctx := context.Background()
			f := newFixture()
			log := sampleCrewLog()

			existing := &tmtag.Tag{ID: "tag-9", ProjectID: "P1", DateOfWork: "2024-01-15", Status: status}
			f.tags.On("FindByDatePrefix", ctx, "P1", "2024-01-15%").Return(existing, nil)
			f.tags.On("Update", ctx, existing).Return(nil)
			f.crewLogs.On("MarkSynced", ctx, "crew-1", "tag-9").Return(nil)

			out := f.engine.SyncCrewLogToTag(ctx, log)
			require.NoError(t, out.Err)
			require.Equal(t, tmtag.StatusApproved, existing.Status)
		})
	}

	// The workflow itself would refuse the completed case.
	require.ErrorIs(t, tmtag.ValidateTransition(tmtag.StatusCompleted, tmtag.StatusApproved), tmtag.ErrInvalidTransition)
}

func TestSyncCrewLogToTag_FillsEmptyDescription(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	log := sampleCrewLog()

	existing := &tmtag.Tag{ID: "tag-9", ProjectID: "P1", DateOfWork: "2024-01-15"}
	f.tags.On("FindByDatePrefix", ctx, "P1", "2024-01-15%").Return(existing, nil)
	f.tags.On("Update", ctx, existing).Return(nil)
	f.crewLogs.On("MarkSynced", ctx, "crew-1", "tag-9").Return(nil)

	out := f.engine.SyncCrewLogToTag(ctx, log)
	require.NoError(t, out.Err)
	require.Equal(t, "Framing level 2", existing.DescriptionOfWork)
}

func TestSyncCrewLogToTag_PrefersBackReference(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	log := sampleCrewLog()
	linked := "tag-linked"
	log.TMTagID = &linked

	tag := &tmtag.Tag{ID: linked, ProjectID: "P1", DateOfWork: "2024-01-15T00:00:00Z"}
	f.tags.On("Get", ctx, linked).Return(tag, nil)
	f.tags.On("Update", ctx, tag).Return(nil)
	f.crewLogs.On("MarkSynced", ctx, "crew-1", linked).Return(nil)

	out := f.engine.SyncCrewLogToTag(ctx, log)
	require.NoError(t, out.Err)
	require.Equal(t, linked, out.TMTagID)
	f.tags.AssertNotCalled(t, "FindByDatePrefix", mock.Anything, mock.Anything, mock.Anything)
}

func TestSyncCrewLogToTag_StaleBackReferenceFallsThrough(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	log := sampleCrewLog()
	stale := "tag-other-day"
	log.TMTagID = &stale

	f.tags.On("Get", ctx, stale).Return(&tmtag.Tag{ID: stale, ProjectID: "P1", DateOfWork: "2024-01-14"}, nil)
	match := &tmtag.Tag{ID: "tag-9", ProjectID: "P1", DateOfWork: "2024-01-15"}
	f.tags.On("FindByDatePrefix", ctx, "P1", "2024-01-15%").Return(match, nil)
	f.tags.On("Update", ctx, match).Return(nil)
	f.crewLogs.On("MarkSynced", ctx, "crew-1", "tag-9").Return(nil)

	out := f.engine.SyncCrewLogToTag(ctx, log)
	require.NoError(t, out.Err)
	require.Equal(t, "tag-9", out.TMTagID)
}

func TestSyncCrewLogToTag_StructuredMatchFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	log := sampleCrewLog()

	f.tags.On("FindByDatePrefix", ctx, "P1", "2024-01-15%").Return((*tmtag.Tag)(nil), repository.ErrNotFound)
	f.tags.On("FindByDate", ctx, "P1", "2024-01-15").Return((*tmtag.Tag)(nil), errors.New("type mismatch"))
	f.projects.On("Get", ctx, "P1").Return(sampleProject(), nil)
	f.tags.On("Create", ctx, mock.AnythingOfType("*tmtag.Tag")).Return(nil)
	f.crewLogs.On("MarkSynced", ctx, "crew-1", "id-1").Return(nil)

	out := f.engine.SyncCrewLogToTag(ctx, log)
	require.NoError(t, out.Err)
	require.True(t, out.Created)
}

func TestSyncCrewLogToTag_StructuredMatchFinds(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	log := sampleCrewLog()

	match := &tmtag.Tag{ID: "tag-dt", ProjectID: "P1", DateOfWork: "2024-01-15"}
	f.tags.On("FindByDatePrefix", ctx, "P1", "2024-01-15%").Return((*tmtag.Tag)(nil), repository.ErrNotFound)
	f.tags.On("FindByDate", ctx, "P1", "2024-01-15").Return(match, nil)
	f.tags.On("Update", ctx, match).Return(nil)
	f.crewLogs.On("MarkSynced", ctx, "crew-1", "tag-dt").Return(nil)

	out := f.engine.SyncCrewLogToTag(ctx, log)
	require.NoError(t, out.Err)
	require.Equal(t, "tag-dt", out.TMTagID)
}

func TestSyncCrewLogToTag_ProjectMissingLeavesLogUnsynced(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	log := sampleCrewLog()

	f.tags.On("FindByDatePrefix", ctx, "P1", "2024-01-15%").Return((*tmtag.Tag)(nil), repository.ErrNotFound)
	f.tags.On("FindByDate", ctx, "P1", "2024-01-15").Return((*tmtag.Tag)(nil), repository.ErrNotFound)
	f.projects.On("Get", ctx, "P1").Return((*project.Project)(nil), repository.ErrNotFound)

	out := f.engine.SyncCrewLogToTag(ctx, log)
	require.ErrorIs(t, out.Err, reconcile.ErrProjectNotFound)
	require.Empty(t, out.TMTagID)
	require.False(t, log.SyncedToTM)
	f.crewLogs.AssertNotCalled(t, "MarkSynced", mock.Anything, mock.Anything, mock.Anything)
	f.tags.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSyncCrewLogToTag_PersistenceErrorIsCaptured(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	log := sampleCrewLog()

	f.tags.On("FindByDatePrefix", ctx, "P1", "2024-01-15%").Return((*tmtag.Tag)(nil), errors.New("connection reset"))

	out := f.engine.SyncCrewLogToTag(ctx, log)
	require.Error(t, out.Err)
	require.False(t, log.SyncedToTM)
}

func TestSyncCrewLogToTag_InvalidInputIsNoOp(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name string
		edit func(*crewlog.CrewLog)
		want error
	}{
		{name: "missing project", edit: func(l *crewlog.CrewLog) { l.ProjectID = "" }, want: reconcile.ErrMissingProject},
		{name: "unparseable date", edit: func(l *crewlog.CrewLog) { l.Date = "someday" }, want: reconcile.ErrMissingDate},
		{name: "empty crew", edit: func(l *crewlog.CrewLog) { l.CrewMembers = nil }, want: reconcile.ErrNoCrewData},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			log := sampleCrewLog()
			tc.edit(log)

			out := f.engine.SyncCrewLogToTag(ctx, log)
			require.ErrorIs(t, out.Err, tc.want)
			require.True(t, out.Skipped)
			require.Empty(t, f.tags.Calls)
			require.Empty(t, f.crewLogs.Calls)
		})
	}
}

func TestSyncTagToCrewLog_CreatesCrewLog(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	tag := &tmtag.Tag{
		ID:                "tag-1",
		ProjectID:         "P1",
		DateOfWork:        "2024-02-01",
		DescriptionOfWork: "Drywall",
		LaborEntries: []tmtag.LaborEntry{
			{ID: "l1", WorkerName: "Ana Silva", StHours: 6, OtHours: 1},
		},
	}

	f.crewLogs.On("FindByDatePrefix", ctx, "P1", "2024-02-01%").Return((*crewlog.CrewLog)(nil), repository.ErrNotFound)
	f.crewLogs.On("FindByDate", ctx, "P1", "2024-02-01").Return((*crewlog.CrewLog)(nil), repository.ErrNotFound)

	var created *crewlog.CrewLog
	f.crewLogs.On("Create", ctx, mock.AnythingOfType("*crewlog.CrewLog")).
		Run(func(args mock.Arguments) { created = args.Get(1).(*crewlog.CrewLog) }).
		Return(nil)
	f.tags.On("MarkCrewLogSynced", ctx, "tag-1", "id-1").Return(nil)

	out := f.engine.SyncTagToCrewLog(ctx, tag)
	require.NoError(t, out.Err)
	require.True(t, out.Created)
	require.Equal(t, "id-1", out.CrewLogID)

	require.NotNil(t, created)
	require.True(t, created.SyncedFromTM)
	require.True(t, created.SyncedToTM)
	require.Equal(t, crewlog.StatusPendingReview, created.Status)
	require.Equal(t, "tag-1", *created.TMTagID)
	require.Equal(t, "Drywall", created.WorkDescription)
	require.Equal(t, 7.0, created.CrewMembers[0].TotalHours)

	require.True(t, tag.CrewLogSynced)
	require.Equal(t, "id-1", *tag.CrewLogID)
}

func TestSyncTagToCrewLog_ExistingCrewLogIsNotOverwritten(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	tag := &tmtag.Tag{
		ID:           "tag-1",
		ProjectID:    "P1",
		DateOfWork:   "2024-02-01",
		LaborEntries: []tmtag.LaborEntry{{WorkerName: "Ana Silva", StHours: 4, TotalHours: 4}},
	}
	existing := &crewlog.CrewLog{ID: "crew-7", ProjectID: "P1", Date: "2024-02-01"}
	f.crewLogs.On("FindByDatePrefix", ctx, "P1", "2024-02-01%").Return(existing, nil)

	out := f.engine.SyncTagToCrewLog(ctx, tag)
	require.NoError(t, out.Err)
	require.True(t, out.Skipped)
	require.Equal(t, "crew-7", out.CrewLogID)
	f.crewLogs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.crewLogs.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestSyncTagToCrewLog_NoLabor(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	tag := &tmtag.Tag{ID: "tag-1", ProjectID: "P1", DateOfWork: "2024-02-01"}

	f.crewLogs.On("FindByDatePrefix", ctx, "P1", "2024-02-01%").Return((*crewlog.CrewLog)(nil), repository.ErrNotFound)
	f.crewLogs.On("FindByDate", ctx, "P1", "2024-02-01").Return((*crewlog.CrewLog)(nil), repository.ErrNotFound)

	out := f.engine.SyncTagToCrewLog(ctx, tag)
	require.ErrorIs(t, out.Err, reconcile.ErrNoCrewData)
	f.crewLogs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestManualSync(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	f.crewLogs.On("Get", ctx, "crew-1").Return(sampleCrewLog(), nil)
	existing := &tmtag.Tag{ID: "tag-9", ProjectID: "P1", DateOfWork: "2024-01-15"}
	f.tags.On("FindByDatePrefix", ctx, "P1", "2024-01-15%").Return(existing, nil)
	f.tags.On("Update", ctx, existing).Return(nil)
	f.crewLogs.On("MarkSynced", ctx, "crew-1", "tag-9").Return(nil)

	res, err := f.engine.ManualSync(ctx, "crew-1")
	require.NoError(t, err)
	require.Equal(t, "tag-9", res.TMTagID)
	require.Empty(t, res.Error)
}

func TestManualSync_ProjectDeleted(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	f.crewLogs.On("Get", ctx, "crew-1").Return(sampleCrewLog(), nil)
	f.tags.On("FindByDatePrefix", ctx, "P1", "2024-01-15%").Return((*tmtag.Tag)(nil), repository.ErrNotFound)
	f.tags.On("FindByDate", ctx, "P1", "2024-01-15").Return((*tmtag.Tag)(nil), repository.ErrNotFound)
	f.projects.On("Get", ctx, "P1").Return((*project.Project)(nil), repository.ErrNotFound)

	res, err := f.engine.ManualSync(ctx, "crew-1")
	require.ErrorIs(t, err, reconcile.ErrProjectNotFound)
	require.Equal(t, "project not found", res.Error)
	require.Empty(t, res.TMTagID)
	f.crewLogs.AssertNotCalled(t, "MarkSynced", mock.Anything, mock.Anything, mock.Anything)
}

func TestManualSync_CrewLogNotFound(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	f.crewLogs.On("Get", ctx, "missing").Return((*crewlog.CrewLog)(nil), repository.ErrNotFound)

	_, err := f.engine.ManualSync(ctx, "missing")
	require.ErrorIs(t, err, reconcile.ErrCrewLogNotFound)
}

func TestRetryPending(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	good := *sampleCrewLog()
	empty := *sampleCrewLog()
	empty.ID = "crew-2"
	empty.CrewMembers = nil

	f.crewLogs.On("ListUnsynced", ctx, "P1").Return([]crewlog.CrewLog{good, empty}, nil)
	existing := &tmtag.Tag{ID: "tag-9", ProjectID: "P1", DateOfWork: "2024-01-15"}
	f.tags.On("FindByDatePrefix", ctx, "P1", "2024-01-15%").Return(existing, nil)
	f.tags.On("Update", ctx, existing).Return(nil)
	f.crewLogs.On("MarkSynced", ctx, "crew-1", "tag-9").Return(nil)

	results, err := f.engine.RetryPending(ctx, "P1")
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, "tag-9", results[0].TMTagID)
	require.Equal(t, "crew-2", results[1].CrewLogID)
	require.Equal(t, reconcile.ErrNoCrewData.Error(), results[1].Error)
}

func TestAutoGeneratedTagGolden(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	log := sampleCrewLog()
	log.CrewMembers = append(log.CrewMembers, crewlog.CrewMember{
		Name:       "Jose\u0301 Pe\u0301rez",
		StHours:    8,
		OtHours:    2,
		TotalHours: 10,
	})

	f.tags.On("FindByDatePrefix", ctx, "P1", "2024-01-15%").Return((*tmtag.Tag)(nil), repository.ErrNotFound)
	f.tags.On("FindByDate", ctx, "P1", "2024-01-15").Return((*tmtag.Tag)(nil), repository.ErrNotFound)
	f.projects.On("Get", ctx, "P1").Return(sampleProject(), nil)

	var created *tmtag.Tag
	f.tags.On("Create", ctx, mock.AnythingOfType("*tmtag.Tag")).
		Run(func(args mock.Arguments) { created = args.Get(1).(*tmtag.Tag) }).
		Return(nil)
	f.crewLogs.On("MarkSynced", ctx, "crew-1", "id-1").Return(nil)

	out := f.engine.SyncCrewLogToTag(ctx, log)
	require.NoError(t, out.Err)

	data, err := json.MarshalIndent(created, "", "  ")
	require.NoError(t, err)
	data = append(data, '\n')

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "auto_generated_tag", data)
}
