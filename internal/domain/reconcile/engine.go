package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ganot/crewsync/internal/calendar"
	"github.com/ganot/crewsync/internal/domain/crewlog"
	"github.com/ganot/crewsync/internal/domain/tmtag"
	"github.com/ganot/crewsync/internal/repository"
	"github.com/google/uuid"
)

// Engine keeps crew logs and T&M tags paired per (project, calendar day).
//
// Counterparts are found by the back-reference stored on the record, then
// by a prefix match on the stored date, then by a store-side date
// comparison. When several records match, the oldest wins.
type Engine struct {
	projects ProjectRepository
	crewLogs CrewLogRepository
	tags     TagRepository
	logger   *slog.Logger
	locks    *keyedMutex
	newID    func() string
	now      func() time.Time
}

// NewEngine creates a sync engine.
func NewEngine(
	projects ProjectRepository,
	crewLogs CrewLogRepository,
	tags TagRepository,
	logger *slog.Logger,
	opts ...Option,
) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	e := &Engine{
		projects: projects,
		crewLogs: crewLogs,
		tags:     tags,
		logger:   logger,
		locks:    newKeyedMutex(),
		newID:    uuid.NewString,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SyncCrewLog implements crewlog.Syncer.
func (e *Engine) SyncCrewLog(ctx context.Context, log *crewlog.CrewLog) {
	_ = e.SyncCrewLogToTag(ctx, log)
}

// SyncTag implements tmtag.Syncer.
func (e *Engine) SyncTag(ctx context.Context, tag *tmtag.Tag) {
	_ = e.SyncTagToCrewLog(ctx, tag)
}

// SyncCrewLogToTag pushes a crew log's hours onto its T&M tag, creating the
// tag when none exists. On success log is updated in place to reflect the
// link. Failures leave the crew log unsynced and are reported only through
// the returned Outcome.
func (e *Engine) SyncCrewLogToTag(ctx context.Context, log *crewlog.CrewLog) Outcome {
	if log == nil {
		return Outcome{Skipped: true, Err: ErrCrewLogNotFound}
	}
	out := Outcome{CrewLogID: log.ID}

	day, err := e.checkCrewLog(log)
	if err != nil {
		out.Skipped = true
		out.Err = err
		e.logger.Warn("crew log sync skipped",
			"crew_log_id", log.ID, "project_id", log.ProjectID, "reason", err)
		return out
	}

	unlock := e.locks.Lock(lockKey(log.ProjectID, day))
	defer unlock()

	tag, err := e.findTag(ctx, log, day)
	if err != nil {
		return e.fail(out, log, day, "finding t&m tag", err)
	}

	if tag != nil {
		if err := e.applyToTag(ctx, tag, log); err != nil {
			return e.fail(out, log, day, "updating t&m tag", err)
		}
		out.TMTagID = tag.ID
	} else {
		tag, err = e.createTag(ctx, log, day)
		if err != nil {
			return e.fail(out, log, day, "creating t&m tag", err)
		}
		out.TMTagID = tag.ID
		out.Created = true
	}

	if err := e.crewLogs.MarkSynced(ctx, log.ID, tag.ID); err != nil {
		return e.fail(out, log, day, "marking crew log synced", err)
	}
	tagID := tag.ID
	log.SyncedToTM = true
	log.TMTagID = &tagID

	e.logger.Info("crew log synced",
		"crew_log_id", log.ID, "project_id", log.ProjectID, "tm_tag_id", tag.ID,
		"date", day, "created", out.Created)
	return out
}

// SyncTagToCrewLog creates a crew log from a tag's labor entries when the
// tag has no crew log counterpart. An existing crew log is never modified.
func (e *Engine) SyncTagToCrewLog(ctx context.Context, tag *tmtag.Tag) Outcome {
	if tag == nil {
		return Outcome{Skipped: true}
	}
	out := Outcome{TMTagID: tag.ID}

	if strings.TrimSpace(tag.ProjectID) == "" {
		return e.skipTag(out, tag, ErrMissingProject)
	}
	day, err := calendar.Normalize(tag.DateOfWork)
	if err != nil {
		return e.skipTag(out, tag, ErrMissingDate)
	}

	unlock := e.locks.Lock(lockKey(tag.ProjectID, day))
	defer unlock()

	existing, err := e.findCrewLog(ctx, tag, day)
	if err != nil {
		out.Err = fmt.Errorf("finding crew log: %w", err)
		e.logger.Error("t&m tag sync failed",
			"tm_tag_id", tag.ID, "project_id", tag.ProjectID, "date", day, "error", out.Err)
		return out
	}
	if existing != nil {
		out.CrewLogID = existing.ID
		out.Skipped = true
		return out
	}
	if len(tag.LaborEntries) == 0 {
		return e.skipTag(out, tag, ErrNoCrewData)
	}

	now := e.now()
	tagID := tag.ID
	log := &crewlog.CrewLog{
		ID:              e.newID(),
		ProjectID:       tag.ProjectID,
		Date:            day,
		CrewMembers:     crewFromLabor(tag.LaborEntries),
		WorkDescription: tag.DescriptionOfWork,
		Status:          crewlog.StatusPendingReview,
		SyncedToTM:      true,
		SyncedFromTM:    true,
		TMTagID:         &tagID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := e.crewLogs.Create(ctx, log); err != nil {
		out.Err = fmt.Errorf("creating crew log: %w", err)
		e.logger.Error("t&m tag sync failed",
			"tm_tag_id", tag.ID, "project_id", tag.ProjectID, "date", day, "error", out.Err)
		return out
	}
	out.CrewLogID = log.ID
	out.Created = true

	if err := e.tags.MarkCrewLogSynced(ctx, tag.ID, log.ID); err != nil {
		out.Err = fmt.Errorf("marking t&m tag synced: %w", err)
		e.logger.Error("t&m tag sync failed",
			"tm_tag_id", tag.ID, "crew_log_id", log.ID, "project_id", tag.ProjectID,
			"date", day, "error", out.Err)
		return out
	}
	logID := log.ID
	tag.CrewLogSynced = true
	tag.CrewLogID = &logID

	e.logger.Info("crew log created from t&m tag",
		"tm_tag_id", tag.ID, "crew_log_id", log.ID, "project_id", tag.ProjectID, "date", day)
	return out
}

// ManualSync re-runs SyncCrewLogToTag for one crew log and reports the
// outcome. It is safe to call repeatedly.
func (e *Engine) ManualSync(ctx context.Context, crewLogID string) (*Result, error) {
	if strings.TrimSpace(crewLogID) == "" {
		return nil, ErrCrewLogNotFound
	}
	log, err := e.crewLogs.Get(ctx, crewLogID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCrewLogNotFound
		}
		return nil, fmt.Errorf("loading crew log: %w", err)
	}
	return e.runManual(ctx, log)
}

// RetryPending runs a manual sync for every unsynced crew log of a project.
// Per-log failures are reported in the results, not as an error.
func (e *Engine) RetryPending(ctx context.Context, projectID string) ([]Result, error) {
	if strings.TrimSpace(projectID) == "" {
		return nil, ErrMissingProject
	}
	logs, err := e.crewLogs.ListUnsynced(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing unsynced crew logs: %w", err)
	}

	results := make([]Result, 0, len(logs))
	for i := range logs {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, _ := e.runManual(ctx, &logs[i])
		results = append(results, *res)
	}
	e.logger.Info("pending crew logs retried", "project_id", projectID, "count", len(results))
	return results, nil
}

func (e *Engine) runManual(ctx context.Context, log *crewlog.CrewLog) (*Result, error) {
	out := e.SyncCrewLogToTag(ctx, log)
	res := &Result{
		CrewLogID: log.ID,
		TMTagID:   out.TMTagID,
		Created:   out.Created,
	}
	if out.Err != nil {
		res.TMTagID = ""
		res.Error = out.Err.Error()
		return res, out.Err
	}
	return res, nil
}

func (e *Engine) checkCrewLog(log *crewlog.CrewLog) (string, error) {
	if strings.TrimSpace(log.ProjectID) == "" {
		return "", ErrMissingProject
	}
	day, err := calendar.Normalize(log.Date)
	if err != nil {
		return "", ErrMissingDate
	}
	if len(log.CrewMembers) == 0 {
		return "", ErrNoCrewData
	}
	return day, nil
}

// findTag returns the tag paired with log, or nil when there is none.
func (e *Engine) findTag(ctx context.Context, log *crewlog.CrewLog, day string) (*tmtag.Tag, error) {
	if log.TMTagID != nil && *log.TMTagID != "" {
		tag, err := e.tags.Get(ctx, *log.TMTagID)
		switch {
		case err == nil:
			if tag.ProjectID == log.ProjectID && sameDay(tag.DateOfWork, day) {
				return tag, nil
			}
		case !errors.Is(err, repository.ErrNotFound):
			return nil, err
		}
	}

	tag, err := e.tags.FindByDatePrefix(ctx, log.ProjectID, calendar.Prefix(day))
	if err == nil {
		return tag, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	tag, err = e.tags.FindByDate(ctx, log.ProjectID, day)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			e.logger.Debug("structured date match failed",
				"crew_log_id", log.ID, "project_id", log.ProjectID, "date", day, "error", err)
		}
		return nil, nil
	}
	return tag, nil
}

// findCrewLog returns the crew log paired with tag, or nil when there is none.
func (e *Engine) findCrewLog(ctx context.Context, tag *tmtag.Tag, day string) (*crewlog.CrewLog, error) {
	if tag.CrewLogID != nil && *tag.CrewLogID != "" {
		log, err := e.crewLogs.Get(ctx, *tag.CrewLogID)
		switch {
		case err == nil:
			if log.ProjectID == tag.ProjectID && sameDay(log.Date, day) {
				return log, nil
			}
		case !errors.Is(err, repository.ErrNotFound):
			return nil, err
		}
	}

	log, err := e.crewLogs.FindByDatePrefix(ctx, tag.ProjectID, calendar.Prefix(day))
	if err == nil {
		return log, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	log, err = e.crewLogs.FindByDate(ctx, tag.ProjectID, day)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			e.logger.Debug("structured date match failed",
				"tm_tag_id", tag.ID, "project_id", tag.ProjectID, "date", day, "error", err)
		}
		return nil, nil
	}
	return log, nil
}

// applyToTag overwrites the tag's labor with the crew log's and approves it.
// Approval ignores the review workflow: completed and rejected tags are
// reopened as approved too.
func (e *Engine) applyToTag(ctx context.Context, tag *tmtag.Tag, log *crewlog.CrewLog) error {
	tag.LaborEntries = laborFromCrew(log.CrewMembers, e.newID)
	if strings.TrimSpace(tag.DescriptionOfWork) == "" {
		tag.DescriptionOfWork = log.WorkDescription
	}
	logID := log.ID
	tag.CrewLogSynced = true
	tag.CrewLogID = &logID
	tag.Status = tmtag.StatusApproved
	tag.UpdatedAt = e.now()
	return e.tags.Update(ctx, tag)
}

func (e *Engine) createTag(ctx context.Context, log *crewlog.CrewLog, day string) (*tmtag.Tag, error) {
	proj, err := e.projects.Get(ctx, log.ProjectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("loading project: %w", err)
	}

	now := e.now()
	logID := log.ID
	tag := &tmtag.Tag{
		ID:                e.newID(),
		ProjectID:         log.ProjectID,
		DateOfWork:        day,
		ProjectName:       proj.Name,
		CompanyName:       proj.ClientCompany,
		GCEmail:           proj.GCEmail,
		Title:             tmtag.AutoTitlePrefix + day,
		DescriptionOfWork: log.WorkDescription,
		LaborEntries:      laborFromCrew(log.CrewMembers, e.newID),
		MaterialEntries:   []tmtag.MaterialEntry{},
		EquipmentEntries:  []tmtag.EquipmentEntry{},
		OtherEntries:      []tmtag.OtherEntry{},
		Status:            tmtag.StatusPendingReview,
		CrewLogSynced:     true,
		CrewLogID:         &logID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := e.tags.Create(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

func (e *Engine) fail(out Outcome, log *crewlog.CrewLog, day, action string, err error) Outcome {
	if errors.Is(err, ErrProjectNotFound) {
		out.Err = err
		e.logger.Warn("crew log sync pending",
			"crew_log_id", log.ID, "project_id", log.ProjectID, "date", day, "reason", err)
	} else {
		out.Err = fmt.Errorf("%s: %w", action, err)
		e.logger.Error("crew log sync failed",
			"crew_log_id", log.ID, "project_id", log.ProjectID, "date", day, "error", out.Err)
	}
	out.TMTagID = ""
	out.Created = false
	return out
}

func (e *Engine) skipTag(out Outcome, tag *tmtag.Tag, err error) Outcome {
	out.Skipped = true
	out.Err = err
	e.logger.Warn("t&m tag sync skipped",
		"tm_tag_id", tag.ID, "project_id", tag.ProjectID, "reason", err)
	return out
}

func sameDay(v, day string) bool {
	got, err := calendar.Normalize(v)
	return err == nil && got == day
}

func lockKey(projectID, day string) string {
	return projectID + "|" + day
}
