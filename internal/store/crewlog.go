package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ganot/crewsync/internal/domain/crewlog"
	"github.com/ganot/crewsync/internal/repository"
)

// CrewLogRepository implements crewlog.Repository
type CrewLogRepository struct {
	db *DB
}

// NewCrewLogRepository creates a new CrewLogRepository
func NewCrewLogRepository(db *DB) *CrewLogRepository {
	return &CrewLogRepository{db: db}
}

const crewLogColumns = `
	id, project_id, date, crew_members, work_description, status,
	synced_to_tm, synced_from_tm, tm_tag_id, created_at, updated_at`

// Create inserts a crew log
func (r *CrewLogRepository) Create(ctx context.Context, log *crewlog.CrewLog) error {
	members, err := encodeList(log.CrewMembers)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO crew_logs (` + crewLogColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		log.ID,
		log.ProjectID,
		log.Date,
		members,
		log.WorkDescription,
		log.Status,
		log.SyncedToTM,
		log.SyncedFromTM,
		log.TMTagID,
		log.CreatedAt.UTC(),
		log.UpdatedAt.UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to create crew log: %w", err)
	}
	return nil
}

// Get retrieves a crew log by ID
func (r *CrewLogRepository) Get(ctx context.Context, id string) (*crewlog.CrewLog, error) {
	query := `SELECT ` + crewLogColumns + ` FROM crew_logs WHERE id = ?`
	return r.queryOne(ctx, "get crew log", query, id)
}

// Update replaces the mutable fields of a crew log
func (r *CrewLogRepository) Update(ctx context.Context, log *crewlog.CrewLog) error {
	members, err := encodeList(log.CrewMembers)
	if err != nil {
		return err
	}

	query := `
		UPDATE crew_logs
		SET date = ?, crew_members = ?, work_description = ?, status = ?,
			synced_to_tm = ?, synced_from_tm = ?, tm_tag_id = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		log.Date,
		members,
		log.WorkDescription,
		log.Status,
		log.SyncedToTM,
		log.SyncedFromTM,
		log.TMTagID,
		log.UpdatedAt.UTC(),
		log.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update crew log: %w", err)
	}
	return requireRow(result)
}

// MarkSynced links a crew log to its T&M tag
func (r *CrewLogRepository) MarkSynced(ctx context.Context, id, tmTagID string) error {
	query := `UPDATE crew_logs SET synced_to_tm = 1, tm_tag_id = ?, updated_at = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, tmTagID, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to mark crew log synced: %w", err)
	}
	return requireRow(result)
}

// FindByDatePrefix returns the oldest crew log whose date matches pattern
func (r *CrewLogRepository) FindByDatePrefix(ctx context.Context, projectID, pattern string) (*crewlog.CrewLog, error) {
	query := `
		SELECT ` + crewLogColumns + `
		FROM crew_logs
		WHERE project_id = ? AND date LIKE ?
		ORDER BY created_at ASC, id ASC
		LIMIT 1
	`
	return r.queryOne(ctx, "find crew log by date prefix", query, projectID, pattern)
}

// FindByDate returns the oldest crew log whose date falls on day
func (r *CrewLogRepository) FindByDate(ctx context.Context, projectID, day string) (*crewlog.CrewLog, error) {
	query := `
		SELECT ` + crewLogColumns + `
		FROM crew_logs
		WHERE project_id = ? AND DATE(date) = ?
		ORDER BY created_at ASC, id ASC
		LIMIT 1
	`
	return r.queryOne(ctx, "find crew log by date", query, projectID, day)
}

// ListUnsynced returns a project's crew logs that have no T&M tag yet
func (r *CrewLogRepository) ListUnsynced(ctx context.Context, projectID string) ([]crewlog.CrewLog, error) {
	query := `
		SELECT ` + crewLogColumns + `
		FROM crew_logs
		WHERE project_id = ? AND synced_to_tm = 0
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list unsynced crew logs: %w", err)
	}
	defer rows.Close()

	var logs []crewlog.CrewLog
	for rows.Next() {
		log, err := scanCrewLog(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan crew log: %w", err)
		}
		logs = append(logs, *log)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating crew log rows: %w", err)
	}
	return logs, nil
}

func (r *CrewLogRepository) queryOne(ctx context.Context, action, query string, args ...any) (*crewlog.CrewLog, error) {
	log, err := scanCrewLog(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to %s: %w", action, err)
	}
	return log, nil
}

func scanCrewLog(row rowScanner) (*crewlog.CrewLog, error) {
	var log crewlog.CrewLog
	var members string
	var tmTagID sql.NullString
	if err := row.Scan(
		&log.ID,
		&log.ProjectID,
		&log.Date,
		&members,
		&log.WorkDescription,
		&log.Status,
		&log.SyncedToTM,
		&log.SyncedFromTM,
		&tmTagID,
		&log.CreatedAt,
		&log.UpdatedAt,
	); err != nil {
		return nil, err
	}

	decoded, err := decodeList[crewlog.CrewMember](members)
	if err != nil {
		return nil, err
	}
	log.CrewMembers = decoded
	if tmTagID.Valid {
		log.TMTagID = &tmTagID.String
	}
	return &log, nil
}
