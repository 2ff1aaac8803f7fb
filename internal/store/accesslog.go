package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ganot/crewsync/internal/domain/accesslog"
)

// AccessLogRepository implements accesslog.Repository
type AccessLogRepository struct {
	db *DB
}

// NewAccessLogRepository creates a new AccessLogRepository
func NewAccessLogRepository(db *DB) *AccessLogRepository {
	return &AccessLogRepository{db: db}
}

// Append inserts a new access attempt
func (r *AccessLogRepository) Append(ctx context.Context, entry *accesslog.Entry) error {
	ts := entry.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	query := `
		INSERT INTO gc_access_logs (
			project_id, accessed_at, ip, status, used_pin, new_pin, failure_reason
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		entry.ProjectID,
		ts.UTC(),
		entry.IP,
		entry.Status,
		entry.UsedPin,
		entry.NewPin,
		entry.FailureReason,
	)
	if err != nil {
		return fmt.Errorf("failed to append access log: %w", err)
	}

	id, err := result.LastInsertId()
	if err == nil {
		entry.ID = id
	}
	entry.Timestamp = ts.UTC()

	return nil
}

// List returns access attempts matching the given filters, newest first
func (r *AccessLogRepository) List(ctx context.Context, opts accesslog.ListOptions) ([]accesslog.Entry, error) {
	query := `
		SELECT id, project_id, accessed_at, ip, status, used_pin, new_pin, failure_reason
		FROM gc_access_logs
	`

	var args []any
	var conditions []string

	if opts.ProjectID != "" {
		conditions = append(conditions, "project_id = ?")
		args = append(args, opts.ProjectID)
	}
	if opts.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, *opts.Status)
	}

	if len(conditions) > 0 {
		query += " WHERE " + joinConditions(conditions)
	}

	query += " ORDER BY accessed_at DESC, id DESC"

	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
		if opts.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, opts.Offset)
		}
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list access logs: %w", err)
	}
	defer rows.Close()

	var entries []accesslog.Entry
	for rows.Next() {
		var entry accesslog.Entry
		var newPin, failureReason sql.NullString
		if err := rows.Scan(
			&entry.ID,
			&entry.ProjectID,
			&entry.Timestamp,
			&entry.IP,
			&entry.Status,
			&entry.UsedPin,
			&newPin,
			&failureReason,
		); err != nil {
			return nil, fmt.Errorf("failed to scan access log: %w", err)
		}
		if newPin.Valid {
			entry.NewPin = &newPin.String
		}
		if failureReason.Valid {
			entry.FailureReason = &failureReason.String
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating access log rows: %w", err)
	}

	return entries, nil
}
