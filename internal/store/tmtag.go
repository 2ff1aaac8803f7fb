package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ganot/crewsync/internal/domain/tmtag"
	"github.com/ganot/crewsync/internal/repository"
)

// TagRepository implements tmtag.Repository
type TagRepository struct {
	db *DB
}

// NewTagRepository creates a new TagRepository
func NewTagRepository(db *DB) *TagRepository {
	return &TagRepository{db: db}
}

const tagColumns = `
	id, project_id, date_of_work, project_name, company_name, gc_email, title,
	description_of_work, labor_entries, material_entries, equipment_entries,
	other_entries, status, crew_log_synced, crew_log_id, created_at, updated_at`

type encodedEntries struct {
	labor, material, equipment, other string
}

func encodeEntries(tag *tmtag.Tag) (encodedEntries, error) {
	var enc encodedEntries
	var err error
	if enc.labor, err = encodeList(tag.LaborEntries); err != nil {
		return enc, err
	}
	if enc.material, err = encodeList(tag.MaterialEntries); err != nil {
		return enc, err
	}
	if enc.equipment, err = encodeList(tag.EquipmentEntries); err != nil {
		return enc, err
	}
	if enc.other, err = encodeList(tag.OtherEntries); err != nil {
		return enc, err
	}
	return enc, nil
}

// Create inserts a T&M tag
func (r *TagRepository) Create(ctx context.Context, tag *tmtag.Tag) error {
	enc, err := encodeEntries(tag)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO tm_tags (` + tagColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		tag.ID,
		tag.ProjectID,
		tag.DateOfWork,
		tag.ProjectName,
		tag.CompanyName,
		tag.GCEmail,
		tag.Title,
		tag.DescriptionOfWork,
		enc.labor,
		enc.material,
		enc.equipment,
		enc.other,
		tag.Status,
		tag.CrewLogSynced,
		tag.CrewLogID,
		tag.CreatedAt.UTC(),
		tag.UpdatedAt.UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to create t&m tag: %w", err)
	}
	return nil
}

// Get retrieves a T&M tag by ID
func (r *TagRepository) Get(ctx context.Context, id string) (*tmtag.Tag, error) {
	query := `SELECT ` + tagColumns + ` FROM tm_tags WHERE id = ?`
	return r.queryOne(ctx, "get t&m tag", query, id)
}

// Update replaces the mutable fields of a T&M tag
func (r *TagRepository) Update(ctx context.Context, tag *tmtag.Tag) error {
	enc, err := encodeEntries(tag)
	if err != nil {
		return err
	}

	query := `
		UPDATE tm_tags
		SET date_of_work = ?, project_name = ?, company_name = ?, gc_email = ?,
			title = ?, description_of_work = ?, labor_entries = ?, material_entries = ?,
			equipment_entries = ?, other_entries = ?, status = ?, crew_log_synced = ?,
			crew_log_id = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		tag.DateOfWork,
		tag.ProjectName,
		tag.CompanyName,
		tag.GCEmail,
		tag.Title,
		tag.DescriptionOfWork,
		enc.labor,
		enc.material,
		enc.equipment,
		enc.other,
		tag.Status,
		tag.CrewLogSynced,
		tag.CrewLogID,
		tag.UpdatedAt.UTC(),
		tag.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update t&m tag: %w", err)
	}
	return requireRow(result)
}

// List returns tags matching the given filters, newest first
func (r *TagRepository) List(ctx context.Context, opts tmtag.ListOptions) ([]tmtag.Tag, error) {
	query := `SELECT ` + tagColumns + ` FROM tm_tags`

	var args []any
	var conditions []string

	if opts.ProjectID != "" {
		conditions = append(conditions, "project_id = ?")
		args = append(args, opts.ProjectID)
	}
	if len(opts.Statuses) > 0 {
		placeholders := make([]string, len(opts.Statuses))
		for i, status := range opts.Statuses {
			placeholders[i] = "?"
			args = append(args, status)
		}
		conditions = append(conditions, "status IN ("+strings.Join(placeholders, ", ")+")")
	}

	if len(conditions) > 0 {
		query += " WHERE " + joinConditions(conditions)
	}

	query += " ORDER BY date_of_work DESC, created_at DESC"

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
		return nil, fmt.Errorf("failed to list t&m tags: %w", err)
	}
	defer rows.Close()

	var tags []tmtag.Tag
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan t&m tag: %w", err)
		}
		tags = append(tags, *tag)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating t&m tag rows: %w", err)
	}
	return tags, nil
}

// MarkCrewLogSynced links a tag to its crew log
func (r *TagRepository) MarkCrewLogSynced(ctx context.Context, id, crewLogID string) error {
	query := `UPDATE tm_tags SET crew_log_synced = 1, crew_log_id = ?, updated_at = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, crewLogID, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to mark t&m tag synced: %w", err)
	}
	return requireRow(result)
}

// FindByDatePrefix returns the oldest tag whose date_of_work matches pattern
func (r *TagRepository) FindByDatePrefix(ctx context.Context, projectID, pattern string) (*tmtag.Tag, error) {
	query := `
		SELECT ` + tagColumns + `
		FROM tm_tags
		WHERE project_id = ? AND date_of_work LIKE ?
		ORDER BY created_at ASC, id ASC
		LIMIT 1
	`
	return r.queryOne(ctx, "find t&m tag by date prefix", query, projectID, pattern)
}

// FindByDate returns the oldest tag whose date_of_work falls on day
func (r *TagRepository) FindByDate(ctx context.Context, projectID, day string) (*tmtag.Tag, error) {
	query := `
		SELECT ` + tagColumns + `
		FROM tm_tags
		WHERE project_id = ? AND DATE(date_of_work) = ?
		ORDER BY created_at ASC, id ASC
		LIMIT 1
	`
	return r.queryOne(ctx, "find t&m tag by date", query, projectID, day)
}

func (r *TagRepository) queryOne(ctx context.Context, action, query string, args ...any) (*tmtag.Tag, error) {
	tag, err := scanTag(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to %s: %w", action, err)
	}
	return tag, nil
}

func scanTag(row rowScanner) (*tmtag.Tag, error) {
	var tag tmtag.Tag
	var labor, material, equipment, other string
	var crewLogID sql.NullString
	if err := row.Scan(
		&tag.ID,
		&tag.ProjectID,
		&tag.DateOfWork,
		&tag.ProjectName,
		&tag.CompanyName,
		&tag.GCEmail,
		&tag.Title,
		&tag.DescriptionOfWork,
		&labor,
		&material,
		&equipment,
		&other,
		&tag.Status,
		&tag.CrewLogSynced,
		&crewLogID,
		&tag.CreatedAt,
		&tag.UpdatedAt,
	); err != nil {
		return nil, err
	}

	var err error
	if tag.LaborEntries, err = decodeList[tmtag.LaborEntry](labor); err != nil {
		return nil, err
	}
	if tag.MaterialEntries, err = decodeList[tmtag.MaterialEntry](material); err != nil {
		return nil, err
	}
	if tag.EquipmentEntries, err = decodeList[tmtag.EquipmentEntry](equipment); err != nil {
		return nil, err
	}
	if tag.OtherEntries, err = decodeList[tmtag.OtherEntry](other); err != nil {
		return nil, err
	}
	if crewLogID.Valid {
		tag.CrewLogID = &crewLogID.String
	}
	return &tag, nil
}
