package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ganot/crewsync/internal/domain/project"
	"github.com/ganot/crewsync/internal/repository"
)

// ProjectRepository implements project.Repository
type ProjectRepository struct {
	db *DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

const projectColumns = `
	id, name, client_company, gc_email, labor_rate, contract_amount, status,
	current_pin, pin_used, last_access_at, last_access_ip, created_at`

// Create inserts a new project
func (r *ProjectRepository) Create(ctx context.Context, proj *project.Project) error {
	query := `
		INSERT INTO projects (id, name, client_company, gc_email, labor_rate, contract_amount, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		proj.ID,
		proj.Name,
		proj.ClientCompany,
		proj.GCEmail,
		proj.LaborRate,
		proj.ContractAmount,
		proj.Status,
		proj.CreatedAt.UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to create project: %w", err)
	}

	return nil
}

// Get retrieves a project with its PIN state
func (r *ProjectRepository) Get(ctx context.Context, id string) (*project.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = ?`

	proj, err := scanProject(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return proj, nil
}

// List returns project summaries, newest first
func (r *ProjectRepository) List(ctx context.Context) ([]project.Summary, error) {
	query := `
		SELECT id, name, client_company, status, created_at
		FROM projects
		ORDER BY created_at DESC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var summaries []project.Summary
	for rows.Next() {
		var summary project.Summary
		if err := rows.Scan(
			&summary.ID,
			&summary.Name,
			&summary.ClientCompany,
			&summary.Status,
			&summary.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan project summary: %w", err)
		}
		summaries = append(summaries, summary)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating project rows: %w", err)
	}

	return summaries, nil
}

// Delete removes a project
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return requireRow(result)
}

// SetPinIfAbsent stores pin when the project has none
func (r *ProjectRepository) SetPinIfAbsent(ctx context.Context, id, pin string) error {
	query := `
		UPDATE projects
		SET current_pin = ?, pin_used = 0
		WHERE id = ? AND current_pin IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, pin, id)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to set pin: %w", err)
	}

	if err := requireRow(result); err != nil {
		exists, existsErr := r.exists(ctx, id)
		if existsErr != nil {
			return existsErr
		}
		if !exists {
			return repository.ErrNotFound
		}
		return repository.ErrConflict
	}
	return nil
}

// ReplacePin overwrites the project's PIN and clears pin_used
func (r *ProjectRepository) ReplacePin(ctx context.Context, id, pin string) error {
	query := `UPDATE projects SET current_pin = ?, pin_used = 0 WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, pin, id)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to replace pin: %w", err)
	}
	return requireRow(result)
}

// RotatePin consumes oldPin and installs newPin in a single conditional
// update. Of two callers presenting the same oldPin only one can match.
func (r *ProjectRepository) RotatePin(ctx context.Context, id, oldPin, newPin string, at time.Time, ip string) error {
	query := `
		UPDATE projects
		SET current_pin = ?, pin_used = 0, last_access_at = ?, last_access_ip = ?
		WHERE id = ? AND current_pin = ? AND pin_used = 0
	`

	result, err := r.db.ExecContext(ctx, query, newPin, at.UTC(), ip, id, oldPin)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to rotate pin: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrConflict
	}
	return nil
}

// FindByActivePin returns the project holding pin unused
func (r *ProjectRepository) FindByActivePin(ctx context.Context, pin string) (*project.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE current_pin = ? AND pin_used = 0`

	proj, err := scanProject(r.db.QueryRowContext(ctx, query, pin))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find project by pin: %w", err)
	}
	return proj, nil
}

// PinInUse reports whether any project holds pin
func (r *ProjectRepository) PinInUse(ctx context.Context, pin string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects WHERE current_pin = ?`, pin).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check pin: %w", err)
	}
	return count > 0, nil
}

func (r *ProjectRepository) exists(ctx context.Context, id string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects WHERE id = ?`, id).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check project: %w", err)
	}
	return count > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*project.Project, error) {
	var proj project.Project
	var (
		currentPin   sql.NullString
		lastAccessAt sql.NullTime
		lastAccessIP sql.NullString
	)
	if err := row.Scan(
		&proj.ID,
		&proj.Name,
		&proj.ClientCompany,
		&proj.GCEmail,
		&proj.LaborRate,
		&proj.ContractAmount,
		&proj.Status,
		&currentPin,
		&proj.Pin.PinUsed,
		&lastAccessAt,
		&lastAccessIP,
		&proj.CreatedAt,
	); err != nil {
		return nil, err
	}
	if currentPin.Valid {
		proj.Pin.CurrentPin = &currentPin.String
	}
	if lastAccessAt.Valid {
		t := lastAccessAt.Time
		proj.Pin.LastAccessAt = &t
	}
	if lastAccessIP.Valid {
		proj.Pin.LastAccessIP = &lastAccessIP.String
	}
	return &proj, nil
}

func requireRow(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}
