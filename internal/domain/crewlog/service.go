package crewlog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ganot/crewsync/internal/calendar"
	"github.com/ganot/crewsync/internal/repository"
	"github.com/google/uuid"
)

// Service handles crew log capture. Every write is followed by a
// best-effort sync that never fails the write itself.
type Service struct {
	repo   Repository
	syncer Syncer
	logger *slog.Logger
}

// NewService creates a new crew log service. syncer may be nil.
func NewService(repo Repository, syncer Syncer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{repo: repo, syncer: syncer, logger: logger}
}

// CreateRequest describes a crew log capture.
type CreateRequest struct {
	ProjectID       string
	Date            string
	CrewMembers     []CrewMember
	WorkDescription string
}

// UpdateRequest replaces the editable fields of a crew log.
type UpdateRequest struct {
	ID              string
	Date            *string
	CrewMembers     []CrewMember
	WorkDescription *string
}

// Create stores a crew log and then syncs it to its T&M tag.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*CrewLog, error) {
	if strings.TrimSpace(req.ProjectID) == "" {
		return nil, ErrInvalidInput
	}
	day, err := calendar.Normalize(req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	members, err := s.prepareMembers(req.CrewMembers)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	log := &CrewLog{
		ID:              uuid.NewString(),
		ProjectID:       req.ProjectID,
		Date:            day,
		CrewMembers:     members,
		WorkDescription: req.WorkDescription,
		Status:          StatusSubmitted,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Create(ctx, log); err != nil {
		return nil, fmt.Errorf("creating crew log: %w", err)
	}

	s.sync(ctx, log)
	return log, nil
}

// Update edits a crew log, marks it unsynced, and syncs it again.
func (s *Service) Update(ctx context.Context, req UpdateRequest) (*CrewLog, error) {
	if req.ID == "" {
		return nil, ErrInvalidInput
	}

	current, err := s.Get(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	updated := *current
	if req.Date != nil {
		day, err := calendar.Normalize(*req.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		updated.Date = day
	}
	if req.CrewMembers != nil {
		members, err := s.prepareMembers(req.CrewMembers)
		if err != nil {
			return nil, err
		}
		updated.CrewMembers = members
	}
	if req.WorkDescription != nil {
		updated.WorkDescription = *req.WorkDescription
	}
	updated.SyncedToTM = false
	updated.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, &updated); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCrewLogNotFound
		}
		return nil, fmt.Errorf("updating crew log: %w", err)
	}

	s.sync(ctx, &updated)
	return &updated, nil
}

// Get returns a crew log by ID.
func (s *Service) Get(ctx context.Context, id string) (*CrewLog, error) {
	log, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCrewLogNotFound
		}
		return nil, fmt.Errorf("getting crew log: %w", err)
	}
	return log, nil
}

// ListUnsynced returns the crew logs of a project still waiting for a T&M tag.
func (s *Service) ListUnsynced(ctx context.Context, projectID string) ([]CrewLog, error) {
	if strings.TrimSpace(projectID) == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListUnsynced(ctx, projectID)
}

func (s *Service) sync(ctx context.Context, log *CrewLog) {
	if s.syncer == nil {
		return
	}
	s.syncer.SyncCrewLog(ctx, log)
}

// prepareMembers trims names, rejects negative hours, and fills an omitted
// total from the buckets. A supplied total that disagrees is kept as-is.
func (s *Service) prepareMembers(in []CrewMember) ([]CrewMember, error) {
	out := make([]CrewMember, 0, len(in))
	for _, m := range in {
		m.Name = strings.TrimSpace(m.Name)
		if m.Name == "" {
			return nil, fmt.Errorf("%w: crew member name required", ErrInvalidInput)
		}
		if m.StHours < 0 || m.OtHours < 0 || m.DtHours < 0 || m.PotHours < 0 || m.TotalHours < 0 {
			return nil, fmt.Errorf("%w: negative hours for %s", ErrInvalidInput, m.Name)
		}
		if m.TotalHours == 0 {
			m.TotalHours = m.BucketSum()
		} else if m.TotalMismatch() {
			s.logger.Warn("crew member total differs from bucket sum",
				"name", m.Name, "total_hours", m.TotalHours, "bucket_sum", m.BucketSum())
		}
		out = append(out, m)
	}
	return out, nil
}
