package tmtag

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

// Service handles T&M tag business logic.
type Service struct {
	repo   Repository
	syncer Syncer
	logger *slog.Logger
}

// NewService creates a new tag service. syncer may be nil.
func NewService(repo Repository, syncer Syncer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{repo: repo, syncer: syncer, logger: logger}
}

// CreateRequest describes a directly entered T&M tag.
type CreateRequest struct {
	ProjectID         string
	DateOfWork        string
	ProjectName       string
	CompanyName       string
	GCEmail           string
	Title             string
	DescriptionOfWork string
	LaborEntries      []LaborEntry
	MaterialEntries   []MaterialEntry
	EquipmentEntries  []EquipmentEntry
	OtherEntries      []OtherEntry
	Status            Status
}

// UpdateRequest describes a tag edit. Nil fields are left unchanged.
type UpdateRequest struct {
	ID                string
	Title             *string
	DescriptionOfWork *string
	LaborEntries      []LaborEntry
	MaterialEntries   []MaterialEntry
	EquipmentEntries  []EquipmentEntry
	OtherEntries      []OtherEntry
}

// Create stores a tag and then creates its crew log counterpart if missing.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Tag, error) {
	if err := ValidateCreateInput(req); err != nil {
		return nil, err
	}
	day, _ := calendar.Normalize(req.DateOfWork)

	status := req.Status
	if status == "" {
		status = StatusPendingReview
	}
	title := req.Title
	if title == "" {
		title = "T&M Tag - " + day
	}

	now := time.Now().UTC()
	tag := &Tag{
		ID:                uuid.NewString(),
		ProjectID:         req.ProjectID,
		DateOfWork:        day,
		ProjectName:       req.ProjectName,
		CompanyName:       req.CompanyName,
		GCEmail:           req.GCEmail,
		Title:             title,
		DescriptionOfWork: req.DescriptionOfWork,
		LaborEntries:      withLaborIDs(req.LaborEntries),
		MaterialEntries:   withMaterialIDs(req.MaterialEntries),
		EquipmentEntries:  withEquipmentIDs(req.EquipmentEntries),
		OtherEntries:      withOtherIDs(req.OtherEntries),
		Status:            status,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.repo.Create(ctx, tag); err != nil {
		return nil, fmt.Errorf("creating t&m tag: %w", err)
	}

	s.sync(ctx, tag)
	return tag, nil
}

// Update edits a tag and then runs the tag-to-crew-log sync.
func (s *Service) Update(ctx context.Context, req UpdateRequest) (*Tag, error) {
	if req.ID == "" {
		return nil, ErrInvalidInput
	}

	current, err := s.Get(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	updated := *current
	if req.Title != nil {
		updated.Title = *req.Title
	}
	if req.DescriptionOfWork != nil {
		updated.DescriptionOfWork = *req.DescriptionOfWork
	}
	if req.LaborEntries != nil {
		if err := validateLaborEntries(req.LaborEntries); err != nil {
			return nil, err
		}
		updated.LaborEntries = withLaborIDs(req.LaborEntries)
	}
	if req.MaterialEntries != nil {
		updated.MaterialEntries = withMaterialIDs(req.MaterialEntries)
	}
	if req.EquipmentEntries != nil {
		updated.EquipmentEntries = withEquipmentIDs(req.EquipmentEntries)
	}
	if req.OtherEntries != nil {
		updated.OtherEntries = withOtherIDs(req.OtherEntries)
	}
	updated.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, &updated); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, fmt.Errorf("updating t&m tag: %w", err)
	}

	s.sync(ctx, &updated)
	return &updated, nil
}

// Transition moves a tag through the review workflow.
func (s *Service) Transition(ctx context.Context, id string, to Status) (*Tag, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ValidateTransition(current.Status, to); err != nil {
		return nil, err
	}

	updated := *current
	updated.Status = to
	updated.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, &updated); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, fmt.Errorf("transitioning t&m tag: %w", err)
	}

	s.logger.Info("t&m tag status changed", "tm_tag_id", id, "from", current.Status, "to", to)
	return &updated, nil
}

// Get returns a tag by ID.
func (s *Service) Get(ctx context.Context, id string) (*Tag, error) {
	tag, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, fmt.Errorf("getting t&m tag: %w", err)
	}
	return tag, nil
}

// List returns tags matching opts.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]Tag, error) {
	if opts.ProjectID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.List(ctx, opts)
}

func (s *Service) sync(ctx context.Context, tag *Tag) {
	if s.syncer == nil {
		return
	}
	s.syncer.SyncTag(ctx, tag)
}

func withLaborIDs(in []LaborEntry) []LaborEntry {
	out := make([]LaborEntry, len(in))
	for i, e := range in {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		e.WorkerName = strings.TrimSpace(e.WorkerName)
		out[i] = e
	}
	return out
}

func withMaterialIDs(in []MaterialEntry) []MaterialEntry {
	out := make([]MaterialEntry, len(in))
	for i, e := range in {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		out[i] = e
	}
	return out
}

func withEquipmentIDs(in []EquipmentEntry) []EquipmentEntry {
	out := make([]EquipmentEntry, len(in))
	for i, e := range in {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		out[i] = e
	}
	return out
}

func withOtherIDs(in []OtherEntry) []OtherEntry {
	out := make([]OtherEntry, len(in))
	for i, e := range in {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		out[i] = e
	}
	return out
}
