package accesslog

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const defaultListLimit = 100

// Service handles the GC access audit trail.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new access log service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{repo: repo, logger: logger}
}

// Record appends an entry with the current timestamp if missing.
// Failed attempts never carry a new PIN.
func (s *Service) Record(ctx context.Context, entry *Entry) error {
	if entry == nil {
		return ErrInvalidInput
	}
	switch entry.Status {
	case StatusSuccess:
		if entry.NewPin == nil {
			return ErrInvalidInput
		}
	case StatusFailed:
		entry.NewPin = nil
	default:
		return ErrInvalidInput
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	if err := s.repo.Append(ctx, entry); err != nil {
		return fmt.Errorf("recording access attempt: %w", err)
	}
	return nil
}

// List returns access attempts, newest first.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]Entry, error) {
	if opts.Limit <= 0 {
		opts.Limit = defaultListLimit
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}
	return s.repo.List(ctx, opts)
}
