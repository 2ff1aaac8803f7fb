package gcaccess

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ganot/crewsync/internal/domain/accesslog"
	"github.com/ganot/crewsync/internal/domain/project"
	"github.com/ganot/crewsync/internal/repository"
)

const maxAuditedPinLength = 16

// Service issues, validates and rotates single-use GC dashboard PINs.
// Every Validate call leaves exactly one entry in the audit log.
type Service struct {
	projects    ProjectRepository
	audit       AuditLog
	logger      *slog.Logger
	generate    func() (string, error)
	maxAttempts int
	now         func() time.Time
}

// NewService creates a new PIN gate.
func NewService(projects ProjectRepository, audit AuditLog, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Service{
		projects:    projects,
		audit:       audit,
		logger:      logger,
		generate:    GeneratePin,
		maxAttempts: DefaultMaxAttempts,
		now:         func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnsurePin returns the project's current PIN, creating one if it has none.
func (s *Service) EnsurePin(ctx context.Context, projectID string) (PinInfo, error) {
	proj, err := s.loadProject(ctx, projectID)
	if err != nil {
		return PinInfo{}, err
	}
	if proj.Pin.HasPin() {
		return PinInfo{ProjectID: proj.ID, Pin: *proj.Pin.CurrentPin, Used: proj.Pin.PinUsed}, nil
	}

	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		pin, err := s.candidate(ctx, "")
		if err != nil {
			return PinInfo{}, err
		}
		if pin == "" {
			continue
		}

		err = s.projects.SetPinIfAbsent(ctx, proj.ID, pin)
		switch {
		case err == nil:
			s.logger.Info("gc pin created", "project_id", proj.ID)
			return PinInfo{ProjectID: proj.ID, Pin: pin}, nil
		case errors.Is(err, repository.ErrDuplicate):
			continue
		case errors.Is(err, repository.ErrConflict):
			// Someone else set a PIN first; theirs stands.
			current, err := s.loadProject(ctx, proj.ID)
			if err != nil {
				return PinInfo{}, err
			}
			if current.Pin.HasPin() {
				return PinInfo{ProjectID: current.ID, Pin: *current.Pin.CurrentPin, Used: current.Pin.PinUsed}, nil
			}
		case errors.Is(err, repository.ErrNotFound):
			return PinInfo{}, ErrProjectNotFound
		default:
			return PinInfo{}, fmt.Errorf("storing pin: %w", err)
		}
	}
	return PinInfo{}, ErrPinSpaceExhausted
}

// IssuePin replaces the project's PIN with a fresh one, invalidating any
// previously shared code.
func (s *Service) IssuePin(ctx context.Context, projectID string) (PinInfo, error) {
	proj, err := s.loadProject(ctx, projectID)
	if err != nil {
		return PinInfo{}, err
	}
	previous := ""
	if proj.Pin.HasPin() {
		previous = *proj.Pin.CurrentPin
	}

	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		pin, err := s.candidate(ctx, previous)
		if err != nil {
			return PinInfo{}, err
		}
		if pin == "" {
			continue
		}

		err = s.projects.ReplacePin(ctx, proj.ID, pin)
		switch {
		case err == nil:
			s.logger.Info("gc pin rotated by operator", "project_id", proj.ID)
			return PinInfo{ProjectID: proj.ID, Pin: pin}, nil
		case errors.Is(err, repository.ErrDuplicate):
			continue
		case errors.Is(err, repository.ErrNotFound):
			return PinInfo{}, ErrProjectNotFound
		default:
			return PinInfo{}, fmt.Errorf("storing pin: %w", err)
		}
	}
	return PinInfo{}, ErrPinSpaceExhausted
}

// Validate consumes a PIN. On success the project's PIN has already been
// replaced by the time Validate returns, so the presented code can never
// succeed again. All denials return ErrAccessDenied.
func (s *Service) Validate(ctx context.Context, req ValidateRequest) (*Grant, error) {
	pin := strings.TrimSpace(req.Pin)
	projectID := strings.TrimSpace(req.ProjectID)

	if !WellFormed(pin) {
		s.recordFailure(ctx, projectID, req.IP, pin, "Malformed PIN")
		return nil, ErrMalformedPin
	}

	proj, err := s.match(ctx, projectID, pin)
	if err != nil {
		if errors.Is(err, ErrAccessDenied) {
			s.recordFailure(ctx, projectID, req.IP, pin, failureReason)
			return nil, ErrAccessDenied
		}
		s.recordFailure(ctx, projectID, req.IP, pin, "Lookup failed")
		return nil, err
	}

	newPin, err := s.rotate(ctx, proj.ID, pin, req.IP)
	if err != nil {
		if errors.Is(err, ErrAccessDenied) {
			s.recordFailure(ctx, proj.ID, req.IP, pin, failureReason)
			return nil, ErrAccessDenied
		}
		s.recordFailure(ctx, proj.ID, req.IP, pin, "Rotation failed")
		return nil, err
	}

	entry := &accesslog.Entry{
		ProjectID: proj.ID,
		Timestamp: s.now(),
		IP:        req.IP,
		Status:    accesslog.StatusSuccess,
		UsedPin:   pin,
		NewPin:    &newPin,
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		s.logger.Error("recording gc access", "project_id", proj.ID, "ip", req.IP, "error", err)
	}
	s.logger.Info("gc access granted", "project_id", proj.ID, "ip", req.IP, "status", accesslog.StatusSuccess)

	grant := &Grant{ProjectID: proj.ID, ProjectName: proj.Name}
	if projectID != "" {
		grant.Message = "Access granted"
	}
	return grant, nil
}

// match finds the project whose unused PIN is pin. With a project id the
// comparison is made against that project only.
func (s *Service) match(ctx context.Context, projectID, pin string) (*project.Project, error) {
	if projectID == "" {
		proj, err := s.projects.FindByActivePin(ctx, pin)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrAccessDenied
			}
			return nil, fmt.Errorf("finding project by pin: %w", err)
		}
		return proj, nil
	}

	proj, err := s.projects.Get(ctx, projectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAccessDenied
		}
		return nil, fmt.Errorf("loading project: %w", err)
	}
	if !proj.Pin.HasPin() || proj.Pin.PinUsed {
		return nil, ErrAccessDenied
	}
	if subtle.ConstantTimeCompare([]byte(*proj.Pin.CurrentPin), []byte(pin)) != 1 {
		return nil, ErrAccessDenied
	}
	return proj, nil
}

// rotate swaps oldPin for a fresh PIN in one conditional update. Losing the
// race to another validator surfaces as ErrAccessDenied.
func (s *Service) rotate(ctx context.Context, projectID, oldPin, ip string) (string, error) {
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		newPin, err := s.candidate(ctx, oldPin)
		if err != nil {
			return "", err
		}
		if newPin == "" {
			continue
		}

		err = s.projects.RotatePin(ctx, projectID, oldPin, newPin, s.now(), ip)
		switch {
		case err == nil:
			return newPin, nil
		case errors.Is(err, repository.ErrDuplicate):
			continue
		case errors.Is(err, repository.ErrConflict), errors.Is(err, repository.ErrNotFound):
			return "", ErrAccessDenied
		default:
			return "", fmt.Errorf("rotating pin: %w", err)
		}
	}
	return "", ErrPinSpaceExhausted
}

// candidate draws a PIN that differs from avoid and is not visibly held by
// another project. It returns "" when the draw should be retried. The
// in-use check is advisory; the unique index is authoritative.
func (s *Service) candidate(ctx context.Context, avoid string) (string, error) {
	pin, err := s.generate()
	if err != nil {
		return "", err
	}
	if pin == avoid {
		return "", nil
	}
	taken, err := s.projects.PinInUse(ctx, pin)
	if err != nil {
		return "", fmt.Errorf("checking pin: %w", err)
	}
	if taken {
		return "", nil
	}
	return pin, nil
}

func (s *Service) loadProject(ctx context.Context, projectID string) (*project.Project, error) {
	if strings.TrimSpace(projectID) == "" {
		return nil, ErrProjectNotFound
	}
	proj, err := s.projects.Get(ctx, projectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("loading project: %w", err)
	}
	return proj, nil
}

func (s *Service) recordFailure(ctx context.Context, projectID, ip, pin, reason string) {
	pin = truncateRunes(pin, maxAuditedPinLength)
	entry := &accesslog.Entry{
		ProjectID:     projectID,
		Timestamp:     s.now(),
		IP:            ip,
		Status:        accesslog.StatusFailed,
		UsedPin:       pin,
		FailureReason: &reason,
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		s.logger.Error("recording gc access", "project_id", projectID, "ip", ip, "error", err)
	}
	s.logger.Warn("gc access denied", "project_id", projectID, "ip", ip, "status", accesslog.StatusFailed)
}

// truncateRunes cuts s to at most n bytes without splitting a UTF-8
// sequence. Invalid bytes end the prefix.
func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	end := 0
	for end < len(s) {
		r, size := utf8.DecodeRuneInString(s[end:])
		if r == utf8.RuneError && size <= 1 {
			break
		}
		if end+size > n {
			break
		}
		end += size
	}
	return s[:end]
}
