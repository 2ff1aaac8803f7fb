package gcaccess

import (
	"context"
	"time"

	"github.com/ganot/crewsync/internal/domain/accesslog"
	"github.com/ganot/crewsync/internal/domain/project"
)

// ProjectRepository is the PIN-related subset of project persistence.
type ProjectRepository interface {
	Get(ctx context.Context, id string) (*project.Project, error)
	SetPinIfAbsent(ctx context.Context, id, pin string) error
	ReplacePin(ctx context.Context, id, pin string) error
	RotatePin(ctx context.Context, id, oldPin, newPin string, at time.Time, ip string) error
	FindByActivePin(ctx context.Context, pin string) (*project.Project, error)
	PinInUse(ctx context.Context, pin string) (bool, error)
}

// AuditLog appends access attempts.
type AuditLog interface {
	Record(ctx context.Context, entry *accesslog.Entry) error
}
