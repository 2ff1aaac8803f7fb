package project

import (
	"context"
	"time"
)

// Repository provides persistence for projects and their embedded PIN state.
type Repository interface {
	Create(ctx context.Context, proj *Project) error
	Get(ctx context.Context, id string) (*Project, error)
	List(ctx context.Context) ([]Summary, error)
	Delete(ctx context.Context, id string) error

	// SetPinIfAbsent stores pin only when the project has none.
	// Returns repository.ErrConflict when a PIN already exists and
	// repository.ErrDuplicate when another project holds pin.
	SetPinIfAbsent(ctx context.Context, id, pin string) error
	// ReplacePin unconditionally stores pin and clears pin_used.
	ReplacePin(ctx context.Context, id, pin string) error
	// RotatePin swaps oldPin for newPin in one conditional update keyed on
	// (id, oldPin, pin_used = false). Returns repository.ErrConflict when no
	// row matched and repository.ErrDuplicate when newPin is taken.
	RotatePin(ctx context.Context, id, oldPin, newPin string, at time.Time, ip string) error
	// FindByActivePin returns the project whose unused current PIN is pin.
	FindByActivePin(ctx context.Context, pin string) (*Project, error)
	// PinInUse reports whether any project currently holds pin.
	PinInUse(ctx context.Context, pin string) (bool, error)
}
