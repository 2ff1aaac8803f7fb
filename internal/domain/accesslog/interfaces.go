package accesslog

import "context"

// Repository provides append-only persistence for access attempts.
type Repository interface {
	Append(ctx context.Context, entry *Entry) error
	List(ctx context.Context, opts ListOptions) ([]Entry, error)
}
