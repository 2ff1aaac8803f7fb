package gcaccess

import "time"

// DefaultMaxAttempts bounds the PIN re-roll loop.
const DefaultMaxAttempts = 25

// Option configures a Service.
type Option func(*Service)

// WithMaxAttempts sets how many PINs are tried before giving up.
func WithMaxAttempts(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// WithGenerator replaces the random PIN source.
func WithGenerator(fn func() (string, error)) Option {
	return func(s *Service) {
		if fn != nil {
			s.generate = fn
		}
	}
}

// WithClock overrides the service's time source.
func WithClock(fn func() time.Time) Option {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}
