package session

import "go.uber.org/zap"

const (
	// DefaultMaxSessions is the number of sessions allowed at once.
	DefaultMaxSessions = 2

	// DefaultRowLimit caps the rows read from a single cursor.
	DefaultRowLimit = 1000
)

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMaxSessions overrides DefaultMaxSessions. Values below 1 are ignored.
func WithMaxSessions(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.maxSessions = n
		}
	}
}

// WithRowLimit overrides DefaultRowLimit. Values below 1 are ignored.
func WithRowLimit(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.rowLimit = n
		}
	}
}

// WithIDGenerator replaces NewID.
func WithIDGenerator(gen func() ID) Option {
	return func(r *Registry) {
		if gen != nil {
			r.newID = gen
		}
	}
}

// ExecOption configures a single Execute call.
type ExecOption func(*execOptions)

type execOptions struct {
	binds   map[string]any
	noLimit bool
}

// WithBinds passes named bind values. Values are sent separately from the
// statement text.
func WithBinds(binds map[string]any) ExecOption {
	return func(o *execOptions) {
		o.binds = binds
	}
}

// WithNoLimit lifts the row cap. It is meant for trusted catalog queries,
// not for statements typed by a user.
func WithNoLimit() ExecOption {
	return func(o *execOptions) {
		o.noLimit = true
	}
}
