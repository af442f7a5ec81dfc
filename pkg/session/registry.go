package session

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/TechXTT/oraconsole/internal/driver"
)

// entry is one registered session. mu serializes calls on conn.
type entry struct {
	id   ID
	mu   sync.Mutex
	conn driver.Conn
}

// Registry maps session IDs to live connections.
type Registry struct {
	connector   driver.Connector
	logger      *zap.Logger
	maxSessions int
	rowLimit    int
	newID       func() ID

	mu      sync.Mutex
	entries map[ID]*entry
	order   []ID
	// opening counts slots reserved by Allocate calls whose connection is
	// still being opened.
	opening int
}

// NewRegistry returns an empty Registry that opens connections through connector.
func NewRegistry(connector driver.Connector, opts ...Option) *Registry {
	r := &Registry{
		connector:   connector,
		logger:      zap.NewNop(),
		maxSessions: DefaultMaxSessions,
		rowLimit:    DefaultRowLimit,
		newID:       NewID,
		entries:     make(map[ID]*entry),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Allocate opens a new connection and registers it under a fresh ID.
//
// The capacity check and the slot reservation happen under one lock, so
// concurrent callers can never push the registry over the cap. The
// connection itself is opened outside the lock.
func (r *Registry) Allocate(ctx context.Context) (ID, error) {
	r.mu.Lock()
	if len(r.entries)+r.opening >= r.maxSessions {
		r.mu.Unlock()
		return "", ErrCapacityExceeded
	}
	r.opening++
	r.mu.Unlock()

	conn, err := r.connector.Open(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.opening--

	if err != nil {
		r.logger.Warn("failed to open connection", zap.Error(err))
		return "", fmt.Errorf("%w: %w", ErrOpenFailed, err)
	}

	id := r.newID()
	for r.entries[id] != nil {
		id = r.newID()
	}
	r.entries[id] = &entry{id: id, conn: conn}
	r.order = append(r.order, id)

	r.logger.Info("session allocated", zap.Stringer("session", id), zap.Int("open", len(r.entries)))
	return id, nil
}

// List returns the live session IDs in allocation order.
func (r *Registry) List() []ID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.order)
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Ping reports whether id is registered and, if so, checks its connection.
//
// An unknown id yields false and no error. A failed round-trip yields an
// *ExecutionError; the session stays registered until released. Ping
// waits for a statement already running on the session.
func (r *Registry) Ping(ctx context.Context, id ID) (bool, error) {
	e := r.lookup(id)
	if e == nil {
		return false, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if r.lookup(id) != e {
		return false, nil
	}
	if err := e.conn.Ping(ctx); err != nil {
		return false, &ExecutionError{Session: id, Op: "ping", Cause: err}
	}
	return true, nil
}

// Release forgets id and closes its connection. Unknown IDs are ignored.
//
// The ID is removed from the table before the connection is closed, so
// concurrent callers see it as unknown right away. Close failures are
// logged and otherwise dropped.
func (r *Registry) Release(id ID) {
	if err := r.release(id); err != nil {
		r.logger.Warn("failed to close connection", zap.Stringer("session", id), zap.Error(err))
	}
}

// Close releases every session and returns the combined close errors.
func (r *Registry) Close() error {
	var errs error
	for _, id := range r.List() {
		errs = multierr.Append(errs, r.release(id))
	}
	return errs
}

func (r *Registry) release(id ID) error {
	r.mu.Lock()
	e := r.entries[id]
	if e != nil {
		delete(r.entries, id)
		r.order = slices.DeleteFunc(r.order, func(other ID) bool { return other == id })
	}
	r.mu.Unlock()

	if e == nil {
		return nil
	}

	// Wait for an in-flight Execute or Ping on this session to finish.
	e.mu.Lock()
	defer e.mu.Unlock()
	err := e.conn.Close()

	r.logger.Info("session released", zap.Stringer("session", id))
	return err
}

func (r *Registry) lookup(id ID) *entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries[id]
}
