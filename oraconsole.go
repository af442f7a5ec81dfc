// Package oraconsole exposes the process-wide session registry used by
// the console's HTTP and CLI front ends.
package oraconsole

import (
	"context"
	"errors"
	"sync"

	"github.com/TechXTT/oraconsole/internal/driver"
	"github.com/TechXTT/oraconsole/pkg/session"
)

// ErrNotConfigured is returned by allocation when no connector was
// installed with Init before first use.
var ErrNotConfigured = errors.New("oraconsole: no connector configured")

var (
	once     sync.Once
	registry *session.Registry
)

// Init installs the connector for the process-wide registry. Only the
// first call (or first use of any other function) creates the registry;
// Init reports whether this call did.
func Init(connector driver.Connector, opts ...session.Option) bool {
	installed := false
	once.Do(func() {
		registry = session.NewRegistry(connector, opts...)
		installed = true
	})
	return installed
}

// Registry returns the process-wide registry, creating an unconfigured
// one if Init was never called.
func Registry() *session.Registry {
	once.Do(func() {
		registry = session.NewRegistry(driver.ConnectorFunc(func(context.Context) (driver.Conn, error) {
			return nil, ErrNotConfigured
		}))
	})
	return registry
}

// AllocateSession opens a new session.
func AllocateSession(ctx context.Context) (session.ID, error) {
	return Registry().Allocate(ctx)
}

// ListSessions returns the live session ids in allocation order.
func ListSessions() []session.ID {
	return Registry().List()
}

// PingSession reports whether id names a live session that answers a ping.
func PingSession(ctx context.Context, id session.ID) (bool, error) {
	return Registry().Ping(ctx, id)
}

// ReleaseSession closes and forgets id. Unknown ids are ignored.
func ReleaseSession(id session.ID) {
	Registry().Release(id)
}

// Execute runs sql on the session named by id.
func Execute(ctx context.Context, id session.ID, sql string, opts ...session.ExecOption) (*session.Result, error) {
	return Registry().Execute(ctx, id, sql, opts...)
}
