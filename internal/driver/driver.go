// Package driver defines the narrow capability set the session core needs
// from a database driver: open a connection, ping it, execute a statement
// and walk the cursors the statement produced.
package driver

import (
	"context"
)

// Connector opens physical connections. Credentials and the connection
// target are owned by the implementation.
type Connector interface {
	Open(ctx context.Context) (Conn, error)
}

// ConnectorFunc adapts a function to the Connector interface.
type ConnectorFunc func(ctx context.Context) (Conn, error)

// Open calls f(ctx).
func (f ConnectorFunc) Open(ctx context.Context) (Conn, error) {
	return f(ctx)
}

// Conn is one live physical connection. Implementations are not required
// to support overlapping calls.
type Conn interface {
	// Ping performs a lightweight round-trip.
	Ping(ctx context.Context) error

	// Execute submits query as a single execution unit. Binds are named
	// parameters and are never interpolated into the text.
	Execute(ctx context.Context, query string, binds map[string]any, opts ExecOptions) (Statement, error)

	// Close releases the physical connection.
	Close() error
}

// ExecOptions tunes a single Execute call.
type ExecOptions struct {
	// WantCursor asks the driver to hand back rows through cursors
	// instead of buffering them.
	WantCursor bool

	// MaxRows is a fetch-size hint. Zero means no hint. Drivers may
	// ignore it; callers still stop reading at their own limit.
	MaxRows int
}

// Statement is the outcome of Execute.
type Statement interface {
	// RowsAffected reports the affected-row count of a DML statement.
	// The second value is false when the driver reported none.
	RowsAffected() (int64, bool)

	// NextCursor returns the next cursor in discovery order: the
	// statement's own cursor first, then implicit results in the order
	// the driver reports them. It returns nil, nil once exhausted.
	NextCursor(ctx context.Context) (Cursor, error)

	// Close releases whatever the statement still holds.
	Close() error
}

// Column describes one cursor column.
type Column struct {
	Name         string
	DatabaseType string
}

// Cursor is a forward-only row source.
type Cursor interface {
	// Columns returns the column metadata in driver order.
	Columns() []Column

	// Next returns the next row, or io.EOF when the cursor is drained.
	Next(ctx context.Context) ([]any, error)

	// Close releases the cursor. Calling it twice is allowed.
	Close() error
}
