package sqldriver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"sort"

	"go.uber.org/multierr"

	"github.com/TechXTT/oraconsole/internal/driver"
)

var errCursorClosed = errors.New("sqldriver: cursor is closed")

// Conn is a single physical connection held for the lifetime of a session.
type Conn struct {
	db   *sql.DB
	conn *sql.Conn
}

var _ driver.Conn = (*Conn)(nil)

// NewConn wraps an already-open *sql.DB, taking one connection from it.
func NewConn(ctx context.Context, db *sql.DB) (*Conn, error) {
	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}
	return &Conn{db: db, conn: conn}, nil
}

// Ping verifies the connection is alive.
func (c *Conn) Ping(ctx context.Context) error {
	return c.conn.PingContext(ctx)
}

// Execute runs query on the dedicated connection. Statements that can
// produce rows go through QueryContext so their result sets, including
// implicit ones, are reachable through NextCursor; everything else goes
// through ExecContext and reports the affected-row count.
//
// opts.MaxRows is ignored: database/sql has no per-statement fetch size,
// so every row stays reachable and the caller enforces its limit.
func (c *Conn) Execute(ctx context.Context, query string, binds map[string]any, opts driver.ExecOptions) (driver.Statement, error) {
	args := namedArgs(binds)

	if opts.WantCursor && returnsRows(query) {
		rows, err := c.conn.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, err
		}
		return &statement{rows: rows}, nil
	}

	res, err := c.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	st := &statement{}
	if n, err := res.RowsAffected(); err == nil {
		st.affected, st.hasAffected = n, true
	}
	return st, nil
}

// Close returns the connection and closes the per-session pool.
func (c *Conn) Close() error {
	return multierr.Append(c.conn.Close(), c.db.Close())
}

// namedArgs turns binds into sql.Named arguments sorted by name so the
// argument order is stable.
func namedArgs(binds map[string]any) []any {
	if len(binds) == 0 {
		return nil
	}
	names := make([]string, 0, len(binds))
	for name := range binds {
		names = append(names, name)
	}
	sort.Strings(names)

	args := make([]any, 0, len(names))
	for _, name := range names {
		args = append(args, sql.Named(name, binds[name]))
	}
	return args
}

type statement struct {
	rows        *sql.Rows
	started     bool
	affected    int64
	hasAffected bool
}

func (s *statement) RowsAffected() (int64, bool) {
	return s.affected, s.hasAffected
}

// NextCursor walks the result sets of the underlying *sql.Rows. Result
// sets without columns carry no cursor and are skipped.
func (s *statement) NextCursor(_ context.Context) (driver.Cursor, error) {
	if s.rows == nil {
		return nil, nil
	}
	for {
		if s.started && !s.rows.NextResultSet() {
			return nil, s.rows.Err()
		}
		s.started = true

		types, err := s.rows.ColumnTypes()
		if err != nil {
			return nil, err
		}
		if len(types) == 0 {
			continue
		}

		cols := make([]driver.Column, len(types))
		for i, t := range types {
			cols[i] = driver.Column{Name: t.Name(), DatabaseType: t.DatabaseTypeName()}
		}
		return &cursor{rows: s.rows, cols: cols}, nil
	}
}

func (s *statement) Close() error {
	if s.rows == nil {
		return nil
	}
	return s.rows.Close()
}

// cursor is a view over the current result set of a shared *sql.Rows.
// Closing it only detaches the view; the rows are closed by the statement.
type cursor struct {
	rows   *sql.Rows
	cols   []driver.Column
	closed bool
}

func (c *cursor) Columns() []driver.Column {
	return c.cols
}

func (c *cursor) Next(_ context.Context) ([]any, error) {
	if c.closed {
		return nil, errCursorClosed
	}
	if !c.rows.Next() {
		if err := c.rows.Err(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}

	vals := make([]any, len(c.cols))
	dest := make([]any, len(vals))
	for i := range vals {
		dest[i] = &vals[i]
	}
	if err := c.rows.Scan(dest...); err != nil {
		return nil, err
	}
	return vals, nil
}

func (c *cursor) Close() error {
	c.closed = true
	return nil
}
