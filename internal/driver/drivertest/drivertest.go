// Package drivertest provides an in-memory driver.Connector whose
// connections answer statements from a Handler and count every open and
// close, for tests of code built on the driver boundary.
package drivertest

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"

	"github.com/TechXTT/oraconsole/internal/driver"
)

// ErrClosed is returned by calls on a closed connection.
var ErrClosed = errors.New("drivertest: connection is closed")

// Handler answers one Execute call.
type Handler func(query string, binds map[string]any) (*Outcome, error)

// Outcome is what a scripted statement produces.
type Outcome struct {
	RowsAffected    int64
	HasRowsAffected bool
	Cursors         []*Cursor
}

// Affected returns an Outcome for a DML statement.
func Affected(n int64) *Outcome {
	return &Outcome{RowsAffected: n, HasRowsAffected: true}
}

// Cursors returns an Outcome handing out cursors in the given order.
func Cursors(cursors ...*Cursor) *Outcome {
	return &Outcome{Cursors: cursors}
}

// Cursor is a scripted cursor.
type Cursor struct {
	cols    []driver.Column
	rows    [][]any
	failAt  int
	failErr error
	pos     int
	closed  atomic.Bool
	stats   *Stats
}

// NewCursor returns an empty cursor with the given column names.
func NewCursor(names ...string) *Cursor {
	cols := make([]driver.Column, len(names))
	for i, n := range names {
		cols[i] = driver.Column{Name: n}
	}
	return &Cursor{cols: cols, failAt: -1}
}

// AddRow appends a row.
func (c *Cursor) AddRow(vals ...any) *Cursor {
	c.rows = append(c.rows, vals)
	return c
}

// AddRawRow appends a row as-is, including nil.
func (c *Cursor) AddRawRow(row []any) *Cursor {
	c.rows = append(c.rows, row)
	return c
}

// FailAt makes the fetch of row i return err.
func (c *Cursor) FailAt(i int, err error) *Cursor {
	c.failAt, c.failErr = i, err
	return c
}

// Closed reports whether Close was called.
func (c *Cursor) Closed() bool {
	return c.closed.Load()
}

// Fetched returns the number of rows handed out so far.
func (c *Cursor) Fetched() int {
	return c.pos
}

// Columns implements driver.Cursor.
func (c *Cursor) Columns() []driver.Column {
	return c.cols
}

// Next implements driver.Cursor.
func (c *Cursor) Next(_ context.Context) ([]any, error) {
	if c.pos == c.failAt {
		return nil, c.failErr
	}
	if c.pos >= len(c.rows) {
		return nil, io.EOF
	}
	row := c.rows[c.pos]
	c.pos++
	return row, nil
}

// Close implements driver.Cursor.
func (c *Cursor) Close() error {
	if !c.closed.Swap(true) && c.stats != nil {
		c.stats.CursorsClosed.Add(1)
	}
	return nil
}

// Stats counts driver calls across every connection of a Connector.
type Stats struct {
	Opens         atomic.Int64
	Closes        atomic.Int64
	Pings         atomic.Int64
	Executes      atomic.Int64
	CursorsOpened atomic.Int64
	CursorsClosed atomic.Int64
}

// Connector is a scripted driver.Connector.
type Connector struct {
	// Handler answers statements. A nil Handler yields an empty Outcome.
	Handler Handler

	// OpenErr, PingErr and CloseErr, when set, are returned by the
	// corresponding calls.
	OpenErr  error
	PingErr  error
	CloseErr error

	Stats Stats

	mu    sync.Mutex
	conns []*Conn
}

var _ driver.Connector = (*Connector)(nil)

// Open implements driver.Connector.
func (c *Connector) Open(_ context.Context) (driver.Conn, error) {
	if c.OpenErr != nil {
		return nil, c.OpenErr
	}
	c.Stats.Opens.Add(1)

	conn := &Conn{connector: c}
	c.mu.Lock()
	c.conns = append(c.conns, conn)
	c.mu.Unlock()
	return conn, nil
}

// Conns returns every connection opened so far.
func (c *Connector) Conns() []*Conn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*Conn(nil), c.conns...)
}

// Conn is a scripted driver.Conn.
type Conn struct {
	connector *Connector
	closed    atomic.Bool
}

// Closed reports whether Close was called.
func (c *Conn) Closed() bool {
	return c.closed.Load()
}

// Ping implements driver.Conn.
func (c *Conn) Ping(_ context.Context) error {
	c.connector.Stats.Pings.Add(1)
	if c.closed.Load() {
		return ErrClosed
	}
	return c.connector.PingErr
}

// Execute implements driver.Conn.
func (c *Conn) Execute(_ context.Context, query string, binds map[string]any, _ driver.ExecOptions) (driver.Statement, error) {
	c.connector.Stats.Executes.Add(1)
	if c.closed.Load() {
		return nil, ErrClosed
	}
	if c.connector.Handler == nil {
		return &statement{stats: &c.connector.Stats, outcome: &Outcome{}}, nil
	}
	out, err := c.connector.Handler(query, binds)
	if err != nil {
		return nil, err
	}
	return &statement{stats: &c.connector.Stats, outcome: out}, nil
}

// Close implements driver.Conn.
func (c *Conn) Close() error {
	if !c.closed.Swap(true) {
		c.connector.Stats.Closes.Add(1)
	}
	return c.connector.CloseErr
}

type statement struct {
	stats   *Stats
	outcome *Outcome
	next    int
}

func (s *statement) RowsAffected() (int64, bool) {
	return s.outcome.RowsAffected, s.outcome.HasRowsAffected
}

func (s *statement) NextCursor(_ context.Context) (driver.Cursor, error) {
	if s.next >= len(s.outcome.Cursors) {
		return nil, nil
	}
	cur := s.outcome.Cursors[s.next]
	s.next++
	cur.stats = s.stats
	s.stats.CursorsOpened.Add(1)
	return cur, nil
}

func (s *statement) Close() error {
	return nil
}
