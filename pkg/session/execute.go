package session

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/TechXTT/oraconsole/internal/driver"
	"github.com/TechXTT/oraconsole/pkg/internal/typeconv"
)

// Execute runs query on the session's connection and collects every cursor
// it produced into a Result.
//
// Each cursor contributes at most the registry row limit (DefaultRowLimit
// unless configured) rows; WithNoLimit lifts the cap. Rows past the cap are
// left unread. All cursors are closed before Execute returns, on success
// and on failure alike.
func (r *Registry) Execute(ctx context.Context, id ID, query string, opts ...ExecOption) (*Result, error) {
	var o execOptions
	for _, opt := range opts {
		opt(&o)
	}

	e := r.lookup(id)
	if e == nil {
		return nil, fmt.Errorf("%w %s", ErrSessionNotFound, id)
	}

	limit := r.rowLimit
	if o.noLimit {
		limit = 0
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	// A Release that started while this call waited has already made id unknown.
	if r.lookup(id) != e {
		return nil, fmt.Errorf("%w %s", ErrSessionNotFound, id)
	}

	var stack cleanupStack
	defer func() {
		if err := stack.run(); err != nil {
			r.logger.Warn("failed to close cursor", zap.Stringer("session", id), zap.Error(err))
		}
	}()

	stmt, err := e.conn.Execute(ctx, query, o.binds, driver.ExecOptions{WantCursor: true, MaxRows: limit})
	if err != nil {
		return nil, r.failed(id, "execute", err)
	}
	stack.push(stmt.Close)

	result := &Result{Data: []ResultSet{}}
	if n, ok := stmt.RowsAffected(); ok {
		result.RowsAffected = &n
	}

	for {
		cur, err := stmt.NextCursor(ctx)
		if err != nil {
			return nil, r.failed(id, "cursor", err)
		}
		if cur == nil {
			break
		}
		stack.push(cur.Close)

		set, err := r.readCursor(ctx, id, cur, len(result.Data), limit)
		if err != nil {
			return nil, err
		}
		result.Data = append(result.Data, set)
	}

	return result, nil
}

// readCursor reads the metadata of cur once, then up to limit rows. A
// limit of zero reads until the cursor is drained.
func (r *Registry) readCursor(ctx context.Context, id ID, cur driver.Cursor, index, limit int) (ResultSet, error) {
	cols := cur.Columns()
	set := ResultSet{
		Metadata: make([]Column, len(cols)),
		Rows:     [][]any{},
	}
	for i, c := range cols {
		set.Metadata[i] = Column{Name: c.Name, Type: typeconv.CanonicalType(c.DatabaseType)}
	}

	for limit <= 0 || len(set.Rows) < limit {
		row, err := cur.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return ResultSet{}, r.failed(id, "fetch", err)
		}

		vals, err := typeconv.NormalizeRow(row, len(cols))
		if err != nil {
			return ResultSet{}, &ProtocolError{ResultSet: index, Row: len(set.Rows), Cause: err}
		}
		set.Rows = append(set.Rows, vals)
	}
	return set, nil
}

func (r *Registry) failed(id ID, op string, cause error) error {
	r.logger.Debug("statement failed", zap.Stringer("session", id), zap.String("op", op), zap.Error(cause))
	return &ExecutionError{Session: id, Op: op, Cause: cause}
}
