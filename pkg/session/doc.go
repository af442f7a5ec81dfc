// Package session holds the process-wide table of live database sessions
// and the execution adapter that runs statements against them.
//
// A session pairs an opaque ID with one physical connection. At most
// DefaultMaxSessions sessions exist at once; Allocate fails with
// ErrCapacityExceeded instead of queuing or evicting.
//
//	reg := session.NewRegistry(connector, session.WithLogger(logger))
//	id, err := reg.Allocate(ctx)
//	if err != nil {
//	    return err
//	}
//	defer reg.Release(id)
//
//	res, err := reg.Execute(ctx, id, "SELECT 1 FROM DUAL")
//
// Execute returns a Result that is detached from the session: every
// cursor the statement opened is closed before Execute returns.
//
// # Errors
//
// Failures can be classified with errors.Is against ErrCapacityExceeded,
// ErrSessionNotFound, ErrExecutionFailed and ErrProtocolViolation. An
// *ExecutionError keeps the driver error as its cause, so the database
// diagnostic text is always part of Error().
package session
