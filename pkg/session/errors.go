package session

import (
	"errors"
	"fmt"
)

// Sentinel errors for classification with errors.Is.
var (
	// ErrCapacityExceeded indicates Allocate was called with every slot taken.
	ErrCapacityExceeded = errors.New("session: too many connections opened")

	// ErrSessionNotFound indicates the ID is not (or no longer) registered.
	ErrSessionNotFound = errors.New("session: no connection for session")

	// ErrExecutionFailed indicates the driver failed a statement, a fetch or a ping.
	ErrExecutionFailed = errors.New("session: execution failed")

	// ErrProtocolViolation indicates the driver returned a row that is not
	// an ordered sequence of scalars.
	ErrProtocolViolation = errors.New("session: driver protocol violation")

	// ErrOpenFailed indicates the physical connection could not be opened.
	ErrOpenFailed = errors.New("session: failed to open connection")

	// ErrInvalidID indicates a string that is not a well-formed session ID.
	ErrInvalidID = errors.New("session: invalid session id")
)

// ExecutionError wraps a driver error raised while working on a session.
type ExecutionError struct {
	// Session is the session the operation ran on.
	Session ID

	// Op names the failed step: "execute", "cursor", "fetch" or "ping".
	Op string

	// Cause is the driver error, unchanged.
	Cause error
}

// Error returns the driver diagnostic prefixed with the failed step.
func (e *ExecutionError) Error() string {
	return "session: " + e.Op + " failed: " + e.Cause.Error()
}

// Unwrap exposes both ErrExecutionFailed and the driver error.
func (e *ExecutionError) Unwrap() []error {
	return []error{ErrExecutionFailed, e.Cause}
}

// ProtocolError reports a malformed row.
type ProtocolError struct {
	// ResultSet and Row locate the offending row, both zero based.
	ResultSet int
	Row       int

	// Cause describes what was wrong with the row.
	Cause error
}

// Error implements the error interface.
func (e *ProtocolError) Error() string {
	return fmt.Sprintf("session: driver protocol violation in result set %d, row %d: %v", e.ResultSet, e.Row, e.Cause)
}

// Unwrap exposes ErrProtocolViolation and the cause.
func (e *ProtocolError) Unwrap() []error {
	return []error{ErrProtocolViolation, e.Cause}
}
