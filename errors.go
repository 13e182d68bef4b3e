// Package profiling implements the profiling telemetry pipeline: a
// control-connection protocol for counter and timeline data, a buffer
// pool feeding a single send thread, and the orchestrating state machine
// that drives it all from backend registration through capture and
// shutdown.
package profiling

import (
	"errors"
	"fmt"
)

// Error is a structured profiling error carrying the failing operation,
// a high-level category, a human-readable message, and an optional
// wrapped cause.
type Error struct {
	Op    string    // Operation that failed (e.g., "RegisterCounter", "Dispatch")
	Code  ErrorCode // High-level error category
	Msg   string    // Human-readable message
	Inner error     // Wrapped error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = string(e.Code)
	}
	if e.Op != "" {
		return fmt.Sprintf("profiling: %s: %s", e.Op, msg)
	}
	return fmt.Sprintf("profiling: %s", msg)
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Inner
}

// Is lets errors.Is match two *Error values by Code alone, so callers can
// write errors.Is(err, &Error{Code: ErrCodeWrongState}) without needing
// the exact message.
func (e *Error) Is(target error) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == te.Code
}

// ErrorCode categorizes why an operation failed, matching the error
// kinds the protocol and orchestrator distinguish between.
type ErrorCode string

const (
	// ErrCodeWrongState: a command arrived, or an API call was made,
	// while the service was in a state that disallows it (§4.7/§4.11).
	ErrCodeWrongState ErrorCode = "wrong state"
	// ErrCodeIOError: the underlying connection failed to read or write.
	ErrCodeIOError ErrorCode = "I/O error"
	// ErrCodeBufferExhaustion: the buffer pool had no free buffer and,
	// where applicable, the single retry also failed.
	ErrCodeBufferExhaustion ErrorCode = "buffer exhaustion"
	// ErrCodeInvalidArgument: a caller supplied a malformed or
	// out-of-range value (bad counter UID, empty name, etc).
	ErrCodeInvalidArgument ErrorCode = "invalid argument"
	// ErrCodeNotFound: a referenced entity (category, counter, device)
	// does not exist.
	ErrCodeNotFound ErrorCode = "not found"
	// ErrCodeAlreadyRegistered: a registration call collided with an
	// existing or retired entry.
	ErrCodeAlreadyRegistered ErrorCode = "already registered"
	// ErrCodeUnknownPacket: dispatch received a frame with no matching
	// handler. Recoverable; does not imply a connection-level failure.
	ErrCodeUnknownPacket ErrorCode = "unknown packet"
	// ErrCodeDuplicateHandler: two handlers were registered for the same
	// (family, class, version).
	ErrCodeDuplicateHandler ErrorCode = "duplicate handler"
	// ErrCodeTimeout: a bounded wait (activation, send) did not complete
	// in time.
	ErrCodeTimeout ErrorCode = "timeout"
	// ErrCodeBackendError: a backend context refused an operation (e.g.
	// declined to enable profiling on acknowledgement).
	ErrCodeBackendError ErrorCode = "backend error"
)

// NewError creates a structured error.
func NewError(op string, code ErrorCode, msg string) *Error {
	return &Error{Op: op, Code: code, Msg: msg}
}

// WrapError wraps inner with profiling context, preserving its Code if it
// is already a structured *Error.
func WrapError(op string, code ErrorCode, inner error) *Error {
	if inner == nil {
		return nil
	}
	if pe, ok := inner.(*Error); ok {
		return &Error{Op: op, Code: pe.Code, Msg: pe.Msg, Inner: pe.Inner}
	}
	return &Error{Op: op, Code: code, Msg: inner.Error(), Inner: inner}
}

// IsCode reports whether err is a profiling *Error with the given code.
func IsCode(err error, code ErrorCode) bool {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Code == code
	}
	return false
}
