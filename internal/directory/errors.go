package directory

import "errors"

// Sentinel errors returned by directory and value-store operations. Callers
// use errors.Is to classify a failure; the root package's public API maps
// these onto its own structured error codes (see profiling.ErrorCode).
var (
	ErrAlreadyRegistered = errors.New("directory: name already registered")
	ErrNotFound          = errors.New("directory: referenced entry not found")
	ErrInvalidArgument   = errors.New("directory: invalid argument")
	ErrNotRegistered     = errors.New("directory: counter UID not registered")
	ErrUIDSpaceExhausted = errors.New("directory: counter UID space exhausted")
)
