package trips

import (
	"errors"
	"fmt"

	"contravento/internal/gpx"
)

// ErrorKind is the machine-readable failure class reported to the caller.
type ErrorKind string

const (
	KindOversizedInput     ErrorKind = "OversizedInput"
	KindMalformedTrack     ErrorKind = "MalformedTrack"
	KindInvalidCoordinate  ErrorKind = "InvalidCoordinate"
	KindPersistenceFailure ErrorKind = "PersistenceFailure"
	KindTimeout            ErrorKind = "Timeout"
)

// ProcessingError is the single error type the assembler returns: a kind for
// the caller to switch on plus a human-readable message. Nothing is silently
// recovered; retry policy belongs to the calling layer.
type ProcessingError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *ProcessingError) Unwrap() error { return e.Err }

// Retryable reports whether the caller may retry the same request unchanged.
func (e *ProcessingError) Retryable() bool {
	return e.Kind == KindPersistenceFailure || e.Kind == KindTimeout
}

// classifyParseError maps parser failures onto the taxonomy. An out-of-range
// coordinate is its own kind but still a malformed-track failure for callers
// that only distinguish the coarse classes.
func classifyParseError(err error) *ProcessingError {
	var coordErr *gpx.CoordinateError
	switch {
	case errors.As(err, &coordErr):
		return &ProcessingError{Kind: KindInvalidCoordinate, Message: coordErr.Error(), Err: err}
	case errors.Is(err, gpx.ErrOversized):
		return &ProcessingError{Kind: KindOversizedInput, Message: err.Error(), Err: err}
	default:
		return &ProcessingError{Kind: KindMalformedTrack, Message: err.Error(), Err: err}
	}
}

func persistenceError(entity string, err error) *ProcessingError {
	return &ProcessingError{
		Kind:    KindPersistenceFailure,
		Message: "could not persist trip",
		Err:     fmt.Errorf("%s: %w", entity, err),
	}
}
