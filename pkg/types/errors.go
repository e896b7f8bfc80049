package types

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRatio reports a non-positive or non-finite ratio value.
	ErrInvalidRatio = errors.New("invalid ratio")
	// ErrInvalidFrame reports a non-positive mask frame dimension or empty content bounds.
	ErrInvalidFrame = errors.New("invalid frame")
	// ErrOperationRejected reports an operation refused in the current state,
	// such as a rotation requested while another one is in flight.
	ErrOperationRejected = errors.New("operation rejected")
	// ErrEmptyCandidateList reports a ratio request against an empty candidate set.
	ErrEmptyCandidateList = errors.New("empty candidate list")
)

// GeometryError is returned by engine operations. Err wraps one of the sentinel errors above.
type GeometryError struct {
	Op  string
	Err error
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *GeometryError) Unwrap() error {
	return e.Err
}

// Errorf builds a GeometryError for op wrapping kind with extra detail.
func Errorf(op string, kind error, format string, args ...any) error {
	return &GeometryError{Op: op, Err: fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))}
}
