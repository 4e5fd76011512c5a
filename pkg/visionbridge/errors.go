package visionbridge

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupported is returned when the backend does not provide an algorithm.
	ErrUnsupported = errors.New("visionbridge: unsupported by backend")
	// ErrBadRawImage is returned when a host pixel buffer does not hold width*height*4 bytes.
	ErrBadRawImage = errors.New("visionbridge: malformed raw image")
	// ErrClosed is returned when a session is used after Close.
	ErrClosed = errors.New("visionbridge: session closed")
)

// PreconditionError is the panic value raised when a caller passes a
// matrix shape or mode the operation cannot accept.
type PreconditionError struct {
	Op     string
	Detail string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("visionbridge: %s: precondition violated: %s", e.Op, e.Detail)
}

// UnsupportedConversionError is the panic value raised when a matrix is
// asked for a representation that has no host equivalent.
type UnsupportedConversionError struct {
	From string
	To   string
}

func (e *UnsupportedConversionError) Error() string {
	return fmt.Sprintf("visionbridge: unsupported conversion from %s to %s", e.From, e.To)
}

func precondition(op, format string, args ...any) {
	panic(&PreconditionError{Op: op, Detail: fmt.Sprintf(format, args...)})
}
