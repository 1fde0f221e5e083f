package canvas

import "errors"

var (
	// ErrNotAllowed is returned for a gesture the current tool does not take.
	ErrNotAllowed = errors.New("canvas: gesture not allowed in this mode")

	// ErrInvalidPointer is returned for a non-finite pointer position.
	ErrInvalidPointer = errors.New("canvas: invalid pointer position")
)
