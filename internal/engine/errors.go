package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidKeyParam reports a first parameter that resolved as a
	// number instead of a key name.
	ErrInvalidKeyParam = errors.New("engine: first parameter must be a key name")

	// ErrMissingNumber reports a second parameter that resolved as a key
	// name where a decimal literal is required.
	ErrMissingNumber = errors.New("engine: second parameter must be a decimal number")

	// ErrDivision reports an arithmetic operation with no finite decimal
	// result. The stored operands are left untouched.
	ErrDivision = errors.New("engine: division does not yield a finite decimal")
)

// MissingParamError reports a request with too few parameters. Index is
// the 1-based position of the first missing parameter.
type MissingParamError struct {
	Index int
}

func (e *MissingParamError) Error() string {
	return fmt.Sprintf("engine: missing parameter %d", e.Index)
}
