package store

import (
	"errors"
	"fmt"
)

// ErrKeyExists reports a create against a key that already holds a value.
var ErrKeyExists = errors.New("store: key already exists")

// NotFoundError reports a key with no stored value.
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("store: key %q not found", e.Key)
}

// UpdateMissingError reports an update against a key that was never
// created.
type UpdateMissingError struct {
	Key string
}

func (e *UpdateMissingError) Error() string {
	return fmt.Sprintf("store: key %q does not exist so it cannot be updated", e.Key)
}

// CorruptValueError reports a stored value that no longer parses as a
// decimal string. It signals data corruption, not a client mistake.
type CorruptValueError struct {
	Key string
}

func (e *CorruptValueError) Error() string {
	return fmt.Sprintf("store: stored value for key %q is not a valid decimal", e.Key)
}
