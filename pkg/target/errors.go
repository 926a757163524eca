package target

import (
	"errors"
	"fmt"
)

var (
	ErrAuthFailed       = errors.New("authentication failed")
	ErrConnFailed       = errors.New("connection failed")
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotFound         = errors.New("file not found")
	ErrTimeout          = errors.New("operation timeout")
	ErrInvalidConfig    = errors.New("invalid configuration")
)

// IsConnectionError returns true if the error occurred while establishing a
// session to the target (auth or network), as opposed to mid-transfer
func IsConnectionError(err error) bool {
	return errors.Is(err, ErrAuthFailed) ||
		errors.Is(err, ErrConnFailed) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrInvalidConfig)
}

// WrapError adds context to an error
func WrapError(target, operation string, err error) error {
	return fmt.Errorf("%s (%s): %w", operation, target, err)
}
