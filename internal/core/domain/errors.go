package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the core wraps exactly one of these,
// so adapters can map them with errors.Is without knowing the specific cause.
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidState     = errors.New("invalid state")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrLimitExceeded    = errors.New("limit exceeded")
	ErrConflict         = errors.New("version conflict")
	ErrUnauthorized     = errors.New("unauthorized")
)

func kindError(kind error, msg string) error {
	return fmt.Errorf("%w: %s", kind, msg)
}
