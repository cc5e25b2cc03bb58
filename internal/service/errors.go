package service

import "errors"

var (
	// ErrInternal marks fatal, non-recoverable conditions: oversized key
	// material, unexpected persistence failures, programming errors. It is
	// always surfaced to the caller and never silently swallowed.
	ErrInternal = errors.New("internal error")

	// ErrInvalidDataProvided is returned when an operation receives an
	// empty login or no clear master password to work with.
	ErrInvalidDataProvided = errors.New("invalid data provided")
)
