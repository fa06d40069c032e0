package domain

import "errors"

var (
	// ErrInvalidQuery signals a request whose filter, sort, search or cursor parameters
	// failed validation. The concrete error is a *violation.Error.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrTypeNotFound signals an unregistered record type.
	ErrTypeNotFound = errors.New("type not found")
	// ErrUnknownField signals a field path that does not resolve against a type.
	ErrUnknownField = errors.New("unknown field")
	// ErrInvalidSchema signals an invalid schema definition.
	ErrInvalidSchema = errors.New("invalid schema")
	// ErrExecutorNotConfigured signals that no search executor was wired.
	ErrExecutorNotConfigured = errors.New("search executor not configured")
)
