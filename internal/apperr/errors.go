// Package apperr defines the sentinel errors shared across operation boundaries.
package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrDuplicateURL  = errors.New("link already exists")
	ErrValidation    = errors.New("validation failed")
	ErrPending       = errors.New("operation already in flight")
)
