package service

import "errors"

// Engine error taxonomy. The api layer maps these to HTTP statuses in one
// place; everything unwrapped falls through as a persistence error.
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation failed")
	ErrConflict        = errors.New("conflict")
)
