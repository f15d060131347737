package repository

import "errors"

// Sentinel kinds for aggregate store errors.
var (
	ErrBoroughNotFound = errors.New("borough not found")
	ErrInvalidLimit    = errors.New("invalid rankings limit")
)
