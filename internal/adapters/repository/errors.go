package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound        = errors.New("record not found")
	ErrAlreadyReviewed = errors.New("submission already reviewed")
	ErrDuplicateEmail  = errors.New("email already registered")
	ErrInvalidPage     = errors.New("invalid page request")
	ErrUnavailable     = errors.New("store unavailable")
)
