package verification

import "errors"

// Sentinel kinds for verification payload errors.
var (
	ErrInvalidPayload = errors.New("invalid verification payload")
)
