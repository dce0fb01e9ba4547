package queue

import "errors"

// ErrQueueFull reports a refused enqueue to callers that care.
var ErrQueueFull = errors.New("activity queue full")
