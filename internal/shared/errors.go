package shared

import "errors"

// Construction errors abort startup. Runtime conditions (memory rejection,
// cancel races) are statuses on the tracker, never errors; callers inspect
// the tracker status instead of unwrapping an error chain.
var (
	ErrInsufficientVocabs = errors.New("at least two vocabulary files are required (source and target)")
	ErrMissingEngine      = errors.New("no inference engine factory configured")
	ErrNegativeCapacity   = errors.New("capacity bytes must not be negative")
	ErrNegativeWorkers    = errors.New("worker count must not be negative")
)
