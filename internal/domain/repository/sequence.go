package repository

import "context"

// SequenceRepository mints monotonically increasing counter values.
type SequenceRepository interface {
	// Next atomically increments the named counter and returns the new
	// value. A missing counter is seeded with start before incrementing.
	Next(ctx context.Context, key string, start int64) (int64, error)
}
