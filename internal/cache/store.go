package cache

import (
	"context"
	"time"
)

// Store keeps expiring counters shared across the application.
type Store interface {
	IncrementWithTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}
