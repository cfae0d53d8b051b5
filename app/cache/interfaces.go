package cache

import (
	"context"
	"time"
)

// Store is the minimal TTL key-value contract used for the process-wide
// caches (blacklist id set, upstream bearer token). Injected rather than
// global so tests can substitute a fake store and clock.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
