package cache

import (
	"context"
	"time"
)

// ── Cache store ─────────────────────────────────────────────
// TTL cache over raw bytes. The client keeps serialized field
// listings here so repeated operations skip the metadata fetch.

// Store is implemented by cache backends. Implementations must be
// safe for concurrent use. Get returns nil, nil on a miss so callers
// treat absence as "fetch again", never as a failure.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
