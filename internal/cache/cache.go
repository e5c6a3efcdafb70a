package cache

import (
	"context"
	"time"
)

// BytesCache is the best-effort byte cache the stats endpoint sits behind.
// A miss or an error is never fatal; callers fall through to Postgres.
type BytesCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
