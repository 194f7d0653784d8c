package ports

import (
	"context"
	"time"
)

// Cache is the key/value cache abstraction used by the service layer to
// shed read load from the repositories. Both the Redis-backed adapter and
// the in-memory fallback implement it identically so services never know
// which one is wired in.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping() error
	Close() error
}
