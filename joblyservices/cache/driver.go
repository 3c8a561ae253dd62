package cache

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrNotStored = errors.New("value loaded but not cached")
)

// Driver is a string key/value store with per entry expiry. Get reports
// missing and expired keys as ErrNotFound.
type Driver interface {
	Close() error
	Delete(ctx context.Context, key string) error
	Get(ctx context.Context, key string) (string, error)
	Ping(ctx context.Context) error
	Set(ctx context.Context, key string, value string, duration time.Duration) error
}
