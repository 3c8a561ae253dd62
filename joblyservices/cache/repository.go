package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Repository stores JSON encoded values of one type under a shared key
// prefix.
func NewRepository[Key comparable, Value any](
	driver Driver,
	prefix string,
	duration time.Duration,
) *Repository[Key, Value] {
	return &Repository[Key, Value]{
		driver:   driver,
		prefix:   prefix,
		duration: duration,
	}
}

type Repository[Key comparable, Value any] struct {
	driver   Driver
	prefix   string
	duration time.Duration
}

func (r *Repository[Key, Value]) key(key Key) string {
	return fmt.Sprintf("%s-%v", r.prefix, key)
}

func (r *Repository[Key, Value]) Set(ctx context.Context, key Key, value Value) error {
	jsonBytes, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return r.driver.Set(ctx, r.key(key), string(jsonBytes), r.duration)
}

func (r *Repository[Key, Value]) Get(ctx context.Context, key Key) (Value, error) {
	val, err := r.driver.Get(ctx, r.key(key))
	if err != nil {
		return *new(Value), err
	}

	target := *new(Value)
	if err := json.Unmarshal([]byte(val), &target); err != nil {
		return *new(Value), err
	}

	return target, nil
}

func (r *Repository[Key, Value]) Delete(ctx context.Context, key Key) error {
	return r.driver.Delete(ctx, r.key(key))
}

// Remember returns the cached value for key, or calls load and caches what it
// returns. Load errors are returned untouched and nothing is cached. When the
// value loads but cannot be stored, it is returned along with an error
// wrapping ErrNotStored.
func (r *Repository[Key, Value]) Remember(ctx context.Context, key Key, load func(ctx context.Context) (Value, error)) (Value, error) {
	if cached, err := r.Get(ctx, key); err == nil {
		return cached, nil
	}

	value, err := load(ctx)
	if err != nil {
		return *new(Value), err
	}

	if err := r.Set(ctx, key, value); err != nil {
		return value, fmt.Errorf("%w: %w", ErrNotStored, err)
	}

	return value, nil
}
