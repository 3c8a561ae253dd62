package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

type DriverRedisConfig struct {
	Host   string
	Number int
	Pass   string
	Port   int
	User   string
	// Timeout bounds dialing and every read or write. Zero keeps the client
	// defaults.
	Timeout time.Duration
}

func NewDriverRedis(config DriverRedisConfig) (Driver, error) {
	if config.Number < 0 {
		return nil, fmt.Errorf("invalid redis database number: %d", config.Number)
	}

	return &driverRedis{
		client: redis.NewClient(&redis.Options{
			Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
			Username:     config.User,
			Password:     config.Pass,
			DB:           config.Number,
			DialTimeout:  config.Timeout,
			ReadTimeout:  config.Timeout,
			WriteTimeout: config.Timeout,
		}),
	}, nil
}

type driverRedis struct {
	client *redis.Client
}

func (driver *driverRedis) Ping(ctx context.Context) error {
	if err := driver.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}

	return nil
}

func (driver *driverRedis) Close() error {
	return driver.client.Close()
}

func (driver *driverRedis) Get(ctx context.Context, key string) (string, error) {
	result, err := driver.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}

	return result, err
}

func (driver *driverRedis) Set(ctx context.Context, key string, value string, duration time.Duration) error {
	if duration <= 0 {
		return fmt.Errorf("cache entries need a positive duration, got %s", duration)
	}

	return driver.client.Set(ctx, key, value, duration).Err()
}

func (driver *driverRedis) Delete(ctx context.Context, key string) error {
	return driver.client.Del(ctx, key).Err()
}
