package cache

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type memoryItem struct {
	Value     string
	ExpiresAt time.Time
}

// NewDriverMemory keeps entries in process. Expired entries are swept every
// cleanupInterval until ctx is done.
func NewDriverMemory(ctx context.Context, cleanupInterval time.Duration) (Driver, error) {
	driver := &driverMemory{
		mutex: &sync.Mutex{},
		data:  map[string]memoryItem{},
	}

	if cleanupInterval <= 0 {
		cleanupInterval = time.Minute
	}

	go func() {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				driver.cleanup()
			}
		}
	}()

	return driver, nil
}

type driverMemory struct {
	mutex *sync.Mutex
	data  map[string]memoryItem
}

func (driver *driverMemory) Ping(ctx context.Context) error {
	return nil
}

// Close drops every entry. The sweeper stops with the ctx given to
// NewDriverMemory.
func (driver *driverMemory) Close() error {
	driver.mutex.Lock()
	defer driver.mutex.Unlock()

	clear(driver.data)

	return nil
}

func (driver *driverMemory) Delete(ctx context.Context, key string) error {
	driver.mutex.Lock()
	defer driver.mutex.Unlock()

	delete(driver.data, key)

	return nil
}

func (driver *driverMemory) Get(ctx context.Context, key string) (string, error) {
	driver.mutex.Lock()
	defer driver.mutex.Unlock()

	item, found := driver.data[key]
	if !found {
		return "", ErrNotFound
	}

	if time.Since(item.ExpiresAt) >= 0 {
		return "", ErrNotFound
	}

	return item.Value, nil
}

func (driver *driverMemory) Set(ctx context.Context, key string, value string, duration time.Duration) error {
	if duration <= 0 {
		return fmt.Errorf("cache entries need a positive duration, got %s", duration)
	}

	driver.mutex.Lock()
	defer driver.mutex.Unlock()

	driver.data[key] = memoryItem{
		Value:     value,
		ExpiresAt: time.Now().Add(duration),
	}

	return nil
}

func (driver *driverMemory) cleanup() {
	driver.mutex.Lock()
	defer driver.mutex.Unlock()

	now := time.Now()
	for key, item := range driver.data {
		if now.After(item.ExpiresAt) {
			delete(driver.data, key)
		}
	}
}
