package joblymodels_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/lunagic/jobly/joblymodels"
	"github.com/lunagic/jobly/joblyservices/cache"
	"github.com/lunagic/jobly/joblyservices/database"
	"github.com/lunagic/jobly/joblyservices/queue"
	"gotest.tools/v3/assert"
)

func pointer[T any](value T) *T {
	return &value
}

var errUnreachable = errors.New("connection refused")

// unreachableCache fails every call like a cache server that went away.
type unreachableCache struct{}

func (unreachableCache) Close() error {
	return nil
}

func (unreachableCache) Ping(ctx context.Context) error {
	return errUnreachable
}

func (unreachableCache) Delete(ctx context.Context, key string) error {
	return errUnreachable
}

func (unreachableCache) Get(ctx context.Context, key string) (string, error) {
	return "", errUnreachable
}

func (unreachableCache) Set(ctx context.Context, key string, value string, duration time.Duration) error {
	return errUnreachable
}

type testEnvironment struct {
	Service *database.Service
	Models  joblymodels.Models
	Cache   cache.Driver
	Events  queue.Queue[joblymodels.JobEvent]
}

func setup(t *testing.T) testEnvironment {
	t.Helper()

	service, err := database.New(database.NewDriverSQLite(fmt.Sprintf("%s/database.sqlite", t.TempDir())))
	assert.NilError(t, err)
	t.Cleanup(func() {
		_ = service.Close()
	})

	_, err = service.AutoMigrate(t.Context(), joblymodels.Entities())
	assert.NilError(t, err)

	cacheDriver, err := cache.NewDriverMemory(t.Context(), time.Minute)
	assert.NilError(t, err)

	queueDriver, err := queue.NewDriverMemory()
	assert.NilError(t, err)

	events, err := queue.NewQueue[joblymodels.JobEvent](t.Context(), queueDriver, "jobs")
	assert.NilError(t, err)

	models, err := joblymodels.New(
		service,
		joblymodels.WithJobCache(cache.NewRepository[int64, joblymodels.Job](cacheDriver, "job", time.Minute)),
		joblymodels.WithJobEvents(events),
	)
	assert.NilError(t, err)

	for _, company := range []joblymodels.NewCompany{
		{Handle: "c1", Name: "C1", Description: "Desc1", NumEmployees: pointer(int64(1)), LogoURL: pointer("http://c1.img")},
		{Handle: "c2", Name: "C2", Description: "Desc2", NumEmployees: pointer(int64(2))},
	} {
		_, err := models.Companies.Create(t.Context(), company)
		assert.NilError(t, err)
	}

	return testEnvironment{
		Service: service,
		Models:  models,
		Cache:   cacheDriver,
		Events:  events,
	}
}
