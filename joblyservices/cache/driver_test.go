package cache_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lunagic/jobly/joblyservices/cache"
	"gotest.tools/v3/assert"
)

func testCase(t *testing.T, driver cache.Driver) {
	key := uuid.NewString()
	value := uuid.NewString()

	{ // Reachable
		assert.NilError(t, driver.Ping(t.Context()))
	}

	{ // Confirm not found error
		_, err := driver.Get(t.Context(), key)
		assert.ErrorIs(t, err, cache.ErrNotFound)
	}

	{ // Confirm set
		assert.NilError(t, driver.Set(t.Context(), key, value, time.Second*30))
	}

	{ // Confirm getting value works
		actualValue, err := driver.Get(t.Context(), key)
		assert.NilError(t, err)
		assert.Equal(t, actualValue, value)
	}

	{ // Delete
		assert.NilError(t, driver.Delete(t.Context(), key))

		_, err := driver.Get(t.Context(), key)
		assert.ErrorIs(t, err, cache.ErrNotFound)
	}

	{ // Entries must expire
		err := driver.Set(t.Context(), uuid.NewString(), value, 0)
		assert.ErrorContains(t, err, "positive duration")
	}

	{ // Confirm Expiration
		key = uuid.NewString()
		value = uuid.NewString()

		assert.NilError(t, driver.Set(t.Context(), key, value, time.Second*1))

		actualValue, err := driver.Get(t.Context(), key)
		assert.NilError(t, err)
		assert.Equal(t, actualValue, value)

		time.Sleep(time.Second * 2)

		_, expiredCheckErr := driver.Get(t.Context(), key)
		assert.ErrorIs(t, expiredCheckErr, cache.ErrNotFound)
	}
}
