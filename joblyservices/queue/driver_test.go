package queue_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/lunagic/jobly/joblyservices/queue"
	"gotest.tools/v3/assert"
)

type testEvent struct {
	Type string `json:"type"`
	ID   int64  `json:"id"`
}

func testSuite(t *testing.T, driver queue.Driver) {
	t.Cleanup(func() {
		_ = driver.Close()
	})

	queueThing, err := queue.NewQueue[testEvent](t.Context(), driver, uuid.NewString())
	assert.NilError(t, err)

	{ // Creating the same queue again is allowed
		_, err := queue.NewQueue[testEvent](t.Context(), driver, queueThing.Name())
		assert.NilError(t, err)
	}

	expectedEvent := testEvent{Type: uuid.NewString(), ID: 42}
	assert.NilError(t, queueThing.Publish(t.Context(), expectedEvent))

	expectedError := errors.New(uuid.NewString())
	received := testEvent{}

	consumeErr := queueThing.Consume(
		t.Context(),
		func(ctx context.Context, payload testEvent) error {
			received = payload
			return expectedError
		},
	)
	assert.Equal(t, expectedError, consumeErr)
	assert.DeepEqual(t, expectedEvent, received)

	{ // A cancelled context stops consumption without error
		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		err := queueThing.Consume(ctx, func(ctx context.Context, payload testEvent) error {
			return expectedError
		})
		assert.NilError(t, err)
	}
}
