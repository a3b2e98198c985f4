package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueRetriesTransientFailures(t *testing.T) {
	var calls int32
	done := make(chan struct{})
	q := NewQueue("runs", func(ctx context.Context, job Job) error {
		if atomic.AddInt32(&calls, 1) < 3 {
			return errors.New("redis unavailable")
		}
		close(done)
		return nil
	}, QueueConfig{Workers: 1, MaxRetries: 3, RetryDelay: time.Millisecond})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "job-1", Type: "schedule"}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job never succeeded")
	}
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestQueueGivesUpOnPermanentError(t *testing.T) {
	var calls int32
	gaveUp := make(chan error, 1)
	q := NewQueue("runs", func(ctx context.Context, job Job) error {
		atomic.AddInt32(&calls, 1)
		return Permanent(errors.New("malformed interval"))
	}, QueueConfig{
		Workers:    1,
		MaxRetries: 5,
		RetryDelay: time.Millisecond,
		OnGiveUp:   func(job Job, err error) { gaveUp <- err },
	})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "job-2"}))

	select {
	case err := <-gaveUp:
		assert.True(t, IsPermanent(err))
		assert.EqualError(t, err, "malformed interval")
	case <-time.After(2 * time.Second):
		t.Fatal("failure handler not called")
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestQueueGivesUpAfterMaxRetries(t *testing.T) {
	gaveUp := make(chan Job, 1)
	q := NewQueue("runs", func(ctx context.Context, job Job) error {
		return errors.New("still failing")
	}, QueueConfig{
		Workers:    1,
		MaxRetries: 2,
		RetryDelay: time.Millisecond,
		OnGiveUp:   func(job Job, err error) { gaveUp <- job },
	})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "job-3"}))

	select {
	case job := <-gaveUp:
		assert.Equal(t, 3, job.Attempt)
	case <-time.After(2 * time.Second):
		t.Fatal("failure handler not called")
	}
}

func TestEnqueueRequiresStart(t *testing.T) {
	q := NewQueue("runs", func(context.Context, Job) error { return nil }, QueueConfig{})
	assert.Error(t, q.Enqueue(Job{ID: "early"}))
	assert.False(t, IsPermanent(errors.New("plain")))
	assert.Nil(t, Permanent(nil))
}
