package queue

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisQueue(t *testing.T) (*RedisQueue, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisQueue(client, "", 100*time.Millisecond), s
}

func TestRedisQueue(t *testing.T) {
	ctx := context.Background()

	t.Run("publish then receive keeps fifo order", func(t *testing.T) {
		q, _ := newRedisQueue(t)
		require.NoError(t, q.Publish(ctx, Job{FileID: 1, UserID: 7}))
		require.NoError(t, q.Publish(ctx, Job{FileID: 2, UserID: 7}))

		d, err := q.Receive(ctx)
		require.NoError(t, err)
		require.NotNil(t, d)
		assert.Equal(t, Job{FileID: 1, UserID: 7}, d.Job)

		d, err = q.Receive(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), d.Job.FileID)
	})

	t.Run("ack removes from processing list", func(t *testing.T) {
		q, s := newRedisQueue(t)
		require.NoError(t, q.Publish(ctx, Job{FileID: 5, UserID: 1}))

		d, err := q.Receive(ctx)
		require.NoError(t, err)
		items, _ := s.List(q.processingKey())
		assert.Len(t, items, 1)

		require.NoError(t, d.Ack(ctx))
		assert.False(t, s.Exists(q.processingKey()))
	})

	t.Run("empty queue times out with nil delivery", func(t *testing.T) {
		q, _ := newRedisQueue(t)
		d, err := q.Receive(ctx)
		assert.NoError(t, err)
		assert.Nil(t, d)
	})

	t.Run("recover requeues unacked jobs", func(t *testing.T) {
		q, _ := newRedisQueue(t)
		require.NoError(t, q.Publish(ctx, Job{FileID: 9, UserID: 3}))
		_, err := q.Receive(ctx)
		require.NoError(t, err)

		n, err := q.Recover(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		l, err := q.Len(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), l)

		d, err := q.Receive(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(9), d.Job.FileID)
	})

	t.Run("retry moves the job behind waiting ones", func(t *testing.T) {
		q, s := newRedisQueue(t)
		require.NoError(t, q.Publish(ctx, Job{FileID: 1, UserID: 7}))
		require.NoError(t, q.Publish(ctx, Job{FileID: 2, UserID: 7}))

		d, err := q.Receive(ctx)
		require.NoError(t, err)
		require.NoError(t, d.Retry(ctx))
		assert.False(t, s.Exists(q.processingKey()))

		next, err := q.Receive(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), next.Job.FileID)
		last, err := q.Receive(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), last.Job.FileID)
	})

	t.Run("bad payload is dropped", func(t *testing.T) {
		q, s := newRedisQueue(t)
		_, err := s.Lpush(DefaultQueueName, "not json")
		require.NoError(t, err)

		d, err := q.Receive(ctx)
		assert.Error(t, err)
		assert.Nil(t, d)
		assert.False(t, s.Exists(q.processingKey()))
	})
}

func TestChanQueue(t *testing.T) {
	t.Run("publish and receive", func(t *testing.T) {
		q := NewChanQueue(1)
		require.NoError(t, q.Publish(context.Background(), Job{FileID: 3, UserID: 4}))
		assert.Equal(t, 1, q.Len())

		d, err := q.Receive(context.Background())
		require.NoError(t, err)
		assert.Equal(t, Job{FileID: 3, UserID: 4}, d.Job)
		assert.NoError(t, d.Ack(context.Background()))
	})

	t.Run("retry republishes", func(t *testing.T) {
		q := NewChanQueue(1)
		require.NoError(t, q.Publish(context.Background(), Job{FileID: 3, UserID: 4}))
		d, err := q.Receive(context.Background())
		require.NoError(t, err)

		require.NoError(t, d.Retry(context.Background()))
		assert.Equal(t, 1, q.Len())
	})

	t.Run("full buffer", func(t *testing.T) {
		q := NewChanQueue(1)
		require.NoError(t, q.Publish(context.Background(), Job{FileID: 1}))
		assert.ErrorIs(t, q.Publish(context.Background(), Job{FileID: 2}), ErrQueueFull)
	})

	t.Run("receive honours cancellation", func(t *testing.T) {
		q := NewChanQueue(1)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := q.Receive(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
