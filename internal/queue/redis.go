package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultQueueName = "fileQueue"
	processingSuffix = ":processing"
)

// RedisQueue is a reliable list queue: Receive moves a message to a processing
// list and Ack removes it from there. Messages left in the processing list by a
// crashed worker are put back by Recover.
type RedisQueue struct {
	Client      *redis.Client
	name        string
	pollTimeout time.Duration
}

func NewRedisQueue(client *redis.Client, name string, pollTimeout time.Duration) *RedisQueue {
	if name == "" {
		name = DefaultQueueName
	}
	if pollTimeout <= 0 {
		pollTimeout = 5 * time.Second
	}
	return &RedisQueue{Client: client, name: name, pollTimeout: pollTimeout}
}

func (q *RedisQueue) processingKey() string {
	return q.name + processingSuffix
}

func (q *RedisQueue) Publish(ctx context.Context, job Job) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	return q.Client.LPush(ctx, q.name, payload).Err()
}

func (q *RedisQueue) Receive(ctx context.Context) (*Delivery, error) {
	raw, err := q.Client.BLMove(ctx, q.name, q.processingKey(), "RIGHT", "LEFT", q.pollTimeout).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}

	d := &Delivery{
		ack: func(ctx context.Context) error {
			return q.Client.LRem(ctx, q.processingKey(), 1, raw).Err()
		},
		retry: func(ctx context.Context) error {
			_, err := q.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.LRem(ctx, q.processingKey(), 1, raw)
				pipe.LPush(ctx, q.name, raw)
				return nil
			})
			return err
		},
	}
	if err := json.Unmarshal([]byte(raw), &d.Job); err != nil {
		// Undecodable payloads can never succeed; drop them from the processing list.
		_ = d.Ack(ctx)
		return nil, fmt.Errorf("decode job %q: %w", raw, err)
	}
	return d, nil
}

// Recover requeues messages that were received but never acked. Call it once
// before starting consumers.
func (q *RedisQueue) Recover(ctx context.Context) (int, error) {
	n := 0
	for {
		_, err := q.Client.LMove(ctx, q.processingKey(), q.name, "RIGHT", "RIGHT").Result()
		if errors.Is(err, redis.Nil) {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		n++
	}
}

func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	return q.Client.LLen(ctx, q.name).Result()
}
