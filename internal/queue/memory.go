package queue

import "context"

// ChanQueue is an in-process transport for single-process deployments and tests.
type ChanQueue struct {
	jobs chan Job
}

func NewChanQueue(size int) *ChanQueue {
	return &ChanQueue{jobs: make(chan Job, size)}
}

// Publish never blocks; a full buffer is reported as ErrQueueFull.
func (q *ChanQueue) Publish(ctx context.Context, job Job) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case q.jobs <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *ChanQueue) Receive(ctx context.Context) (*Delivery, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case job := <-q.jobs:
		return &Delivery{Job: job, retry: func(ctx context.Context) error {
			return q.Publish(ctx, job)
		}}, nil
	}
}

func (q *ChanQueue) Len() int {
	return len(q.jobs)
}
