// Package queue carries thumbnail jobs from the file service to the worker.
// Delivery is at-least-once: a job stays pending until its delivery is acked.
package queue

import (
	"context"
	"errors"
)

var ErrQueueFull = errors.New("queue is full")

// Job references a freshly uploaded image. It is transient work, not a stored entity.
type Job struct {
	FileID int64 `json:"fileId"`
	UserID int64 `json:"userId"`
}

type Publisher interface {
	Publish(ctx context.Context, job Job) error
}

type Delivery struct {
	Job   Job
	ack   func(ctx context.Context) error
	retry func(ctx context.Context) error
}

func (d *Delivery) Ack(ctx context.Context) error {
	if d.ack == nil {
		return nil
	}
	return d.ack(ctx)
}

// Retry hands the job back to the queue, behind whatever is already waiting.
// It replaces Ack for this delivery.
func (d *Delivery) Retry(ctx context.Context) error {
	if d.retry == nil {
		return nil
	}
	return d.retry(ctx)
}

type Consumer interface {
	// Receive blocks until a job arrives or ctx ends. A nil delivery with a nil
	// error means the wait timed out and the caller should try again.
	Receive(ctx context.Context) (*Delivery, error)
}
