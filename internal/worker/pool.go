// Package worker drains the thumbnail queue with a fixed number of consumers.
package worker

import (
	"context"
	"errors"
	"time"

	"files-manager/internal/model/apperr"
	"files-manager/internal/queue"
	"files-manager/internal/service/thumbnailService"
	"files-manager/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	receiveBackoff    = time.Second
	DefaultRetryDelay = 5 * time.Second
)

type Processor interface {
	Process(ctx context.Context, job queue.Job) error
}

type Pool struct {
	consumer    queue.Consumer
	proc        Processor
	concurrency int
	retryDelay  time.Duration
}

func New(consumer queue.Consumer, proc Processor, concurrency int) *Pool {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Pool{consumer: consumer, proc: proc, concurrency: concurrency, retryDelay: DefaultRetryDelay}
}

// WithRetryDelay sets how long a job on a locked file waits before it is requeued.
func (p *Pool) WithRetryDelay(d time.Duration) *Pool {
	if d > 0 {
		p.retryDelay = d
	}
	return p
}

// Run blocks until ctx is cancelled. A delivery is acked once handled, whatever
// the outcome, except when its file is locked: then it goes back to the queue
// after the retry delay, so a lock left behind by a crashed worker only delays it.
func (p *Pool) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < p.concurrency; i++ {
		log := logger.GetLogger(ctx).With(zap.Int("worker", i))
		g.Go(func() error {
			return p.consume(logger.WithLogger(ctx, log))
		})
	}
	return g.Wait()
}

func (p *Pool) consume(ctx context.Context) error {
	log := logger.GetLogger(ctx)
	for {
		d, err := p.consumer.Receive(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			log.Error("failed to receive job", zap.Error(err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(receiveBackoff):
			}
			continue
		}
		if d == nil {
			continue
		}
		p.handle(ctx, d)
	}
}

func (p *Pool) handle(ctx context.Context, d *queue.Delivery) {
	log := logger.GetLogger(ctx).With(zap.Int64("fileId", d.Job.FileID), zap.Int64("userId", d.Job.UserID))
	start := time.Now()

	err := p.proc.Process(ctx, d.Job)
	switch {
	case err == nil:
		log.Info("thumbnails generated", zap.Duration("took", time.Since(start)))
	case errors.Is(err, thumbnailService.ErrLocked):
		log.Info("file is locked, job will be retried", zap.Duration("delay", p.retryDelay))
		p.retry(ctx, d)
		return
	case errors.Is(err, apperr.ErrValidation), errors.Is(err, apperr.ErrNotFound):
		log.Warn("job rejected", zap.Error(err))
	default:
		log.Error("thumbnail job failed", zap.Error(err))
	}

	if err := d.Ack(context.WithoutCancel(ctx)); err != nil {
		log.Error("failed to ack job", zap.Error(err))
	}
}

// retry requeues d after the retry delay. On shutdown the delivery is left
// unacked for the next worker to recover.
func (p *Pool) retry(ctx context.Context, d *queue.Delivery) {
	select {
	case <-ctx.Done():
		return
	case <-time.After(p.retryDelay):
	}
	if err := d.Retry(context.WithoutCancel(ctx)); err != nil {
		logger.GetLogger(ctx).Error("failed to requeue job",
			zap.Int64("fileId", d.Job.FileID), zap.Error(err))
	}
}
