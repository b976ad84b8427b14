package tasks

import (
	"context"
	"sync"

	"github.com/desertthunder/ytlinks/internal/shared"
)

// Queue carries dispatch jobs from the API process to the workers.
type Queue interface {
	Publish(ctx context.Context, job Job) error
	Consume(ctx context.Context) (<-chan Delivery, error)
	Close() error
}

// Delivery is a consumed [Job] that must be acknowledged once handled.
type Delivery struct {
	Job  Job
	ack  func() error
	nack func(requeue bool) error
}

func (d Delivery) Ack() error {
	if d.ack == nil {
		return nil
	}
	return d.ack()
}

func (d Delivery) Nack(requeue bool) error {
	if d.nack == nil {
		return nil
	}
	return d.nack(requeue)
}

// MemoryQueue is a buffered in-process [Queue].
//
// Jobs still buffered when the process exits are lost.
type MemoryQueue struct {
	mu     sync.RWMutex
	jobs   chan Job
	closed bool
}

func NewMemoryQueue(buffer int) *MemoryQueue {
	if buffer <= 0 {
		buffer = 64
	}
	return &MemoryQueue{jobs: make(chan Job, buffer)}
}

// Publish blocks while the buffer is full.
func (q *MemoryQueue) Publish(ctx context.Context, job Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return shared.ErrQueueClosed
	}

	select {
	case q.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Consume delivers buffered jobs until ctx is done or the queue is closed and drained.
func (q *MemoryQueue) Consume(ctx context.Context) (<-chan Delivery, error) {
	out := make(chan Delivery)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case job, ok := <-q.jobs:
				if !ok {
					return
				}
				del := Delivery{
					Job:  job,
					nack: func(requeue bool) error { return q.requeue(job, requeue) },
				}
				select {
				case out <- del:
				case <-ctx.Done():
					_ = q.requeue(job, true)
					return
				}
			}
		}
	}()
	return out, nil
}

func (q *MemoryQueue) requeue(job Job, requeue bool) error {
	if !requeue {
		return nil
	}
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return shared.ErrQueueClosed
	}
	select {
	case q.jobs <- job:
		return nil
	default:
		return shared.ErrQueueClosed
	}
}

// Len reports the number of buffered jobs.
func (q *MemoryQueue) Len() int {
	return len(q.jobs)
}

// Close stops accepting jobs. Buffered jobs are still delivered to consumers.
func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	q.closed = true
	close(q.jobs)
	return nil
}
