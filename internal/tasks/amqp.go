package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/rabbitmq/amqp091-go"

	"github.com/desertthunder/ytlinks/internal/shared"
)

const defaultPrefetch = 8

// AMQPQueue is a durable RabbitMQ backed [Queue] shared by the API and worker processes.
type AMQPQueue struct {
	conn   *amqp091.Connection
	ch     *amqp091.Channel
	name   string
	logger *log.Logger

	mu     sync.Mutex
	closed bool
}

// NewAMQPQueue dials url and declares a durable queue called name.
func NewAMQPQueue(url, name string, logger *log.Logger) (*AMQPQueue, error) {
	if logger == nil {
		logger = log.Default()
	}

	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to connect to RabbitMQ: %v", shared.ErrServiceUnavailable, err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := ch.Qos(defaultPrefetch, 0, false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to set prefetch: %w", err)
	}

	logger.Info("queue initialized", "queue", name)
	return &AMQPQueue{conn: conn, ch: ch, name: name, logger: logger}, nil
}

func (q *AMQPQueue) Publish(ctx context.Context, job Job) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode job: %w", err)
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return shared.ErrQueueClosed
	}

	err = q.ch.PublishWithContext(ctx, "", q.name, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		MessageId:    job.ID,
		Timestamp:    job.EnqueuedAt,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish job: %w", err)
	}
	return nil
}

// Consume starts a manual-ack consumer. Undecodable messages are rejected without requeue.
func (q *AMQPQueue) Consume(ctx context.Context) (<-chan Delivery, error) {
	msgs, err := q.ch.ConsumeWithContext(ctx, q.name, "", false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to start consumer: %w", err)
	}

	out := make(chan Delivery)
	go func() {
		defer close(out)
		for msg := range msgs {
			job, err := decodeJob(msg.Body)
			if err != nil {
				q.logger.Warn("rejecting malformed job", "message_id", msg.MessageId, "error", err)
				_ = msg.Nack(false, false)
				continue
			}

			del := Delivery{
				Job:  job,
				ack:  func() error { return msg.Ack(false) },
				nack: func(requeue bool) error { return msg.Nack(false, requeue) },
			}
			select {
			case out <- del:
			case <-ctx.Done():
				_ = msg.Nack(false, true)
				return
			}
		}
	}()
	return out, nil
}

func (q *AMQPQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	q.closed = true

	if err := q.ch.Close(); err != nil {
		_ = q.conn.Close()
		return err
	}
	return q.conn.Close()
}

func decodeJob(body []byte) (Job, error) {
	var job Job
	if err := json.Unmarshal(body, &job); err != nil {
		return Job{}, err
	}
	if job.LinkID <= 0 {
		return Job{}, fmt.Errorf("%w: job has no link id", shared.ErrInvalidInput)
	}
	return job, nil
}
