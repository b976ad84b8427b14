package tasks

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/desertthunder/ytlinks/internal/models"
	"github.com/desertthunder/ytlinks/internal/services"
	"github.com/desertthunder/ytlinks/internal/shared"
)

const (
	DefaultWorkers    = 4
	DefaultMaxRetries = 3
	DefaultBackoff    = 500 * time.Millisecond
	DefaultDrain      = 30 * time.Second

	statusWriteTimeout = 10 * time.Second
)

// Job is a request to deliver one link to a webhook.
type Job struct {
	ID         string            `json:"id"`
	LinkID     int64             `json:"link_id"`
	UserID     int64             `json:"user_id"`
	Email      string            `json:"email"`
	Use        models.WebhookUse `json:"use"`
	EnqueuedAt time.Time         `json:"enqueued_at"`
}

func (j Job) dedupeKey() string {
	return strconv.FormatInt(j.LinkID, 10) + ":" + j.Use.String()
}

// Result is the outcome of processing a [Job].
type Result struct {
	Job        Job
	Status     models.LinkStatus
	StatusCode int
	Attempts   int
	Err        error

	// Interrupted is set when ctx ended before the webhook answered; no status was written.
	Interrupted bool
}

// LinkStore is the persistence the dispatcher needs.
//
// Satisfied by [repositories.LinkRepository].
type LinkStore interface {
	Get(ctx context.Context, linkID, userID int64) (*models.Link, error)
	SetStatus(ctx context.Context, linkID int64, status models.LinkStatus) error
}

// Recorder receives dispatch measurements. Satisfied by [metrics.Metrics].
type Recorder interface {
	ObserveWebhook(use, status string, attempts int, d time.Duration)
	ObserveStatus(status, origin string)
	SetQueueDepth(n int)
}

type nopRecorder struct{}

func (nopRecorder) ObserveWebhook(string, string, int, time.Duration) {}
func (nopRecorder) ObserveStatus(string, string)                      {}
func (nopRecorder) SetQueueDepth(int)                                 {}

// DispatcherOpts configures a [Dispatcher].
type DispatcherOpts struct {
	Workers    int                   // Concurrent consumers (default: 4)
	MaxRetries int                   // Retries after the first attempt (default: 3, negative disables)
	Backoff    time.Duration         // Base exponential backoff (default: 500ms)
	Drain      time.Duration         // How long in-flight jobs may finish after Run is cancelled (default: 30s)
	Logger     *log.Logger           // Defaults to log.Default()
	Recorder   Recorder              // Optional metrics sink
	Progress   chan<- ProgressUpdate // Optional progress stream
}

// Dispatcher moves links through sent to processed or failed by delivering them to n8n.
type Dispatcher struct {
	links    LinkStore
	sender   services.Sender
	queue    Queue
	deduper  Deduper
	opts     DispatcherOpts
	logger   *log.Logger
	recorder Recorder
}

// NewDispatcher wires a dispatcher. A nil deduper falls back to an in-memory one.
func NewDispatcher(links LinkStore, sender services.Sender, queue Queue, deduper Deduper, opts DispatcherOpts) *Dispatcher {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = DefaultMaxRetries
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.Backoff <= 0 {
		opts.Backoff = DefaultBackoff
	}
	if opts.Drain <= 0 {
		opts.Drain = DefaultDrain
	}
	if deduper == nil {
		deduper = NewMemoryDeduper(time.Minute)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	recorder := opts.Recorder
	if recorder == nil {
		recorder = nopRecorder{}
	}

	return &Dispatcher{
		links:    links,
		sender:   sender,
		queue:    queue,
		deduper:  deduper,
		opts:     opts,
		logger:   logger.WithPrefix("dispatch"),
		recorder: recorder,
	}
}

// Dispatch marks link as sent and enqueues a delivery job for it.
//
// A job already in flight for the same link and use returns [shared.ErrDuplicateJob].
// When the job cannot be queued the link is marked failed.
func (d *Dispatcher) Dispatch(ctx context.Context, email string, link *models.Link, use models.WebhookUse) (*models.Link, error) {
	if link == nil {
		return nil, fmt.Errorf("%w: link is required", shared.ErrInvalidInput)
	}
	if use == "" {
		use = models.UseTranscript
	}

	job := Job{
		ID:         uuid.NewString(),
		LinkID:     link.ID,
		UserID:     link.UserID,
		Email:      email,
		Use:        use,
		EnqueuedAt: time.Now().UTC(),
	}

	ok, err := d.deduper.Acquire(ctx, job.dedupeKey())
	if err != nil {
		d.logger.Warn("dedupe check failed, allowing dispatch", "link", link.ID, "error", err)
	} else if !ok {
		return nil, fmt.Errorf("%w: link %d already queued for %s", shared.ErrDuplicateJob, link.ID, use)
	}

	if err := d.links.SetStatus(ctx, link.ID, models.StatusSent); err != nil {
		d.release(job)
		return nil, err
	}
	d.recorder.ObserveStatus(models.StatusSent.String(), "dispatcher")

	if err := d.queue.Publish(ctx, job); err != nil {
		d.logger.Error("failed to enqueue job", "link", link.ID, "error", err)
		d.finish(job, models.StatusFailed)
		d.release(job)
		return nil, err
	}
	d.updateDepth()
	sendProgress(d.opts.Progress, queuedUpdate(job))

	updated := *link
	updated.Status = models.StatusSent
	return &updated, nil
}

// Run consumes jobs with the configured number of workers until ctx is done or the queue closes.
//
// Cancelling ctx stops new deliveries. Jobs already in flight get up to Drain to finish;
// a job cut off by that deadline is requeued and its link stays sent.
func (d *Dispatcher) Run(ctx context.Context) error {
	deliveries, err := d.queue.Consume(ctx)
	if err != nil {
		return err
	}

	d.logger.Info("dispatcher started", "workers", d.opts.Workers)

	var wg sync.WaitGroup
	for i := 0; i < d.opts.Workers; i++ {
		wg.Add(1)
		go d.worker(ctx, &wg, deliveries)
	}
	wg.Wait()

	d.logger.Info("dispatcher stopped")
	return nil
}

func (d *Dispatcher) worker(ctx context.Context, wg *sync.WaitGroup, deliveries <-chan Delivery) {
	defer wg.Done()

	for {
		if ctx.Err() != nil {
			return
		}
		select {
		case <-ctx.Done():
			return
		case del, ok := <-deliveries:
			if !ok {
				return
			}
			d.updateDepth()
			d.process(ctx, del)
		}
	}
}

// jobContext outlives runCtx by the drain period so an in-flight delivery can finish.
func (d *Dispatcher) jobContext(runCtx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.WithoutCancel(runCtx))
	stop := context.AfterFunc(runCtx, func() {
		timer := time.NewTimer(d.opts.Drain)
		defer timer.Stop()
		select {
		case <-timer.C:
			cancel()
		case <-ctx.Done():
		}
	})
	return ctx, func() {
		stop()
		cancel()
	}
}

func (d *Dispatcher) process(runCtx context.Context, del Delivery) {
	job := del.Job
	ctx, cancel := d.jobContext(runCtx)
	defer cancel()

	link, err := d.links.Get(ctx, job.LinkID, job.UserID)
	if errors.Is(err, shared.ErrNotFound) {
		d.logger.Warn("link no longer exists, dropping job", "link", job.LinkID, "job", job.ID)
		sendProgress(d.opts.Progress, droppedUpdate(job, "link deleted"))
		d.release(job)
		_ = del.Ack()
		return
	}
	if err != nil {
		d.logger.Error("failed to load link", "link", job.LinkID, "error", err)
		d.finish(job, models.StatusFailed)
		d.release(job)
		_ = del.Ack()
		return
	}

	res := d.Process(ctx, job, link)
	switch {
	case res.Interrupted:
		d.logger.Warn("delivery interrupted by shutdown, requeueing", "link", job.LinkID, "use", job.Use, "attempts", res.Attempts)
		if err := del.Nack(true); err != nil {
			d.logger.Error("failed to requeue job", "link", job.LinkID, "error", err)
			d.release(job)
		}
		return
	case res.Err != nil:
		d.logger.Warn("webhook delivery failed", "link", job.LinkID, "use", job.Use, "attempts", res.Attempts, "error", res.Err)
	default:
		d.logger.Info("webhook delivered", "link", job.LinkID, "use", job.Use, "code", res.StatusCode, "status", res.Status)
	}
	d.release(job)
	_ = del.Ack()
}

// Process sends job synchronously and records the final status.
//
// When ctx ends before the webhook answers the link keeps its sent status.
func (d *Dispatcher) Process(ctx context.Context, job Job, link *models.Link) Result {
	start := time.Now()
	code, attempts, err := d.sendWithRetry(ctx, job, link)
	if err != nil && ctx.Err() != nil {
		return Result{Job: job, Status: models.StatusSent, Attempts: attempts, Err: err, Interrupted: true}
	}

	res := Result{
		Job:        job,
		Status:     models.OutcomeStatus(code, err),
		StatusCode: code,
		Attempts:   attempts,
		Err:        err,
	}
	if err == nil && code != http.StatusOK {
		res.Err = fmt.Errorf("%w: status %d", shared.ErrWebhookFailed, code)
	}

	d.recorder.ObserveWebhook(job.Use.String(), res.Status.String(), attempts, time.Since(start))
	d.finish(job, res.Status)
	sendProgress(d.opts.Progress, completedUpdate(res))
	return res
}

func (d *Dispatcher) sendWithRetry(ctx context.Context, job Job, link *models.Link) (int, int, error) {
	req := services.NewWebhookRequest(job.Email, *link, job.Use)
	total := d.opts.MaxRetries + 1
	backoff := retry.WithMaxRetries(uint64(d.opts.MaxRetries), retry.NewExponential(d.opts.Backoff))

	var code, attempts int
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempts++
		code = 0
		sendProgress(d.opts.Progress, sendingUpdate(job, attempts, total))

		resp, err := d.sender.Send(ctx, req)
		if err != nil {
			if errors.Is(err, shared.ErrMissingConfig) || ctx.Err() != nil {
				return err
			}
			sendProgress(d.opts.Progress, retryingUpdate(job, attempts, total, err))
			return retry.RetryableError(err)
		}

		code = resp.StatusCode
		if retryableStatus(code) {
			err := fmt.Errorf("%w: status %d", shared.ErrWebhookFailed, code)
			sendProgress(d.opts.Progress, retryingUpdate(job, attempts, total, err))
			return retry.RetryableError(err)
		}
		return nil
	})
	return code, attempts, err
}

// retryableStatus reports whether a webhook answer is worth another attempt.
func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

// finish writes the final status even when the dispatcher is shutting down.
func (d *Dispatcher) finish(job Job, status models.LinkStatus) {
	ctx, cancel := context.WithTimeout(context.Background(), statusWriteTimeout)
	defer cancel()

	if err := d.links.SetStatus(ctx, job.LinkID, status); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return
		}
		d.logger.Error("failed to record link status", "link", job.LinkID, "status", status, "error", err)
		return
	}
	d.recorder.ObserveStatus(status.String(), "dispatcher")
}

func (d *Dispatcher) release(job Job) {
	if err := d.deduper.Release(context.Background(), job.dedupeKey()); err != nil {
		d.logger.Warn("failed to release dedupe key", "link", job.LinkID, "error", err)
	}
}

func (d *Dispatcher) updateDepth() {
	if l, ok := d.queue.(interface{ Len() int }); ok {
		d.recorder.SetQueueDepth(l.Len())
	}
}
