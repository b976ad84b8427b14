package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/desertthunder/ytlinks/internal/auth"
	"github.com/desertthunder/ytlinks/internal/metrics"
	"github.com/desertthunder/ytlinks/internal/repositories"
	"github.com/desertthunder/ytlinks/internal/server"
	"github.com/desertthunder/ytlinks/internal/services"
	"github.com/desertthunder/ytlinks/internal/shared"
	"github.com/desertthunder/ytlinks/internal/tasks"
)

// backend is everything serve and worker share: the database, the
// optional Redis connection and the dispatch pipeline.
type backend struct {
	db         *sqlx.DB
	users      *repositories.UserRepository
	links      *repositories.LinkRepository
	metrics    *metrics.Metrics
	revoker    auth.Revoker
	queue      tasks.Queue
	dispatcher *tasks.Dispatcher
	closers    []func() error
}

func (b *backend) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		errs = append(errs, b.closers[i]())
	}
	return errors.Join(errs...)
}

// openBackend connects to the database (applying migrations), Redis when
// configured, and the dispatch queue.
func (r *Runner) openBackend(ctx context.Context, progress chan<- tasks.ProgressUpdate) (*backend, error) {
	cfg := r.config
	b := &backend{metrics: metrics.New()}

	db, err := shared.OpenDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}
	b.db = db
	b.closers = append(b.closers, db.Close)

	shared.SetMigrationLogger(r.logger)
	if err := shared.RunMigrations(ctx, db.DB, cfg.Database.Driver); err != nil {
		b.Close()
		return nil, err
	}
	b.users = repositories.NewUserRepository(db)
	b.links = repositories.NewLinkRepository(db)

	var deduper tasks.Deduper
	if cfg.Redis.Enabled() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		b.closers = append(b.closers, rdb.Close)
		if err := rdb.Ping(ctx).Err(); err != nil {
			b.Close()
			return nil, fmt.Errorf("%w: redis at %s: %v", shared.ErrServiceUnavailable, cfg.Redis.Addr, err)
		}
		b.revoker = auth.NewRedisRevoker(rdb)
		deduper = tasks.NewRedisDeduper(rdb, cfg.Webhook.DedupeTTL)
		r.logger.Info("using redis", "addr", cfg.Redis.Addr)
	} else {
		b.revoker = auth.NewMemoryRevoker()
		deduper = tasks.NewMemoryDeduper(cfg.Webhook.DedupeTTL)
	}

	switch cfg.Queue.Backend {
	case shared.QueueAMQP:
		q, err := tasks.NewAMQPQueue(cfg.Queue.URL, cfg.Queue.Name, r.logger)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.queue = q
	default:
		b.queue = tasks.NewMemoryQueue(cfg.Queue.Buffer)
	}
	b.closers = append(b.closers, b.queue.Close)

	b.dispatcher = tasks.NewDispatcher(b.links, services.NewWebhookClientFromConfig(cfg.Webhook), b.queue, deduper, tasks.DispatcherOpts{
		Workers:    cfg.Webhook.Workers,
		MaxRetries: cfg.Webhook.Retries(),
		Backoff:    cfg.Webhook.Backoff,
		Logger:     r.logger,
		Recorder:   b.metrics,
		Progress:   progress,
	})
	return b, nil
}

// Serve runs the REST API, and the dispatch workers unless --no-workers is set.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if cmd.IsSet("port") {
		r.config.Server.Port = cmd.Int("port")
	}
	if err := r.config.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := r.openBackend(ctx, nil)
	if err != nil {
		return err
	}
	defer b.Close()

	srv := server.New(server.Options{
		Config:       r.config.Server,
		Users:        b.users,
		Links:        b.links,
		DB:           b.db,
		Issuer:       auth.NewTokenIssuer(r.config.Auth.Secret, r.config.Auth.TokenTTL),
		Revoker:      b.revoker,
		Dispatcher:   b.dispatcher,
		AutoDispatch: r.config.Webhook.AutoDispatch,
		Metrics:      b.metrics,
		Logger:       r.logger,
	})

	g, gctx := errgroup.WithContext(ctx)
	if !cmd.Bool("no-workers") {
		g.Go(func() error { return b.dispatcher.Run(gctx) })
	}
	g.Go(func() error { return srv.Run(gctx) })
	return g.Wait()
}

// Worker consumes the AMQP queue and delivers links to the webhooks.
func (r *Runner) Worker(ctx context.Context, cmd *cli.Command) error {
	if r.config.Queue.Backend != shared.QueueAMQP {
		return fmt.Errorf("%w: worker needs queue.backend = %q, got %q", shared.ErrInvalidConfig, shared.QueueAMQP, r.config.Queue.Backend)
	}
	if cmd.IsSet("workers") {
		r.config.Webhook.Workers = cmd.Int("workers")
	}
	if err := r.config.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var progress chan tasks.ProgressUpdate
	done := make(chan struct{})
	if cmd.Bool("verbose") {
		progress = make(chan tasks.ProgressUpdate, 64)
		go func() {
			defer close(done)
			for update := range progress {
				r.writePlain("[%s] %s\n", update.Phase, update.Message)
			}
		}()
	} else {
		close(done)
	}

	b, err := r.openBackend(ctx, progress)
	if err != nil {
		return err
	}
	defer b.Close()

	g, gctx := errgroup.WithContext(ctx)
	if addr := cmd.String("metrics-addr"); addr != "" {
		ms := &http.Server{Addr: addr, Handler: b.metrics.Handler(), ReadHeaderTimeout: 10 * time.Second}
		g.Go(func() error {
			if err := ms.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics listener failed: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			return ms.Close()
		})
		r.logger.Info("serving metrics", "addr", addr)
	}

	r.logger.Info("worker started", "queue", r.config.Queue.Name, "workers", r.config.Webhook.Workers)
	g.Go(func() error {
		defer stop()
		return b.dispatcher.Run(gctx)
	})

	err = g.Wait()
	if progress != nil {
		close(progress)
	}
	<-done
	return err
}
