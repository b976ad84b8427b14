// package server contains the HTTP API for users and their YouTube links
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/ytlinks/internal/auth"
	"github.com/desertthunder/ytlinks/internal/metrics"
	"github.com/desertthunder/ytlinks/internal/models"
	"github.com/desertthunder/ytlinks/internal/shared"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Route is a single method and path pattern served by a [Handler].
type Route struct {
	Method  string
	Path    string
	Handler http.HandlerFunc
	Auth    bool // Requires a valid bearer token
}

// Handler groups related routes so they can be registered together.
type Handler interface {
	Routes() []Route
}

// Router defines the interface for HTTP routing and middleware management.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers every route of a Handler
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// UserStore is the user persistence the API needs.
type UserStore interface {
	Create(ctx context.Context, email string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	DeleteByEmail(ctx context.Context, email string) (*models.User, error)
}

// LinkStore is the link persistence the API needs.
type LinkStore interface {
	Create(ctx context.Context, userID int64, in models.LinkInput) (*models.Link, error)
	Get(ctx context.Context, linkID, userID int64) (*models.Link, error)
	ListByUser(ctx context.Context, userID int64, status models.LinkStatus) ([]models.Link, error)
	Update(ctx context.Context, linkID, userID int64, in models.LinkInput) (*models.Link, error)
	Delete(ctx context.Context, linkID, userID int64) error
	UpdateStatus(ctx context.Context, linkID, userID int64, status models.LinkStatus) (*models.Link, error)
	CountByStatus(ctx context.Context, userID int64) (map[models.LinkStatus]int, error)
}

// Dispatcher queues links for delivery to the webhooks.
type Dispatcher interface {
	Dispatch(ctx context.Context, email string, link *models.Link, use models.WebhookUse) (*models.Link, error)
}

// Pinger reports whether the database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Options holds the dependencies of a [Server].
type Options struct {
	Config       shared.ServerConfig
	Users        UserStore
	Links        LinkStore
	DB           Pinger
	Issuer       *auth.TokenIssuer
	Revoker      auth.Revoker
	Dispatcher   Dispatcher // Optional; resend answers 503 without one
	AutoDispatch bool       // Queue a transcript job for every new link
	Metrics      *metrics.Metrics
	Logger       *log.Logger
}

// Server serves the JSON API.
type Server struct {
	cfg        shared.ServerConfig
	router     *BasicRouter
	handler    http.Handler
	logger     *log.Logger
	httpServer *http.Server
}

// New builds the router with every handler and the standard middleware chain.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	if opts.Revoker == nil {
		opts.Revoker = auth.NewMemoryRevoker()
	}

	router := NewBasicRouter()
	router.Use(
		RequestID(),
		Recover(logger),
		Logging(logger),
		Instrument(opts.Metrics),
	)
	router.SetAuth(RequireAuth(opts.Issuer, opts.Revoker))

	router.Handler(&HealthHandler{db: opts.DB, metrics: opts.Metrics})
	router.Handler(&UserHandler{
		users:   opts.Users,
		issuer:  opts.Issuer,
		revoker: opts.Revoker,
		logger:  logger,
	})
	router.Handler(&LinkHandler{
		links:        opts.Links,
		dispatcher:   opts.Dispatcher,
		autoDispatch: opts.AutoDispatch,
		metrics:      opts.Metrics,
		logger:       logger,
	})

	return &Server{
		cfg:     opts.Config,
		router:  router,
		handler: CORS(opts.Config.FrontendURL)(router),
		logger:  logger,
	}
}

// Handler returns the root [http.Handler].
//
// CORS wraps the router itself so preflight requests never reach route matching.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("shutting down server", "timeout", timeout)
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
