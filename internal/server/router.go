package server

import (
	"net/http"
)

// BasicRouter is a simple HTTP router implementing the [Router] interface.
//
// Uses [http.ServeMux] method and wildcard patterns internally, so unmatched
// methods answer 405 and path values are available through [http.Request.PathValue].
type BasicRouter struct {
	mux         *http.ServeMux
	middlewares []Middleware
	auth        Middleware
}

// NewBasicRouter creates a new [BasicRouter] instance.
func NewBasicRouter() *BasicRouter {
	return &BasicRouter{
		mux:         http.NewServeMux(),
		middlewares: []Middleware{},
	}
}

// Use adds [Middleware] to the [Router] instance's middleware stack, applied in the order it's added.
func (r *BasicRouter) Use(middleware ...Middleware) {
	r.middlewares = append(r.middlewares, middleware...)
}

// SetAuth sets the middleware applied to routes that require authentication.
func (r *BasicRouter) SetAuth(m Middleware) {
	r.auth = m
}

// Handle registers a [http.Handler] for the specified HTTP method and path pattern.
//
// The handler is wrapped with all registered middleware.
func (r *BasicRouter) Handle(method, path string, handler http.Handler) {
	pattern := path
	if method != "" {
		pattern = method + " " + path
	}
	r.mux.Handle(pattern, r.Apply(handler))
}

// Handler registers every route returned by [Handler.Routes].
//
// Routes marked Auth are wrapped with the auth middleware inside the shared stack.
func (r *BasicRouter) Handler(handler Handler) {
	for _, route := range handler.Routes() {
		var h http.Handler = route.Handler
		if route.Auth && r.auth != nil {
			h = r.auth(h)
		}
		r.Handle(route.Method, route.Path, h)
	}
}

// ServeHTTP implements [http.Handler] for the entire router.
func (r *BasicRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Apply wraps a handler with all registered middleware.
//
// Middleware is applied in reverse order (last added wraps first).
func (r *BasicRouter) Apply(handler http.Handler) http.Handler {
	wrapped := handler

	for i := len(r.middlewares) - 1; i >= 0; i-- {
		wrapped = r.middlewares[i](wrapped)
	}

	return wrapped
}
