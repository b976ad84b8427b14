package server

import (
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/desertthunder/ytlinks/internal/auth"
	"github.com/desertthunder/ytlinks/internal/metrics"
	"github.com/desertthunder/ytlinks/internal/shared"
)

const requestIDHeader = "X-Request-ID"

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

func (r *statusRecorder) code() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}

func recorderFor(w http.ResponseWriter) *statusRecorder {
	if rec, ok := w.(*statusRecorder); ok {
		return rec
	}
	return &statusRecorder{ResponseWriter: w}
}

// RequestID propagates an incoming X-Request-ID or assigns a new one.
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(requestIDHeader)
			if id == "" {
				id = uuid.NewString()
				r.Header.Set(requestIDHeader, id)
			}
			w.Header().Set(requestIDHeader, id)
			next.ServeHTTP(w, r)
		})
	}
}

// Recover converts a panic into a 500 response.
func Recover(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if p := recover(); p != nil {
					logger.Error("panic serving request",
						"path", r.URL.Path,
						"request_id", r.Header.Get(requestIDHeader),
						"panic", p,
						"stack", string(debug.Stack()),
					)
					writeJSON(w, http.StatusInternalServerError, errorBody{Message: "Server error", Error: "internal panic"})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// Logging logs one line per request.
func Logging(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := recorderFor(w)
			next.ServeHTTP(rec, r)

			kv := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.code(),
				"duration", time.Since(start),
				"request_id", r.Header.Get(requestIDHeader),
			}
			switch {
			case rec.code() >= http.StatusInternalServerError:
				logger.Error("request", kv...)
			case rec.code() >= http.StatusBadRequest:
				logger.Warn("request", kv...)
			default:
				logger.Info("request", kv...)
			}
		})
	}
}

// Instrument records request counts and latency per route pattern.
func Instrument(m *metrics.Metrics) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := recorderFor(w)
			next.ServeHTTP(rec, r)

			route := r.Pattern
			if route == "" {
				route = "unmatched"
			}
			m.ObserveHTTP(route, r.Method, rec.code(), time.Since(start))
		})
	}
}

// CORS allows the configured frontend origin. An empty origin allows any.
func CORS(origin string) Middleware {
	allowed := strings.TrimRight(origin, "/")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqOrigin := r.Header.Get("Origin")
			if reqOrigin != "" && (allowed == "" || allowed == "*" || reqOrigin == allowed) {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", reqOrigin)
				h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
				h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-ID")
				h.Set("Access-Control-Allow-Credentials", "true")
				h.Add("Vary", "Origin")
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth verifies the bearer token and stores its claims in the request context.
func RequireAuth(issuer *auth.TokenIssuer, revoker auth.Revoker) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				writeError(w, shared.ErrNotAuthenticated, "Authentication required")
				return
			}

			claims, err := issuer.Parse(token)
			if err != nil {
				writeError(w, err, "Invalid or expired token")
				return
			}

			revoked, err := revoker.IsRevoked(r.Context(), claims.ID)
			if err != nil {
				writeError(w, err, "")
				return
			}
			if revoked {
				writeError(w, shared.ErrTokenRevoked, "Token has been revoked")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
