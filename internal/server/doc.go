// Package server provides the HTTP API, routing and middleware for ytlinks.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation registers method-qualified [http.ServeMux] patterns, so path
// wildcards such as {linkId} are read with [http.Request.PathValue] and wrong methods answer 405.
//
// # Handler Interface
//
// Handlers implement [Handler] by returning their [Route] table. Routes marked Auth are
// wrapped with [RequireAuth], which verifies the bearer token and rejects revoked ones.
//
// # Handlers
//
//   - [HealthHandler] : /, /healthz, /readyz and /metrics
//   - [UserHandler] : register, login, logout and delete under /api/users
//   - [LinkHandler] : link CRUD, status updates and dispatch under /api/tasks
//
// # Errors
//
// Handlers answer every request. Errors are mapped to status codes in one place
// (statusFor): validation 400, auth 401, not found 404, conflicts 409, and anything
// else 500 with {"message": "Server error", "error": ...}.
package server
