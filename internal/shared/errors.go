package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Authentication errors
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrInvalidToken     = fmt.Errorf("invalid token")
	ErrTokenExpired     = fmt.Errorf("token expired")
	ErrTokenRevoked     = fmt.Errorf("token revoked")
	ErrNoSession        = fmt.Errorf("no session found")

	// Persistence errors
	ErrNotFound      = fmt.Errorf("not found")
	ErrAlreadyExists = fmt.Errorf("already exists")

	// Webhook and dispatch errors
	ErrWebhookFailed      = fmt.Errorf("webhook request failed")
	ErrDuplicateJob       = fmt.Errorf("dispatch already in progress")
	ErrQueueClosed        = fmt.Errorf("dispatch queue closed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidStatus   = fmt.Errorf("invalid status")
)
