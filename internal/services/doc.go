// Package services holds the outbound HTTP clients of the link service.
//
// # Webhook
//
// [WebhookClient] implements [Sender]. It posts a [WebhookRequest]
// ({email, title, youtube_url, use}) to the n8n endpoint configured for the
// request's use: transcript or chat. Calls pass through a token bucket limiter and
// a per request timeout. The client never retries; the dispatcher in the tasks
// package decides what is retryable.
//
// A response is returned for any HTTP status. Turning it into a link status is
// left to [models.OutcomeStatus].
//
// # API
//
// [APIService] is a small JSON client used by the CLI and TUI to talk to the
// REST server. It returns raw [APIResponse] values; mapping status codes to errors
// happens in the client package.
//
// # Error Handling
//
//   - [shared.ErrMissingConfig] : no endpoint configured for the requested use
//   - [shared.ErrWebhookFailed] : transport failure, timeout or rate limiter cancellation
package services
