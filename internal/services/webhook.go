package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/desertthunder/ytlinks/internal/models"
	"github.com/desertthunder/ytlinks/internal/shared"
)

// maxWebhookBody caps how much of a webhook answer is kept.
const maxWebhookBody = 64 << 10

// WebhookOpts configures a [WebhookClient].
type WebhookOpts struct {
	TranscriptURL string        // Endpoint for [models.UseTranscript]
	ChatURL       string        // Endpoint for [models.UseChat]
	Timeout       time.Duration // Per request timeout (default: 30s)
	RateLimit     float64       // Requests per second (default: 5)
	Burst         int           // Limiter burst (default: 1)
}

// WebhookClient posts link payloads to the n8n workflow selected by their use.
type WebhookClient struct {
	urls       map[models.WebhookUse]string
	httpClient *http.Client
	limiter    *rate.Limiter
	timeout    time.Duration
}

// NewWebhookClient creates a [WebhookClient]. A nil client uses [http.DefaultClient].
func NewWebhookClient(opts WebhookOpts, client *http.Client) *WebhookClient {
	if client == nil {
		client = http.DefaultClient
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}

	return &WebhookClient{
		urls: map[models.WebhookUse]string{
			models.UseTranscript: opts.TranscriptURL,
			models.UseChat:       opts.ChatURL,
		},
		httpClient: client,
		limiter:    rate.NewLimiter(rate.Limit(opts.RateLimit), opts.Burst),
		timeout:    opts.Timeout,
	}
}

// NewWebhookClientFromConfig creates a [WebhookClient] from the [webhook] config section.
func NewWebhookClientFromConfig(cfg shared.WebhookConfig) *WebhookClient {
	return NewWebhookClient(WebhookOpts{
		TranscriptURL: cfg.TranscriptURL,
		ChatURL:       cfg.ChatURL,
		Timeout:       cfg.Timeout,
		RateLimit:     cfg.RateLimit,
		Burst:         cfg.Burst,
	}, nil)
}

// URL returns the endpoint configured for use.
func (c *WebhookClient) URL(use models.WebhookUse) string {
	return c.urls[use]
}

// Send posts req as JSON to the endpoint for req.Use.
func (c *WebhookClient) Send(ctx context.Context, req WebhookRequest) (*WebhookResponse, error) {
	if req.Use == "" {
		req.Use = models.UseTranscript
	}

	endpoint := c.urls[req.Use]
	if endpoint == "" {
		return nil, fmt.Errorf("%w: no webhook url for use %q", shared.ErrMissingConfig, req.Use)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrWebhookFailed, err)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode webhook payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create webhook request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrWebhookFailed, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxWebhookBody))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", shared.ErrWebhookFailed, err)
	}

	return &WebhookResponse{StatusCode: resp.StatusCode, Body: data}, nil
}
