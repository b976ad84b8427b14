// package services defines outbound HTTP clients: the n8n webhook sender and the link API client.
package services

import (
	"context"

	"github.com/desertthunder/ytlinks/internal/models"
)

// Sender delivers a link to an n8n workflow.
//
// Implementations return a [WebhookResponse] whenever the receiver answered,
// whatever the status code, and an error only when no answer was obtained.
type Sender interface {
	Send(ctx context.Context, req WebhookRequest) (*WebhookResponse, error)
}

// WebhookRequest is the JSON payload posted to n8n.
type WebhookRequest struct {
	Email      string            `json:"email"`
	Title      string            `json:"title"`
	YouTubeURL string            `json:"youtube_url"`
	Use        models.WebhookUse `json:"use"`
}

// NewWebhookRequest builds the payload for link owned by email.
func NewWebhookRequest(email string, link models.Link, use models.WebhookUse) WebhookRequest {
	return WebhookRequest{
		Email:      email,
		Title:      link.Title,
		YouTubeURL: link.YouTubeURL,
		Use:        use,
	}
}

// WebhookResponse is what the receiver answered.
type WebhookResponse struct {
	StatusCode int
	Body       []byte
}
