package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/desertthunder/ytlinks/internal/models"
	"github.com/desertthunder/ytlinks/internal/services"
	"github.com/desertthunder/ytlinks/internal/shared"
)

// APIError is a non-2xx answer from the server.
//
// It unwraps to the shared sentinel matching its status code.
type APIError struct {
	StatusCode int
	Message    string
	Detail     string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.Detail != "" {
		return fmt.Sprintf("%s (%d): %s", msg, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("%s (%d)", msg, e.StatusCode)
}

func (e *APIError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusBadRequest:
		return shared.ErrInvalidInput
	case e.StatusCode == http.StatusUnauthorized:
		return shared.ErrNotAuthenticated
	case e.StatusCode == http.StatusNotFound:
		return shared.ErrNotFound
	case e.StatusCode == http.StatusConflict:
		return shared.ErrAlreadyExists
	case e.StatusCode == http.StatusServiceUnavailable:
		return shared.ErrServiceUnavailable
	default:
		return nil
	}
}

// AuthResult is the answer to register and login.
type AuthResult struct {
	Message string       `json:"message"`
	User    *models.User `json:"user"`
	Token   string       `json:"token"`
}

// Session converts the result into a persisted [Session].
func (r *AuthResult) Session() *Session {
	return &Session{UserID: r.User.ID, Email: r.User.Email, Token: r.Token}
}

// APIClient calls the ytlinks HTTP API.
type APIClient struct {
	api *services.APIService
}

// NewAPIClient creates a client for baseURL. A nil httpClient uses [http.DefaultClient].
func NewAPIClient(baseURL string, httpClient *http.Client) *APIClient {
	return &APIClient{api: services.NewAPIService(baseURL, httpClient)}
}

// SetToken sets the bearer token used for authenticated routes.
func (c *APIClient) SetToken(token string) {
	c.api.SetToken(token)
}

func (c *APIClient) BaseURL() string {
	return c.api.BaseURL()
}

// into returns a handler for an [services.APIService] call that decodes a 2xx body
// into out when out is non-nil and converts anything else into an error.
func into(out any) func(*services.APIResponse, error) error {
	return func(resp *services.APIResponse, err error) error {
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
		}
		return result(resp, out)
	}
}

func result(resp *services.APIResponse, out any) error {
	if !resp.OK() {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var payload struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if resp.IsJSON && resp.Decode(&payload) == nil {
			apiErr.Message = payload.Message
			apiErr.Detail = payload.Error
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	return resp.Decode(out)
}

// Register creates a user and returns a session token for it.
func (c *APIClient) Register(ctx context.Context, email string) (*AuthResult, error) {
	var out AuthResult
	if err := into(&out)(c.api.Post(ctx, "/api/users/", map[string]string{"email": email})); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login exchanges an email for a session token.
func (c *APIClient) Login(ctx context.Context, email string) (*AuthResult, error) {
	var out AuthResult
	if err := into(&out)(c.api.Post(ctx, "/api/users/"+url.PathEscape(email), nil)); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout revokes the current token on the server.
func (c *APIClient) Logout(ctx context.Context) error {
	return into(nil)(c.api.Post(ctx, "/api/users/logout", nil))
}

// DeleteUser deletes the signed in user and their links.
func (c *APIClient) DeleteUser(ctx context.Context, email string) (*models.User, error) {
	var out struct {
		User *models.User `json:"user"`
	}
	if err := into(&out)(c.api.Delete(ctx, "/api/users/"+url.PathEscape(email))); err != nil {
		return nil, err
	}
	return out.User, nil
}

type linkEnvelope struct {
	Link *models.Link `json:"link"`
}

func (c *APIClient) CreateLink(ctx context.Context, userID int64, in models.LinkInput) (*models.Link, error) {
	body := struct {
		UserID int64 `json:"user_id"`
		models.LinkInput
	}{UserID: userID, LinkInput: in}

	var out linkEnvelope
	if err := into(&out)(c.api.Post(ctx, "/api/tasks", body)); err != nil {
		return nil, err
	}
	return out.Link, nil
}

// ListLinks returns the user's links, newest first. An empty status lists all of them.
func (c *APIClient) ListLinks(ctx context.Context, userID int64, status models.LinkStatus) ([]models.Link, error) {
	path := fmt.Sprintf("/api/tasks/%d", userID)
	if status != "" {
		path += "?status=" + url.QueryEscape(status.String())
	}

	var out struct {
		Links []models.Link `json:"links"`
	}
	if err := into(&out)(c.api.Get(ctx, path)); err != nil {
		return nil, err
	}
	if out.Links == nil {
		out.Links = []models.Link{}
	}
	return out.Links, nil
}

func (c *APIClient) GetLink(ctx context.Context, linkID, userID int64) (*models.Link, error) {
	var out linkEnvelope
	if err := into(&out)(c.api.Get(ctx, fmt.Sprintf("/api/tasks/%d/%d", linkID, userID))); err != nil {
		return nil, err
	}
	return out.Link, nil
}

func (c *APIClient) UpdateLink(ctx context.Context, linkID int64, in models.LinkInput) (*models.Link, error) {
	var out linkEnvelope
	if err := into(&out)(c.api.Put(ctx, fmt.Sprintf("/api/tasks/%d", linkID), in)); err != nil {
		return nil, err
	}
	return out.Link, nil
}

func (c *APIClient) DeleteLink(ctx context.Context, linkID int64) error {
	return into(nil)(c.api.Delete(ctx, fmt.Sprintf("/api/tasks/%d", linkID)))
}

func (c *APIClient) UpdateStatus(ctx context.Context, linkID int64, status models.LinkStatus) (*models.Link, error) {
	var out linkEnvelope
	body := map[string]string{"status": status.String()}
	if err := into(&out)(c.api.Patch(ctx, fmt.Sprintf("/api/tasks/%d/status", linkID), body)); err != nil {
		return nil, err
	}
	return out.Link, nil
}

// Resend asks the server to queue the link for webhook delivery.
func (c *APIClient) Resend(ctx context.Context, linkID, userID int64, use models.WebhookUse) (*models.Link, error) {
	var out linkEnvelope
	body := map[string]string{"use": use.String()}
	if err := into(&out)(c.api.Post(ctx, fmt.Sprintf("/api/tasks/%d/%d/resend", linkID, userID), body)); err != nil {
		return nil, err
	}
	return out.Link, nil
}

// Summary returns link counts per status plus "all".
func (c *APIClient) Summary(ctx context.Context, userID int64) (map[string]int, error) {
	var out struct {
		Counts map[string]int `json:"counts"`
	}
	if err := into(&out)(c.api.Get(ctx, fmt.Sprintf("/api/tasks/%d/summary", userID))); err != nil {
		return nil, err
	}
	return out.Counts, nil
}
