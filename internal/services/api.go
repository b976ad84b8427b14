// JSON client for the link service REST API
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// APIService makes JSON requests against a base URL, attaching a bearer token when one is set.
type APIService struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// NewAPIService creates a new API service instance for the link server.
func NewAPIService(baseURL string, client *http.Client) *APIService {
	if baseURL == "" {
		baseURL = "http://localhost:3000"
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &APIService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
	}
}

// SetToken sets the bearer token sent with every request. An empty token disables the header.
func (a *APIService) SetToken(token string) {
	a.token = token
}

// BaseURL returns the server URL requests are sent to.
func (a *APIService) BaseURL() string {
	return a.baseURL
}

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// OK reports whether the status code is in the 2xx range.
func (r *APIResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Decode unmarshals the response body into v.
func (r *APIResponse) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Do sends a request with an optional JSON body and returns the raw response.
//
// Non-2xx answers are returned as responses, not errors.
func (a *APIService) Do(ctx context.Context, method, path string, body any) (*APIResponse, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       data,
	}

	var jsonData any
	if err := json.Unmarshal(data, &jsonData); err == nil {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	}

	return apiResp, nil
}

// Get performs a GET request to the specified path and returns the raw response.
func (a *APIService) Get(ctx context.Context, path string) (*APIResponse, error) {
	return a.Do(ctx, http.MethodGet, path, nil)
}

// Post performs a POST request with body encoded as JSON.
func (a *APIService) Post(ctx context.Context, path string, body any) (*APIResponse, error) {
	return a.Do(ctx, http.MethodPost, path, body)
}

// Put performs a PUT request with body encoded as JSON.
func (a *APIService) Put(ctx context.Context, path string, body any) (*APIResponse, error) {
	return a.Do(ctx, http.MethodPut, path, body)
}

// Patch performs a PATCH request with body encoded as JSON.
func (a *APIService) Patch(ctx context.Context, path string, body any) (*APIResponse, error) {
	return a.Do(ctx, http.MethodPatch, path, body)
}

// Delete performs a DELETE request.
func (a *APIService) Delete(ctx context.Context, path string) (*APIResponse, error) {
	return a.Do(ctx, http.MethodDelete, path, nil)
}
