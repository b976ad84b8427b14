// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/ytlinks/internal/services"
)

// MockSender is a test double for [services.Sender].
//
// Responses are consumed in order; once exhausted the last one is repeated.
type MockSender struct {
	mu        sync.Mutex
	responses []MockResult
	requests  []services.WebhookRequest
}

// MockResult is a canned webhook answer.
type MockResult struct {
	StatusCode int
	Err        error
}

// NewMockSender creates a [MockSender] answering with results in order.
func NewMockSender(results ...MockResult) *MockSender {
	if len(results) == 0 {
		results = []MockResult{{StatusCode: http.StatusOK}}
	}
	return &MockSender{responses: results}
}

func (m *MockSender) Send(ctx context.Context, req services.WebhookRequest) (*services.WebhookResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, req)

	next := m.responses[0]
	if len(m.responses) > 1 {
		m.responses = m.responses[1:]
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if next.Err != nil {
		return nil, next.Err
	}
	return &services.WebhookResponse{StatusCode: next.StatusCode}, nil
}

// Requests returns a copy of every request received so far.
func (m *MockSender) Requests() []services.WebhookRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]services.WebhookRequest(nil), m.requests...)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
