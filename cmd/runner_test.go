package main

import (
	"bytes"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/ytlinks/internal/client"
	"github.com/desertthunder/ytlinks/internal/shared"
	tu "github.com/desertthunder/ytlinks/internal/testing"
)

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			api := client.NewAPIClient("http://api.test", httpClient)

			runner := NewRunner(RunnerOpts{
				Config:      config,
				Logger:      logger,
				Output:      output,
				HTTPClient:  httpClient,
				API:         api,
				SessionPath: "/tmp/session.json",
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.api != api {
				t.Error("expected api to be set")
			}
			if runner.sessionPath != "/tmp/session.json" {
				t.Errorf("expected sessionPath to be set, got %s", runner.sessionPath)
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Config: nil,
			})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Logger: nil,
			})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Output: nil,
			})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil httpClient uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				HTTPClient: nil,
			})

			if runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
		})

		t.Run("with nil api uses client.api_url", func(t *testing.T) {
			config := shared.DefaultConfig()
			config.Client.APIURL = "http://links.example.com/"
			runner := NewRunner(RunnerOpts{Config: config})

			if runner.api == nil {
				t.Fatal("expected default api client")
			}
			if runner.api.BaseURL() != "http://links.example.com" {
				t.Errorf("expected base url from config, got %s", runner.api.BaseURL())
			}
		})

		t.Run("with nil input uses stdin", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})
			if runner.input != os.Stdin {
				t.Error("expected input to default to os.Stdin")
			}
		})

		t.Run("with configPath sets field", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				ConfigPath: "/test/path/config.toml",
			})

			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
		})

		t.Run("with empty configPath", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				ConfigPath: "",
			})

			if runner.configPath != "" {
				t.Errorf("expected empty configPath, got %s", runner.configPath)
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, true)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			expected := `{"key":"value"}` + "\n"
			if result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			// channels cannot be marshaled to JSON
			data := make(chan int)
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			data := map[string]string{"key": "value"}
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writePlain("hello %s", "world")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if result != "hello world" {
				t.Errorf("expected 'hello world', got %q", result)
			}
		})

		t.Run("writes plain text without formatting", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writePlain("simple text")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if result != "simple text" {
				t.Errorf("expected 'simple text', got %q", result)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			err := runner.writePlain("test")

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		if len(commands) == 0 {
			t.Error("expected at least one command to be registered")
		}

		for i, cmd := range commands {
			if cmd == nil {
				t.Errorf("command at index %d is nil", i)
			}
		}
	})
}

func TestRunnerHelpers(t *testing.T) {
	t.Run("parseID", func(t *testing.T) {
		if id, err := parseID("42"); err != nil || id != 42 {
			t.Errorf("expected 42, got %d (%v)", id, err)
		}
		if _, err := parseID(""); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
		for _, raw := range []string{"abc", "0", "-3"} {
			if _, err := parseID(raw); !errors.Is(err, shared.ErrInvalidArgument) {
				t.Errorf("parseID(%q) expected ErrInvalidArgument, got %v", raw, err)
			}
		}
	})

	t.Run("statusFilter", func(t *testing.T) {
		for _, raw := range []string{"", "all", "ALL"} {
			if s, err := statusFilter(raw); err != nil || s != "" {
				t.Errorf("statusFilter(%q) expected empty status, got %q (%v)", raw, s, err)
			}
		}
		if s, err := statusFilter("Failed"); err != nil || s != "failed" {
			t.Errorf("expected failed, got %q (%v)", s, err)
		}
		if _, err := statusFilter("done"); !errors.Is(err, shared.ErrInvalidStatus) {
			t.Errorf("expected ErrInvalidStatus, got %v", err)
		}
	})

	t.Run("session", func(t *testing.T) {
		t.Run("missing session asks for login", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{SessionPath: filepath.Join(t.TempDir(), "session.json")})

			_, err := runner.session()
			if !errors.Is(err, shared.ErrNotAuthenticated) {
				t.Fatalf("expected ErrNotAuthenticated, got %v", err)
			}
			if !strings.Contains(err.Error(), "users login") {
				t.Errorf("expected login hint, got %v", err)
			}
		})

		t.Run("saved session round trips", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", "session.json")
			runner := NewRunner(RunnerOpts{SessionPath: path})

			want := &client.Session{UserID: 7, Email: "me@example.com", Token: "tok"}
			if err := runner.saveSession(want); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			got, err := runner.session()
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if *got != *want {
				t.Errorf("expected %+v, got %+v", want, got)
			}
		})
	})

	t.Run("sender", func(t *testing.T) {
		config := shared.DefaultConfig()
		config.Webhook.TranscriptURL = ""
		config.Webhook.ChatURL = ""
		if NewRunner(RunnerOpts{Config: config}).sender() != nil {
			t.Error("expected no sender without webhook urls")
		}

		config.Webhook.ChatURL = "http://n8n.test/chat"
		if NewRunner(RunnerOpts{Config: config}).sender() == nil {
			t.Error("expected a sender when a webhook url is set")
		}
	})

	t.Run("confirm", func(t *testing.T) {
		for input, want := range map[string]bool{"y\n": true, "YES\n": true, "y": true, "n\n": false, "": false} {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output, Input: strings.NewReader(input)})
			if got := runner.confirm("Sure?"); got != want {
				t.Errorf("confirm(%q) = %v, want %v", input, got, want)
			}
			if !strings.Contains(output.String(), "Sure? [y/N]") {
				t.Errorf("expected prompt, got %q", output.String())
			}
		}
	})
}
