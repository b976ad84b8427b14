package shared

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNormalizeEmail(t *testing.T) {
	tc := []struct {
		name  string
		email string
		want  string
	}{
		{name: "already normalized", email: "user@example.com", want: "user@example.com"},
		{name: "surrounding whitespace", email: "  user@example.com\n", want: "user@example.com"},
		{name: "mixed case", email: "User@Example.COM", want: "user@example.com"},
		{name: "empty", email: "   ", want: ""},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeEmail(tt.email); got != tt.want {
				t.Errorf("NormalizeEmail() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLogging(t *testing.T) {
	t.Run("ParseLogLevel", func(t *testing.T) {
		if got := ParseLogLevel("DEBUG"); got != log.DebugLevel {
			t.Errorf("expected debug, got %v", got)
		}
		if got := ParseLogLevel("nonsense"); got != log.InfoLevel {
			t.Errorf("expected info fallback, got %v", got)
		}
	})

	t.Run("WithLogger", func(t *testing.T) {
		var buf bytes.Buffer
		logger := WithLogger(NewLogger(&buf), "component", "test")
		logger.Info("hello")

		if !strings.Contains(buf.String(), "component=test") {
			t.Errorf("expected key-value pair in output, got %q", buf.String())
		}
	})

	t.Run("NewFileLogger", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "ytlinks.log")
		logger, closer, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("failed to create file logger: %v", err)
		}
		logger.Info("written")
		if err := closer.Close(); err != nil {
			t.Fatalf("failed to close log file: %v", err)
		}
	})
}

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	if a == b {
		t.Error("expected unique ids")
	}
	if len(a) != 36 {
		t.Errorf("expected uuid string, got %q", a)
	}
}
