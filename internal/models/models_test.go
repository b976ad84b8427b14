package models

import (
	"errors"
	"net/http"
	"testing"

	"github.com/desertthunder/ytlinks/internal/shared"
)

func TestLinkStatus(t *testing.T) {
	t.Run("ParseLinkStatus", func(t *testing.T) {
		tc := []struct {
			in      string
			want    LinkStatus
			wantErr bool
		}{
			{in: "pending", want: StatusPending},
			{in: "sent", want: StatusSent},
			{in: "Processed", want: StatusProcessed},
			{in: " failed ", want: StatusFailed},
			{in: "", wantErr: true},
			{in: "archived", wantErr: true},
		}

		for _, tt := range tc {
			t.Run(tt.in, func(t *testing.T) {
				got, err := ParseLinkStatus(tt.in)
				if tt.wantErr {
					if !errors.Is(err, shared.ErrInvalidStatus) {
						t.Fatalf("expected ErrInvalidStatus, got %v", err)
					}
					return
				}
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if got != tt.want {
					t.Errorf("got %s, want %s", got, tt.want)
				}
			})
		}
	})

	t.Run("Terminal", func(t *testing.T) {
		if StatusPending.Terminal() || StatusSent.Terminal() {
			t.Error("pending and sent are not terminal")
		}
		if !StatusProcessed.Terminal() || !StatusFailed.Terminal() {
			t.Error("processed and failed are terminal")
		}
	})

	t.Run("OutcomeStatus", func(t *testing.T) {
		tc := []struct {
			name string
			code int
			err  error
			want LinkStatus
		}{
			{name: "ok", code: http.StatusOK, want: StatusProcessed},
			{name: "created is not ok", code: http.StatusCreated, want: StatusFailed},
			{name: "client error", code: http.StatusBadRequest, want: StatusFailed},
			{name: "server error", code: http.StatusInternalServerError, want: StatusFailed},
			{name: "transport error", err: errors.New("connection refused"), want: StatusFailed},
			{name: "error wins over code", code: http.StatusOK, err: errors.New("timeout"), want: StatusFailed},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				if got := OutcomeStatus(tt.code, tt.err); got != tt.want {
					t.Errorf("OutcomeStatus(%d, %v) = %s, want %s", tt.code, tt.err, got, tt.want)
				}
			})
		}
	})
}

func TestParseWebhookUse(t *testing.T) {
	if use, err := ParseWebhookUse(""); err != nil || use != UseTranscript {
		t.Errorf("empty use should default to transcript, got %s, %v", use, err)
	}
	if use, err := ParseWebhookUse("CHAT"); err != nil || use != UseChat {
		t.Errorf("expected chat, got %s, %v", use, err)
	}
	if _, err := ParseWebhookUse("summary"); !errors.Is(err, shared.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestLinkInput(t *testing.T) {
	t.Run("missing url is reported first", func(t *testing.T) {
		err := LinkInput{}.Validate()
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
		if err.Error() != "invalid input: YouTube URL is required" {
			t.Errorf("unexpected message: %v", err)
		}
	})

	t.Run("missing title", func(t *testing.T) {
		err := LinkInput{YouTubeURL: "https://youtu.be/abc"}.Validate()
		if err == nil || err.Error() != "invalid input: Title is required" {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("whitespace only counts as missing", func(t *testing.T) {
		if err := (LinkInput{Title: "  ", YouTubeURL: "https://youtu.be/abc"}).Validate(); err == nil {
			t.Error("expected error for blank title")
		}
	})

	t.Run("Normalize", func(t *testing.T) {
		in := LinkInput{Title: " Talk ", YouTubeURL: " https://youtu.be/abc\n", Notes: "\tnotes "}.Normalize()
		if in.Title != "Talk" || in.YouTubeURL != "https://youtu.be/abc" || in.Notes != "notes" {
			t.Errorf("unexpected normalized input: %+v", in)
		}
	})
}
