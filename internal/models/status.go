package models

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/desertthunder/ytlinks/internal/shared"
)

// LinkStatus is the processing state of a [Link].
type LinkStatus string

const (
	StatusPending   LinkStatus = "pending"
	StatusSent      LinkStatus = "sent"
	StatusProcessed LinkStatus = "processed"
	StatusFailed    LinkStatus = "failed"
)

// Statuses lists every status in lifecycle order.
var Statuses = []LinkStatus{StatusPending, StatusSent, StatusProcessed, StatusFailed}

// ParseLinkStatus converts s to a [LinkStatus]. Unknown values return [shared.ErrInvalidStatus].
func ParseLinkStatus(s string) (LinkStatus, error) {
	status := LinkStatus(strings.ToLower(strings.TrimSpace(s)))
	if !status.Valid() {
		return "", fmt.Errorf("%w: %q", shared.ErrInvalidStatus, s)
	}
	return status, nil
}

// Valid reports whether s is one of the known statuses.
func (s LinkStatus) Valid() bool {
	switch s {
	case StatusPending, StatusSent, StatusProcessed, StatusFailed:
		return true
	}
	return false
}

// Terminal reports whether s is an outcome of a webhook call.
func (s LinkStatus) Terminal() bool {
	return s == StatusProcessed || s == StatusFailed
}

func (s LinkStatus) String() string {
	return string(s)
}

// OutcomeStatus maps a webhook result to the status it should leave the link in.
//
// Only an HTTP 200 without a transport error counts as processed.
func OutcomeStatus(code int, err error) LinkStatus {
	if err == nil && code == http.StatusOK {
		return StatusProcessed
	}
	return StatusFailed
}

// WebhookUse selects which n8n workflow a link is sent to.
type WebhookUse string

const (
	UseTranscript WebhookUse = "transcript"
	UseChat       WebhookUse = "chat"
)

// ParseWebhookUse converts s to a [WebhookUse], defaulting to transcript when s is empty.
func ParseWebhookUse(s string) (WebhookUse, error) {
	switch use := WebhookUse(strings.ToLower(strings.TrimSpace(s))); use {
	case "":
		return UseTranscript, nil
	case UseTranscript, UseChat:
		return use, nil
	default:
		return "", fmt.Errorf("%w: unknown webhook use %q", shared.ErrInvalidInput, s)
	}
}

func (u WebhookUse) String() string {
	return string(u)
}
