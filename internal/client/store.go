package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"sync"

	"github.com/desertthunder/ytlinks/internal/models"
	"github.com/desertthunder/ytlinks/internal/services"
	"github.com/desertthunder/ytlinks/internal/shared"
)

// FilterAll selects every link in [LinkStore.Filter] and [LinkStore.Counts].
const FilterAll = "all"

// LinkAPI is the subset of [APIClient] a [LinkStore] needs.
type LinkAPI interface {
	CreateLink(ctx context.Context, userID int64, in models.LinkInput) (*models.Link, error)
	ListLinks(ctx context.Context, userID int64, status models.LinkStatus) ([]models.Link, error)
	UpdateLink(ctx context.Context, linkID int64, in models.LinkInput) (*models.Link, error)
	DeleteLink(ctx context.Context, linkID int64) error
	UpdateStatus(ctx context.Context, linkID int64, status models.LinkStatus) (*models.Link, error)
	Resend(ctx context.Context, linkID, userID int64, use models.WebhookUse) (*models.Link, error)
}

// SendResult reports how the webhook answered a client side send.
type SendResult struct {
	Success    bool
	StatusCode int
	Status     models.LinkStatus
}

// LinkStore keeps the signed in user's links in memory and mirrors every change to the API.
//
// Safe for concurrent use.
type LinkStore struct {
	api    LinkAPI
	sender services.Sender
	userID int64
	email  string

	mu    sync.RWMutex
	links []models.Link
}

// NewLinkStore creates a store for the session's user. sender may be nil when
// webhooks are only triggered through the server.
func NewLinkStore(api LinkAPI, sender services.Sender, s *Session) *LinkStore {
	return &LinkStore{api: api, sender: sender, userID: s.UserID, email: s.Email, links: []models.Link{}}
}

// Fetch replaces the local links with the server's.
func (s *LinkStore) Fetch(ctx context.Context) error {
	links, err := s.api.ListLinks(ctx, s.userID, "")
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.links = links
	s.mu.Unlock()
	return nil
}

// Links returns a copy of the local links, newest first.
func (s *LinkStore) Links() []models.Link {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.links)
}

// Get returns the local copy of a link.
func (s *LinkStore) Get(linkID int64) (models.Link, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.index(linkID)
	if i < 0 {
		return models.Link{}, false
	}
	return s.links[i], true
}

// Add creates a link and prepends it.
func (s *LinkStore) Add(ctx context.Context, in models.LinkInput) (*models.Link, error) {
	link, err := s.api.CreateLink(ctx, s.userID, in)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.links = append([]models.Link{*link}, s.links...)
	s.mu.Unlock()
	return link, nil
}

// Update edits a link and replaces the local copy.
func (s *LinkStore) Update(ctx context.Context, linkID int64, in models.LinkInput) (*models.Link, error) {
	link, err := s.api.UpdateLink(ctx, linkID, in)
	if err != nil {
		return nil, err
	}
	s.replace(*link)
	return link, nil
}

// Remove deletes a link and drops it locally.
func (s *LinkStore) Remove(ctx context.Context, linkID int64) error {
	if err := s.api.DeleteLink(ctx, linkID); err != nil {
		return err
	}

	s.mu.Lock()
	s.links = slices.DeleteFunc(s.links, func(l models.Link) bool { return l.ID == linkID })
	s.mu.Unlock()
	return nil
}

// UpdateStatus writes a status and patches the local copy.
func (s *LinkStore) UpdateStatus(ctx context.Context, linkID int64, status models.LinkStatus) error {
	link, err := s.api.UpdateStatus(ctx, linkID, status)
	if err != nil {
		return err
	}
	if link != nil {
		s.replace(*link)
		return nil
	}

	s.mu.Lock()
	if i := s.index(linkID); i >= 0 {
		s.links[i].Status = status
	}
	s.mu.Unlock()
	return nil
}

// SendWebhook sends a link to the transcript webhook from this process.
func (s *LinkStore) SendWebhook(ctx context.Context, linkID int64) (*SendResult, error) {
	return s.send(ctx, linkID, models.UseTranscript)
}

// SendWebhookForChat sends a link to the chat webhook from this process.
func (s *LinkStore) SendWebhookForChat(ctx context.Context, linkID int64) (*SendResult, error) {
	return s.send(ctx, linkID, models.UseChat)
}

// send calls the webhook, then records processed on HTTP 200 and failed otherwise.
//
// A transport error marks the link failed and is returned.
func (s *LinkStore) send(ctx context.Context, linkID int64, use models.WebhookUse) (*SendResult, error) {
	if s.sender == nil {
		return nil, fmt.Errorf("%w: no webhook sender configured", shared.ErrMissingConfig)
	}

	link, ok := s.Get(linkID)
	if !ok {
		return nil, fmt.Errorf("link %d: %w", linkID, shared.ErrNotFound)
	}

	resp, err := s.sender.Send(ctx, services.NewWebhookRequest(s.email, link, use))
	if err != nil {
		if uerr := s.UpdateStatus(ctx, linkID, models.StatusFailed); uerr != nil {
			return nil, errors.Join(err, uerr)
		}
		return nil, err
	}

	status := models.OutcomeStatus(resp.StatusCode, nil)
	if err := s.UpdateStatus(ctx, linkID, status); err != nil {
		return nil, err
	}
	return &SendResult{Success: resp.StatusCode == http.StatusOK, StatusCode: resp.StatusCode, Status: status}, nil
}

// Resend asks the server to deliver the link and records the queued status locally.
func (s *LinkStore) Resend(ctx context.Context, linkID int64, use models.WebhookUse) (*models.Link, error) {
	link, err := s.api.Resend(ctx, linkID, s.userID, use)
	if err != nil {
		return nil, err
	}
	s.replace(*link)
	return link, nil
}

// Filter returns the links matching filter: "all" (or "") or a status name.
func (s *LinkStore) Filter(filter string) []models.Link {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if filter == "" || filter == FilterAll {
		return slices.Clone(s.links)
	}

	out := []models.Link{}
	for _, l := range s.links {
		if l.Status.String() == filter {
			out = append(out, l)
		}
	}
	return out
}

// Counts returns the number of links per status plus "all".
func (s *LinkStore) Counts() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := map[string]int{FilterAll: len(s.links)}
	for _, status := range models.Statuses {
		counts[status.String()] = 0
	}
	for _, l := range s.links {
		counts[l.Status.String()]++
	}
	return counts
}

func (s *LinkStore) replace(link models.Link) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.index(link.ID); i >= 0 {
		s.links[i] = link
	}
}

// index must be called with mu held.
func (s *LinkStore) index(linkID int64) int {
	return slices.IndexFunc(s.links, func(l models.Link) bool { return l.ID == linkID })
}
