package ui

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/desertthunder/ytlinks/internal/auth"
	"github.com/desertthunder/ytlinks/internal/client"
	"github.com/desertthunder/ytlinks/internal/models"
	"github.com/desertthunder/ytlinks/internal/repositories"
	"github.com/desertthunder/ytlinks/internal/server"
	"github.com/desertthunder/ytlinks/internal/shared"
	tu "github.com/desertthunder/ytlinks/internal/testing"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	db, err := shared.NewDatabase(shared.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, shared.RunMigrations(context.Background(), db.DB, shared.DriverSQLite))

	srv := server.New(server.Options{
		Users:   repositories.NewUserRepository(db),
		Links:   repositories.NewLinkRepository(db),
		DB:      db,
		Issuer:  auth.NewTokenIssuer("ui-test", time.Hour),
		Revoker: auth.NewMemoryRevoker(),
		Logger:  log.New(io.Discard),
	})

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

// drain runs cmd and feeds every resulting [Msg] back into m until nothing is left.
//
// Toast expiry is skipped so assertions can read the toast.
func drain(m *Model, cmd tea.Cmd) {
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		switch msg := next().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case Msg:
			if msg.kind == MsgToastExpired {
				continue
			}
			_, c := m.Update(msg)
			queue = append(queue, c)
		}
	}
}

func press(m *Model, keys ...string) {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "ctrl+n":
			msg = tea.KeyMsg{Type: tea.KeyCtrlN}
		case "ctrl+r":
			msg = tea.KeyMsg{Type: tea.KeyCtrlR}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		_, cmd := m.Update(msg)
		drain(m, cmd)
	}
}

func toastText(m *Model) string {
	if m.toast == nil {
		return ""
	}
	return m.toast.message
}

type harness struct {
	model  *Model
	sender *tu.MockSender
	saved  *client.Session
	opened []string
}

func newHarness(t *testing.T, results ...tu.MockResult) *harness {
	t.Helper()
	ts := newTestServer(t)
	api := client.NewAPIClient(ts.URL, ts.Client())

	h := &harness{sender: tu.NewMockSender(results...)}
	h.model = NewModel(context.Background(), Options{
		Auth:        api,
		Links:       api,
		Sender:      h.sender,
		SaveSession: func(s *client.Session) error { h.saved = s; return nil },
		OpenURL:     func(u string) error { h.opened = append(h.opened, u); return nil },
	})
	h.model.toastTTL = time.Millisecond
	h.model.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return h
}

func (h *harness) signIn(t *testing.T, email string) {
	t.Helper()
	press(h.model, email, "ctrl+n")
	require.Equal(t, LinksView, h.model.view, toastText(h.model))
}

func (h *harness) addLink(t *testing.T, title, url string) {
	t.Helper()
	press(h.model, "a", title, "tab", url, "enter")
	require.Equal(t, "Link created successfully", toastText(h.model))
}

func TestLogin(t *testing.T) {
	t.Run("unknown email", func(t *testing.T) {
		h := newHarness(t)
		press(h.model, "nobody@example.com", "enter")

		assert.Equal(t, LoginView, h.model.view)
		assert.Equal(t, "User not found. Please register first.", toastText(h.model))
		assert.Nil(t, h.saved)
	})

	t.Run("empty email", func(t *testing.T) {
		h := newHarness(t)
		press(h.model, "enter")
		assert.Equal(t, "Email is required", toastText(h.model))
	})

	t.Run("register then login", func(t *testing.T) {
		h := newHarness(t)
		h.signIn(t, "Viewer@Example.com")

		assert.Equal(t, "Successfully registered", toastText(h.model))
		require.NotNil(t, h.saved)
		assert.Equal(t, "viewer@example.com", h.saved.Email)
		assert.NotEmpty(t, h.saved.Token)

		again := NewModel(context.Background(), h.model.opts)
		again.toastTTL = time.Millisecond
		press(again, "viewer@example.com", "enter")
		assert.Equal(t, LinksView, again.view)
		assert.Equal(t, "Successfully logged in", toastText(again))
	})

	t.Run("register twice", func(t *testing.T) {
		h := newHarness(t)
		h.signIn(t, "twice@example.com")

		other := NewModel(context.Background(), h.model.opts)
		press(other, "twice@example.com", "ctrl+n")
		assert.Equal(t, LoginView, other.view)
		assert.Equal(t, "User already exists", toastText(other))
	})
}

func TestDashboard(t *testing.T) {
	const url = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

	t.Run("create requires url and title", func(t *testing.T) {
		h := newHarness(t)
		h.signIn(t, "form@example.com")

		press(h.model, "a", "enter")
		assert.Equal(t, FormView, h.model.view)
		assert.Equal(t, "YouTube URL is required", toastText(h.model))

		press(h.model, "tab", url, "enter")
		assert.Equal(t, "Title is required", toastText(h.model))

		press(h.model, "esc")
		assert.Equal(t, LinksView, h.model.view)
		assert.Empty(t, h.model.store.Links())
	})

	t.Run("create view edit", func(t *testing.T) {
		h := newHarness(t)
		h.signIn(t, "crud@example.com")
		h.addLink(t, "Never Gonna", url)

		links := h.model.store.Links()
		require.Len(t, links, 1)
		assert.Equal(t, models.StatusPending, links[0].Status)
		assert.Len(t, h.model.links.Items(), 1)

		press(h.model, "enter")
		require.Equal(t, DetailView, h.model.view)
		view := h.model.View()
		assert.Contains(t, view, "Video ID:  dQw4w9WgXcQ")
		assert.Contains(t, view, "https://img.youtube.com/vi/dQw4w9WgXcQ/hqdefault.jpg")

		press(h.model, "e", " (live)", "enter")
		assert.Equal(t, "Link updated successfully", toastText(h.model))
		updated, ok := h.model.store.Get(links[0].ID)
		require.True(t, ok)
		assert.Equal(t, "Never Gonna (live)", updated.Title)

		press(h.model, "esc", "o")
		assert.Equal(t, []string{url}, h.opened)
	})

	t.Run("send and filter", func(t *testing.T) {
		h := newHarness(t,
			tu.MockResult{StatusCode: http.StatusOK},
			tu.MockResult{StatusCode: http.StatusInternalServerError},
		)
		h.signIn(t, "send@example.com")
		h.addLink(t, "First", url)
		h.addLink(t, "Second", "https://youtu.be/abc123")

		press(h.model, "s")
		assert.Equal(t, "Link sent for transcript", toastText(h.model))

		press(h.model, "j", "c")
		assert.Equal(t, "Webhook answered 500, link marked failed", toastText(h.model))

		reqs := h.sender.Requests()
		require.Len(t, reqs, 2)
		assert.Equal(t, models.UseTranscript, reqs[0].Use)
		assert.Equal(t, models.UseChat, reqs[1].Use)

		counts := h.model.store.Counts()
		assert.Equal(t, 2, counts[client.FilterAll])
		assert.Equal(t, 1, counts["processed"])
		assert.Equal(t, 1, counts["failed"])

		press(h.model, "tab")
		assert.Equal(t, "processed", h.model.filter)
		require.Len(t, h.model.links.Items(), 1)
		assert.Equal(t, "Second", h.model.links.Items()[0].(linkItem).link.Title)

		press(h.model, "tab")
		assert.Equal(t, "failed", h.model.filter)
		require.Len(t, h.model.links.Items(), 1)
		assert.Equal(t, "First", h.model.links.Items()[0].(linkItem).link.Title)

		press(h.model, "tab")
		assert.Equal(t, client.FilterAll, h.model.filter)
		assert.Len(t, h.model.links.Items(), 2)
	})

	t.Run("delete asks first", func(t *testing.T) {
		h := newHarness(t)
		h.signIn(t, "rm@example.com")
		h.addLink(t, "Doomed", url)

		press(h.model, "d")
		require.Equal(t, ConfirmView, h.model.view)
		assert.Contains(t, h.model.View(), "Delete 'Doomed'?")

		press(h.model, "n")
		assert.Equal(t, LinksView, h.model.view)
		assert.Len(t, h.model.store.Links(), 1)

		press(h.model, "d", "y")
		assert.Equal(t, LinksView, h.model.view)
		assert.Equal(t, "Link deleted successfully", toastText(h.model))
		assert.Empty(t, h.model.store.Links())
		assert.Contains(t, h.model.View(), "No links here yet")
	})

	t.Run("resend without dispatcher", func(t *testing.T) {
		h := newHarness(t)
		h.signIn(t, "resend@example.com")
		h.addLink(t, "Queued", url)

		press(h.model, "r")
		assert.Contains(t, toastText(h.model), "Failed to queue link")
	})

	t.Run("no local sender", func(t *testing.T) {
		h := newHarness(t)
		h.model.opts.Sender = nil
		h.signIn(t, "nosender@example.com")
		h.addLink(t, "Local", url)

		press(h.model, "s")
		assert.Contains(t, toastText(h.model), "No webhook configured")
		assert.Empty(t, h.sender.Requests())
	})

	t.Run("existing session skips login", func(t *testing.T) {
		h := newHarness(t)
		h.signIn(t, "resume@example.com")
		h.addLink(t, "Kept", url)

		opts := h.model.opts
		opts.Session = h.saved
		resumed := NewModel(context.Background(), opts)
		drain(resumed, resumed.Init())

		assert.Equal(t, LinksView, resumed.view)
		assert.Len(t, resumed.store.Links(), 1)
	})
}

func TestToast(t *testing.T) {
	m := NewModel(context.Background(), Options{})
	m.showSuccess("first")
	m.showError("second")

	m.Update(toastExpiredMsg(1))
	require.NotNil(t, m.toast)
	assert.Equal(t, "second", m.toast.message)
	assert.Contains(t, m.View(), "second")

	m.Update(toastExpiredMsg(2))
	assert.Nil(t, m.toast)
}

func TestNextFilter(t *testing.T) {
	assert.Equal(t, "processed", nextFilter(client.FilterAll))
	assert.Equal(t, "failed", nextFilter("processed"))
	assert.Equal(t, client.FilterAll, nextFilter("failed"))
	assert.Equal(t, client.FilterAll, nextFilter("bogus"))
}
