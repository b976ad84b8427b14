package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/desertthunder/ytlinks/internal/client"
	"github.com/desertthunder/ytlinks/internal/models"
	"github.com/desertthunder/ytlinks/internal/services"
	"github.com/desertthunder/ytlinks/internal/shared"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	LoginView ViewState = iota
	LinksView
	DetailView
	FormView
	ConfirmView
)

const defaultToastTTL = 3 * time.Second

// filters are the dashboard filter cards in display order.
var filters = []string{client.FilterAll, models.StatusProcessed.String(), models.StatusFailed.String()}

var filterTitles = map[string]string{
	client.FilterAll:                 "All Links",
	models.StatusProcessed.String(): "Processed",
	models.StatusFailed.String():    "Failed",
}

// Authenticator signs a user in by email. Implemented by [client.APIClient].
type Authenticator interface {
	Register(ctx context.Context, email string) (*client.AuthResult, error)
	Login(ctx context.Context, email string) (*client.AuthResult, error)
	SetToken(token string)
}

// Options carries the TUI dependencies.
type Options struct {
	Auth   Authenticator
	Links  client.LinkAPI
	Sender services.Sender // nil disables the s/c keys
	// Session skips the login view when set.
	Session *client.Session
	// SaveSession persists a new session after login. Optional.
	SaveSession func(*client.Session) error
	// OpenURL defaults to [shared.OpenBrowser].
	OpenURL func(string) error
}

type toastKind int

const (
	toastSuccess toastKind = iota
	toastError
)

type toast struct {
	id      int
	kind    toastKind
	message string
}

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	opts     Options
	view     ViewState
	session  *client.Session
	store    *client.LinkStore
	email    textinput.Model
	links    list.Model
	filter   string
	form     LinkForm
	selected models.Link
	back     ViewState
	toast    *toast
	toastSeq int
	toastTTL time.Duration
	width    int
	height   int
	help     help.Model
	keys     keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, opts Options) *Model {
	if opts.OpenURL == nil {
		opts.OpenURL = shared.OpenBrowser
	}

	email := newInput("you@example.com", 254)
	email.Prompt = "Email "
	email.Focus()

	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = "YouTube Links"
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.SetStatusBarItemName("link", "links")
	l.KeyMap.Quit.SetEnabled(false)

	return &Model{
		ctx:      ctx,
		opts:     opts,
		view:     LoginView,
		email:    email,
		links:    l,
		filter:   client.FilterAll,
		toastTTL: defaultToastTTL,
		help:     help.New(),
		keys:     newKeyMap(),
	}
}

// Init fetches links when a session is already present.
func (m *Model) Init() tea.Cmd {
	if m.opts.Session != nil {
		return m.startSession(m.opts.Session)
	}
	return nil
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.links.SetSize(msg.Width-4, max(msg.Height-14, 4))
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.view {
		case LoginView:
			return m.handleLoginKeys(msg)
		case LinksView:
			return m.handleLinksKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		case FormView:
			return m.handleFormKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	if m.view == LinksView {
		var cmd tea.Cmd
		m.links, cmd = m.links.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgSignedIn:
		data := msg.data.(signedIn)
		if data.err != nil {
			return m, m.showError(signInMessage(data.err, data.register))
		}
		m.opts.Auth.SetToken(data.result.Token)
		s := data.result.Session()
		if m.opts.SaveSession != nil {
			if err := m.opts.SaveSession(s); err != nil {
				return m, tea.Batch(m.startSession(s), m.showError("Session not saved: "+err.Error()))
			}
		}
		text := "Successfully logged in"
		if data.register {
			text = "Successfully registered"
		}
		return m, tea.Batch(m.startSession(s), m.showSuccess(text))

	case MsgLinksFetched:
		if err, _ := msg.data.(error); err != nil {
			return m, m.showError("Failed to fetch links: " + clientMessage(err))
		}
		return m, m.refreshList()

	case MsgLinkSaved:
		data := msg.data.(linkSaved)
		if data.err != nil {
			return m, m.showError(clientMessage(data.err))
		}
		m.view = LinksView
		text := "Link updated successfully"
		if data.created {
			text = "Link created successfully"
			m.links.Select(0)
		}
		return m, tea.Batch(m.refreshList(), m.showSuccess(text))

	case MsgLinkDeleted:
		data := msg.data.(linkDeleted)
		if data.err != nil {
			m.view = m.back
			return m, m.showError("Failed to delete link: " + clientMessage(data.err))
		}
		m.view = LinksView
		return m, tea.Batch(m.refreshList(), m.showSuccess("Link deleted successfully"))

	case MsgWebhookSent:
		data := msg.data.(webhookSent)
		m.syncSelected()
		refresh := m.refreshList()
		switch {
		case data.err != nil:
			return m, tea.Batch(refresh, m.showError("Failed to send webhook: "+clientMessage(data.err)))
		case !data.result.Success:
			return m, tea.Batch(refresh, m.showError(fmt.Sprintf("Webhook answered %d, link marked failed", data.result.StatusCode)))
		default:
			return m, tea.Batch(refresh, m.showSuccess(fmt.Sprintf("Link sent for %s", data.use)))
		}

	case MsgResent:
		data := msg.data.(resent)
		if data.err != nil {
			return m, m.showError("Failed to queue link: " + clientMessage(data.err))
		}
		m.syncSelected()
		return m, tea.Batch(m.refreshList(), m.showSuccess("Link queued for delivery"))

	case MsgOpened:
		if err, _ := msg.data.(error); err != nil {
			return m, m.showError(err.Error())
		}
		return m, nil

	case MsgToastExpired:
		if m.toast != nil && m.toast.id == msg.data.(int) {
			m.toast = nil
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) handleLoginKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.submit):
		return m, m.signIn(false)
	case key.Matches(msg, m.keys.register):
		return m, m.signIn(true)
	case msg.Type == tea.KeyEsc:
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.email, cmd = m.email.Update(msg)
	return m, cmd
}

func (m *Model) handleLinksKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.filter):
		m.filter = nextFilter(m.filter)
		m.links.Select(0)
		return m, m.refreshList()
	case key.Matches(msg, m.keys.add):
		m.form = NewLinkForm()
		m.back = LinksView
		m.view = FormView
		return m, nil
	case key.Matches(msg, m.keys.refresh):
		return m, m.fetchLinks()
	}

	if link, ok := m.current(); ok {
		if key.Matches(msg, m.keys.enter) {
			m.selected = link
			m.view = DetailView
			return m, nil
		}
		if cmd, handled := m.handleLinkAction(msg, link, LinksView); handled {
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.links, cmd = m.links.Update(msg)
	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = LinksView
		return m, nil
	}
	cmd, _ := m.handleLinkAction(msg, m.selected, DetailView)
	return m, cmd
}

// handleLinkAction runs the per-link keys shared by the list and detail views.
func (m *Model) handleLinkAction(msg tea.KeyMsg, link models.Link, from ViewState) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.edit):
		m.form = EditLinkForm(link)
		m.selected = link
		m.back = from
		m.view = FormView
		return nil, true
	case key.Matches(msg, m.keys.remove):
		m.selected = link
		m.back = from
		m.view = ConfirmView
		return nil, true
	case key.Matches(msg, m.keys.transcript):
		return m.sendWebhook(link.ID, models.UseTranscript), true
	case key.Matches(msg, m.keys.chat):
		return m.sendWebhook(link.ID, models.UseChat), true
	case key.Matches(msg, m.keys.resend):
		return m.resend(link.ID), true
	case key.Matches(msg, m.keys.open):
		return m.open(link.YouTubeURL), true
	}
	return nil, false
}

func (m *Model) handleFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		m.view = m.back
		return m, nil
	case key.Matches(msg, m.keys.next):
		m.form.Next(msg.Type == tea.KeyShiftTab)
		return m, nil
	case key.Matches(msg, m.keys.submit):
		in := m.form.Input()
		if err := in.Validate(); err != nil {
			return m, m.showError(clientMessage(err))
		}
		return m, m.saveLink(m.form.linkID, in)
	}

	var cmd tea.Cmd
	m.form, cmd = m.form.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.yes):
		return m, m.deleteLink(m.selected.ID)
	case key.Matches(msg, m.keys.no):
		m.view = m.back
		return m, nil
	}
	return m, nil
}

// current returns the link under the list cursor.
func (m *Model) current() (models.Link, bool) {
	item, ok := m.links.SelectedItem().(linkItem)
	if !ok {
		return models.Link{}, false
	}
	return item.link, true
}

func (m *Model) syncSelected() {
	if m.store == nil || m.selected.ID == 0 {
		return
	}
	if link, ok := m.store.Get(m.selected.ID); ok {
		m.selected = link
	}
}

func (m *Model) startSession(s *client.Session) tea.Cmd {
	m.session = s
	m.store = client.NewLinkStore(m.opts.Links, m.opts.Sender, s)
	m.view = LinksView
	m.email.Blur()
	return m.fetchLinks()
}

func (m *Model) refreshList() tea.Cmd {
	if m.store == nil {
		return nil
	}
	idx := m.links.Index()
	cmd := m.links.SetItems(linkItems(m.store.Filter(m.filter)))
	if n := len(m.links.Items()); idx >= n && n > 0 {
		m.links.Select(n - 1)
	}
	return cmd
}

func (m *Model) showToast(kind toastKind, text string) tea.Cmd {
	m.toastSeq++
	m.toast = &toast{id: m.toastSeq, kind: kind, message: text}
	id := m.toastSeq
	return tea.Tick(m.toastTTL, func(time.Time) tea.Msg { return toastExpiredMsg(id) })
}

func (m *Model) showSuccess(text string) tea.Cmd { return m.showToast(toastSuccess, text) }
func (m *Model) showError(text string) tea.Cmd   { return m.showToast(toastError, text) }

func (m *Model) signIn(register bool) tea.Cmd {
	email := shared.NormalizeEmail(m.email.Value())
	if email == "" {
		return m.showError("Email is required")
	}
	return func() tea.Msg {
		var (
			res *client.AuthResult
			err error
		)
		if register {
			res, err = m.opts.Auth.Register(m.ctx, email)
		} else {
			res, err = m.opts.Auth.Login(m.ctx, email)
		}
		return signedInMsg(res, register, err)
	}
}

func (m *Model) fetchLinks() tea.Cmd {
	store := m.store
	return func() tea.Msg {
		return linksFetchedMsg(store.Fetch(m.ctx))
	}
}

func (m *Model) saveLink(linkID int64, in models.LinkInput) tea.Cmd {
	store := m.store
	return func() tea.Msg {
		if linkID == 0 {
			link, err := store.Add(m.ctx, in)
			return linkSavedMsg(link, true, err)
		}
		link, err := store.Update(m.ctx, linkID, in)
		return linkSavedMsg(link, false, err)
	}
}

func (m *Model) deleteLink(linkID int64) tea.Cmd {
	store := m.store
	return func() tea.Msg {
		return linkDeletedMsg(linkID, store.Remove(m.ctx, linkID))
	}
}

func (m *Model) sendWebhook(linkID int64, use models.WebhookUse) tea.Cmd {
	if m.opts.Sender == nil {
		return m.showError("No webhook configured, use r to send through the server")
	}
	store := m.store
	return func() tea.Msg {
		var (
			res *client.SendResult
			err error
		)
		if use == models.UseChat {
			res, err = store.SendWebhookForChat(m.ctx, linkID)
		} else {
			res, err = store.SendWebhook(m.ctx, linkID)
		}
		return webhookSentMsg(res, use, err)
	}
}

func (m *Model) resend(linkID int64) tea.Cmd {
	store := m.store
	return func() tea.Msg {
		link, err := store.Resend(m.ctx, linkID, models.UseTranscript)
		return resentMsg(link, err)
	}
}

func (m *Model) open(rawURL string) tea.Cmd {
	return func() tea.Msg {
		return openedMsg(m.opts.OpenURL(rawURL))
	}
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	var body string
	switch m.view {
	case LoginView:
		body = m.renderLogin()
	case LinksView:
		body = m.renderLinks()
	case DetailView:
		body = m.renderDetail()
	case FormView:
		body = m.renderForm()
	case ConfirmView:
		body = m.renderConfirm()
	}
	if t := m.renderToast(); t != "" {
		body = fmt.Sprintf("%s\n\n%s", body, t)
	}
	return body
}

func (m *Model) renderLogin() string {
	title := styles.title.Render("YouTube Link Manager")
	sub := styles.help.Render("Enter your email to manage your YouTube links")
	helpView := m.help.ShortHelpView([]key.Binding{
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "login")),
		m.keys.register,
		key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "quit")),
	})
	return fmt.Sprintf("%s\n%s\n\n%s\n\n%s", title, sub, m.email.View(), helpView)
}

func (m *Model) renderCards() string {
	counts := m.store.Counts()
	cards := make([]string, 0, len(filters))
	for _, f := range filters {
		st := styles.card
		if f == m.filter {
			st = styles.active
		}
		cards = append(cards, st.Render(fmt.Sprintf("%s\n%d links", filterTitles[f], counts[f])))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func (m *Model) renderLinks() string {
	if m.store == nil {
		return styles.help.Render("Loading...")
	}

	header := styles.help.Render("Signed in as " + m.session.Email)
	body := m.links.View()
	if len(m.links.Items()) == 0 {
		body = styles.help.Render("No links here yet. Press a to add a YouTube link.")
	}

	helpView := m.help.ShortHelpView([]key.Binding{
		m.keys.add, m.keys.enter, m.keys.edit, m.keys.remove, m.keys.transcript,
		m.keys.chat, m.keys.resend, m.keys.open, m.keys.filter, m.keys.quit,
	})
	return fmt.Sprintf("%s\n%s\n\n%s\n\n%s", header, m.renderCards(), body, helpView)
}

func (m *Model) renderDetail() string {
	l := m.selected
	var b strings.Builder
	b.WriteString(styles.title.Render(l.Title))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Status:    %s\n", styles.badge(l.Status))
	fmt.Fprintf(&b, "URL:       %s\n", l.YouTubeURL)
	if id := l.VideoID(); id != "" {
		fmt.Fprintf(&b, "Video ID:  %s\n", id)
		fmt.Fprintf(&b, "Thumbnail: %s\n", models.ThumbnailURL(id, models.ThumbnailHigh))
	}
	if !l.CreatedAt.IsZero() {
		fmt.Fprintf(&b, "Added:     %s\n", l.CreatedAt.Local().Format("January 2, 2006 15:04"))
	}
	if l.Notes != "" {
		fmt.Fprintf(&b, "\n%s\n", styles.help.Render(l.Notes))
	}

	helpView := m.help.ShortHelpView([]key.Binding{
		m.keys.edit, m.keys.remove, m.keys.transcript, m.keys.chat,
		m.keys.resend, m.keys.open, m.keys.back, m.keys.quit,
	})
	return fmt.Sprintf("%s\n%s", b.String(), helpView)
}

func (m *Model) renderForm() string {
	heading := "Add YouTube Link"
	if m.form.Editing() {
		heading = "Edit YouTube Link"
	}
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.next, m.keys.submit, m.keys.back})
	return fmt.Sprintf("%s\n%s\n%s", styles.title.Render(heading), m.form.View(), helpView)
}

func (m *Model) renderConfirm() string {
	title := styles.warn.Render(fmt.Sprintf("Delete '%s'?", m.selected.Title))
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no})
	return fmt.Sprintf("%s\n\nThis cannot be undone.\n\n%s", title, helpView)
}

func (m *Model) renderToast() string {
	if m.toast == nil {
		return ""
	}
	if m.toast.kind == toastError {
		return styles.err.Render("✗ " + m.toast.message)
	}
	return styles.ok.Render("✓ " + m.toast.message)
}

func nextFilter(current string) string {
	for i, f := range filters {
		if f == current {
			return filters[(i+1)%len(filters)]
		}
	}
	return client.FilterAll
}

// clientMessage prefers the server's message over the wrapped error chain.
func clientMessage(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	msg := err.Error()
	if _, rest, ok := strings.Cut(msg, ": "); ok && errors.Is(err, shared.ErrInvalidInput) {
		return rest
	}
	return msg
}

func signInMessage(err error, register bool) string {
	switch {
	case register && errors.Is(err, shared.ErrAlreadyExists):
		return "User already exists"
	case !register && errors.Is(err, shared.ErrNotFound):
		return "User not found. Please register first."
	default:
		return clientMessage(err)
	}
}
