package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/ytlinks/internal/client"
	"github.com/desertthunder/ytlinks/internal/models"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgSignedIn MsgKind = iota
	MsgLinksFetched
	MsgLinkSaved
	MsgLinkDeleted
	MsgWebhookSent
	MsgResent
	MsgOpened
	MsgToastExpired
)

type signedIn struct {
	result   *client.AuthResult
	register bool
	err      error
}

type linkSaved struct {
	link    *models.Link
	created bool
	err     error
}

type linkDeleted struct {
	linkID int64
	err    error
}

type webhookSent struct {
	result *client.SendResult
	use    models.WebhookUse
	err    error
}

type resent struct {
	link *models.Link
	err  error
}

// signedInMsg is the constructor for [MsgSignedIn]
func signedInMsg(result *client.AuthResult, register bool, err error) Msg {
	return Msg{kind: MsgSignedIn, data: signedIn{result, register, err}}
}

// linksFetchedMsg is the constructor for [MsgLinksFetched]
func linksFetchedMsg(err error) Msg {
	return Msg{kind: MsgLinksFetched, data: err}
}

// linkSavedMsg is the constructor for [MsgLinkSaved]
func linkSavedMsg(link *models.Link, created bool, err error) Msg {
	return Msg{kind: MsgLinkSaved, data: linkSaved{link, created, err}}
}

// linkDeletedMsg is the constructor for [MsgLinkDeleted]
func linkDeletedMsg(linkID int64, err error) Msg {
	return Msg{kind: MsgLinkDeleted, data: linkDeleted{linkID, err}}
}

// webhookSentMsg is the constructor for [MsgWebhookSent]
func webhookSentMsg(result *client.SendResult, use models.WebhookUse, err error) Msg {
	return Msg{kind: MsgWebhookSent, data: webhookSent{result, use, err}}
}

// resentMsg is the constructor for [MsgResent]
func resentMsg(link *models.Link, err error) Msg {
	return Msg{kind: MsgResent, data: resent{link, err}}
}

// openedMsg is the constructor for [MsgOpened]
func openedMsg(err error) Msg {
	return Msg{kind: MsgOpened, data: err}
}

// toastExpiredMsg is the constructor for [MsgToastExpired]
func toastExpiredMsg(id int) Msg {
	return Msg{kind: MsgToastExpired, data: id}
}
