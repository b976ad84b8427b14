package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up         key.Binding
	down       key.Binding
	enter      key.Binding
	back       key.Binding
	filter     key.Binding
	add        key.Binding
	edit       key.Binding
	remove     key.Binding
	transcript key.Binding
	chat       key.Binding
	resend     key.Binding
	open       key.Binding
	refresh    key.Binding
	next       key.Binding
	submit     key.Binding
	register   key.Binding
	yes        key.Binding
	no         key.Binding
	quit       key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "view")),
		back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		filter:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "filter")),
		add:        key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		edit:       key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		remove:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		transcript: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "transcript")),
		chat:       key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "chat")),
		resend:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "resend")),
		open:       key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open")),
		refresh:    key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "refresh")),
		next:       key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "next field")),
		submit:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		register:   key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "register")),
		yes:        key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yes")),
		no:         key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "no")),
		quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.add, k.enter, k.filter, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter, k.filter},
		{k.add, k.edit, k.remove, k.open},
		{k.transcript, k.chat, k.resend, k.refresh},
		{k.back, k.quit},
	}
}
