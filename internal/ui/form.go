package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/ytlinks/internal/models"
)

const (
	fieldTitle = iota
	fieldURL
	fieldNotes
)

// LinkForm edits the user editable fields of a link.
//
// A zero linkID means the form creates a new link.
type LinkForm struct {
	linkID int64
	inputs []textinput.Model
	focus  int
}

func newInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Width = 60
	ti.Cursor.SetMode(cursor.CursorStatic)
	return ti
}

// NewLinkForm returns an empty form focused on the title.
func NewLinkForm() LinkForm {
	f := LinkForm{
		inputs: []textinput.Model{
			newInput("Video title", 255),
			newInput("https://www.youtube.com/watch?v=...", 2048),
			newInput("Notes (optional)", 1000),
		},
	}
	f.inputs[fieldTitle].Prompt = "Title       "
	f.inputs[fieldURL].Prompt = "YouTube URL "
	f.inputs[fieldNotes].Prompt = "Notes       "
	f.setFocus(fieldTitle)
	return f
}

// EditLinkForm returns a form prefilled from link.
func EditLinkForm(link models.Link) LinkForm {
	f := NewLinkForm()
	f.linkID = link.ID
	f.inputs[fieldTitle].SetValue(link.Title)
	f.inputs[fieldURL].SetValue(link.YouTubeURL)
	f.inputs[fieldNotes].SetValue(link.Notes)
	return f
}

func (f LinkForm) Editing() bool { return f.linkID != 0 }

// Input returns the normalized field values.
func (f LinkForm) Input() models.LinkInput {
	return models.LinkInput{
		Title:      f.inputs[fieldTitle].Value(),
		YouTubeURL: f.inputs[fieldURL].Value(),
		Notes:      f.inputs[fieldNotes].Value(),
	}.Normalize()
}

func (f *LinkForm) setFocus(i int) {
	n := len(f.inputs)
	f.focus = ((i % n) + n) % n
	for j := range f.inputs {
		if j == f.focus {
			f.inputs[j].Focus()
		} else {
			f.inputs[j].Blur()
		}
	}
}

// Next moves focus forward, or backward when reverse is set.
func (f *LinkForm) Next(reverse bool) {
	if reverse {
		f.setFocus(f.focus - 1)
		return
	}
	f.setFocus(f.focus + 1)
}

func (f LinkForm) Update(msg tea.Msg) (LinkForm, tea.Cmd) {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

func (f LinkForm) View() string {
	var b strings.Builder
	for _, in := range f.inputs {
		b.WriteString(in.View())
		b.WriteString("\n")
	}
	return b.String()
}
