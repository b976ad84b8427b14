package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/desertthunder/ytlinks/internal/models"
)

var styles = NewPalette("#DC2626", "#16A34A", "#DC2626", "#CA8A04", "#626262")

// Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title  lipgloss.Style
	ok     lipgloss.Style
	err    lipgloss.Style
	warn   lipgloss.Style
	help   lipgloss.Style
	card   lipgloss.Style
	active lipgloss.Style
	status map[models.LinkStatus]lipgloss.Style
}

func NewPalette(t, s, e, w, h string) *Palette {
	card := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color(h)).Padding(0, 2)
	return &Palette{
		title:  NewBold(t).MarginBottom(1),
		ok:     NewBold(s),
		err:    NewBold(e),
		warn:   NewStyle(w),
		help:   NewEm(h),
		card:   card,
		active: card.BorderForeground(lipgloss.Color(t)),
		status: map[models.LinkStatus]lipgloss.Style{
			models.StatusPending:   NewBold(w),
			models.StatusSent:      NewBold("#2563EB"),
			models.StatusProcessed: NewBold(s),
			models.StatusFailed:    NewBold(e),
		},
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}

// statusLabel is the display name of a status, e.g. "Processed".
func statusLabel(s models.LinkStatus) string {
	switch s {
	case models.StatusPending:
		return "Pending"
	case models.StatusSent:
		return "Sent"
	case models.StatusProcessed:
		return "Processed"
	case models.StatusFailed:
		return "Failed"
	default:
		return string(s)
	}
}

// badge renders a status label in its color.
func (p *Palette) badge(s models.LinkStatus) string {
	st, ok := p.status[s]
	if !ok {
		return statusLabel(s)
	}
	return st.Render(statusLabel(s))
}
