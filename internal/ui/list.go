package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/ytlinks/internal/models"
)

var _ list.DefaultItem = linkItem{}

// linkItem wraps [models.Link] to implement [list.Item].
type linkItem struct {
	link models.Link
}

func (i linkItem) FilterValue() string { return i.link.Title }
func (i linkItem) Title() string       { return i.link.Title }
func (i linkItem) Description() string {
	desc := fmt.Sprintf("%s • %s", styles.badge(i.link.Status), i.link.YouTubeURL)
	if !i.link.CreatedAt.IsZero() {
		desc = fmt.Sprintf("%s • %s", desc, i.link.CreatedAt.Local().Format("Jan 2, 2006"))
	}
	return desc
}

func linkItems(links []models.Link) []list.Item {
	items := make([]list.Item, len(links))
	for i, l := range links {
		items[i] = linkItem{link: l}
	}
	return items
}
