// package models defines the data model for the YouTube link service
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/ytlinks/internal/shared"
)

// User is an account identified only by its email address.
type User struct {
	ID        int64     `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Link is a saved YouTube video owned by a single user.
type Link struct {
	ID         int64      `db:"id" json:"id"`
	UserID     int64      `db:"user_id" json:"user_id"`
	Title      string     `db:"title" json:"title"`
	YouTubeURL string     `db:"youtube_url" json:"youtube_url"`
	Notes      string     `db:"notes" json:"notes"`
	Status     LinkStatus `db:"status" json:"status"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}

// VideoID extracts the YouTube video id from the link URL, or "" when none is found.
func (l Link) VideoID() string {
	return ExtractVideoID(l.YouTubeURL)
}

// LinkInput holds the user editable fields of a [Link].
type LinkInput struct {
	Title      string `json:"title"`
	YouTubeURL string `json:"youtube_url"`
	Notes      string `json:"notes"`
}

// Normalize trims surrounding whitespace from every field.
func (in LinkInput) Normalize() LinkInput {
	return LinkInput{
		Title:      strings.TrimSpace(in.Title),
		YouTubeURL: strings.TrimSpace(in.YouTubeURL),
		Notes:      strings.TrimSpace(in.Notes),
	}
}

// Validate reports the first missing required field.
//
// The URL is checked before the title.
func (in LinkInput) Validate() error {
	if strings.TrimSpace(in.YouTubeURL) == "" {
		return fmt.Errorf("%w: YouTube URL is required", shared.ErrInvalidInput)
	}
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: Title is required", shared.ErrInvalidInput)
	}
	return nil
}
