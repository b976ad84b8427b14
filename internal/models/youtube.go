package models

import (
	"fmt"
	"regexp"
)

var videoIDPattern = regexp.MustCompile(`(?:youtube\.com/watch\?(?:[^#\s]*&)?v=|youtu\.be/|youtube\.com/embed/|youtube\.com/shorts/)([^&?#/\s]+)`)

// ThumbnailQuality names the size variants served by img.youtube.com.
type ThumbnailQuality string

const (
	ThumbnailDefault ThumbnailQuality = "default"
	ThumbnailMedium  ThumbnailQuality = "mqdefault"
	ThumbnailHigh    ThumbnailQuality = "hqdefault"
	ThumbnailSD      ThumbnailQuality = "sddefault"
	ThumbnailMax     ThumbnailQuality = "maxresdefault"
)

// ExtractVideoID returns the video id found in a watch, short, embed or shorts URL.
func ExtractVideoID(rawURL string) string {
	m := videoIDPattern.FindStringSubmatch(rawURL)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

// ThumbnailURL builds the thumbnail image URL for a video id.
func ThumbnailURL(videoID string, quality ThumbnailQuality) string {
	if videoID == "" {
		return ""
	}
	if quality == "" {
		quality = ThumbnailHigh
	}
	return fmt.Sprintf("https://img.youtube.com/vi/%s/%s.jpg", videoID, quality)
}

// WatchURL builds the canonical watch URL for a video id.
func WatchURL(videoID string) string {
	if videoID == "" {
		return ""
	}
	return "https://www.youtube.com/watch?v=" + videoID
}
