package models

import "testing"

func TestExtractVideoID(t *testing.T) {
	tc := []struct {
		name string
		url  string
		want string
	}{
		{name: "watch", url: "https://www.youtube.com/watch?v=dQw4w9WgXcQ", want: "dQw4w9WgXcQ"},
		{name: "watch with extra params", url: "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s", want: "dQw4w9WgXcQ"},
		{name: "watch with leading params", url: "https://www.youtube.com/watch?feature=share&v=dQw4w9WgXcQ", want: "dQw4w9WgXcQ"},
		{name: "short", url: "https://youtu.be/dQw4w9WgXcQ", want: "dQw4w9WgXcQ"},
		{name: "short with query", url: "https://youtu.be/dQw4w9WgXcQ?si=abc", want: "dQw4w9WgXcQ"},
		{name: "embed", url: "https://www.youtube.com/embed/dQw4w9WgXcQ", want: "dQw4w9WgXcQ"},
		{name: "shorts", url: "https://youtube.com/shorts/dQw4w9WgXcQ", want: "dQw4w9WgXcQ"},
		{name: "not youtube", url: "https://vimeo.com/12345", want: ""},
		{name: "empty", url: "", want: ""},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractVideoID(tt.url); got != tt.want {
				t.Errorf("ExtractVideoID(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestThumbnailURL(t *testing.T) {
	if got := ThumbnailURL("abc", ThumbnailMax); got != "https://img.youtube.com/vi/abc/maxresdefault.jpg" {
		t.Errorf("unexpected thumbnail url: %s", got)
	}
	if got := ThumbnailURL("abc", ""); got != "https://img.youtube.com/vi/abc/hqdefault.jpg" {
		t.Errorf("expected hq default, got %s", got)
	}
	if got := ThumbnailURL("", ThumbnailHigh); got != "" {
		t.Errorf("expected empty url for missing id, got %s", got)
	}
	if got := WatchURL("abc"); got != "https://www.youtube.com/watch?v=abc" {
		t.Errorf("unexpected watch url: %s", got)
	}
}

func TestLinkVideoID(t *testing.T) {
	link := Link{YouTubeURL: "https://youtu.be/xyz"}
	if link.VideoID() != "xyz" {
		t.Errorf("expected xyz, got %s", link.VideoID())
	}
}
