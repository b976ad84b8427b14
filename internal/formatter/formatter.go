// package formatter renders saved links as JSON, CSV, Markdown or plain text
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/desertthunder/ytlinks/internal/models"
)

const (
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatText     = "txt"
)

// Formats lists every supported export format.
var Formats = []string{FormatJSON, FormatCSV, FormatMarkdown, FormatText}

// Supported reports whether format can be exported.
func Supported(format string) bool {
	switch format {
	case FormatJSON, FormatCSV, FormatMarkdown, FormatText:
		return true
	}
	return false
}

// Extension returns the file extension, including the dot, for format.
func Extension(format string) string {
	switch format {
	case FormatCSV:
		return ".csv"
	case FormatMarkdown:
		return ".md"
	case FormatText:
		return ".txt"
	default:
		return ".json"
	}
}

// ExportToJSON encodes links as an indented JSON array.
func ExportToJSON(links []models.Link) ([]byte, error) {
	if links == nil {
		links = []models.Link{}
	}
	data, err := json.MarshalIndent(links, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal links: %w", err)
	}
	return append(data, '\n'), nil
}

// ExportToCSV converts links to CSV with columns: ID, Title, URL, Video ID, Status, Notes, Created
func ExportToCSV(links []models.Link) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "URL", "Video ID", "Status", "Notes", "Created"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, link := range links {
		record := []string{
			strconv.FormatInt(link.ID, 10),
			link.Title,
			link.YouTubeURL,
			link.VideoID(),
			link.Status.String(),
			link.Notes,
			link.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown renders links as a Markdown list with thumbnails.
func ExportToMarkdown(title string, links []models.Link) ([]byte, error) {
	var buf bytes.Buffer

	if title == "" {
		title = "YouTube Links"
	}
	fmt.Fprintf(&buf, "# %s\n\n", title)
	fmt.Fprintf(&buf, "**Links**: %d\n\n", len(links))

	for i, link := range links {
		fmt.Fprintf(&buf, "## %d. %s\n\n", i+1, link.Title)
		if id := link.VideoID(); id != "" {
			fmt.Fprintf(&buf, "[![%s](%s)](%s)\n\n", link.Title, models.ThumbnailURL(id, models.ThumbnailHigh), link.YouTubeURL)
		}
		fmt.Fprintf(&buf, "- **URL**: %s\n", link.YouTubeURL)
		fmt.Fprintf(&buf, "- **Status**: %s\n", link.Status)
		fmt.Fprintf(&buf, "- **Added**: %s\n", link.CreatedAt.UTC().Format("2006-01-02"))
		if link.Notes != "" {
			fmt.Fprintf(&buf, "\n> %s\n", link.Notes)
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// ExportToText converts links to plain text format
func ExportToText(title string, links []models.Link) ([]byte, error) {
	var buf bytes.Buffer

	if title != "" {
		fmt.Fprintf(&buf, "%s\n", title)
	}
	fmt.Fprintf(&buf, "Links: %d\n\n", len(links))

	for i, link := range links {
		fmt.Fprintf(&buf, "%d. [%s] %s - %s\n", i+1, link.Status, link.Title, link.YouTubeURL)
	}

	return buf.Bytes(), nil
}

// Export renders links in format.
func Export(links []models.Link, format, title string) ([]byte, error) {
	switch format {
	case FormatJSON, "":
		return ExportToJSON(links)
	case FormatCSV:
		return ExportToCSV(links)
	case FormatMarkdown:
		return ExportToMarkdown(title, links)
	case FormatText:
		return ExportToText(title, links)
	default:
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}
}

// WriteExport renders links in format and writes them to path.
//
// Defaults to links{ext} when path is empty.
func WriteExport(links []models.Link, format, title, path string) (string, error) {
	if path == "" {
		path = "links" + Extension(format)
	}

	data, err := Export(links, format, title)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s export: %w", format, err)
	}
	return path, nil
}

// WriteManifest writes v as indented JSON to path.
func WriteManifest(v any, path string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
