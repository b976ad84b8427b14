package tasks

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/desertthunder/ytlinks/internal/formatter"
	"github.com/desertthunder/ytlinks/internal/models"
	tu "github.com/desertthunder/ytlinks/internal/testing"
)

func exportLinks() []models.Link {
	created := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	return []models.Link{
		{ID: 4, Title: "Four", YouTubeURL: "https://youtu.be/aaaaaaaaaaa", Status: models.StatusFailed, CreatedAt: created},
		{ID: 3, Title: "Three", YouTubeURL: "https://youtu.be/bbbbbbbbbbb", Status: models.StatusProcessed, CreatedAt: created},
		{ID: 2, Title: "Two", YouTubeURL: "https://youtu.be/ccccccccccc", Status: models.StatusPending, CreatedAt: created},
		{ID: 1, Title: "One", YouTubeURL: "https://youtu.be/ddddddddddd", Status: models.StatusProcessed, CreatedAt: created},
	}
}

func TestExportByStatus(t *testing.T) {
	t.Run("writes one file per status", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "out")
		progress := make(chan ProgressUpdate, 8)

		res, err := ExportByStatus(context.Background(), progress, exportLinks(), ExportOpts{
			Format:     formatter.FormatCSV,
			OutputDir:  dir,
			NumWorkers: 2,
		})
		require.NoError(t, err)

		assert.Equal(t, 4, res.TotalLinks)
		assert.Zero(t, res.Failed())
		require.Len(t, res.Groups, 3)
		assert.Equal(t, "pending", res.Groups[0].Group)
		assert.Equal(t, "processed", res.Groups[1].Group)
		assert.Equal(t, 2, res.Groups[1].Count)
		assert.Equal(t, "failed", res.Groups[2].Group)

		tu.AssertFileExists(t, filepath.Join(dir, "processed.csv"))
		tu.AssertFileExists(t, filepath.Join(dir, "pending.csv"))
		_, err = os.Stat(filepath.Join(dir, "sent.csv"))
		assert.True(t, os.IsNotExist(err), "empty groups are skipped")

		var manifest map[string]any
		require.NoError(t, json.Unmarshal([]byte(tu.MustReadFile(t, res.ManifestPath)), &manifest))
		assert.EqualValues(t, 4, manifest["total_links"])

		update := <-progress
		assert.Equal(t, ExportGroup, update.Phase)
		assert.Equal(t, 3, update.Total)
	})

	t.Run("unsupported format", func(t *testing.T) {
		_, err := ExportByStatus(context.Background(), nil, exportLinks(), ExportOpts{Format: "xml", OutputDir: t.TempDir()})
		assert.Error(t, err)
	})

	t.Run("empty input writes only manifest", func(t *testing.T) {
		dir := t.TempDir()
		res, err := ExportByStatus(context.Background(), nil, nil, ExportOpts{OutputDir: dir})
		require.NoError(t, err)
		assert.Empty(t, res.Groups)
		tu.AssertFileExists(t, filepath.Join(dir, "export_manifest.json"))
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		res, err := ExportByStatus(ctx, nil, exportLinks(), ExportOpts{OutputDir: t.TempDir()})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 3, res.Failed())
	})
}
