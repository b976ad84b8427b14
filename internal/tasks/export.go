package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/desertthunder/ytlinks/internal/formatter"
	"github.com/desertthunder/ytlinks/internal/models"
)

// ExportOpts configures [ExportByStatus].
type ExportOpts struct {
	Format     string // Export format: json, csv, markdown, txt
	OutputDir  string // Base output directory (default: ytlinks_export_{epoch})
	NumWorkers int    // Concurrent writers (default: 4)
	Title      string // Heading used by markdown and text exports
}

// GroupExportResult describes the file written for one status.
type GroupExportResult struct {
	Group        string `json:"group"`
	Count        int    `json:"count"`
	File         string `json:"file,omitempty"`
	Error        error  `json:"-"`
	ErrorMessage string `json:"error,omitempty"`
}

// ExportResult summarizes a split export.
type ExportResult struct {
	TotalLinks      int                 `json:"total_links"`
	OutputDirectory string              `json:"output_directory"`
	ExportedAt      time.Time           `json:"exported_at"`
	Groups          []GroupExportResult `json:"groups"`
	ManifestPath    string              `json:"-"`
}

// Failed counts groups that could not be written.
func (r *ExportResult) Failed() int {
	n := 0
	for _, g := range r.Groups {
		if g.Error != nil {
			n++
		}
	}
	return n
}

type exportJob struct {
	group string
	links []models.Link
}

// ExportByStatus writes one file per status present in links, then a manifest.
//
// Groups are written concurrently; a failed group does not stop the others.
func ExportByStatus(ctx context.Context, prog chan<- ProgressUpdate, links []models.Link, opts ExportOpts) (*ExportResult, error) {
	if opts.Format == "" {
		opts.Format = formatter.FormatJSON
	}
	if !formatter.Supported(opts.Format) {
		return nil, fmt.Errorf("unsupported export format: %s", opts.Format)
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("ytlinks_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = DefaultWorkers
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	groups := groupByStatus(links)
	result := &ExportResult{
		TotalLinks:      len(links),
		OutputDirectory: opts.OutputDir,
		ExportedAt:      time.Now().UTC(),
		Groups:          make([]GroupExportResult, 0, len(groups)),
	}

	jobs := make(chan exportJob, len(groups))
	results := make(chan GroupExportResult, len(groups))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go exportWorker(ctx, &wg, jobs, results, opts)
	}

	for _, job := range groups {
		jobs <- job
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Groups = append(result.Groups, res)
		sendProgress(prog, exportGroupUpdate(completed, len(groups), res))
	}

	order := make(map[string]int, len(models.Statuses))
	for i, s := range models.Statuses {
		order[s.String()] = i
	}
	slices.SortFunc(result.Groups, func(a, b GroupExportResult) int { return order[a.Group] - order[b.Group] })

	if err := ctx.Err(); err != nil {
		return result, err
	}

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	if err := formatter.WriteManifest(result, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

func groupByStatus(links []models.Link) []exportJob {
	byStatus := make(map[models.LinkStatus][]models.Link)
	for _, l := range links {
		byStatus[l.Status] = append(byStatus[l.Status], l)
	}

	jobs := make([]exportJob, 0, len(byStatus))
	for _, s := range models.Statuses {
		if ls := byStatus[s]; len(ls) > 0 {
			jobs = append(jobs, exportJob{group: s.String(), links: ls})
		}
	}
	return jobs
}

func exportWorker(ctx context.Context, wg *sync.WaitGroup, jobs <-chan exportJob, results chan<- GroupExportResult, opts ExportOpts) {
	defer wg.Done()

	for job := range jobs {
		res := GroupExportResult{Group: job.group, Count: len(job.links)}
		if err := ctx.Err(); err != nil {
			res.Error = err
			res.ErrorMessage = err.Error()
			results <- res
			continue
		}

		path := filepath.Join(opts.OutputDir, job.group+formatter.Extension(opts.Format))
		title := fmt.Sprintf("%s (%s)", opts.Title, job.group)
		if opts.Title == "" {
			title = job.group
		}

		file, err := formatter.WriteExport(job.links, opts.Format, title, path)
		if err != nil {
			res.Error = err
			res.ErrorMessage = err.Error()
		}
		res.File = file
		results <- res
	}
}
