package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/ytlinks/internal/client"
	"github.com/desertthunder/ytlinks/internal/formatter"
	"github.com/desertthunder/ytlinks/internal/models"
	"github.com/desertthunder/ytlinks/internal/shared"
	"github.com/desertthunder/ytlinks/internal/tasks"
	"github.com/urfave/cli/v3"
)

var openBrowser = shared.OpenBrowser

// statusFilter parses a --status value; "all" and "" select every link.
func statusFilter(raw string) (models.LinkStatus, error) {
	if raw == "" || strings.EqualFold(raw, client.FilterAll) {
		return "", nil
	}
	return models.ParseLinkStatus(raw)
}

func (r *Runner) writeLink(l *models.Link) {
	r.writePlainHeader(l.Title)
	r.writePlain("ID:        %d\n", l.ID)
	r.writePlain("Status:    %s\n", l.Status)
	r.writePlain("URL:       %s\n", l.YouTubeURL)
	if id := l.VideoID(); id != "" {
		r.writePlain("Video ID:  %s\n", id)
		r.writePlain("Thumbnail: %s\n", models.ThumbnailURL(id, models.ThumbnailHigh))
	}
	r.writePlain("Added:     %s\n", l.CreatedAt.Local().Format("2006-01-02 15:04"))
	if l.Notes != "" {
		r.writePlainln("%s", l.Notes)
	}
}

// LinksList prints the signed in user's links.
func (r *Runner) LinksList(ctx context.Context, cmd *cli.Command) error {
	s, err := r.session()
	if err != nil {
		return err
	}
	status, err := statusFilter(cmd.String("status"))
	if err != nil {
		return err
	}

	links, err := r.api.ListLinks(ctx, s.UserID, status)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(links, true)
	}

	if len(links) == 0 {
		return r.writePlain("No links yet. Add one with `ytlinks links add --title ... --url ...`\n")
	}
	for _, l := range links {
		r.writePlain("#%-5d %-10s %s\n       %s\n", l.ID, l.Status, l.Title, l.YouTubeURL)
	}
	return r.writePlainln("%d link(s)", len(links))
}

// LinksSummary prints how many links sit in each status.
func (r *Runner) LinksSummary(ctx context.Context, cmd *cli.Command) error {
	s, err := r.session()
	if err != nil {
		return err
	}

	counts, err := r.api.Summary(ctx, s.UserID)
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(counts, true)
	}

	r.writePlain("%-10s %d\n", client.FilterAll, counts[client.FilterAll])
	for _, status := range models.Statuses {
		r.writePlain("%-10s %d\n", status, counts[status.String()])
	}
	return nil
}

// LinksAdd saves a link, optionally queueing it for delivery.
func (r *Runner) LinksAdd(ctx context.Context, cmd *cli.Command) error {
	s, err := r.session()
	if err != nil {
		return err
	}

	in := models.LinkInput{
		Title:      cmd.String("title"),
		YouTubeURL: cmd.String("url"),
		Notes:      cmd.String("notes"),
	}.Normalize()
	if err := in.Validate(); err != nil {
		return err
	}

	link, err := r.api.CreateLink(ctx, s.UserID, in)
	if err != nil {
		return err
	}
	r.writePlain("✓ Link created successfully (#%d)\n", link.ID)

	if !cmd.Bool("send") {
		return nil
	}
	use, err := models.ParseWebhookUse(cmd.String("use"))
	if err != nil {
		return err
	}
	if _, err := r.api.Resend(ctx, link.ID, s.UserID, use); err != nil {
		return fmt.Errorf("link saved but not queued: %w", err)
	}
	return r.writePlain("✓ Queued for %s\n", use)
}

func (r *Runner) fetchLink(ctx context.Context, cmd *cli.Command) (*client.Session, *models.Link, error) {
	s, err := r.session()
	if err != nil {
		return nil, nil, err
	}
	id, err := parseID(cmd.StringArg("id"))
	if err != nil {
		return nil, nil, err
	}
	link, err := r.api.GetLink(ctx, id, s.UserID)
	if err != nil {
		return nil, nil, err
	}
	return s, link, nil
}

// LinksShow prints one link.
func (r *Runner) LinksShow(ctx context.Context, cmd *cli.Command) error {
	_, link, err := r.fetchLink(ctx, cmd)
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(link, true)
	}
	r.writeLink(link)
	return nil
}

// LinksEdit changes the fields given as flags and keeps the rest.
func (r *Runner) LinksEdit(ctx context.Context, cmd *cli.Command) error {
	_, link, err := r.fetchLink(ctx, cmd)
	if err != nil {
		return err
	}

	in := models.LinkInput{Title: link.Title, YouTubeURL: link.YouTubeURL, Notes: link.Notes}
	if cmd.IsSet("title") {
		in.Title = cmd.String("title")
	}
	if cmd.IsSet("url") {
		in.YouTubeURL = cmd.String("url")
	}
	if cmd.IsSet("notes") {
		in.Notes = cmd.String("notes")
	}
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return err
	}

	updated, err := r.api.UpdateLink(ctx, link.ID, in)
	if err != nil {
		return err
	}
	return r.writePlain("✓ Link #%d updated: %s\n", updated.ID, updated.Title)
}

// LinksRemove deletes a link.
func (r *Runner) LinksRemove(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.session(); err != nil {
		return err
	}
	id, err := parseID(cmd.StringArg("id"))
	if err != nil {
		return err
	}
	if err := r.api.DeleteLink(ctx, id); err != nil {
		return err
	}
	return r.writePlain("✓ Link #%d deleted\n", id)
}

// LinksStatus sets a link's status by hand.
func (r *Runner) LinksStatus(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.session(); err != nil {
		return err
	}
	id, err := parseID(cmd.StringArg("id"))
	if err != nil {
		return err
	}
	raw := cmd.StringArg("status")
	if raw == "" {
		return fmt.Errorf("%w: status", shared.ErrMissingArgument)
	}
	status, err := models.ParseLinkStatus(raw)
	if err != nil {
		return err
	}

	if _, err := r.api.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	return r.writePlain("✓ Link #%d is now %s\n", id, status)
}

// LinksSend calls the webhook from this machine, then records processed or failed.
func (r *Runner) LinksSend(ctx context.Context, cmd *cli.Command) error {
	s, err := r.session()
	if err != nil {
		return err
	}
	id, err := parseID(cmd.StringArg("id"))
	if err != nil {
		return err
	}
	use, err := models.ParseWebhookUse(cmd.String("use"))
	if err != nil {
		return err
	}

	store := client.NewLinkStore(r.api, r.sender(), s)
	if err := store.Fetch(ctx); err != nil {
		return err
	}

	var res *client.SendResult
	if use == models.UseChat {
		res, err = store.SendWebhookForChat(ctx, id)
	} else {
		res, err = store.SendWebhook(ctx, id)
	}
	if err != nil {
		return err
	}

	if !res.Success {
		return fmt.Errorf("%w: webhook answered %d, link #%d marked %s", shared.ErrWebhookFailed, res.StatusCode, id, res.Status)
	}
	return r.writePlain("✓ Link #%d sent for %s (%s)\n", id, use, res.Status)
}

// LinksResend asks the server to deliver the link.
func (r *Runner) LinksResend(ctx context.Context, cmd *cli.Command) error {
	s, err := r.session()
	if err != nil {
		return err
	}
	id, err := parseID(cmd.StringArg("id"))
	if err != nil {
		return err
	}
	use, err := models.ParseWebhookUse(cmd.String("use"))
	if err != nil {
		return err
	}

	link, err := r.api.Resend(ctx, id, s.UserID, use)
	if err != nil {
		return err
	}
	return r.writePlain("✓ Link #%d queued for %s (%s)\n", link.ID, use, link.Status)
}

// LinksOpen opens the video in the default browser.
func (r *Runner) LinksOpen(ctx context.Context, cmd *cli.Command) error {
	_, link, err := r.fetchLink(ctx, cmd)
	if err != nil {
		return err
	}
	return openBrowser(link.YouTubeURL)
}

// LinksExport writes links to a single file, or one file per status with --split.
func (r *Runner) LinksExport(ctx context.Context, cmd *cli.Command) error {
	s, err := r.session()
	if err != nil {
		return err
	}

	format := strings.ToLower(cmd.String("format"))
	if !formatter.Supported(format) {
		return fmt.Errorf("%w: unsupported export format %q (use %s)", shared.ErrInvalidArgument, format, strings.Join(formatter.Formats, ", "))
	}
	status, err := statusFilter(cmd.String("status"))
	if err != nil {
		return err
	}

	links, err := r.api.ListLinks(ctx, s.UserID, status)
	if err != nil {
		return err
	}

	if !cmd.Bool("split") {
		path, err := formatter.WriteExport(links, format, cmd.String("title"), cmd.String("output"))
		if err != nil {
			return err
		}
		return r.writePlain("✓ Exported %d link(s) to %s\n", len(links), path)
	}

	progress := make(chan tasks.ProgressUpdate, len(models.Statuses))
	result, err := tasks.ExportByStatus(ctx, progress, links, tasks.ExportOpts{
		Format:     format,
		OutputDir:  cmd.String("output"),
		NumWorkers: cmd.Int("workers"),
		Title:      cmd.String("title"),
	})
	close(progress)
	for update := range progress {
		r.writePlain("%s\n", update.Message)
	}
	if err != nil {
		return err
	}

	r.writePlainln("✓ Exported %d link(s) to %s", result.TotalLinks, result.OutputDirectory)
	if n := result.Failed(); n > 0 {
		return fmt.Errorf("%d of %d group(s) failed to export", n, len(result.Groups))
	}
	return nil
}
