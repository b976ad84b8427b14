package repositories

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/desertthunder/ytlinks/internal/models"
	"github.com/desertthunder/ytlinks/internal/shared"
)

const linkColumns = `id, user_id, title, youtube_url, notes, status, created_at`

// LinkRepository persists [models.Link] rows.
//
// Every read and write except [LinkRepository.SetStatus] is scoped to an owner, so a
// link belonging to someone else is indistinguishable from a missing one.
type LinkRepository struct {
	db *sqlx.DB
}

// NewLinkRepository creates a new [LinkRepository] with the given database connection
func NewLinkRepository(db *sqlx.DB) *LinkRepository {
	return &LinkRepository{db: db}
}

// Create inserts a pending link for userID.
func (r *LinkRepository) Create(ctx context.Context, userID int64, in models.LinkInput) (*models.Link, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var id int64
	query := r.db.Rebind(`
		INSERT INTO youtube_links (user_id, title, youtube_url, notes, status)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`)
	err := r.db.QueryRowxContext(ctx, query, userID, in.Title, in.YouTubeURL, in.Notes, models.StatusPending).Scan(&id)
	if isForeignKeyViolation(err) {
		return nil, fmt.Errorf("user %d: %w", userID, shared.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to insert link: %w", err)
	}

	return r.Get(ctx, id, userID)
}

// Get retrieves a link owned by userID.
func (r *LinkRepository) Get(ctx context.Context, linkID, userID int64) (*models.Link, error) {
	var link models.Link
	query := r.db.Rebind(`SELECT ` + linkColumns + ` FROM youtube_links WHERE id = ? AND user_id = ?`)
	if err := r.db.GetContext(ctx, &link, query, linkID, userID); err != nil {
		return nil, notFound(err, "link")
	}
	return &link, nil
}

// ListByUser returns the links owned by userID, newest first.
//
// An empty status returns every link. The result is never nil.
func (r *LinkRepository) ListByUser(ctx context.Context, userID int64, status models.LinkStatus) ([]models.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM youtube_links WHERE user_id = ?`
	args := []any{userID}

	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	links := []models.Link{}
	if err := r.db.SelectContext(ctx, &links, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to query links: %w", err)
	}
	return links, nil
}

// Update replaces the editable fields of a link owned by userID.
func (r *LinkRepository) Update(ctx context.Context, linkID, userID int64, in models.LinkInput) (*models.Link, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	query := r.db.Rebind(`
		UPDATE youtube_links
		SET title = ?, youtube_url = ?, notes = ?
		WHERE id = ? AND user_id = ?
	`)
	res, err := r.db.ExecContext(ctx, query, in.Title, in.YouTubeURL, in.Notes, linkID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to update link: %w", err)
	}
	if err := affected(res, "link"); err != nil {
		return nil, err
	}

	return r.Get(ctx, linkID, userID)
}

// Delete removes a link owned by userID.
func (r *LinkRepository) Delete(ctx context.Context, linkID, userID int64) error {
	query := r.db.Rebind(`DELETE FROM youtube_links WHERE id = ? AND user_id = ?`)
	res, err := r.db.ExecContext(ctx, query, linkID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete link: %w", err)
	}
	return affected(res, "link")
}

// UpdateStatus sets the status of a link owned by userID.
func (r *LinkRepository) UpdateStatus(ctx context.Context, linkID, userID int64, status models.LinkStatus) (*models.Link, error) {
	if !status.Valid() {
		_, err := models.ParseLinkStatus(string(status))
		return nil, err
	}

	query := r.db.Rebind(`UPDATE youtube_links SET status = ? WHERE id = ? AND user_id = ?`)
	res, err := r.db.ExecContext(ctx, query, status, linkID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to update link status: %w", err)
	}
	if err := affected(res, "link"); err != nil {
		return nil, err
	}

	return r.Get(ctx, linkID, userID)
}

// SetStatus sets the status of a link regardless of owner.
//
// Reserved for the webhook dispatcher, which only receives jobs for links it
// already loaded through an owner-scoped read.
func (r *LinkRepository) SetStatus(ctx context.Context, linkID int64, status models.LinkStatus) error {
	if !status.Valid() {
		_, err := models.ParseLinkStatus(string(status))
		return err
	}

	query := r.db.Rebind(`UPDATE youtube_links SET status = ? WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, query, status, linkID)
	if err != nil {
		return fmt.Errorf("failed to set link status: %w", err)
	}
	return affected(res, "link")
}

// CountByStatus returns the number of links per status for userID.
//
// Every known status is present in the result, zero when unused.
func (r *LinkRepository) CountByStatus(ctx context.Context, userID int64) (map[models.LinkStatus]int, error) {
	rows := []struct {
		Status models.LinkStatus `db:"status"`
		Count  int               `db:"n"`
	}{}

	query := r.db.Rebind(`SELECT status, COUNT(*) AS n FROM youtube_links WHERE user_id = ? GROUP BY status`)
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("failed to count links: %w", err)
	}

	counts := make(map[models.LinkStatus]int, len(models.Statuses))
	for _, s := range models.Statuses {
		counts[s] = 0
	}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

