package repositories

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/desertthunder/ytlinks/internal/models"
	"github.com/desertthunder/ytlinks/internal/shared"
)

const userColumns = `id, email, created_at`

// UserRepository persists [models.User] rows.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new [UserRepository] with the given database connection
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a user with the given email.
//
// Returns [shared.ErrAlreadyExists] when the email is taken.
func (r *UserRepository) Create(ctx context.Context, email string) (*models.User, error) {
	email = shared.NormalizeEmail(email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", shared.ErrInvalidInput)
	}

	var id int64
	query := r.db.Rebind(`INSERT INTO users (email) VALUES (?) RETURNING id`)
	if err := r.db.QueryRowxContext(ctx, query, email).Scan(&id); err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("user %s: %w", email, shared.ErrAlreadyExists)
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	return r.FindByID(ctx, id)
}

// FindByID retrieves a user by primary key.
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	query := r.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE id = ?`)
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, notFound(err, "user")
	}
	return &user, nil
}

// FindByEmail retrieves a user by email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	query := r.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE email = ?`)
	if err := r.db.GetContext(ctx, &user, query, shared.NormalizeEmail(email)); err != nil {
		return nil, notFound(err, "user")
	}
	return &user, nil
}

// DeleteByEmail removes a user and every link they own in one transaction,
// returning the deleted user.
func (r *UserRepository) DeleteByEmail(ctx context.Context, email string) (*models.User, error) {
	var deleted models.User

	err := WithTx(ctx, r.db, func(ctx context.Context, tx *sqlx.Tx) error {
		query := tx.Rebind(`SELECT ` + userColumns + ` FROM users WHERE email = ?`)
		if err := tx.GetContext(ctx, &deleted, query, shared.NormalizeEmail(email)); err != nil {
			return notFound(err, "user")
		}

		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM youtube_links WHERE user_id = ?`), deleted.ID); err != nil {
			return fmt.Errorf("failed to delete user links: %w", err)
		}

		res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM users WHERE id = ?`), deleted.ID)
		if err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		return affected(res, "user")
	})
	if err != nil {
		return nil, err
	}
	return &deleted, nil
}

// Count returns the number of users.
func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}
