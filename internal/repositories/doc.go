// Package repositories implements persistence for users and their YouTube links.
//
// Queries are written once with `?` placeholders and rebound by [sqlx] for the
// active driver, so the same repositories run against SQLite (development, tests)
// and Postgres (pgx).
//
// Key Implementations:
//   - [UserRepository] : email-keyed accounts; deleting a user removes their links in the same transaction
//   - [LinkRepository] : owner-scoped CRUD and status writes for links
//
// Missing rows surface as [shared.ErrNotFound] and unique violations from either driver as
// [shared.ErrAlreadyExists]. Mutations scoped to an owner report a foreign row as not found.
package repositories
