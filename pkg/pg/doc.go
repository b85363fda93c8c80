// Package pg connects to PostgreSQL through a pgx pool, applies goose migrations
// from an fs.FS and offers transaction and error classification helpers.
package pg
