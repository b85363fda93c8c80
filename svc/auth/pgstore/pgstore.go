// Package pgstore implements auth.CredentialStore on PostgreSQL.
// The schema lives in db/migrations.
package pgstore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/fintrack/pkg/pg"
	"github.com/dmitrymomot/fintrack/svc/auth"
)

// DB is the subset of *pgxpool.Pool the store needs.
type DB interface {
	pg.TxBeginner
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const columns = `id, email, name, image, password_hash,
	two_factor_secret, two_factor_token, two_factor_expiry, is_two_factor_enabled,
	version, created_at, updated_at`

const (
	selectByID    = `SELECT ` + columns + ` FROM users WHERE id = $1`
	selectByEmail = `SELECT ` + columns + ` FROM users WHERE lower(email) = lower($1)`
	selectForLock = selectByID + ` FOR UPDATE`

	insertAccount = `INSERT INTO users (` + columns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	updateAccount = `UPDATE users SET
		email = $2, name = $3, image = $4, password_hash = $5,
		two_factor_secret = $6, two_factor_token = $7, two_factor_expiry = $8,
		is_two_factor_enabled = $9, version = version + 1, updated_at = $10
		WHERE id = $1
		RETURNING version, updated_at`
)

type Store struct {
	db  DB
	now func() time.Time
}

func New(db DB) *Store {
	return &Store{db: db, now: time.Now}
}

func (s *Store) FindByEmail(ctx context.Context, email string) (*auth.Account, error) {
	return scanAccount(s.db.QueryRow(ctx, selectByEmail, email))
}

func (s *Store) FindByID(ctx context.Context, id uuid.UUID) (*auth.Account, error) {
	return scanAccount(s.db.QueryRow(ctx, selectByID, id))
}

func (s *Store) Create(ctx context.Context, account *auth.Account) error {
	now := s.now().UTC()
	createdAt, updatedAt := account.CreatedAt, account.UpdatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	if updatedAt.IsZero() {
		updatedAt = createdAt
	}
	version := max(account.Version, 1)

	_, err := s.db.Exec(ctx, insertAccount,
		account.ID, account.Email, account.Name, account.Image, account.PasswordHash,
		nullString(account.TwoFactorSecret), nullString(account.TwoFactorToken), account.TwoFactorExpiry,
		account.TwoFactorEnabled, version, createdAt, updatedAt,
	)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return auth.ErrEmailTaken
		}
		return err
	}
	return nil
}

// Update locks the row for the duration of fn so concurrent writers queue
// behind each other.
func (s *Store) Update(ctx context.Context, id uuid.UUID, fn func(*auth.Account) error) (*auth.Account, error) {
	var result *auth.Account
	err := pg.WithTx(ctx, s.db, func(ctx context.Context, tx pgx.Tx) error {
		current, err := scanAccount(tx.QueryRow(ctx, selectForLock, id))
		if err != nil {
			return err
		}
		next := current.Clone()
		if err := fn(next); err != nil {
			return err
		}
		next.ID = current.ID

		err = tx.QueryRow(ctx, updateAccount,
			next.ID, next.Email, next.Name, next.Image, next.PasswordHash,
			nullString(next.TwoFactorSecret), nullString(next.TwoFactorToken), next.TwoFactorExpiry,
			next.TwoFactorEnabled, s.now().UTC(),
		).Scan(&next.Version, &next.UpdatedAt)
		if err != nil {
			if pg.IsDuplicateKeyError(err) {
				return auth.ErrEmailTaken
			}
			return err
		}
		result = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func scanAccount(row pgx.Row) (*auth.Account, error) {
	var (
		acc    auth.Account
		secret *string
		token  *string
	)
	err := row.Scan(
		&acc.ID, &acc.Email, &acc.Name, &acc.Image, &acc.PasswordHash,
		&secret, &token, &acc.TwoFactorExpiry, &acc.TwoFactorEnabled,
		&acc.Version, &acc.CreatedAt, &acc.UpdatedAt,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, auth.ErrAccountNotFound
		}
		return nil, err
	}
	if secret != nil {
		acc.TwoFactorSecret = *secret
	}
	if token != nil {
		acc.TwoFactorToken = *token
	}
	if acc.TwoFactorExpiry != nil {
		utc := acc.TwoFactorExpiry.UTC()
		acc.TwoFactorExpiry = &utc
	}
	return &acc, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

var _ auth.CredentialStore = (*Store)(nil)
