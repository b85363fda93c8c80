package auth

import (
	"context"

	"github.com/google/uuid"
)

// CredentialStore persists accounts. Emails passed in are already normalized.
//
// Update performs an atomic read-modify-write of one account: fn receives the
// current record and either mutates it or returns an error, in which case
// nothing is written and the error is returned as is. Implementations
// serialize concurrent updates of the same account and return
// ErrEmailTaken when the new email belongs to another account.
type CredentialStore interface {
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)
	Create(ctx context.Context, account *Account) error
	Update(ctx context.Context, id uuid.UUID, fn func(*Account) error) (*Account, error)
}
