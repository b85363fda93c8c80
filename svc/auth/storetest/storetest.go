// Package storetest holds the behaviour every auth.CredentialStore must share.
// Adapters run it from their own tests.
package storetest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/fintrack/svc/auth"
)

// NewAccount returns a password-only account with a unique email.
func NewAccount(prefix string) *auth.Account {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &auth.Account{
		ID:           uuid.New(),
		Email:        prefix + "-" + uuid.NewString()[:8] + "@example.com",
		Name:         "Test User",
		Image:        auth.DefaultImage,
		PasswordHash: []byte("$2a$04$hash"),
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Run exercises store. Accounts created use random emails so a shared
// database can be reused between runs.
func Run(t *testing.T, store auth.CredentialStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("create and find", func(t *testing.T) {
		acc := NewAccount("find")
		require.NoError(t, store.Create(ctx, acc))

		byEmail, err := store.FindByEmail(ctx, acc.Email)
		require.NoError(t, err)
		assert.Equal(t, acc.ID, byEmail.ID)
		assert.Equal(t, acc.PasswordHash, byEmail.PasswordHash)
		assert.Equal(t, auth.StatePasswordOnly, byEmail.State())

		byID, err := store.FindByID(ctx, acc.ID)
		require.NoError(t, err)
		assert.Equal(t, acc.Email, byID.Email)
		assert.Equal(t, acc.Name, byID.Name)
		assert.Equal(t, acc.Image, byID.Image)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := store.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, auth.ErrAccountNotFound)
		_, err = store.FindByEmail(ctx, "missing-"+uuid.NewString()+"@example.com")
		assert.ErrorIs(t, err, auth.ErrAccountNotFound)
		_, err = store.Update(ctx, uuid.New(), func(*auth.Account) error { return nil })
		assert.ErrorIs(t, err, auth.ErrAccountNotFound)
	})

	t.Run("duplicate email", func(t *testing.T) {
		acc := NewAccount("dup")
		require.NoError(t, store.Create(ctx, acc))
		other := NewAccount("dup")
		other.Email = acc.Email
		assert.ErrorIs(t, store.Create(ctx, other), auth.ErrEmailTaken)
	})

	t.Run("update persists second factor fields", func(t *testing.T) {
		acc := NewAccount("update")
		require.NoError(t, store.Create(ctx, acc))

		expiry := time.Now().Add(10 * time.Minute)
		updated, err := store.Update(ctx, acc.ID, func(a *auth.Account) error {
			a.TwoFactorSecret = "JBSWY3DPEHPK3PXP"
			a.TwoFactorEnabled = true
			a.SetChallenge("hash", expiry)
			return nil
		})
		require.NoError(t, err)
		assert.Greater(t, updated.Version, acc.Version)

		got, err := store.FindByID(ctx, acc.ID)
		require.NoError(t, err)
		assert.Equal(t, auth.StateTwoFactorChallenged, got.State())
		assert.Equal(t, "JBSWY3DPEHPK3PXP", got.TwoFactorSecret)
		assert.Equal(t, "hash", got.TwoFactorToken)
		require.NotNil(t, got.TwoFactorExpiry)
		want := expiry.UTC().Truncate(time.Millisecond)
		assert.True(t, want.Equal(*got.TwoFactorExpiry), "expiry %s, want %s", got.TwoFactorExpiry, want)

		_, err = store.Update(ctx, acc.ID, func(a *auth.Account) error {
			a.DisableTwoFactor()
			return nil
		})
		require.NoError(t, err)
		got, err = store.FindByID(ctx, acc.ID)
		require.NoError(t, err)
		assert.Equal(t, auth.StatePasswordOnly, got.State())
		assert.Nil(t, got.TwoFactorExpiry)
		assert.Empty(t, got.TwoFactorSecret)
	})

	t.Run("mutator error aborts", func(t *testing.T) {
		acc := NewAccount("abort")
		require.NoError(t, store.Create(ctx, acc))

		boom := errors.New("boom")
		_, err := store.Update(ctx, acc.ID, func(a *auth.Account) error {
			a.Name = "changed"
			return boom
		})
		assert.ErrorIs(t, err, boom)

		got, err := store.FindByID(ctx, acc.ID)
		require.NoError(t, err)
		assert.Equal(t, acc.Name, got.Name)
	})

	t.Run("email change", func(t *testing.T) {
		a := NewAccount("owner")
		b := NewAccount("other")
		require.NoError(t, store.Create(ctx, a))
		require.NoError(t, store.Create(ctx, b))

		_, err := store.Update(ctx, a.ID, func(acc *auth.Account) error {
			acc.Email = b.Email
			return nil
		})
		assert.ErrorIs(t, err, auth.ErrEmailTaken)

		next := NewAccount("renamed").Email
		_, err = store.Update(ctx, a.ID, func(acc *auth.Account) error {
			acc.Email = next
			return nil
		})
		require.NoError(t, err)
		got, err := store.FindByEmail(ctx, next)
		require.NoError(t, err)
		assert.Equal(t, a.ID, got.ID)
		_, err = store.FindByEmail(ctx, a.Email)
		assert.ErrorIs(t, err, auth.ErrAccountNotFound)
	})

	t.Run("concurrent updates are serialized", func(t *testing.T) {
		acc := NewAccount("race")
		acc.Name = ""
		require.NoError(t, store.Create(ctx, acc))

		const writers = 10
		var wg sync.WaitGroup
		for range writers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := store.Update(ctx, acc.ID, func(a *auth.Account) error {
					a.Name += "x"
					return nil
				})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		got, err := store.FindByID(ctx, acc.ID)
		require.NoError(t, err)
		assert.Len(t, got.Name, writers, "no lost updates")
	})
}
