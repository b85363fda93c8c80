// Package memstore is an in-memory auth.CredentialStore for development and tests.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/fintrack/svc/auth"
)

// Store keeps accounts in maps guarded by a single mutex, which also
// serializes Update calls.
type Store struct {
	mu      sync.Mutex
	byID    map[uuid.UUID]*auth.Account
	byEmail map[string]uuid.UUID
	now     func() time.Time
}

func New() *Store {
	return &Store{
		byID:    make(map[uuid.UUID]*auth.Account),
		byEmail: make(map[string]uuid.UUID),
		now:     time.Now,
	}
}

func (s *Store) FindByEmail(ctx context.Context, email string) (*auth.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byEmail[email]
	if !ok {
		return nil, auth.ErrAccountNotFound
	}
	return s.byID[id].Clone(), nil
}

func (s *Store) FindByID(ctx context.Context, id uuid.UUID) (*auth.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.byID[id]
	if !ok {
		return nil, auth.ErrAccountNotFound
	}
	return acc.Clone(), nil
}

func (s *Store) Create(ctx context.Context, account *auth.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byEmail[account.Email]; taken {
		return auth.ErrEmailTaken
	}
	s.byID[account.ID] = account.Clone()
	s.byEmail[account.Email] = account.ID
	return nil
}

func (s *Store) Update(ctx context.Context, id uuid.UUID, fn func(*auth.Account) error) (*auth.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.byID[id]
	if !ok {
		return nil, auth.ErrAccountNotFound
	}
	next := current.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	next.ID = current.ID
	if next.Email != current.Email {
		if owner, taken := s.byEmail[next.Email]; taken && owner != id {
			return nil, auth.ErrEmailTaken
		}
		delete(s.byEmail, current.Email)
		s.byEmail[next.Email] = id
	}
	next.Version = current.Version + 1
	next.UpdatedAt = s.now().UTC()
	s.byID[id] = next
	return next.Clone(), nil
}
