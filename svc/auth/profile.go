package auth

import (
	"bytes"
	"context"

	"github.com/google/uuid"

	"github.com/dmitrymomot/fintrack/pkg/audit"
	"github.com/dmitrymomot/fintrack/pkg/sanitizer"
	"github.com/dmitrymomot/fintrack/pkg/validator"
)

// UpdateProfileInput holds profile changes. Empty fields are left unchanged.
// Passwords change only through ChangePassword.
type UpdateProfileInput struct {
	Name  string
	Email string
	Image string
}

// GetProfile returns the public view of an account.
func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (Profile, error) {
	acc, err := s.store.FindByID(ctx, userID)
	if err != nil {
		return Profile{}, s.fail(ctx, "get_profile", err)
	}
	return acc.Profile(), nil
}

// UpdateProfile changes name, email or image.
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, in UpdateProfileInput) (Profile, error) {
	name := sanitizer.NormalizeName(in.Name)
	email := sanitizer.NormalizeEmail(in.Email)

	var rules []validator.Rule
	if name != "" {
		rules = append(rules, validator.MaxLen("name", name, 100))
	}
	if email != "" {
		rules = append(rules, validator.ValidEmail("email", email), validator.MaxLen("email", email, 254))
	}
	if in.Image != "" {
		rules = append(rules, validator.MaxLen("image", in.Image, 512))
	}
	if err := validate(rules...); err != nil {
		return Profile{}, err
	}

	acc, err := s.store.Update(ctx, userID, func(a *Account) error {
		if name != "" {
			a.Name = name
		}
		if email != "" {
			a.Email = email
		}
		if in.Image != "" {
			a.Image = in.Image
		}
		return nil
	})
	if err != nil {
		err = s.fail(ctx, "update_profile", err)
		s.record(ctx, ActionProfileUpdated, userID, err)
		return Profile{}, err
	}

	s.record(ctx, ActionProfileUpdated, userID, nil, audit.WithMetadata("email_changed", email != ""))
	return acc.Profile(), nil
}

// ChangePassword replaces the password after verifying the current one.
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error {
	rules := []validator.Rule{validator.NotEmpty("old_password", oldPassword)}
	rules = append(rules, validator.Password("new_password", newPassword, s.passwordPolicy)...)
	if err := validate(rules...); err != nil {
		return err
	}

	acc, err := s.store.FindByID(ctx, userID)
	if err != nil {
		return s.fail(ctx, "change_password", err)
	}
	if !s.hasher.Verify(oldPassword, acc.PasswordHash) {
		s.record(ctx, ActionPasswordChanged, userID, ErrInvalidCredentials)
		return ErrInvalidCredentials
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return s.fail(ctx, "change_password", err)
	}

	// Hashing happens outside Update; the hash comparison rejects a password
	// changed by another request in between.
	_, err = s.store.Update(ctx, userID, func(a *Account) error {
		if !bytes.Equal(a.PasswordHash, acc.PasswordHash) {
			return ErrInvalidCredentials
		}
		a.PasswordHash = hash
		return nil
	})
	if err != nil {
		err = s.fail(ctx, "change_password", err)
		s.record(ctx, ActionPasswordChanged, userID, err)
		return err
	}

	s.record(ctx, ActionPasswordChanged, userID, nil)
	return nil
}
