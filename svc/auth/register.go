package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/dmitrymomot/fintrack/pkg/logger"
	"github.com/dmitrymomot/fintrack/pkg/sanitizer"
	"github.com/dmitrymomot/fintrack/pkg/validator"
)

// RegisterInput carries the fields of a new account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Image    string
}

// LoginResult is either a session or a pending second-factor challenge.
type LoginResult struct {
	Token             string   `json:"token,omitempty"`
	ExpiresAt         int64    `json:"expires_at,omitempty"`
	TwoFactorRequired bool     `json:"two_factor_required"`
	ChallengeToken    string   `json:"challenge_token,omitempty"`
	Methods           []string `json:"methods,omitempty"`
}

// Register creates a password-only account.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Account, error) {
	name := sanitizer.NormalizeName(in.Name)
	email := sanitizer.NormalizeEmail(in.Email)
	image := in.Image
	if image == "" {
		image = DefaultImage
	}

	rules := []validator.Rule{
		validator.Required("name", name),
		validator.MaxLen("name", name, 100),
		validator.Required("email", email),
		validator.ValidEmail("email", email),
		validator.MaxLen("email", email, 254),
		validator.MaxLen("image", image, 512),
	}
	rules = append(rules, validator.Password("password", in.Password, s.passwordPolicy)...)
	if err := validate(rules...); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, s.fail(ctx, "register", err)
	}

	now := s.now().UTC()
	acc := &Account{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		Image:        image,
		PasswordHash: hash,
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Create(ctx, acc); err != nil {
		err = s.fail(ctx, "register", err)
		s.record(ctx, ActionRegister, uuid.Nil, err)
		return nil, err
	}

	s.record(ctx, ActionRegister, acc.ID, nil)
	return acc, nil
}

// Login checks the password. Accounts with two-factor authentication get a
// challenge token instead of a session; CompleteLogin exchanges it.
// Unknown email and wrong password return the same error.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = sanitizer.NormalizeEmail(email)
	if err := validate(
		validator.Required("email", email),
		validator.NotEmpty("password", password),
	); err != nil {
		return nil, err
	}
	if err := s.allow(ctx, s.loginLimiter, email); err != nil {
		s.record(ctx, ActionLogin, uuid.Nil, err)
		return nil, err
	}

	acc, err := s.store.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, ErrAccountNotFound):
		s.hasher.Verify(password, s.dummy())
		s.record(ctx, ActionLogin, uuid.Nil, ErrInvalidCredentials)
		return nil, ErrInvalidCredentials
	case err != nil:
		return nil, s.fail(ctx, "login", err)
	}

	if !s.hasher.Verify(password, acc.PasswordHash) {
		s.record(ctx, ActionLogin, acc.ID, ErrInvalidCredentials)
		return nil, ErrInvalidCredentials
	}
	if s.loginLimiter != nil {
		if err := s.loginLimiter.Reset(ctx, email); err != nil {
			s.logger.WarnContext(ctx, "failed to reset login limiter", logger.Error(err))
		}
	}

	if acc.TwoFactorEnabled {
		token, _, err := s.tokens.IssueChallenge(acc.ID)
		if err != nil {
			return nil, s.fail(ctx, "login", err)
		}
		s.record(ctx, ActionLogin, acc.ID, nil, withStep("password"))
		return &LoginResult{
			TwoFactorRequired: true,
			ChallengeToken:    token,
			Methods:           acc.Methods(),
		}, nil
	}

	res, err := s.session(acc.ID)
	if err != nil {
		return nil, s.fail(ctx, "login", err)
	}
	s.record(ctx, ActionLogin, acc.ID, nil)
	return res, nil
}

// CompleteLogin verifies the second factor of a login started by Login and
// issues the session token.
func (s *Service) CompleteLogin(ctx context.Context, challengeToken, method, code string) (*LoginResult, error) {
	id, err := s.tokens.VerifyChallenge(challengeToken)
	if err != nil {
		return nil, err
	}
	if err := validate(
		validator.OneOf("method", method, MethodTOTP, MethodEmail),
		validator.NumericCode("code", code, 6),
	); err != nil {
		return nil, err
	}
	if err := s.allow(ctx, s.otpLimiter, id.String()); err != nil {
		s.record(ctx, ActionLoginSecondFactor, id, err)
		return nil, err
	}

	switch method {
	case MethodTOTP:
		err = s.checkRolling(ctx, id, code)
	case MethodEmail:
		_, err = s.store.Update(ctx, id, func(a *Account) error {
			if !a.TwoFactorEnabled {
				return ErrTwoFactorNotEnabled
			}
			return s.otp.VerifyMailed(a, code, s.now())
		})
	}
	if errors.Is(err, ErrAccountNotFound) {
		err = ErrUnauthenticated
	}
	if err != nil {
		err = s.challengeFailure(ctx, "complete_login", id, err)
		s.record(ctx, ActionLoginSecondFactor, id, err)
		return nil, err
	}

	res, err := s.session(id)
	if err != nil {
		return nil, s.fail(ctx, "complete_login", err)
	}
	s.resetOTPLimiter(ctx, id)
	s.record(ctx, ActionLoginSecondFactor, id, nil, withStep(method))
	return res, nil
}

// RequestLoginChallenge mails a code to the account behind a challenge token.
func (s *Service) RequestLoginChallenge(ctx context.Context, challengeToken string) error {
	id, err := s.tokens.VerifyChallenge(challengeToken)
	if err != nil {
		return err
	}
	err = s.sendMailedChallenge(ctx, id)
	if errors.Is(err, ErrAccountNotFound) {
		return ErrUnauthenticated
	}
	return err
}

func (s *Service) session(id uuid.UUID) (*LoginResult, error) {
	token, expiresAt, err := s.tokens.Issue(id)
	if err != nil {
		return nil, err
	}
	res := &LoginResult{Token: token}
	if !expiresAt.IsZero() {
		res.ExpiresAt = expiresAt.Unix()
	}
	return res, nil
}
