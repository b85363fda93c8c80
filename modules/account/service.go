package account

import (
	"context"

	"github.com/google/uuid"

	"github.com/dmitrymomot/fintrack/svc/auth"
)

// Service is the part of *auth.Service the routes call.
type Service interface {
	Register(ctx context.Context, in auth.RegisterInput) (*auth.Account, error)
	Login(ctx context.Context, email, password string) (*auth.LoginResult, error)
	CompleteLogin(ctx context.Context, challengeToken, method, code string) (*auth.LoginResult, error)
	RequestLoginChallenge(ctx context.Context, challengeToken string) error

	GetProfile(ctx context.Context, userID uuid.UUID) (auth.Profile, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, in auth.UpdateProfileInput) (auth.Profile, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error

	EnableTwoFactor(ctx context.Context, userID uuid.UUID) (*auth.Provisioning, error)
	DisableTwoFactor(ctx context.Context, userID uuid.UUID, code string) error
	VerifyTwoFactor(ctx context.Context, userID uuid.UUID, code string) error
	RequestMailedChallenge(ctx context.Context, userID uuid.UUID) error
	CompleteMailedChallenge(ctx context.Context, userID uuid.UUID, code string) error
}

var _ Service = (*auth.Service)(nil)
