package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/fintrack/pkg/audit"
	"github.com/dmitrymomot/fintrack/pkg/logger"
	"github.com/dmitrymomot/fintrack/pkg/ratelimiter"
	"github.com/dmitrymomot/fintrack/pkg/validator"
)

// Audit actions recorded by Service.
const (
	ActionRegister           = "auth.register"
	ActionLogin              = "auth.login"
	ActionLoginSecondFactor  = "auth.login_2fa"
	ActionTwoFactorEnabled   = "auth.2fa_enabled"
	ActionTwoFactorDisabled  = "auth.2fa_disabled"
	ActionTwoFactorVerified  = "auth.2fa_verified"
	ActionChallengeSent      = "auth.challenge_sent"
	ActionChallengeCompleted = "auth.challenge_completed"
	ActionPasswordChanged    = "auth.password_changed"
	ActionProfileUpdated     = "auth.profile_updated"
)

const dummyPassword = "fintrack-timing-equalizer"

// Service orchestrates registration, login, second factors and profile changes.
// It never writes to storage except through CredentialStore.Update and Create.
type Service struct {
	store    CredentialStore
	tokens   *SessionTokens
	otp      *OTPEngine
	notifier Notifier

	hasher         PasswordHasher
	passwordPolicy validator.PasswordPolicy
	logger         *slog.Logger
	audit          *audit.Logger
	loginLimiter   ratelimiter.RateLimiter
	otpLimiter     ratelimiter.RateLimiter
	notifyTimeout  time.Duration
	now            func() time.Time

	dummyOnce sync.Once
	dummyHash []byte
}

// Option configures Service.
type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithHasher replaces the default bcrypt hasher.
func WithHasher(h PasswordHasher) Option {
	return func(s *Service) {
		if h != nil {
			s.hasher = h
		}
	}
}

func WithPasswordPolicy(p validator.PasswordPolicy) Option {
	return func(s *Service) { s.passwordPolicy = p }
}

// WithAudit records the outcome of every operation.
func WithAudit(a *audit.Logger) Option {
	return func(s *Service) { s.audit = a }
}

// WithLoginLimiter limits login attempts per normalized email.
func WithLoginLimiter(l ratelimiter.RateLimiter) Option {
	return func(s *Service) { s.loginLimiter = l }
}

// WithOTPLimiter limits one-time code submissions per account.
func WithOTPLimiter(l ratelimiter.RateLimiter) Option {
	return func(s *Service) { s.otpLimiter = l }
}

// WithNotifyTimeout bounds every notification send.
func WithNotifyTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.notifyTimeout = d
		}
	}
}

// WithClock overrides the time source used for code issuance and verification.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService wires the collaborators of the auth core.
func NewService(store CredentialStore, tokens *SessionTokens, otp *OTPEngine, notifier Notifier, opts ...Option) (*Service, error) {
	switch {
	case store == nil:
		return nil, errors.New("auth: credential store is required")
	case tokens == nil:
		return nil, errors.New("auth: session tokens are required")
	case otp == nil:
		return nil, errors.New("auth: otp engine is required")
	case notifier == nil:
		return nil, errors.New("auth: notifier is required")
	}

	s := &Service{
		store:          store,
		tokens:         tokens,
		otp:            otp,
		notifier:       notifier,
		hasher:         NewBcryptHasher(0),
		passwordPolicy: validator.DefaultPasswordPolicy(),
		logger:         logger.Discard(),
		notifyTimeout:  10 * time.Second,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logger.Component("auth"))
	return s, nil
}

// Authenticate resolves a session token to an account ID.
func (s *Service) Authenticate(_ context.Context, token string) (uuid.UUID, error) {
	return s.tokens.Verify(token)
}

func validate(rules ...validator.Rule) error {
	if err := validator.Apply(rules...); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return nil
}

// fail passes domain errors through and turns anything else into ErrInternal,
// logging the cause once.
func (s *Service) fail(ctx context.Context, op string, err error) error {
	if errors.Is(err, ErrInternal) || KindOf(err) != KindInternal {
		return err
	}
	s.logger.ErrorContext(ctx, "auth operation failed", logger.Operation(op), logger.Error(err))
	return errors.Join(ErrInternal, err)
}

// challengeFailure hides why a code was refused from the caller.
func (s *Service) challengeFailure(ctx context.Context, op string, id uuid.UUID, err error) error {
	switch {
	case errors.Is(err, errChallengeAbsent),
		errors.Is(err, errChallengeExpired),
		errors.Is(err, errChallengeMismatch):
		s.logger.InfoContext(ctx, "one-time code rejected",
			logger.Operation(op),
			logger.UserID(id),
			logger.Reason(err.Error()),
		)
		return ErrInvalidOrExpiredChallenge
	}
	return s.fail(ctx, op, err)
}

// allow fails open when the limiter backend is unavailable.
func (s *Service) allow(ctx context.Context, limiter ratelimiter.RateLimiter, key string) error {
	if limiter == nil {
		return nil
	}
	res, err := limiter.Allow(ctx, key)
	if err != nil {
		s.logger.WarnContext(ctx, "rate limiter unavailable", logger.Error(err))
		return nil
	}
	if !res.Allowed() {
		return ErrTooManyAttempts
	}
	return nil
}

func (s *Service) record(ctx context.Context, action string, id uuid.UUID, err error, opts ...audit.EventOption) {
	if s.audit == nil {
		return
	}
	if id != uuid.Nil {
		opts = append(opts, audit.WithUserID(id.String()))
	}

	var auditErr error
	switch {
	case err == nil:
		auditErr = s.audit.Log(ctx, action, opts...)
	case KindOf(err) == KindInternal:
		auditErr = s.audit.LogError(ctx, action, err, opts...)
	default:
		auditErr = s.audit.LogFailure(ctx, action, err, opts...)
	}
	if auditErr != nil {
		s.logger.WarnContext(ctx, "failed to record audit event", slog.String("action", action), logger.Error(auditErr))
	}
}

// dummy returns a hash compared against on unknown emails so that both
// login failures cost one bcrypt comparison.
func (s *Service) dummy() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash(dummyPassword)
	})
	return s.dummyHash
}
