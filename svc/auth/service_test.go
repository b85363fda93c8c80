package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/fintrack/pkg/ratelimiter"
	"github.com/dmitrymomot/fintrack/pkg/totp"
	"github.com/dmitrymomot/fintrack/svc/auth"
)

func TestNewService_RequiresCollaborators(t *testing.T) {
	t.Parallel()
	_, err := auth.NewService(nil, nil, nil, nil)
	assert.Error(t, err)
}

func TestService_RegisterAndLogin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newEnv(t)

	acc := e.register(t, "alice@example.com", "pw123")
	assert.Equal(t, auth.StatePasswordOnly, acc.State())
	assert.Equal(t, auth.DefaultImage, acc.Image)

	stored, err := e.store.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, []byte("pw123"), stored.PasswordHash)
	assert.NotContains(t, string(stored.PasswordHash), "pw123")

	res, err := e.svc.Login(ctx, "alice@example.com", "pw123")
	require.NoError(t, err)
	assert.False(t, res.TwoFactorRequired)
	require.NotEmpty(t, res.Token)
	assert.Equal(t, e.clock.Now().Add(24*time.Hour).Unix(), res.ExpiresAt)

	id, err := e.svc.Authenticate(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, acc.ID, id)

	t.Run("email is case insensitive", func(t *testing.T) {
		_, err := e.svc.Login(ctx, "  ALICE@Example.com ", "pw123")
		assert.NoError(t, err)
	})

	t.Run("wrong password and unknown email are indistinguishable", func(t *testing.T) {
		_, wrongPassword := e.svc.Login(ctx, "alice@example.com", "wrongpw")
		_, unknownEmail := e.svc.Login(ctx, "nobody@example.com", "pw123")

		assert.ErrorIs(t, wrongPassword, auth.ErrInvalidCredentials)
		assert.ErrorIs(t, unknownEmail, auth.ErrInvalidCredentials)
		assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
		assert.Equal(t, auth.KindOf(wrongPassword), auth.KindOf(unknownEmail))
	})

	t.Run("audit trail", func(t *testing.T) {
		events := e.audit.Events(auth.ActionRegister)
		require.Len(t, events, 1)
		assert.Equal(t, acc.ID.String(), events[0].UserID)
		assert.NotEmpty(t, e.audit.Events(auth.ActionLogin))
	})
}

func TestService_Register_Validation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newEnv(t)
	e.register(t, "alice@example.com", "pw123")

	tests := []struct {
		name  string
		input auth.RegisterInput
		kind  auth.Kind
	}{
		{"missing name", auth.RegisterInput{Email: "bob@example.com", Password: "pw"}, auth.KindValidation},
		{"invalid email", auth.RegisterInput{Name: "Bob", Email: "bob", Password: "pw"}, auth.KindValidation},
		{"empty password", auth.RegisterInput{Name: "Bob", Email: "bob@example.com"}, auth.KindValidation},
		{"password over 72 bytes", auth.RegisterInput{Name: "Bob", Email: "bob@example.com", Password: string(make([]byte, 73))}, auth.KindValidation},
		{"duplicate email", auth.RegisterInput{Name: "Alice", Email: "Alice@Example.com", Password: "pw"}, auth.KindConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.svc.Register(ctx, tt.input)
			require.Error(t, err)
			assert.Equal(t, tt.kind, auth.KindOf(err))
		})
	}
}

func TestService_RollingTwoFactorLogin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newEnv(t)
	acc := e.register(t, "alice@example.com", "pw123")

	prov, err := e.svc.EnableTwoFactor(ctx, acc.ID)
	require.NoError(t, err)
	require.NotEmpty(t, prov.Secret)
	assert.Contains(t, prov.URI, "otpauth://totp/")
	assert.Contains(t, prov.QRCode, "data:image/png;base64,")

	_, err = e.svc.EnableTwoFactor(ctx, acc.ID)
	assert.ErrorIs(t, err, auth.ErrTwoFactorAlreadyEnabled)
	assert.Equal(t, auth.KindConflict, auth.KindOf(err))

	res, err := e.svc.Login(ctx, "alice@example.com", "pw123")
	require.NoError(t, err)
	assert.True(t, res.TwoFactorRequired)
	assert.Empty(t, res.Token)
	assert.Equal(t, []string{auth.MethodTOTP, auth.MethodEmail}, res.Methods)

	_, err = e.svc.Authenticate(ctx, res.ChallengeToken)
	assert.ErrorIs(t, err, auth.ErrUnauthenticated, "challenge token must not authenticate")

	code, err := totp.Generate(prov.Secret, e.clock.Now())
	require.NoError(t, err)

	session, err := e.svc.CompleteLogin(ctx, res.ChallengeToken, auth.MethodTOTP, code)
	require.NoError(t, err)
	id, err := e.svc.Authenticate(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, acc.ID, id)

	e.clock.Advance(31 * totp.DefaultPeriod * time.Second)
	res, err = e.svc.Login(ctx, "alice@example.com", "pw123")
	require.NoError(t, err)
	_, err = e.svc.CompleteLogin(ctx, res.ChallengeToken, auth.MethodTOTP, code)
	assert.ErrorIs(t, err, auth.ErrInvalidOrExpiredChallenge)

	_, err = e.svc.CompleteLogin(ctx, "not-a-token", auth.MethodTOTP, code)
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)
	_, err = e.svc.CompleteLogin(ctx, res.ChallengeToken, "sms", code)
	assert.Equal(t, auth.KindValidation, auth.KindOf(err))
}

func TestService_VerifyTwoFactor_Window(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newEnv(t)
	acc := e.register(t, "alice@example.com", "pw123")
	prov, err := e.svc.EnableTwoFactor(ctx, acc.ID)
	require.NoError(t, err)

	issuedAt := e.clock.Now()
	code, err := totp.Generate(prov.Secret, issuedAt)
	require.NoError(t, err)

	step := totp.DefaultPeriod * time.Second
	tests := []struct {
		offset time.Duration
		valid  bool
	}{
		{0, true},
		{-step, true},
		{step, true},
		{-2 * step, false},
		{2 * step, false},
	}
	for _, tt := range tests {
		verifier := newEnvAt(t, e, issuedAt.Add(tt.offset))
		err := verifier.VerifyTwoFactor(ctx, acc.ID, code)
		if tt.valid {
			assert.NoError(t, err, "offset %v", tt.offset)
		} else {
			assert.ErrorIs(t, err, auth.ErrInvalidOrExpiredChallenge, "offset %v", tt.offset)
		}
	}
}

// newEnvAt returns a service over the same store whose clock is frozen at t.
func newEnvAt(t *testing.T, e *env, at time.Time) *auth.Service {
	t.Helper()
	svc, err := auth.NewService(e.store, auth.NewSessionTokens(mustSigner(t), time.Hour, time.Minute), e.otp, e.notifier,
		auth.WithClock(func() time.Time { return at }))
	require.NoError(t, err)
	return svc
}

func TestService_MailedChallenge(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newEnv(t)
	acc := e.register(t, "alice@example.com", "pw123")

	err := e.svc.RequestMailedChallenge(ctx, acc.ID)
	assert.ErrorIs(t, err, auth.ErrTwoFactorNotEnabled)

	_, err = e.svc.EnableTwoFactor(ctx, acc.ID)
	require.NoError(t, err)

	code := e.notifier.expectCode("alice@example.com")
	require.NoError(t, e.svc.RequestMailedChallenge(ctx, acc.ID))
	require.Len(t, *code, 6)

	stored, err := e.store.FindByID(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, auth.StateTwoFactorChallenged, stored.State())
	assert.NotEqual(t, *code, stored.TwoFactorToken)
	assert.Equal(t, e.clock.Now().Add(10*time.Minute), *stored.TwoFactorExpiry)

	wrong := "000000"
	if *code == wrong {
		wrong = "111111"
	}
	err = e.svc.CompleteMailedChallenge(ctx, acc.ID, wrong)
	assert.ErrorIs(t, err, auth.ErrInvalidOrExpiredChallenge)
	stored, _ = e.store.FindByID(ctx, acc.ID)
	assert.True(t, stored.HasChallenge(), "mismatch must not clear the challenge")

	require.NoError(t, e.svc.CompleteMailedChallenge(ctx, acc.ID, *code))
	stored, _ = e.store.FindByID(ctx, acc.ID)
	assert.Equal(t, auth.StateTwoFactorArmed, stored.State())
	assert.Empty(t, stored.TwoFactorToken)
	assert.Nil(t, stored.TwoFactorExpiry)

	err = e.svc.CompleteMailedChallenge(ctx, acc.ID, *code)
	assert.ErrorIs(t, err, auth.ErrInvalidOrExpiredChallenge, "code is single-use")
	e.notifier.AssertExpectations(t)
}

func TestService_MailedChallenge_Expiry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tests := []struct {
		name  string
		after time.Duration
		valid bool
	}{
		{"just issued", 0, true},
		{"at expiry", 10 * time.Minute, true},
		{"after expiry", 10*time.Minute + time.Second, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e := newEnv(t)
			acc := e.register(t, "alice@example.com", "pw123")
			_, err := e.svc.EnableTwoFactor(ctx, acc.ID)
			require.NoError(t, err)

			code := e.notifier.expectCode("alice@example.com")
			require.NoError(t, e.svc.RequestMailedChallenge(ctx, acc.ID))

			e.clock.Advance(tt.after)
			err = e.svc.CompleteMailedChallenge(ctx, acc.ID, *code)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, auth.ErrInvalidOrExpiredChallenge)
			}
		})
	}
}

func TestService_MailedChallenge_SendFailureRollsBack(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newEnv(t)
	acc := e.register(t, "alice@example.com", "pw123")
	_, err := e.svc.EnableTwoFactor(ctx, acc.ID)
	require.NoError(t, err)

	e.notifier.On("Send", mock.Anything, "alice@example.com", mock.Anything, mock.Anything).
		Return(errors.New("smtp down")).Once()
	err = e.svc.RequestMailedChallenge(ctx, acc.ID)
	assert.ErrorIs(t, err, auth.ErrNotificationFailed)
	assert.Equal(t, auth.KindNotificationFailure, auth.KindOf(err))

	stored, _ := e.store.FindByID(ctx, acc.ID)
	assert.Equal(t, auth.StateTwoFactorArmed, stored.State(), "no dangling challenge")

	t.Run("previous challenge is restored", func(t *testing.T) {
		code := e.notifier.expectCode("alice@example.com")
		require.NoError(t, e.svc.RequestMailedChallenge(ctx, acc.ID))
		before, _ := e.store.FindByID(ctx, acc.ID)

		e.notifier.On("Send", mock.Anything, "alice@example.com", mock.Anything, mock.Anything).
			Return(errors.New("smtp down")).Once()
		assert.ErrorIs(t, e.svc.RequestMailedChallenge(ctx, acc.ID), auth.ErrNotificationFailed)

		after, _ := e.store.FindByID(ctx, acc.ID)
		assert.Equal(t, before.TwoFactorToken, after.TwoFactorToken)
		assert.Equal(t, *before.TwoFactorExpiry, *after.TwoFactorExpiry)
		assert.NoError(t, e.svc.CompleteMailedChallenge(ctx, acc.ID, *code))
	})
}

func TestService_EmailSecondFactorLogin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newEnv(t)
	acc := e.register(t, "alice@example.com", "pw123")
	_, err := e.svc.EnableTwoFactor(ctx, acc.ID)
	require.NoError(t, err)

	res, err := e.svc.Login(ctx, "alice@example.com", "pw123")
	require.NoError(t, err)
	require.True(t, res.TwoFactorRequired)

	code := e.notifier.expectCode("alice@example.com")
	require.NoError(t, e.svc.RequestLoginChallenge(ctx, res.ChallengeToken))

	session, err := e.svc.CompleteLogin(ctx, res.ChallengeToken, auth.MethodEmail, *code)
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)

	_, err = e.svc.CompleteLogin(ctx, res.ChallengeToken, auth.MethodEmail, *code)
	assert.ErrorIs(t, err, auth.ErrInvalidOrExpiredChallenge)

	assert.ErrorIs(t, e.svc.RequestLoginChallenge(ctx, session.Token), auth.ErrUnauthenticated,
		"session token is not a challenge token")
}

func TestService_DisableTwoFactor(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newEnv(t)
	acc := e.register(t, "alice@example.com", "pw123")

	assert.ErrorIs(t, e.svc.DisableTwoFactor(ctx, acc.ID, ""), auth.ErrTwoFactorNotEnabled)

	prov, err := e.svc.EnableTwoFactor(ctx, acc.ID)
	require.NoError(t, err)

	code, err := totp.Generate(prov.Secret, e.clock.Now().Add(-5*time.Minute))
	require.NoError(t, err)
	assert.ErrorIs(t, e.svc.DisableTwoFactor(ctx, acc.ID, code), auth.ErrInvalidOrExpiredChallenge)
	stored, _ := e.store.FindByID(ctx, acc.ID)
	assert.True(t, stored.TwoFactorEnabled)

	code, err = totp.Generate(prov.Secret, e.clock.Now())
	require.NoError(t, err)
	require.NoError(t, e.svc.DisableTwoFactor(ctx, acc.ID, code))

	stored, _ = e.store.FindByID(ctx, acc.ID)
	assert.Equal(t, auth.StatePasswordOnly, stored.State())
	assert.Empty(t, stored.TwoFactorSecret)

	res, err := e.svc.Login(ctx, "alice@example.com", "pw123")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
}

func TestService_ChangePassword(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newEnv(t)
	acc := e.register(t, "alice@example.com", "pw123")

	err := e.svc.ChangePassword(ctx, acc.ID, "wrong", "newpw")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	err = e.svc.ChangePassword(ctx, acc.ID, "pw123", "")
	assert.Equal(t, auth.KindValidation, auth.KindOf(err))

	require.NoError(t, e.svc.ChangePassword(ctx, acc.ID, "pw123", "newpw"))

	_, err = e.svc.Login(ctx, "alice@example.com", "pw123")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	_, err = e.svc.Login(ctx, "alice@example.com", "newpw")
	assert.NoError(t, err)

	err = e.svc.ChangePassword(ctx, uuid.New(), "a", "b")
	assert.ErrorIs(t, err, auth.ErrAccountNotFound)
}

func TestService_Profile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newEnv(t)
	acc := e.register(t, "alice@example.com", "pw123")
	e.register(t, "bob@example.com", "pw123")

	profile, err := e.svc.GetProfile(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", profile.Email)

	profile, err = e.svc.UpdateProfile(ctx, acc.ID, auth.UpdateProfileInput{Name: "  Alice   Smith ", Email: "Alice.Smith@Example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Alice Smith", profile.Name)
	assert.Equal(t, "alice.smith@example.com", profile.Email)
	assert.Equal(t, auth.DefaultImage, profile.Image)

	_, err = e.svc.UpdateProfile(ctx, acc.ID, auth.UpdateProfileInput{Email: "BOB@example.com"})
	assert.ErrorIs(t, err, auth.ErrEmailTaken)

	_, err = e.svc.UpdateProfile(ctx, acc.ID, auth.UpdateProfileInput{Email: "broken"})
	assert.Equal(t, auth.KindValidation, auth.KindOf(err))

	_, err = e.svc.GetProfile(ctx, uuid.New())
	assert.Equal(t, auth.KindNotFound, auth.KindOf(err))

	_, err = e.svc.Login(ctx, "alice.smith@example.com", "pw123")
	assert.NoError(t, err, "password untouched by profile update")
}

func TestService_LoginRateLimit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := ratelimiter.NewMemoryStore()
	t.Cleanup(store.Close)
	limiter, err := ratelimiter.NewBucket(store, ratelimiter.Config{Capacity: 2, RefillRate: 1, RefillInterval: time.Hour})
	require.NoError(t, err)

	e := newEnv(t, auth.WithLoginLimiter(limiter))
	e.register(t, "alice@example.com", "pw123")

	for range 2 {
		_, err := e.svc.Login(ctx, "alice@example.com", "wrong")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	}
	_, err = e.svc.Login(ctx, "Alice@example.com", "pw123")
	assert.ErrorIs(t, err, auth.ErrTooManyAttempts)
	assert.Equal(t, auth.KindTooManyAttempts, auth.KindOf(err))
}

func TestService_EncryptedSecrets(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	key, err := totp.GenerateEncodedEncryptionKey()
	require.NoError(t, err)
	raw, err := totp.DecodeEncryptionKey(key)
	require.NoError(t, err)

	otp, err := auth.NewOTPEngine("FinTrack", []byte("pepper"), auth.WithEncryptionKey(raw))
	require.NoError(t, err)

	e := newEnv(t)
	svc, err := auth.NewService(e.store, auth.NewSessionTokens(mustSigner(t), time.Hour, time.Minute), otp, e.notifier,
		auth.WithClock(e.clock.Now))
	require.NoError(t, err)

	acc := e.register(t, "alice@example.com", "pw123")
	prov, err := svc.EnableTwoFactor(ctx, acc.ID)
	require.NoError(t, err)

	stored, _ := e.store.FindByID(ctx, acc.ID)
	assert.NotEqual(t, prov.Secret, stored.TwoFactorSecret)

	code, err := totp.Generate(prov.Secret, e.clock.Now())
	require.NoError(t, err)
	assert.NoError(t, svc.VerifyTwoFactor(ctx, acc.ID, code))
}

func TestKindOf(t *testing.T) {
	t.Parallel()
	tests := []struct {
		err  error
		kind auth.Kind
	}{
		{auth.ErrValidation, auth.KindValidation},
		{auth.ErrEmailTaken, auth.KindConflict},
		{auth.ErrTwoFactorNotEnabled, auth.KindConflict},
		{auth.ErrInvalidCredentials, auth.KindInvalidCredentials},
		{auth.ErrAccountNotFound, auth.KindNotFound},
		{auth.ErrInvalidOrExpiredChallenge, auth.KindInvalidOrExpiredChallenge},
		{auth.ErrNotificationFailed, auth.KindNotificationFailure},
		{auth.ErrUnauthenticated, auth.KindUnauthenticated},
		{auth.ErrTooManyAttempts, auth.KindTooManyAttempts},
		{errors.Join(auth.ErrInternal, auth.ErrAccountNotFound), auth.KindInternal},
		{errors.New("boom"), auth.KindInternal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.kind, auth.KindOf(tt.err), "%v", tt.err)
	}
	assert.Equal(t, "conflict", auth.KindConflict.String())
}
