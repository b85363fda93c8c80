package jwt_test

import (
	"strings"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/fintrack/pkg/jwt"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestNew(t *testing.T) {
	t.Parallel()
	t.Run("with valid signing key", func(t *testing.T) {
		t.Parallel()
		service, err := jwt.NewFromString("secret")
		require.NoError(t, err)
		require.NotNil(t, service)
	})

	t.Run("with empty signing key", func(t *testing.T) {
		t.Parallel()
		service, err := jwt.New(nil)
		require.ErrorIs(t, err, jwt.ErrMissingSigningKey)
		require.Nil(t, service)
	})
}

func TestService_IssueParse(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	service, err := jwt.NewFromString("secret", jwt.WithIssuer("fintrack"), jwt.WithClock(fixedClock(now)))
	require.NoError(t, err)

	token, issued, err := service.Issue("42", "session", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour).Unix(), issued.ExpiresAt.Unix())
	assert.NotEmpty(t, issued.ID)

	claims, err := service.Parse(token, "session")
	require.NoError(t, err)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, "fintrack", claims.Issuer)

	t.Run("wrong purpose", func(t *testing.T) {
		t.Parallel()
		_, err := service.Parse(token, "2fa")
		assert.ErrorIs(t, err, jwt.ErrInvalidPurpose)
	})

	t.Run("other key", func(t *testing.T) {
		t.Parallel()
		other, err := jwt.NewFromString("other", jwt.WithIssuer("fintrack"), jwt.WithClock(fixedClock(now)))
		require.NoError(t, err)
		_, err = other.Parse(token, "session")
		assert.ErrorIs(t, err, jwt.ErrInvalidSignature)
	})

	t.Run("expired", func(t *testing.T) {
		t.Parallel()
		later, err := jwt.NewFromString("secret", jwt.WithIssuer("fintrack"), jwt.WithClock(fixedClock(now.Add(2*time.Hour))))
		require.NoError(t, err)
		_, err = later.Parse(token, "session")
		assert.ErrorIs(t, err, jwt.ErrExpiredToken)
	})

	t.Run("malformed", func(t *testing.T) {
		t.Parallel()
		for _, bad := range []string{"", "abc", "a.b", "a.b.c", strings.Repeat(".", 5)} {
			_, err := service.Parse(bad, "session")
			assert.ErrorIs(t, err, jwt.ErrInvalidToken, "token %q", bad)
		}
	})
}

func TestService_ParseRejectsEveryMutatedByte(t *testing.T) {
	t.Parallel()
	service, err := jwt.NewFromString("secret")
	require.NoError(t, err)

	token, _, err := service.Issue("42", "session", time.Hour)
	require.NoError(t, err)

	for i := range len(token) {
		replacement := byte('A')
		if token[i] == 'A' {
			replacement = 'B'
		}
		mutated := token[:i] + string(replacement) + token[i+1:]

		_, err := service.Parse(mutated, "session")
		assert.Error(t, err, "mutation at %d accepted", i)
	}
}

func TestService_ParseRejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()
	service, err := jwt.NewFromString("secret")
	require.NoError(t, err)

	claims := jwt.Claims{
		RegisteredClaims: gojwt.RegisteredClaims{Subject: "42"},
		Purpose:          "session",
	}

	t.Run("none", func(t *testing.T) {
		t.Parallel()
		token, err := gojwt.NewWithClaims(gojwt.SigningMethodNone, claims).SignedString(gojwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = service.Parse(token, "session")
		assert.Error(t, err)
	})

	t.Run("HS512", func(t *testing.T) {
		t.Parallel()
		token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
		require.NoError(t, err)
		_, err = service.Parse(token, "session")
		assert.Error(t, err)
	})
}

func TestService_IssueWithoutTTL(t *testing.T) {
	t.Parallel()
	service, err := jwt.NewFromString("secret")
	require.NoError(t, err)

	token, claims, err := service.Issue("42", "session", 0)
	require.NoError(t, err)
	assert.Nil(t, claims.ExpiresAt)

	parsed, err := service.Parse(token, "session")
	require.NoError(t, err)
	assert.Equal(t, "42", parsed.Subject)
}
