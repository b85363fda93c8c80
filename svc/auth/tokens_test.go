package auth_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/fintrack/pkg/jwt"
	"github.com/dmitrymomot/fintrack/svc/auth"
)

func TestSessionTokens(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	signer, err := jwt.NewFromString("secret", jwt.WithClock(func() time.Time { return now }))
	require.NoError(t, err)
	tokens := auth.NewSessionTokens(signer, time.Hour, 0)
	id := uuid.New()

	session, expiresAt, err := tokens.Issue(id)
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), expiresAt)

	got, err := tokens.Verify(session)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	challenge, expiresAt, err := tokens.IssueChallenge(id)
	require.NoError(t, err)
	assert.Equal(t, now.Add(5*time.Minute), expiresAt, "default challenge ttl")

	_, err = tokens.Verify(challenge)
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)
	_, err = tokens.VerifyChallenge(session)
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)

	got, err = tokens.VerifyChallenge(challenge)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	for i := range len(session) {
		mutated := []byte(session)
		mutated[i] ^= 0x01
		_, err := tokens.Verify(string(mutated))
		assert.ErrorIs(t, err, auth.ErrUnauthenticated, "mutation at %d", i)
	}
}

func TestSessionTokens_NoExpiry(t *testing.T) {
	t.Parallel()
	signer, err := jwt.NewFromString("secret")
	require.NoError(t, err)
	token, expiresAt, err := auth.NewSessionTokens(signer, 0, 0).Issue(uuid.New())
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, expiresAt.IsZero())
}

func TestSessionTokens_RejectsNonUUIDSubject(t *testing.T) {
	t.Parallel()
	signer, err := jwt.NewFromString("secret")
	require.NoError(t, err)
	token, _, err := signer.Issue("42", auth.PurposeSession, time.Hour)
	require.NoError(t, err)
	_, err = auth.NewSessionTokens(signer, time.Hour, 0).Verify(token)
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)
}
