package auth

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/fintrack/pkg/jwt"
)

// Token purposes. A challenge token never authenticates a request.
const (
	PurposeSession   = "session"
	PurposeChallenge = "2fa"
)

// SessionTokens issues and verifies stateless bearer tokens.
type SessionTokens struct {
	jwt          *jwt.Service
	sessionTTL   time.Duration
	challengeTTL time.Duration
}

// NewSessionTokens wraps a signer. A zero sessionTTL issues tokens without expiry.
func NewSessionTokens(signer *jwt.Service, sessionTTL, challengeTTL time.Duration) *SessionTokens {
	if challengeTTL <= 0 {
		challengeTTL = 5 * time.Minute
	}
	return &SessionTokens{jwt: signer, sessionTTL: sessionTTL, challengeTTL: challengeTTL}
}

// Issue signs a session token. expiresAt is zero when tokens do not expire.
func (t *SessionTokens) Issue(userID uuid.UUID) (string, time.Time, error) {
	return t.issue(userID, PurposeSession, t.sessionTTL)
}

// Verify returns the account ID of a valid session token.
func (t *SessionTokens) Verify(token string) (uuid.UUID, error) {
	return t.verify(token, PurposeSession)
}

// IssueChallenge signs a token proving the password step of a login succeeded.
func (t *SessionTokens) IssueChallenge(userID uuid.UUID) (string, time.Time, error) {
	return t.issue(userID, PurposeChallenge, t.challengeTTL)
}

// VerifyChallenge returns the account ID of a valid challenge token.
func (t *SessionTokens) VerifyChallenge(token string) (uuid.UUID, error) {
	return t.verify(token, PurposeChallenge)
}

func (t *SessionTokens) issue(userID uuid.UUID, purpose string, ttl time.Duration) (string, time.Time, error) {
	token, claims, err := t.jwt.Issue(userID.String(), purpose, ttl)
	if err != nil {
		return "", time.Time{}, err
	}
	var expiresAt time.Time
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	return token, expiresAt, nil
}

func (t *SessionTokens) verify(token, purpose string) (uuid.UUID, error) {
	claims, err := t.jwt.Parse(token, purpose)
	if err != nil {
		return uuid.Nil, errors.Join(ErrUnauthenticated, err)
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, errors.Join(ErrUnauthenticated, err)
	}
	return id, nil
}
