package jwt

import (
	"errors"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the payload carried by every token issued by Service.
// Purpose separates token families signed with the same key,
// e.g. a session token from a pending second-factor challenge.
type Claims struct {
	gojwt.RegisteredClaims
	Purpose string `json:"purpose,omitempty"`
}

// Service signs and verifies HS256 tokens.
type Service struct {
	signingKey []byte
	issuer     string
	now        func() time.Time
}

// Option configures Service.
type Option func(*Service)

// WithIssuer sets the iss claim written to and required from tokens.
func WithIssuer(issuer string) Option {
	return func(s *Service) { s.issuer = issuer }
}

// WithClock overrides the time source used for iat/exp.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a Service with the given signing key.
func New(signingKey []byte, opts ...Option) (*Service, error) {
	if len(signingKey) == 0 {
		return nil, ErrMissingSigningKey
	}
	s := &Service{
		signingKey: signingKey,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// NewFromString is a convenience wrapper around New for keys loaded from config.
func NewFromString(signingKey string, opts ...Option) (*Service, error) {
	return New([]byte(signingKey), opts...)
}

// Issue signs a token for subject. A zero ttl produces a token without exp.
func (s *Service) Issue(subject, purpose string, ttl time.Duration) (string, Claims, error) {
	now := s.now()
	claims := Claims{
		RegisteredClaims: gojwt.RegisteredClaims{
			ID:       uuid.NewString(),
			Subject:  subject,
			Issuer:   s.issuer,
			IssuedAt: gojwt.NewNumericDate(now),
		},
		Purpose: purpose,
	}
	if ttl > 0 {
		claims.ExpiresAt = gojwt.NewNumericDate(now.Add(ttl))
	}

	token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return "", Claims{}, errors.Join(ErrFailedToSign, err)
	}
	return token, claims, nil
}

// Parse verifies the signature, algorithm, issuer, expiry and purpose of a token.
func (s *Service) Parse(token, purpose string) (*Claims, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	opts := []gojwt.ParserOption{
		gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}),
		gojwt.WithTimeFunc(s.now),
		gojwt.WithIssuedAt(),
		gojwt.WithStrictDecoding(),
	}
	if s.issuer != "" {
		opts = append(opts, gojwt.WithIssuer(s.issuer))
	}

	claims := &Claims{}
	parsed, err := gojwt.ParseWithClaims(token, claims, func(*gojwt.Token) (any, error) {
		return s.signingKey, nil
	}, opts...)
	if err != nil {
		return nil, mapError(err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Purpose != purpose {
		return nil, ErrInvalidPurpose
	}
	if claims.Subject == "" {
		return nil, ErrInvalidClaims
	}

	return claims, nil
}

func mapError(err error) error {
	switch {
	case errors.Is(err, gojwt.ErrTokenExpired):
		return errors.Join(ErrExpiredToken, err)
	case errors.Is(err, gojwt.ErrTokenSignatureInvalid):
		return errors.Join(ErrInvalidSignature, err)
	case errors.Is(err, gojwt.ErrTokenUnverifiable):
		return errors.Join(ErrInvalidSigningMethod, err)
	case errors.Is(err, gojwt.ErrTokenMalformed):
		return errors.Join(ErrInvalidToken, err)
	default:
		return errors.Join(ErrInvalidToken, err)
	}
}
