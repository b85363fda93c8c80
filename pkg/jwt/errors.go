package jwt

import "errors"

var (
	ErrInvalidToken         = errors.New("jwt: invalid token")
	ErrExpiredToken         = errors.New("jwt: token is expired")
	ErrInvalidSigningMethod = errors.New("jwt: invalid signing method")
	ErrMissingSigningKey    = errors.New("jwt: missing signing key")
	ErrInvalidClaims        = errors.New("jwt: invalid claims")
	ErrInvalidSignature     = errors.New("jwt: invalid signature")
	ErrInvalidPurpose       = errors.New("jwt: token issued for another purpose")
	ErrFailedToSign         = errors.New("jwt: failed to sign token")
)
