package auth

import "errors"

var (
	ErrValidation                = errors.New("validation failed")
	ErrEmailTaken                = errors.New("email is already in use")
	ErrTwoFactorAlreadyEnabled   = errors.New("two-factor authentication is already enabled")
	ErrTwoFactorNotEnabled       = errors.New("two-factor authentication is not enabled")
	ErrInvalidCredentials        = errors.New("invalid credentials")
	ErrAccountNotFound           = errors.New("account not found")
	ErrInvalidOrExpiredChallenge = errors.New("invalid or expired code")
	ErrNotificationFailed        = errors.New("failed to deliver notification")
	ErrUnauthenticated           = errors.New("unauthenticated")
	ErrTooManyAttempts           = errors.New("too many attempts")
	ErrInternal                  = errors.New("internal error")
)

// Reasons a mailed code is refused. Logged, never returned to callers.
var (
	errChallengeAbsent   = errors.New("no outstanding challenge")
	errChallengeExpired  = errors.New("challenge expired")
	errChallengeMismatch = errors.New("code mismatch")
)

// Kind classifies errors returned by Service.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindInvalidCredentials
	KindNotFound
	KindInvalidOrExpiredChallenge
	KindNotificationFailure
	KindUnauthenticated
	KindTooManyAttempts
)

var kindNames = map[Kind]string{
	KindInternal:                  "internal",
	KindValidation:                "validation",
	KindConflict:                  "conflict",
	KindInvalidCredentials:        "invalid_credentials",
	KindNotFound:                  "not_found",
	KindInvalidOrExpiredChallenge: "invalid_or_expired_challenge",
	KindNotificationFailure:       "notification_failure",
	KindUnauthenticated:           "unauthenticated",
	KindTooManyAttempts:           "too_many_attempts",
}

func (k Kind) String() string {
	return kindNames[k]
}

// KindOf classifies err. Unknown errors are internal.
func KindOf(err error) Kind {
	switch {
	case errors.Is(err, ErrInternal):
		return KindInternal
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrEmailTaken),
		errors.Is(err, ErrTwoFactorAlreadyEnabled),
		errors.Is(err, ErrTwoFactorNotEnabled):
		return KindConflict
	case errors.Is(err, ErrInvalidCredentials):
		return KindInvalidCredentials
	case errors.Is(err, ErrAccountNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidOrExpiredChallenge):
		return KindInvalidOrExpiredChallenge
	case errors.Is(err, ErrNotificationFailed):
		return KindNotificationFailure
	case errors.Is(err, ErrUnauthenticated):
		return KindUnauthenticated
	case errors.Is(err, ErrTooManyAttempts):
		return KindTooManyAttempts
	default:
		return KindInternal
	}
}
