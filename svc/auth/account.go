package auth

import (
	"time"

	"github.com/google/uuid"
)

// DefaultImage is the profile image reference given to accounts registered without one.
const DefaultImage = "default.png"

// State is the second-factor state of an account, derived from its fields.
type State string

const (
	StatePasswordOnly        State = "password_only"
	StateTwoFactorArmed      State = "two_factor_armed"
	StateTwoFactorChallenged State = "two_factor_challenged"
)

// Account is the credential record owned by a CredentialStore.
type Account struct {
	ID           uuid.UUID
	Email        string
	Name         string
	Image        string
	PasswordHash []byte

	// TwoFactorSecret is the TOTP secret, encrypted when an encryption key is configured.
	TwoFactorSecret string
	// TwoFactorToken is the keyed hash of an outstanding mailed code.
	TwoFactorToken   string
	TwoFactorExpiry  *time.Time
	TwoFactorEnabled bool

	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// State derives the second-factor state.
func (a *Account) State() State {
	switch {
	case !a.TwoFactorEnabled:
		return StatePasswordOnly
	case a.HasChallenge():
		return StateTwoFactorChallenged
	default:
		return StateTwoFactorArmed
	}
}

// HasChallenge reports whether a mailed code is outstanding.
func (a *Account) HasChallenge() bool {
	return a.TwoFactorToken != "" && a.TwoFactorExpiry != nil
}

// SetChallenge records a mailed code hash and its expiry together. The expiry
// is kept at millisecond precision, the finest every store can hold.
func (a *Account) SetChallenge(hash string, expiry time.Time) {
	expiry = expiry.UTC().Truncate(time.Millisecond)
	a.TwoFactorToken = hash
	a.TwoFactorExpiry = &expiry
}

// ClearChallenge removes the outstanding mailed code.
func (a *Account) ClearChallenge() {
	a.TwoFactorToken = ""
	a.TwoFactorExpiry = nil
}

// DisableTwoFactor clears every second-factor field.
func (a *Account) DisableTwoFactor() {
	a.TwoFactorSecret = ""
	a.TwoFactorEnabled = false
	a.ClearChallenge()
}

// Methods lists the second-factor methods available to the account.
func (a *Account) Methods() []string {
	if !a.TwoFactorEnabled {
		return nil
	}
	if a.TwoFactorSecret != "" {
		return []string{MethodTOTP, MethodEmail}
	}
	return []string{MethodEmail}
}

// Clone returns a deep copy.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	c := *a
	c.PasswordHash = append([]byte(nil), a.PasswordHash...)
	if a.TwoFactorExpiry != nil {
		exp := *a.TwoFactorExpiry
		c.TwoFactorExpiry = &exp
	}
	return &c
}

// Profile is the public view of an account.
type Profile struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Image            string    `json:"image"`
	TwoFactorEnabled bool      `json:"two_factor_enabled"`
}

// Profile returns the public view of the account.
func (a *Account) Profile() Profile {
	return Profile{
		ID:               a.ID,
		Name:             a.Name,
		Email:            a.Email,
		Image:            a.Image,
		TwoFactorEnabled: a.TwoFactorEnabled,
	}
}
