package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrymomot/fintrack/pkg/qrcode"
	"github.com/dmitrymomot/fintrack/pkg/totp"
)

// Second-factor methods accepted by CompleteLogin.
const (
	MethodTOTP  = "totp"
	MethodEmail = "email"
)

// DefaultMailedCodeTTL is how long a mailed code stays valid.
const DefaultMailedCodeTTL = 10 * time.Minute

// Provisioning is returned once when rolling codes are enabled.
type Provisioning struct {
	Secret string `json:"secret"`
	URI    string `json:"uri"`
	QRCode string `json:"qr_code"`
}

// OTPEngine implements rolling (TOTP) and mailed one-time codes.
type OTPEngine struct {
	issuer        string
	encryptionKey []byte
	pepper        []byte
	mailedTTL     time.Duration
	qrSize        int
}

// OTPOption configures OTPEngine.
type OTPOption func(*OTPEngine)

// WithEncryptionKey stores TOTP secrets sealed with AES-256-GCM.
func WithEncryptionKey(key []byte) OTPOption {
	return func(e *OTPEngine) { e.encryptionKey = key }
}

// WithMailedCodeTTL overrides DefaultMailedCodeTTL.
func WithMailedCodeTTL(ttl time.Duration) OTPOption {
	return func(e *OTPEngine) {
		if ttl > 0 {
			e.mailedTTL = ttl
		}
	}
}

// WithQRCodeSize sets the provisioning QR image size in pixels.
func WithQRCodeSize(size int) OTPOption {
	return func(e *OTPEngine) {
		if size > 0 {
			e.qrSize = size
		}
	}
}

// NewOTPEngine creates an engine. pepper keys the hash of mailed codes.
func NewOTPEngine(issuer string, pepper []byte, opts ...OTPOption) (*OTPEngine, error) {
	if len(pepper) == 0 {
		return nil, errors.New("otp: code pepper is required")
	}
	e := &OTPEngine{
		issuer:    issuer,
		pepper:    pepper,
		mailedTTL: DefaultMailedCodeTTL,
		qrSize:    qrcode.DefaultSize,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.encryptionKey != nil && len(e.encryptionKey) != totp.AESKeySize {
		return nil, fmt.Errorf("otp: encryption key must be %d bytes", totp.AESKeySize)
	}
	return e, nil
}

// MailedCodeTTL returns the validity window of mailed codes.
func (e *OTPEngine) MailedCodeTTL() time.Duration { return e.mailedTTL }

// Provision generates a fresh secret, stores it on the account and enables
// two-factor authentication. The plaintext secret is only in the result.
func (e *OTPEngine) Provision(acc *Account) (Provisioning, error) {
	secret, err := totp.GenerateSecretKey()
	if err != nil {
		return Provisioning{}, err
	}
	uri, err := totp.GetTOTPURI(totp.URIParams{
		Secret:      secret,
		AccountName: acc.Email,
		Issuer:      e.issuer,
	})
	if err != nil {
		return Provisioning{}, err
	}
	qr, err := qrcode.DataURI(uri, e.qrSize)
	if err != nil {
		return Provisioning{}, err
	}

	stored := secret
	if e.encryptionKey != nil {
		if stored, err = totp.EncryptSecret(secret, e.encryptionKey); err != nil {
			return Provisioning{}, err
		}
	}

	acc.TwoFactorSecret = stored
	acc.TwoFactorEnabled = true
	return Provisioning{Secret: secret, URI: uri, QRCode: qr}, nil
}

// VerifyRolling checks a TOTP code with a one-step window on either side.
// A malformed code is a mismatch, not an error.
func (e *OTPEngine) VerifyRolling(acc *Account, code string, now time.Time) (bool, error) {
	if acc.TwoFactorSecret == "" {
		return false, nil
	}
	secret := acc.TwoFactorSecret
	if e.encryptionKey != nil {
		var err error
		if secret, err = totp.DecryptSecret(secret, e.encryptionKey); err != nil {
			return false, err
		}
	}
	ok, err := totp.Validate(secret, code, now)
	if errors.Is(err, totp.ErrInvalidOTP) {
		return false, nil
	}
	return ok, err
}

// IssueMailed stores the hash of a fresh code and its expiry on the account
// and returns the plaintext code for delivery.
func (e *OTPEngine) IssueMailed(acc *Account, now time.Time) (string, error) {
	code, err := totp.GenerateNumericCode()
	if err != nil {
		return "", err
	}
	acc.SetChallenge(totp.HashCode(code, e.pepper), now.Add(e.mailedTTL))
	return code, nil
}

// VerifyMailed accepts the outstanding code while now is not after its expiry
// and clears it on success. Failures leave the account untouched and carry the
// reason: errChallengeAbsent, errChallengeExpired or errChallengeMismatch.
func (e *OTPEngine) VerifyMailed(acc *Account, code string, now time.Time) error {
	switch {
	case !acc.HasChallenge():
		return errChallengeAbsent
	case now.After(*acc.TwoFactorExpiry):
		return errChallengeExpired
	case !totp.VerifyCode(code, acc.TwoFactorToken, e.pepper):
		return errChallengeMismatch
	}
	acc.ClearChallenge()
	return nil
}
