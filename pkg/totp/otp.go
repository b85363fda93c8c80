package totp

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"encoding/base32"
	"encoding/binary"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultDigits    = 6      // Standard 6-digit codes
	DefaultPeriod    = 30     // Time step in seconds (RFC 6238)
	DefaultAlgorithm = "SHA1" // HMAC-SHA1 (RFC 6238 default, the only one authenticator apps agree on)
	DefaultSkew      = 1      // Accepted steps before and after the current one
	secretSize       = 20     // 160-bit secret (RFC 4226 recommendation)
)

var (
	// ValidateSecretKeyRegex ensures Base32 format: uppercase A-Z, digits 2-7, optional padding
	ValidateSecretKeyRegex = regexp.MustCompile("^[A-Z2-7]+=*$")

	codeRegex = regexp.MustCompile(fmt.Sprintf(`^\d{%d}$`, DefaultDigits))

	b32 = base32.StdEncoding.WithPadding(base32.NoPadding)
)

// URIParams contains the parameters for otpauth URI generation.
type URIParams struct {
	Secret      string // Base32-encoded secret (required)
	AccountName string // Usually the account email (required)
	Issuer      string // Service name displayed in authenticator apps (required)
}

// Validate ensures all required URI parameters are present and valid.
func (p URIParams) Validate() error {
	switch {
	case p.Secret == "":
		return ErrMissingSecret
	case !ValidateSecretKeyRegex.MatchString(p.Secret):
		return ErrInvalidSecret
	case p.AccountName == "":
		return ErrMissingAccountName
	case p.Issuer == "":
		return ErrMissingIssuer
	}
	return nil
}

// GenerateSecretKey generates a new Base32-encoded secret key without padding.
func GenerateSecretKey() (string, error) {
	secret := make([]byte, secretSize)
	if _, err := rand.Read(secret); err != nil {
		return "", errors.Join(ErrFailedToGenerateSecretKey, err)
	}
	return b32.EncodeToString(secret), nil
}

// GetTOTPURI builds an otpauth:// URI following the Key Uri Format:
// https://github.com/google/google-authenticator/wiki/Key-Uri-Format
func GetTOTPURI(params URIParams) (string, error) {
	if err := params.Validate(); err != nil {
		return "", err
	}

	label := url.PathEscape(params.Issuer) + ":" + url.PathEscape(params.AccountName)

	query := url.Values{}
	query.Set("secret", params.Secret)
	query.Set("issuer", params.Issuer)
	query.Set("algorithm", DefaultAlgorithm)
	query.Set("digits", strconv.Itoa(DefaultDigits))
	query.Set("period", strconv.Itoa(DefaultPeriod))

	return "otpauth://totp/" + label + "?" + query.Encode(), nil
}

// Validate reports whether code matches the secret at the given moment,
// accepting DefaultSkew steps of clock drift on either side.
// A malformed code is reported as (false, ErrInvalidOTP).
func Validate(secret, code string, at time.Time) (bool, error) {
	key, err := decodeSecret(secret)
	if err != nil {
		return false, err
	}

	code = strings.TrimSpace(code)
	if !codeRegex.MatchString(code) {
		return false, ErrInvalidOTP
	}

	counter := at.Unix() / DefaultPeriod
	for i := -DefaultSkew; i <= DefaultSkew; i++ {
		candidate := formatCode(GenerateHOTP(key, counter+int64(i), DefaultDigits))
		if hmac.Equal([]byte(candidate), []byte(code)) {
			return true, nil
		}
	}

	return false, nil
}

// Generate returns the code for the time step containing t.
func Generate(secret string, at time.Time) (string, error) {
	key, err := decodeSecret(secret)
	if err != nil {
		return "", errors.Join(ErrFailedToGenerateTOTP, err)
	}
	return formatCode(GenerateHOTP(key, at.Unix()/DefaultPeriod, DefaultDigits)), nil
}

// GenerateHOTP implements RFC 4226 HMAC-based One-Time Password algorithm.
func GenerateHOTP(key []byte, counter int64, digits int) int {
	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], uint64(counter))

	mac := hmac.New(sha1.New, key)
	mac.Write(msg[:])
	sum := mac.Sum(nil)

	// Dynamic truncation: low nibble of the last byte selects a 31-bit window.
	offset := sum[len(sum)-1] & 0x0f
	code := binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7fffffff

	mod := uint32(1)
	for range digits {
		mod *= 10
	}
	return int(code % mod)
}

func decodeSecret(secret string) ([]byte, error) {
	secret = strings.TrimRight(strings.ToUpper(strings.TrimSpace(secret)), "=")
	if secret == "" || !ValidateSecretKeyRegex.MatchString(secret) {
		return nil, ErrInvalidSecret
	}
	key, err := b32.DecodeString(secret)
	if err != nil {
		return nil, errors.Join(ErrInvalidSecret, err)
	}
	return key, nil
}

func formatCode(code int) string {
	return fmt.Sprintf("%0*d", DefaultDigits, code)
}
