package totp

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"math/big"
	"strings"
)

// GenerateNumericCode returns a uniformly distributed, zero-padded numeric code
// of DefaultDigits length drawn from crypto/rand.
func GenerateNumericCode() (string, error) {
	max := big.NewInt(1)
	for range DefaultDigits {
		max.Mul(max, big.NewInt(10))
	}

	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", errors.Join(ErrFailedToGenerateCode, err)
	}
	return formatCode(int(n.Int64())), nil
}

// HashCode returns the hex HMAC-SHA256 of a one-time code keyed with pepper.
// Only the hash is meant to be persisted.
func HashCode(code string, pepper []byte) string {
	mac := hmac.New(sha256.New, pepper)
	mac.Write([]byte(strings.TrimSpace(code)))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyCode compares a submitted code against a stored hash in constant time.
func VerifyCode(code, hashed string, pepper []byte) bool {
	if hashed == "" {
		return false
	}
	return hmac.Equal([]byte(HashCode(code, pepper)), []byte(hashed))
}
