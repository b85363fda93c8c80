package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher hashes passwords with an embedded salt.
type PasswordHasher interface {
	Hash(plaintext string) ([]byte, error)
	Verify(plaintext string, hash []byte) bool
}

// BcryptHasher implements PasswordHasher with bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher falls back to bcrypt.DefaultCost for out-of-range costs.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(plaintext string) ([]byte, error) {
	if plaintext == "" {
		return nil, errors.Join(ErrValidation, errors.New("password is empty"))
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, errors.Join(ErrValidation, err)
	}
	return hash, err
}

func (h *BcryptHasher) Verify(plaintext string, hash []byte) bool {
	if plaintext == "" || len(hash) == 0 {
		return false
	}
	return bcrypt.CompareHashAndPassword(hash, []byte(plaintext)) == nil
}
