package utils

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the work factor used for every stored password hash.
const BcryptCost = 10

var ErrEmptyPassword = errors.New("password cannot be empty")

// PasswordHasher hashes and verifies user passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) (bool, error)
}

// BcryptHasher implements PasswordHasher with bcrypt. A fresh salt is
// generated by bcrypt on every call to Hash.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a hasher using BcryptCost.
func NewBcryptHasher() *BcryptHasher {
	return &BcryptHasher{cost: BcryptCost}
}

// Hash hashes a password using bcrypt
func (h *BcryptHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify reports whether password matches hash. A mismatch is (false, nil);
// a malformed hash is returned as an error.
func (h *BcryptHasher) Verify(password, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, err
}
