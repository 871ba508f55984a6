// Package password hashes and verifies credentials with bcrypt.
package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrEmptyPassword is returned when hashing an empty string.
	ErrEmptyPassword = errors.New("password must not be empty")
	// ErrMismatchedHashAndPassword is returned when a password does not match its hash.
	ErrMismatchedHashAndPassword = errors.New("password does not match hash")
)

// Bcrypt implements one-way hashing with a caller supplied cost.
type Bcrypt struct{}

// NewBcrypt constructs a Bcrypt hasher.
func NewBcrypt() Bcrypt {
	return Bcrypt{}
}

// Hash generates a salted hash. Costs outside bcrypt's bounds fall back to bcrypt.DefaultCost.
func (Bcrypt) Hash(plaintext string, cost int) (string, error) {
	if plaintext == "" {
		return "", ErrEmptyPassword
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(plaintext), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Compare validates that plaintext matches hash. It is the verification side
// for credential checks at login.
func (Bcrypt) Compare(hash, plaintext string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatchedHashAndPassword
		}
		return err
	}
	return nil
}
