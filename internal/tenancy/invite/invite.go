// Package invite issues and checks one-time tenancy invitation tokens.
// Only the bcrypt hash is stored; the cleartext token is shown once.
package invite

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	dErrors "rentwise/pkg/domain-errors"
)

const tokenBytes = 24

// NewToken returns a URL-safe random token and its bcrypt hash.
func NewToken() (token, hash string, err error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("could not generate invitation token: %w", err)
	}
	token = base64.RawURLEncoding.EncodeToString(buf)
	hash, err = Hash(token)
	if err != nil {
		return "", "", err
	}
	return token, hash, nil
}

// Hash creates a bcrypt hash of token.
func Hash(token string) (string, error) {
	if token == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invitation token cannot be empty")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", dErrors.New(dErrors.CodeInvalidInput, "invitation token is too long")
		}
		return "", fmt.Errorf("could not hash invitation token: %w", err)
	}
	return string(hashed), nil
}

// Verify checks token against hash. A mismatch is a validation error.
func Verify(token, hash string) error {
	if token == "" || hash == "" {
		return dErrors.New(dErrors.CodeValidation, "invalid invitation token")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(token)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return dErrors.New(dErrors.CodeValidation, "invalid invitation token")
		}
		return fmt.Errorf("could not verify invitation token: %w", err)
	}
	return nil
}
