// Package security holds password hashing, token generation, CSRF
// protection and input checks for the portal.
package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

var (
	ErrInvalidToken = errors.New("invalid security token")
	ErrNoProfile    = errors.New("no client profile on request")
)

// SessionTokenLength is the number of random bytes in a session token.
const SessionTokenLength = 32

// GenerateToken generates a cryptographically secure random token
func GenerateToken(length int) (string, error) {
	b := make([]byte, length)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// NewSessionToken returns an opaque session token. Nothing ever parses it.
func NewSessionToken() (string, error) {
	return GenerateToken(SessionTokenLength)
}

// SecureCompare performs a constant-time comparison of two strings
func SecureCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
