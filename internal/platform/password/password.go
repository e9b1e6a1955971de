// Package password provides one-way credential hashing. The digest embeds a
// random salt, so hashing the same plaintext twice yields different outputs.
// Plaintext passwords are never logged or stored.
package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Cost is the fixed bcrypt work factor.
const Cost = 10

// Hash derives an opaque digest from plain.
func Hash(plain string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plain), Cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether plain matches digest. Verification re-derives and
// compares; nothing is ever decrypted.
func Verify(plain, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
}
