// Package hash provides salted one-way hashing for secrets: account
// passwords and refresh-token fingerprints. Storing only fingerprints means a
// leaked database does not expose usable bearer tokens.
package hash

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

type Hasher struct {
	cost int
}

func NewHasher() *Hasher {
	return &Hasher{cost: bcrypt.DefaultCost}
}

// digest pre-hashes the input with SHA-256 so inputs longer than bcrypt's
// 72-byte limit (signed refresh tokens always are) can be fingerprinted.
func digest(plaintext string) []byte {
	sum := sha256.Sum256([]byte(plaintext))
	return []byte(base64.RawStdEncoding.EncodeToString(sum[:]))
}

// Hash returns a salted hash of plaintext. Output differs on every call.
func (h *Hasher) Hash(plaintext string) (string, error) {
	out, err := bcrypt.GenerateFromPassword(digest(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash secret: %w", err)
	}
	return string(out), nil
}

// Verify reports whether plaintext matches the stored hash. Comparison is
// constant-time; mismatch and malformed hashes both return false.
func (h *Hasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), digest(plaintext)) == nil
}
