package utils

import (
	"crypto/rand"    // secure random number generation
	"crypto/sha256"  // SHA-256 hashing for refresh and reset tokens
	"crypto/subtle"  // constant-time comparison for reset tickets
	"encoding/hex"   // hex encoding of digests and random material
)

// HashToken returns the SHA-256 hash of a raw token as a hex string.  Only
// this digest is persisted; a stolen database row is useless without the
// raw value.  The digest is deterministic, so it doubles as the lookup key
// for refresh rows.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// TokenHashEquals compares a raw token against a stored hex digest in
// constant time.
func TokenHashEquals(raw, storedHash string) bool {
	h := HashToken(raw)
	return subtle.ConstantTimeCompare([]byte(h), []byte(storedHash)) == 1
}

// NewResetToken returns a cryptographically random raw token for a
// password-reset ticket.  It is not derived from any user data.  The raw
// value travels to the delivery channel exactly once and only its hash is
// stored.
func NewResetToken() (string, error) {
	return RandomHex(32) // 32 bytes -> 64 hex chars
}

// RandomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data.
func RandomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
