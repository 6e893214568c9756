package utils

import (
	"errors"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// ErrWeakPassword is returned by ValidatePassword when the plaintext does
// not meet the acceptance policy.  The check runs before hashing and
// before any storage mutation.
var ErrWeakPassword = errors.New("password must be at least 8 characters and contain upper, lower, digit and symbol")

// ValidatePassword enforces the password acceptance policy: minimum length
// 8 and at least one each of lowercase, uppercase, digit and
// non-alphanumeric symbol.
func ValidatePassword(plain string) error {
	var hasLower, hasUpper, hasDigit, hasSymbol bool
	n := 0
	for _, r := range plain {
		n++
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSymbol = true
		}
	}
	if n < 8 || !hasLower || !hasUpper || !hasDigit || !hasSymbol {
		return ErrWeakPassword
	}
	return nil
}

// HashPassword returns bcrypt hash using the given cost.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword safely compares bcrypt hash and plain password.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
