package utils // package utils provides helpers for token creation, parsing and hashing

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens
)

// ErrInvalidToken is the single error surfaced for any unusable token:
// bad signature, wrong secret, malformed payload or past expiry.  Callers
// must not be able to distinguish these cases.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the identity carried inside an access token and attached to
// the request context by the session middleware.
type Claims struct {
	UserID uint64
	Email  string
	Role   string
}

// AccessToken represents a signed JWT access token along with its expiry.
// Access tokens are short-lived, carried in a cookie or the Authorization
// header, and are never persisted server-side: validity is entirely
// signature plus expiry, so there is no revocation path short of natural
// expiry.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// RefreshToken represents a long-lived token exchanged for new access
// tokens.  Raw is the signed JWT string returned to the client; only a
// SHA-256 hash of it is stored in the refresh_tokens table.
type RefreshToken struct {
	Raw string    // raw token string returned to the client
	Exp time.Time // UTC expiration time
}

// NewAccessToken builds and signs an HS256 JWT for a user.  The claims
// carry the subject (sub), email, role, expiration (exp) and issued at
// (iat).  Expiry is embedded in the signed payload so the verifier, not an
// external clock check, enforces it.
func NewAccessToken(secret string, u Claims, ttlMin int) (AccessToken, error) {
	exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub":   u.UserID,
		"email": u.Email,
		"role":  u.Role,
		"exp":   exp.Unix(),
		"iat":   time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// NewRefreshToken builds and signs an HS256 JWT refresh token.  The secret
// must differ from the access secret so a refresh token can never pass
// access verification.  A random jti claim makes every grant unique even
// when two are issued for the same user within the same second, so each
// produces a distinct ledger hash.
func NewRefreshToken(secret string, userID uint64, ttlDays int) (RefreshToken, error) {
	jti, err := RandomHex(16)
	if err != nil {
		return RefreshToken{}, err
	}
	exp := time.Now().UTC().Add(time.Duration(ttlDays) * 24 * time.Hour)
	claims := jwt.MapClaims{
		"sub": userID,
		"jti": jti,
		"exp": exp.Unix(),
		"iat": time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return RefreshToken{}, err
	}
	return RefreshToken{Raw: signed, Exp: exp}, nil
}

// ParseAccess verifies an access token against the access secret and
// returns the identity claims.  Any failure collapses into
// ErrInvalidToken.
func ParseAccess(secret, raw string) (Claims, error) {
	claims, err := parseHS256(secret, raw)
	if err != nil {
		return Claims{}, err
	}
	uid, ok := subjectID(claims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	if role == "" {
		return Claims{}, ErrInvalidToken
	}
	return Claims{UserID: uid, Email: email, Role: role}, nil
}

// ParseRefresh verifies a refresh token against the refresh secret and
// returns the owning user id.
func ParseRefresh(secret, raw string) (uint64, error) {
	claims, err := parseHS256(secret, raw)
	if err != nil {
		return 0, err
	}
	uid, ok := subjectID(claims)
	if !ok {
		return 0, ErrInvalidToken
	}
	return uid, nil
}

// parseHS256 parses and validates a signed token.  The key callback
// asserts the HMAC signing method so tokens signed with a different
// algorithm are rejected; the library's validator enforces exp.
func parseHS256(secret, raw string) (jwt.MapClaims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// subjectID extracts the numeric sub claim.  JSON numbers decode as
// float64; issuers elsewhere may encode the id as a string.
func subjectID(claims jwt.MapClaims) (uint64, bool) {
	switch v := claims["sub"].(type) {
	case float64:
		return uint64(v), true
	case string:
		var uid uint64
		for _, r := range v {
			if r < '0' || r > '9' {
				return 0, false
			}
			uid = uid*10 + uint64(r-'0')
		}
		return uid, v != ""
	}
	return 0, false
}
