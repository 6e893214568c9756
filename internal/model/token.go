package model

import "time"

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to a user and carries metadata for expiry and
// revocation.  The plain token is never stored; only its SHA-256 hash.
// Rotation never updates a row in place: the old row is revoked and a new
// one inserted, so the table doubles as an audit trail of issuances.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  TokenHash – SHA-256 hex digest of the raw token value.
//  ExpiresAt – expiration timestamp of the token.
//  RevokedAt – when the token was revoked (nil while active).
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}

// ResetTicket models a row in the `password_resets` table: a single-use,
// time-bounded credential authorizing exactly one password change.  At
// most one ticket per user is active (unused, unexpired) at a time;
// issuing a new one marks any prior unused ticket used.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the ticket.
//  TokenHash – SHA-256 hex digest of the raw reset token.
//  ExpiresAt – expiration timestamp (short, ~1 hour).
//  UsedAt    – when the ticket was consumed or superseded (nil while active).
//  CreatedAt – timestamp of creation.
type ResetTicket struct {
	ID        uint64     // password_resets.id
	UserID    uint64     // password_resets.user_id
	TokenHash string     // password_resets.token_hash
	ExpiresAt time.Time  // password_resets.expires_at
	UsedAt    *time.Time // password_resets.used_at (nullable)
	CreatedAt time.Time  // password_resets.created_at
}
