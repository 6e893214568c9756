package model

import "time"

// Roles stored in users.role.  A coach can read and write any client's
// week data; a client can only touch their own.
const (
	RoleCoach  = "coach"
	RoleClient = "client"
)

// User represents an application user record as stored in the `users`
// table.  The json tags are omitted because these structs are used by the
// repository layer; handlers define separate response types with the
// public projection (id, email, role — never the hash).
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique, lowercased email address.
//  PasswordHash – bcrypt hashed password.
//  Role         – coach or client.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Role         string    // users.role
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// ClientSummary is one row of the coach dashboard listing: a client's
// identity plus how far into the programme they are and when they last
// saved anything.
//
// Fields:
//  ID          – client user id.
//  Email       – client email.
//  CurrentWeek – highest week number with saved data (0 when none).
//  LastActive  – most recent week save (nil when none).
type ClientSummary struct {
	ID          uint64     // users.id
	Email       string     // users.email
	CurrentWeek uint32     // MAX(client_weeks.week)
	LastActive  *time.Time // MAX(client_weeks.updated_at) (nullable)
}
