// Package repository implements persistence for users, refresh tokens,
// password-reset tickets and week data over database/sql.  Sentinel errors
// defined here let handlers map storage outcomes onto HTTP classes without
// string-matching driver messages.
package repository

import "errors"

// ErrEmailExists is returned when an insert hits the unique key on
// users.email.  Handlers translate this into HTTP 409.
var ErrEmailExists = errors.New("email already exists")

// ErrNoActiveToken is returned when a revocation matched no live refresh
// row.  During rotation this is treated as a possible replay signal and
// surfaces as HTTP 401, not as a soft success.
var ErrNoActiveToken = errors.New("no active refresh token")

// ErrTicketSpent is returned when consuming a reset ticket that was
// already used or superseded between lookup and consumption.
var ErrTicketSpent = errors.New("reset ticket already used")
