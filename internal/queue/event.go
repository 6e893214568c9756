// Package queue defines message payloads exchanged over the message broker
// and the background consumer that turns them into outbound mail.
package queue

// ResetQueueName is the durable queue carrying password-reset requests.
const ResetQueueName = "password.reset.requested"

// PasswordResetRequestedEvent is published when a user asks for a password
// reset.  It is the single transient carrier of the raw reset token: the
// database holds only the token's hash, and the consumer renders the token
// into the outbound mail without logging it anywhere else.
type PasswordResetRequestedEvent struct {
	Email       string `json:"email"`
	ResetToken  string `json:"reset_token"`
	ExpiresAt   string `json:"expires_at"`
	RequestedAt string `json:"requested_at"`
}
