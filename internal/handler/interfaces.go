package handler

import (
	"context"
	"encoding/json"
	"time"

	"github.com/iliyamo/coaching-portal/internal/model"
)

// Store interfaces consumed by the handlers.  The repository types satisfy
// them; tests substitute in-memory fakes.

// UserStore is the credential store: user records keyed by id and by
// normalized email.
type UserStore interface {
	Create(ctx context.Context, email, passwordHash, role string) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	ListClients(ctx context.Context) ([]model.ClientSummary, error)
}

// TokenStore is the refresh-token ledger.
type TokenStore interface {
	StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	IsValid(ctx context.Context, userID uint64, tokenHash string) (bool, error)
	RevokeMatching(ctx context.Context, userID uint64, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID uint64) error
}

// ResetStore manages password-reset tickets.
type ResetStore interface {
	Issue(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	Latest(ctx context.Context, userID uint64) (model.ResetTicket, error)
	Consume(ctx context.Context, ticketID, userID uint64, newPasswordHash string) error
}

// WeekStore persists per-(client, week) journal payloads.
type WeekStore interface {
	Get(ctx context.Context, clientID uint64, week uint32) (model.WeekRecord, bool, error)
	Upsert(ctx context.Context, clientID uint64, week uint32, data json.RawMessage) (time.Time, error)
}

// ResetMailer delivers a raw reset token out of band.  The raw token must
// appear nowhere else: not in logs and never persisted in cleartext.
type ResetMailer interface {
	SendResetToken(ctx context.Context, email, rawToken string, exp time.Time) error
}
