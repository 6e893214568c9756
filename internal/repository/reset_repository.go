package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/coaching-portal/internal/model"
)

// ResetRepo persists password-reset tickets.  Invariant: at most one
// active (unused, unexpired) ticket per user — Issue supersedes any prior
// unused ticket in the same transaction that creates the new one.
type ResetRepo struct{ DB *sql.DB }

func NewResetRepo(db *sql.DB) *ResetRepo { return &ResetRepo{DB: db} }

// Issue marks any unused tickets for the user as used and inserts a fresh
// one, atomically.
func (r *ResetRepo) Issue(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		"UPDATE password_resets SET used_at=NOW() WHERE user_id=? AND used_at IS NULL",
		userID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO password_resets (user_id, token_hash, expires_at) VALUES (?,?,?)",
		userID, tokenHash, exp); err != nil {
		return err
	}
	return tx.Commit()
}

// Latest returns the user's most recent ticket regardless of state;
// sql.ErrNoRows when none was ever issued.  The caller decides whether it
// is spent, expired or mismatched.
func (r *ResetRepo) Latest(ctx context.Context, userID uint64) (model.ResetTicket, error) {
	var t model.ResetTicket
	var used sql.NullTime
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, user_id, token_hash, expires_at, used_at, created_at
		 FROM password_resets WHERE user_id=? ORDER BY created_at DESC, id DESC LIMIT 1`,
		userID).Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &used, &t.CreatedAt)
	if err != nil {
		return model.ResetTicket{}, err
	}
	if used.Valid {
		u := used.Time
		t.UsedAt = &u
	}
	return t, nil
}

// Consume atomically marks the ticket used, replaces the user's password
// hash and revokes all of their refresh tokens.  Either every mutation
// lands or none does — there is no state where the password changed but
// the ticket stayed usable, or vice versa.  ErrTicketSpent is returned
// when the ticket was consumed by a concurrent request after the caller's
// lookup.
func (r *ResetRepo) Consume(ctx context.Context, ticketID, userID uint64, newPasswordHash string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"UPDATE password_resets SET used_at=NOW() WHERE id=? AND used_at IS NULL",
		ticketID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTicketSpent
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE users SET password_hash=? WHERE id=?",
		newPasswordHash, userID); err != nil {
		return err
	}
	// A reset usually follows a suspected compromise; outstanding refresh
	// tokens die with the old password.
	if _, err := tx.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=NOW() WHERE user_id=? AND revoked_at IS NULL",
		userID); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteDead removes used or expired tickets older than the retention
// window.  Used by the cleanup job.
func (r *ResetRepo) DeleteDead(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-retention)
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM password_resets WHERE (used_at IS NOT NULL AND used_at < ?) OR expires_at < ?",
		cutoff, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
