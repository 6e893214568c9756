package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/iliyamo/coaching-portal/internal/model"
)

// WeekRepo persists one JSON blob per (client, week).  Saves are
// unconditional upserts racing on last-write-wins; ownership and role
// checks belong to the handler layer, not here.
type WeekRepo struct{ DB *sql.DB }

func NewWeekRepo(db *sql.DB) *WeekRepo { return &WeekRepo{DB: db} }

// Get loads a week record.  A week never written is not an error: found
// is false and the record empty.
func (r *WeekRepo) Get(ctx context.Context, clientID uint64, week uint32) (model.WeekRecord, bool, error) {
	rec := model.WeekRecord{ClientID: clientID, Week: week}
	var data sql.NullString
	err := r.DB.QueryRowContext(ctx,
		"SELECT data, updated_at FROM client_weeks WHERE client_id=? AND week=? LIMIT 1",
		clientID, week).Scan(&data, &rec.UpdatedAt)
	if err == sql.ErrNoRows {
		return rec, false, nil
	}
	if err != nil {
		return rec, false, err
	}
	if data.Valid {
		rec.Data = json.RawMessage(data.String)
	}
	return rec, true, nil
}

// Upsert creates the row on first write and replaces payload and
// timestamp on subsequent writes, leaning on UNIQUE(client_id, week).
// The returned time is the new updated_at.
func (r *WeekRepo) Upsert(ctx context.Context, clientID uint64, week uint32, data json.RawMessage) (time.Time, error) {
	now := time.Now().UTC().Truncate(time.Second)
	var payload interface{}
	if len(data) > 0 {
		payload = string(data)
	}
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO client_weeks (client_id, week, data, updated_at)
		VALUES (?,?,?,?)
		ON DUPLICATE KEY UPDATE data=VALUES(data), updated_at=VALUES(updated_at)`,
		clientID, week, payload, now)
	if err != nil {
		return time.Time{}, err
	}
	return now, nil
}
