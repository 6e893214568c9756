package model

import (
	"encoding/json"
	"time"
)

// WeekRecord is a row of the `client_weeks` table: one JSON blob per
// (client, week).  Saves are destructive upserts — no history is kept and
// concurrent writers race on last-write-wins.
//
// Fields:
//  ClientID  – owning user id.
//  Week      – week number within the programme (positive).
//  Data      – opaque JSON payload as submitted by the client.
//  UpdatedAt – timestamp of the last save.
type WeekRecord struct {
	ClientID  uint64          // client_weeks.client_id
	Week      uint32          // client_weeks.week
	Data      json.RawMessage // client_weeks.data
	UpdatedAt time.Time       // client_weeks.updated_at
}
