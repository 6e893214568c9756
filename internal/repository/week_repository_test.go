package repository

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekGetFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewWeekRepo(db)
	updated := time.Date(2026, 8, 25, 9, 30, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT data, updated_at FROM client_weeks WHERE client_id=? AND week=? LIMIT 1")).
		WithArgs(uint64(2), uint32(3)).
		WillReturnRows(sqlmock.NewRows([]string{"data", "updated_at"}).
			AddRow(`{"note":"x"}`, updated))

	rec, found, err := repo.Get(context.Background(), 2, 3)
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `{"note":"x"}`, string(rec.Data))
	assert.True(t, rec.UpdatedAt.Equal(updated))
}

func TestWeekGetNeverWritten(t *testing.T) {
	db, mock := newMock(t)
	repo := NewWeekRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM client_weeks WHERE client_id=? AND week=?")).
		WithArgs(uint64(2), uint32(9)).
		WillReturnRows(sqlmock.NewRows([]string{"data", "updated_at"}))

	rec, found, err := repo.Get(context.Background(), 2, 9)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, rec.Data)
	assert.Equal(t, uint64(2), rec.ClientID)
	assert.Equal(t, uint32(9), rec.Week)
}

func TestWeekUpsert(t *testing.T) {
	db, mock := newMock(t)
	repo := NewWeekRepo(db)

	mock.ExpectExec("ON DUPLICATE KEY UPDATE data=VALUES\\(data\\), updated_at=VALUES\\(updated_at\\)").
		WithArgs(uint64(2), uint32(3), `{"note":"x"}`, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	now, err := repo.Upsert(context.Background(), 2, 3, json.RawMessage(`{"note":"x"}`))
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC(), now, time.Minute)
	// updated_at carries second precision, matching what MySQL stores.
	assert.Zero(t, now.Nanosecond())
}

func TestWeekUpsertNilPayloadStoresNull(t *testing.T) {
	db, mock := newMock(t)
	repo := NewWeekRepo(db)

	mock.ExpectExec("INSERT INTO client_weeks").
		WithArgs(uint64(2), uint32(3), nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	_, err := repo.Upsert(context.Background(), 2, 3, nil)
	require.NoError(t, err)
}
