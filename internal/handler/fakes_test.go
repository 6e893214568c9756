package handler_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/coaching-portal/internal/config"
	"github.com/iliyamo/coaching-portal/internal/model"
	"github.com/iliyamo/coaching-portal/internal/repository"
)

// In-memory stand-ins for the repository layer.  They mirror the SQL
// repositories' semantics (sentinel errors included) closely enough for
// handler tests; the SQL itself is covered by the repository tests.

func testConfig() config.Config {
	return config.Config{
		Env:            "dev",
		AccessSecret:   "test-access-secret",
		RefreshSecret:  "test-refresh-secret",
		AccessTTLMin:   15,
		RefreshTTLDays: 7,
		ResetTTLMin:    60,
		BcryptCost:     bcrypt.MinCost,
		AccessCookie:   "access_token",
		RefreshCookie:  "refresh_token",
		CookieSite:     http.SameSiteLaxMode,
	}
}

// ----- users -----

type fakeUsers struct {
	mu     sync.Mutex
	nextID uint64
	users  map[uint64]model.User
	weeks  *fakeWeeks // for ListClients aggregates
}

func newFakeUsers(weeks *fakeWeeks) *fakeUsers {
	return &fakeUsers{users: map[uint64]model.User{}, weeks: weeks}
}

func (f *fakeUsers) Create(_ context.Context, email, passwordHash, role string) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range f.users {
		if u.Email == email {
			return 0, repository.ErrEmailExists
		}
	}
	f.nextID++
	now := time.Now().UTC()
	f.users[f.nextID] = model.User{
		ID: f.nextID, Email: email, PasswordHash: passwordHash, Role: role,
		CreatedAt: now, UpdatedAt: now,
	}
	return f.nextID, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, sql.ErrNoRows
}

func (f *fakeUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return model.User{}, sql.ErrNoRows
	}
	return u, nil
}

func (f *fakeUsers) ListClients(_ context.Context) ([]model.ClientSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.ClientSummary
	for _, u := range f.users {
		if u.Role != model.RoleClient {
			continue
		}
		cs := model.ClientSummary{ID: u.ID, Email: u.Email}
		if f.weeks != nil {
			cs.CurrentWeek, cs.LastActive = f.weeks.progress(u.ID)
		}
		out = append(out, cs)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeUsers) setPasswordHash(id uint64, hash string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := f.users[id]
	u.PasswordHash = hash
	f.users[id] = u
}

// ----- refresh-token ledger -----

type fakeTokens struct {
	mu   sync.Mutex
	rows []model.RefreshToken
}

func (f *fakeTokens) StoreRefresh(_ context.Context, userID uint64, tokenHash string, exp time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, model.RefreshToken{
		ID: uint64(len(f.rows) + 1), UserID: userID, TokenHash: tokenHash,
		ExpiresAt: exp, CreatedAt: time.Now().UTC(),
	})
	return nil
}

func (f *fakeTokens) IsValid(_ context.Context, userID uint64, tokenHash string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.UserID == userID && r.TokenHash == tokenHash {
			return r.RevokedAt == nil && time.Now().UTC().Before(r.ExpiresAt), nil
		}
	}
	return false, nil
}

func (f *fakeTokens) RevokeMatching(_ context.Context, userID uint64, tokenHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].UserID == userID && f.rows[i].TokenHash == tokenHash && f.rows[i].RevokedAt == nil {
			now := time.Now().UTC()
			f.rows[i].RevokedAt = &now
			return nil
		}
	}
	return repository.ErrNoActiveToken
}

func (f *fakeTokens) RevokeAllForUser(_ context.Context, userID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now().UTC()
	for i := range f.rows {
		if f.rows[i].UserID == userID && f.rows[i].RevokedAt == nil {
			f.rows[i].RevokedAt = &now
		}
	}
	return nil
}

func (f *fakeTokens) activeCount(userID uint64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.rows {
		if r.UserID == userID && r.RevokedAt == nil && time.Now().UTC().Before(r.ExpiresAt) {
			n++
		}
	}
	return n
}

func (f *fakeTokens) hasHash(tokenHash string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.TokenHash == tokenHash {
			return true
		}
	}
	return false
}

// ----- reset tickets -----

type fakeResets struct {
	mu      sync.Mutex
	nextID  uint64
	tickets []model.ResetTicket
	users   *fakeUsers
	tokens  *fakeTokens
}

func (f *fakeResets) Issue(_ context.Context, userID uint64, tokenHash string, exp time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now().UTC()
	for i := range f.tickets {
		if f.tickets[i].UserID == userID && f.tickets[i].UsedAt == nil {
			t := now
			f.tickets[i].UsedAt = &t
		}
	}
	f.nextID++
	f.tickets = append(f.tickets, model.ResetTicket{
		ID: f.nextID, UserID: userID, TokenHash: tokenHash,
		ExpiresAt: exp, CreatedAt: now,
	})
	return nil
}

func (f *fakeResets) Latest(_ context.Context, userID uint64) (model.ResetTicket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *model.ResetTicket
	for i := range f.tickets {
		if f.tickets[i].UserID != userID {
			continue
		}
		if latest == nil || f.tickets[i].ID > latest.ID {
			latest = &f.tickets[i]
		}
	}
	if latest == nil {
		return model.ResetTicket{}, sql.ErrNoRows
	}
	return *latest, nil
}

func (f *fakeResets) Consume(_ context.Context, ticketID, userID uint64, newPasswordHash string) error {
	f.mu.Lock()
	for i := range f.tickets {
		if f.tickets[i].ID != ticketID {
			continue
		}
		if f.tickets[i].UsedAt != nil {
			f.mu.Unlock()
			return repository.ErrTicketSpent
		}
		now := time.Now().UTC()
		f.tickets[i].UsedAt = &now
		f.mu.Unlock()
		f.users.setPasswordHash(userID, newPasswordHash)
		return f.tokens.RevokeAllForUser(context.Background(), userID)
	}
	f.mu.Unlock()
	return repository.ErrTicketSpent
}

// expireLatest backdates the newest ticket for a user, for expiry tests.
func (f *fakeResets) expireLatest(userID uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.tickets) - 1; i >= 0; i-- {
		if f.tickets[i].UserID == userID {
			f.tickets[i].ExpiresAt = time.Now().UTC().Add(-time.Minute)
			return
		}
	}
}

// ----- weeks -----

type weekKey struct {
	clientID uint64
	week     uint32
}

type fakeWeeks struct {
	mu   sync.Mutex
	rows map[weekKey]model.WeekRecord
}

func newFakeWeeks() *fakeWeeks { return &fakeWeeks{rows: map[weekKey]model.WeekRecord{}} }

func (f *fakeWeeks) Get(_ context.Context, clientID uint64, week uint32) (model.WeekRecord, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.rows[weekKey{clientID, week}]
	if !ok {
		return model.WeekRecord{ClientID: clientID, Week: week}, false, nil
	}
	return rec, true, nil
}

func (f *fakeWeeks) Upsert(_ context.Context, clientID uint64, week uint32, data json.RawMessage) (time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now().UTC().Truncate(time.Second)
	f.rows[weekKey{clientID, week}] = model.WeekRecord{
		ClientID: clientID, Week: week, Data: data, UpdatedAt: now,
	}
	return now, nil
}

func (f *fakeWeeks) progress(clientID uint64) (uint32, *time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var maxWeek uint32
	var last *time.Time
	for k, rec := range f.rows {
		if k.clientID != clientID {
			continue
		}
		if k.week > maxWeek {
			maxWeek = k.week
		}
		if last == nil || rec.UpdatedAt.After(*last) {
			t := rec.UpdatedAt
			last = &t
		}
	}
	return maxWeek, last
}

// ----- mailer -----

type sentMail struct {
	Email string
	Token string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (f *fakeMailer) SendResetToken(_ context.Context, email, rawToken string, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMail{Email: email, Token: rawToken})
	return nil
}

func (f *fakeMailer) lastFor(email string) (sentMail, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.sent) - 1; i >= 0; i-- {
		if f.sent[i].Email == email {
			return f.sent[i], true
		}
	}
	return sentMail{}, false
}
