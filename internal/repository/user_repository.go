package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/coaching-portal/internal/model"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts a user and returns its ID.  The caller hashes the
// password first so policy checks happen before any storage work.  A
// duplicate email surfaces as ErrEmailExists via MySQL error 1062, which
// is how the unique key reports the loser of a concurrent-signup race.
func (r *UserRepo) Create(ctx context.Context, email, passwordHash, role string) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, role) VALUES (?,?,?)",
		email, passwordHash, role)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,password_hash,role,created_at,updated_at FROM users WHERE email=? LIMIT 1",
		email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,password_hash,role,created_at,updated_at FROM users WHERE id=? LIMIT 1",
		id).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// UpdatePasswordHash replaces a user's password hash.
func (r *UserRepo) UpdatePasswordHash(ctx context.Context, id uint64, newHash string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash=? WHERE id=?", newHash, id)
	return err
}

// ListClients returns every client account together with programme
// progress derived from their saved weeks: the highest week number written
// and the most recent save time.
func (r *UserRepo) ListClients(ctx context.Context) ([]model.ClientSummary, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT u.id, u.email,
		       COALESCE(MAX(w.week), 0),
		       MAX(w.updated_at)
		FROM users u
		LEFT JOIN client_weeks w ON w.client_id = u.id
		WHERE u.role = ?
		GROUP BY u.id, u.email
		ORDER BY u.id`, model.RoleClient)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ClientSummary
	for rows.Next() {
		var cs model.ClientSummary
		var last sql.NullTime
		if err := rows.Scan(&cs.ID, &cs.Email, &cs.CurrentWeek, &last); err != nil {
			return nil, err
		}
		if last.Valid {
			t := last.Time
			cs.LastActive = &t
		}
		out = append(out, cs)
	}
	return out, rows.Err()
}
