package user

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// User types as meaningfully used by authorization. user_type is stored as an
// open string; these two are the only values the service produces.
const (
	TypeStudent = "student"
	TypeAdmin   = "admin"
)

// User is an identity record. Phone and Email are nullable but login assumes
// at least one is present.
type User struct {
	ID           string    `json:"id"`
	Phone        *string   `json:"phone,omitempty"`
	Email        *string   `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	UserType     string    `json:"user_type"`
	FullName     string    `json:"full_name"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// Subject returns the identifier embedded in tokens for this user: the phone
// when on file, otherwise the email.
func (u *User) Subject() string {
	if u.Phone != nil && *u.Phone != "" {
		return *u.Phone
	}
	if u.Email != nil {
		return *u.Email
	}
	return ""
}

// Repository reads and writes user records in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const userColumns = `id, phone, email, password_hash, user_type, COALESCE(full_name, ''), is_active, created_at`

// ByPhoneOrEmail finds a user whose phone or email equals ident. Returns
// (nil, nil) when no user matches.
func (r *Repository) ByPhoneOrEmail(ctx context.Context, ident string) (*User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE phone = $1 OR email = $1
	`, ident)
	return scanUser(row)
}

// Create inserts a user, assigning an id when missing.
func (r *Repository) Create(ctx context.Context, u *User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO users (id, phone, email, password_hash, user_type, full_name, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`, u.ID, u.Phone, u.Email, u.PasswordHash, u.UserType, u.FullName, u.IsActive)
	return row.Scan(&u.CreatedAt)
}

func scanUser(row *sql.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Phone, &u.Email, &u.PasswordHash, &u.UserType, &u.FullName, &u.IsActive, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
