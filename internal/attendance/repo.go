package attendance

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// StatusPresent is the only status this flow produces. The column stays an
// open string so absence or lateness states can be added without a migration.
const StatusPresent = "present"

// Record is one check-in event. Records are append-only: never updated or
// deleted once written.
type Record struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	PhotoURL  string    `json:"photo_url"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Repository persists attendance records in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Insert writes a new record and returns it with id and created_at populated.
func (r *Repository) Insert(ctx context.Context, rec Record) (Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Status == "" {
		rec.Status = StatusPresent
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO attendance (id, user_id, latitude, longitude, photo_url, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, rec.ID, rec.UserID, rec.Latitude, rec.Longitude, rec.PhotoURL, rec.Status)
	if err := row.Scan(&rec.CreatedAt); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// ListAll returns every record, newest first.
func (r *Repository) ListAll(ctx context.Context) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, latitude, longitude, photo_url, status, created_at
		FROM attendance
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Latitude, &rec.Longitude, &rec.PhotoURL, &rec.Status, &rec.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, rec)
	}
	return res, rows.Err()
}

// Count returns the total number of records.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM attendance`).Scan(&n)
	return n, err
}
