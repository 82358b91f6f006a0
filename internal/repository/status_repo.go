package repository

import (
	"context"
	"database/sql"
	"time"

	"mpihole/internal/models"
)

type StatusSQLite struct {
	db *sql.DB
}

func NewStatusSQLite(db *sql.DB) *StatusSQLite {
	return &StatusSQLite{db: db}
}

const (
	upsertStatusSQL = `
		INSERT INTO server_status (base_url, blocking, timer_s, last_error, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(base_url) DO UPDATE SET
			blocking=excluded.blocking,
			timer_s=excluded.timer_s,
			last_error=excluded.last_error,
			updated_at=excluded.updated_at
	`

	selectStatusSQL = `
		SELECT base_url, blocking, timer_s, last_error, updated_at
		FROM server_status ORDER BY base_url
	`
)

// Save upserts the row of s.BaseURL. A zero UpdatedAt is set to now.
func (r *StatusSQLite) Save(ctx context.Context, s models.ServerStatus) error {
	ts := s.UpdatedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	blocking := s.Blocking
	if blocking == "" {
		blocking = models.StatusUnknown
	}

	_, err := r.db.ExecContext(ctx, upsertStatusSQL,
		s.BaseURL,
		blocking,
		s.Timer,
		s.LastError,
		formatDBTime(ts),
	)
	return err
}

// List returns every known server status ordered by base URL.
func (r *StatusSQLite) List(ctx context.Context) ([]models.ServerStatus, error) {
	rows, err := r.db.QueryContext(ctx, selectStatusSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ServerStatus
	for rows.Next() {
		var (
			s       models.ServerStatus
			timer   sql.NullInt64
			lastErr sql.NullString
			updated any
		)
		if err := rows.Scan(&s.BaseURL, &s.Blocking, &timer, &lastErr, &updated); err != nil {
			return nil, err
		}
		s.Timer = int(timer.Int64)
		s.LastError = lastErr.String
		if s.UpdatedAt, err = parseDBTime(updated); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
