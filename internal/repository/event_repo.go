package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"mpihole/internal/models"

	"github.com/google/uuid"
)

type EventSQLite struct {
	db *sql.DB
}

func NewEventSQLite(db *sql.DB) *EventSQLite { return &EventSQLite{db: db} }

const insertEventSQL = `
		INSERT INTO toggle_events (id, occurred_at, action, seconds, succeeded, outcomes)
		VALUES (?, ?, ?, ?, ?, ?)
	`

// Append inserts a new event. Empty EventID and zero OccurredAt are filled in.
func (r *EventSQLite) Append(ctx context.Context, e models.ToggleEvent) error {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now()
	}

	var outcomes *string
	if len(e.Outcomes) > 0 {
		b, err := json.Marshal(e.Outcomes)
		if err != nil {
			return fmt.Errorf("marshal outcomes: %w", err)
		}
		s := string(b)
		outcomes = &s
	}

	_, err := r.db.ExecContext(ctx, insertEventSQL,
		e.EventID,
		formatDBTime(e.OccurredAt),
		strings.ToUpper(strings.TrimSpace(e.Action)),
		e.Seconds,
		e.Succeeded,
		outcomes,
	)
	return err
}

// List returns events filtered by [from, to] (inclusive) and/or action, oldest first.
func (r *EventSQLite) List(ctx context.Context, from, to time.Time, action string) ([]models.ToggleEvent, error) {
	var (
		conds []string
		args  []any
	)

	if !from.IsZero() {
		conds = append(conds, "occurred_at >= ?")
		args = append(args, formatDBTime(from))
	}
	if !to.IsZero() {
		conds = append(conds, "occurred_at <= ?")
		args = append(args, formatDBTime(to))
	}
	if action = strings.ToUpper(strings.TrimSpace(action)); action != "" {
		conds = append(conds, "action = ?")
		args = append(args, action)
	}

	q := `SELECT id, occurred_at, action, seconds, succeeded, outcomes FROM toggle_events`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY occurred_at ASC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.ToggleEvent, 0, 64)
	for rows.Next() {
		var (
			ev       models.ToggleEvent
			occurred any
			seconds  sql.NullInt64
			outcomes sql.NullString
		)
		if err := rows.Scan(&ev.EventID, &occurred, &ev.Action, &seconds, &ev.Succeeded, &outcomes); err != nil {
			return nil, err
		}
		if ev.OccurredAt, err = parseDBTime(occurred); err != nil {
			return nil, err
		}
		ev.Seconds = int(seconds.Int64)
		if outcomes.Valid && outcomes.String != "" {
			if err := json.Unmarshal([]byte(outcomes.String), &ev.Outcomes); err != nil {
				return nil, fmt.Errorf("decode outcomes of event %s: %w", ev.EventID, err)
			}
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
