package repository

import (
	"context"
	"database/sql"
	"time"

	"mpihole/internal/models"
)

// Authorization stores operator accounts.
type Authorization interface {
	Create(ctx context.Context, username, hash string) (int, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// StatusRepo keeps the last known blocking status of each server.
type StatusRepo interface {
	Save(ctx context.Context, s models.ServerStatus) error
	List(ctx context.Context) ([]models.ServerStatus, error)
}

// EventRepo is the append-only toggle history.
type EventRepo interface {
	Append(ctx context.Context, e models.ToggleEvent) error
	List(ctx context.Context, from, to time.Time, action string) ([]models.ToggleEvent, error)
}

type Repository struct {
	StatusRepo StatusRepo
	EventRepo  EventRepo
	Auth       Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		StatusRepo: NewStatusSQLite(db),
		EventRepo:  NewEventSQLite(db),
		Auth:       NewUserRepository(db),
	}
}
