package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"mpihole/internal/models"
	"mpihole/internal/repository"
)

// LogFilter selects toggle history by time range and action.
type LogFilter struct {
	From   time.Time // inclusive; zero means no lower bound
	To     time.Time // inclusive; zero means no upper bound
	Action string    // "", "ENABLE", "DISABLE"
}

type EventLogService struct {
	eventRepo repository.EventRepo
}

func NewEventLogService(eventRepo repository.EventRepo) *EventLogService {
	return &EventLogService{eventRepo: eventRepo}
}

var (
	ErrInvalidTimeRange = errors.New("invalid time range: from must be <= to")
	ErrInvalidAction    = errors.New("invalid action: must be ENABLE or DISABLE")
)

// normalizeAction trims spaces and uppercases the action filter.
func normalizeAction(s string) string {
	return strings.TrimSpace(strings.ToUpper(s))
}

// normalizeAndValidateFilter prepares query parameters and validates them.
func normalizeAndValidateFilter(f LogFilter) (time.Time, time.Time, string, error) {
	from := toUTC(f.From)
	to := toUTC(f.To)

	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return time.Time{}, time.Time{}, "", ErrInvalidTimeRange
	}

	action := normalizeAction(f.Action)
	switch action {
	case "", models.ActionEnable, models.ActionDisable:
	default:
		return time.Time{}, time.Time{}, "", ErrInvalidAction
	}
	return from, to, action, nil
}

func (s *EventLogService) List(ctx context.Context, f LogFilter) ([]models.ToggleEvent, error) {
	from, to, action, err := normalizeAndValidateFilter(f)
	if err != nil {
		return nil, err
	}
	return s.eventRepo.List(ctx, from, to, action)
}
