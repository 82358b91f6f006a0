package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"mpihole/internal/logger"
	"mpihole/internal/models"
	"mpihole/internal/notify"
	"mpihole/internal/repository"

	"github.com/google/uuid"
)

// MaxDisableSeconds is the longest pause a disable accepts. Durations are
// stored and exported as int, so anything larger would wrap.
const MaxDisableSeconds = math.MaxInt32

var (
	ErrNoServers         = errors.New("no pihole servers configured")
	ErrSecondsOutOfRange = fmt.Errorf("seconds must be at most %d", MaxDisableSeconds)
	errNotConfirmed      = errors.New("server did not confirm the new blocking state")
)

// ToggleService fans enable and disable out to every configured server
// and records the result.
type ToggleService struct {
	servers    []Server
	eventRepo  repository.EventRepo
	statusRepo repository.StatusRepo
	metrics    Recorder
	hub        Broadcaster
	publisher  notify.Publisher
	log        *logger.Logger
}

// NewToggleService builds a ToggleService over deps.Servers.
func NewToggleService(eventRepo repository.EventRepo, statusRepo repository.StatusRepo, deps Deps) *ToggleService {
	deps = deps.withDefaults()
	return &ToggleService{
		servers:    deps.Servers,
		eventRepo:  eventRepo,
		statusRepo: statusRepo,
		metrics:    deps.Metrics,
		hub:        deps.Hub,
		publisher:  deps.Publisher,
		log:        deps.Log,
	}
}

// Enable turns blocking on for every server.
func (s *ToggleService) Enable(ctx context.Context) (models.ToggleEvent, error) {
	return s.apply(ctx, models.ActionEnable, 0)
}

// Disable pauses blocking on every server for the given number of seconds.
func (s *ToggleService) Disable(ctx context.Context, seconds uint) (models.ToggleEvent, error) {
	if seconds > MaxDisableSeconds {
		return models.ToggleEvent{}, ErrSecondsOutOfRange
	}
	return s.apply(ctx, models.ActionDisable, seconds)
}

// apply runs the action against all servers concurrently. Outcomes keep
// the configured server order. Failing servers do not make apply fail:
// they are reported in the event, which is always recorded.
func (s *ToggleService) apply(ctx context.Context, action string, seconds uint) (models.ToggleEvent, error) {
	if len(s.servers) == 0 {
		return models.ToggleEvent{}, ErrNoServers
	}
	start := time.Now()

	outcomes := make([]models.ServerOutcome, len(s.servers))
	statuses := make([]models.ServerStatus, len(s.servers))
	var wg sync.WaitGroup
	for i, srv := range s.servers {
		wg.Add(1)
		go func(i int, srv Server) {
			defer wg.Done()
			outcomes[i], statuses[i] = s.toggleOne(ctx, srv, action, seconds)
		}(i, srv)
	}
	wg.Wait()

	e := models.ToggleEvent{
		EventID:    uuid.NewString(),
		OccurredAt: start.UTC(),
		Action:     action,
		Succeeded:  true,
		Outcomes:   outcomes,
	}
	if action == models.ActionDisable {
		e.Seconds = int(seconds)
	}
	for _, o := range outcomes {
		if !o.OK {
			e.Succeeded = false
			break
		}
	}

	// The servers are already toggled; bookkeeping errors are only logged.
	bg := context.WithoutCancel(ctx)
	if err := s.eventRepo.Append(bg, e); err != nil {
		s.log.Errorw("toggle_event_append_failed", "event_id", e.EventID, "err", err)
	}
	for _, st := range statuses {
		if err := s.statusRepo.Save(bg, st); err != nil {
			s.log.Errorw("server_status_save_failed", "server", st.BaseURL, "err", err)
		}
		s.metrics.SetStatus(st)
	}
	s.metrics.ObserveToggle(e, time.Since(start))
	s.hub.BroadcastEvent(e)
	s.hub.BroadcastStatus(statuses)
	if err := s.publisher.Publish(bg, e); err != nil {
		s.log.Warnw("toggle_event_publish_failed", "event_id", e.EventID, "err", err)
	}

	if e.Succeeded {
		s.log.Infow("toggle_applied", "action", action, "seconds", e.Seconds, "servers", len(outcomes))
	} else {
		s.log.Warnw("toggle_partially_failed", "action", action, "seconds", e.Seconds, "failed", e.FailedURLs())
	}
	return e, nil
}

func (s *ToggleService) toggleOne(ctx context.Context, srv Server, action string, seconds uint) (models.ServerOutcome, models.ServerStatus) {
	out := models.ServerOutcome{BaseURL: srv.BaseURL}
	st := models.ServerStatus{BaseURL: srv.BaseURL, Blocking: models.StatusUnknown}

	ok, err := withSession(ctx, srv.API, func() (bool, error) {
		if action == models.ActionDisable {
			s.log.Infow("pihole_disable", "server", srv.BaseURL, "seconds", seconds)
			return srv.API.Disable(ctx, seconds)
		}
		s.log.Infow("pihole_enable", "server", srv.BaseURL)
		return srv.API.Enable(ctx)
	})
	if err == nil && !ok {
		err = errNotConfirmed
	}
	st.UpdatedAt = time.Now().UTC()

	if err != nil {
		out.Error = err.Error()
		st.LastError = err.Error()
		s.log.Warnw("pihole_toggle_failed", "server", srv.BaseURL, "action", action, "err", err)
		return out, st
	}

	out.OK = true
	if action == models.ActionDisable {
		st.Blocking = models.StatusDisabled
		st.Timer = int(seconds)
	} else {
		st.Blocking = models.StatusEnabled
	}
	return out, st
}
