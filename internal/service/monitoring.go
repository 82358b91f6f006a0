package service

import (
	"context"
	"math"
	"sync"
	"time"

	"mpihole/internal/logger"
	"mpihole/internal/models"
	"mpihole/internal/pihole"
	"mpihole/internal/repository"
)

type MonitoringService struct {
	servers    []Server
	statusRepo repository.StatusRepo
	metrics    Recorder
	hub        Broadcaster
	log        *logger.Logger
}

func NewMonitoringService(statusRepo repository.StatusRepo, deps Deps) *MonitoringService {
	deps = deps.withDefaults()
	return &MonitoringService{
		servers:    deps.Servers,
		statusRepo: statusRepo,
		metrics:    deps.Metrics,
		hub:        deps.Hub,
		log:        deps.Log,
	}
}

// GetStatus returns the last persisted status of every configured server,
// in configuration order. Servers never seen yet are reported as unknown.
func (s *MonitoringService) GetStatus(ctx context.Context) ([]models.ServerStatus, error) {
	stored, err := s.statusRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	byURL := make(map[string]models.ServerStatus, len(stored))
	for _, st := range stored {
		byURL[st.BaseURL] = st
	}

	out := make([]models.ServerStatus, 0, len(s.servers))
	for _, srv := range s.servers {
		st, ok := byURL[srv.BaseURL]
		if !ok {
			st = models.ServerStatus{BaseURL: srv.BaseURL, Blocking: models.StatusUnknown}
		}
		st.UpdatedAt = toUTC(st.UpdatedAt)
		out = append(out, st)
	}
	return out, nil
}

// Refresh asks every server for its blocking status, persists the answers
// and broadcasts the new snapshot.
func (s *MonitoringService) Refresh(ctx context.Context) ([]models.ServerStatus, error) {
	out := make([]models.ServerStatus, len(s.servers))
	var wg sync.WaitGroup
	for i, srv := range s.servers {
		wg.Add(1)
		go func(i int, srv Server) {
			defer wg.Done()
			out[i] = s.poll(ctx, srv)
		}(i, srv)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, st := range out {
		if err := s.statusRepo.Save(ctx, st); err != nil {
			return nil, err
		}
		s.metrics.SetStatus(st)
	}
	s.hub.BroadcastStatus(out)
	return out, nil
}

func (s *MonitoringService) poll(ctx context.Context, srv Server) models.ServerStatus {
	st := models.ServerStatus{BaseURL: srv.BaseURL, Blocking: models.StatusUnknown}

	bs, err := withSession(ctx, srv.API, func() (pihole.BlockingState, error) {
		return srv.API.Status(ctx)
	})
	st.UpdatedAt = time.Now().UTC()
	if err != nil {
		st.LastError = err.Error()
		s.log.Debugw("pihole_status_failed", "server", srv.BaseURL, "err", err)
		return st
	}

	switch bs.Blocking {
	case models.StatusEnabled, models.StatusDisabled:
		st.Blocking = bs.Blocking
	}
	if bs.Timer != nil && *bs.Timer > 0 {
		st.Timer = int(math.Ceil(*bs.Timer))
	}
	return st
}

// toUTC normalizes non-zero time to UTC, preserving zero values.
func toUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}
