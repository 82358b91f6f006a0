package service

import (
	"context"
	"time"

	"mpihole/internal/logger"
)

// PollerService keeps the status snapshot fresh.
type PollerService struct {
	monitoring Monitoring
	log        *logger.Logger
}

func NewPollerService(monitoring Monitoring, log *logger.Logger) *PollerService {
	if log == nil {
		log = logger.Nop()
	}
	return &PollerService{monitoring: monitoring, log: log}
}

// Run refreshes once right away and then at every tick until ctx is canceled.
func (p *PollerService) Run(ctx context.Context, tick time.Duration) {
	p.refresh(ctx)

	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			p.refresh(ctx)
		}
	}
}

func (p *PollerService) refresh(ctx context.Context) {
	status, err := p.monitoring.Refresh(ctx)
	if err != nil {
		if ctx.Err() == nil {
			p.log.Errorw("status_refresh_failed", "err", err)
		}
		return
	}
	unknown := 0
	for _, st := range status {
		if st.LastError != "" {
			unknown++
		}
	}
	p.log.Debugw("status_refreshed", "servers", len(status), "unreachable", unknown)
}
