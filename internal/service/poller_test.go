package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"mpihole/internal/models"
)

type countingMonitoring struct {
	refreshes atomic.Int32
	err       error
}

func (m *countingMonitoring) GetStatus(context.Context) ([]models.ServerStatus, error) {
	return nil, nil
}

func (m *countingMonitoring) Refresh(context.Context) ([]models.ServerStatus, error) {
	m.refreshes.Add(1)
	return []models.ServerStatus{{BaseURL: "http://pi", LastError: "x"}}, m.err
}

func TestPoller_RefreshesUntilCanceled(t *testing.T) {
	mon := &countingMonitoring{err: errors.New("db down")}
	p := NewPollerService(mon, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx, 10*time.Millisecond)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for mon.refreshes.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("only %d refreshes", mon.refreshes.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestPoller_RefreshesImmediately(t *testing.T) {
	mon := &countingMonitoring{}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	NewPollerService(mon, nil).Run(ctx, time.Hour)

	if got := mon.refreshes.Load(); got != 1 {
		t.Fatalf("refreshes = %d, want 1", got)
	}
}
