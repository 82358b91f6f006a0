package service

import (
	"context"
	"sync"
	"time"

	"mpihole/internal/models"
	"mpihole/internal/pihole"
)

// fakeEventRepo satisfies repository.EventRepo.
type fakeEventRepo struct {
	mu        sync.Mutex
	appended  []models.ToggleEvent
	appendErr error

	gotFrom   time.Time
	gotTo     time.Time
	gotAction string
	events    []models.ToggleEvent
	listErr   error
	listCalls int
}

func (f *fakeEventRepo) Append(_ context.Context, e models.ToggleEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appended = append(f.appended, e)
	return f.appendErr
}

func (f *fakeEventRepo) List(_ context.Context, from, to time.Time, action string) ([]models.ToggleEvent, error) {
	f.listCalls++
	f.gotFrom, f.gotTo, f.gotAction = from, to, action
	return f.events, f.listErr
}

// fakeStatusRepo keeps rows in a map.
type fakeStatusRepo struct {
	mu      sync.Mutex
	rows    map[string]models.ServerStatus
	saves   int
	saveErr error
	listErr error
}

func newFakeStatusRepo(rows ...models.ServerStatus) *fakeStatusRepo {
	r := &fakeStatusRepo{rows: map[string]models.ServerStatus{}}
	for _, s := range rows {
		r.rows[s.BaseURL] = s
	}
	return r
}

func (f *fakeStatusRepo) Save(_ context.Context, s models.ServerStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	if f.saveErr != nil {
		return f.saveErr
	}
	f.rows[s.BaseURL] = s
	return nil
}

func (f *fakeStatusRepo) List(context.Context) ([]models.ServerStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.ServerStatus, 0, len(f.rows))
	for _, s := range f.rows {
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeStatusRepo) get(url string) models.ServerStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[url]
}

// fakePiHole scripts the answers of one server.
type fakePiHole struct {
	mu sync.Mutex

	sid       string
	authErr   error
	authCalls int

	toggleErr   error
	unconfirmed bool
	expireOnce  bool // first call answers ErrUnauthorized

	state     pihole.BlockingState
	statusErr error

	enables  int
	disables []uint
	delay    time.Duration
}

func (f *fakePiHole) Authenticated() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sid != ""
}

func (f *fakePiHole) Auth(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.authCalls++
	if f.authErr != nil {
		return f.authErr
	}
	f.sid = "sid"
	return nil
}

func (f *fakePiHole) expired() bool {
	if f.expireOnce {
		f.expireOnce = false
		return true
	}
	return false
}

func (f *fakePiHole) Enable(ctx context.Context) (bool, error) {
	if err := f.wait(ctx); err != nil {
		return false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.expired() {
		return false, pihole.ErrUnauthorized
	}
	f.enables++
	return !f.unconfirmed && f.toggleErr == nil, f.toggleErr
}

func (f *fakePiHole) Disable(ctx context.Context, seconds uint) (bool, error) {
	if err := f.wait(ctx); err != nil {
		return false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.expired() {
		return false, pihole.ErrUnauthorized
	}
	f.disables = append(f.disables, seconds)
	return !f.unconfirmed && f.toggleErr == nil, f.toggleErr
}

func (f *fakePiHole) Status(ctx context.Context) (pihole.BlockingState, error) {
	if err := f.wait(ctx); err != nil {
		return pihole.BlockingState{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.expired() {
		return pihole.BlockingState{}, pihole.ErrUnauthorized
	}
	return f.state, f.statusErr
}

func (f *fakePiHole) wait(ctx context.Context) error {
	if f.delay == 0 {
		return nil
	}
	select {
	case <-time.After(f.delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type fakeRecorder struct {
	mu       sync.Mutex
	toggles  []models.ToggleEvent
	statuses []models.ServerStatus
}

func (r *fakeRecorder) ObserveToggle(e models.ToggleEvent, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toggles = append(r.toggles, e)
}

func (r *fakeRecorder) SetStatus(s models.ServerStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, s)
}

type fakeBroadcaster struct {
	mu        sync.Mutex
	events    []models.ToggleEvent
	snapshots [][]models.ServerStatus
}

func (b *fakeBroadcaster) BroadcastEvent(e models.ToggleEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, e)
}

func (b *fakeBroadcaster) BroadcastStatus(s []models.ServerStatus) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.snapshots = append(b.snapshots, s)
}

type fakePublisher struct {
	published []models.ToggleEvent
	err       error
}

func (p *fakePublisher) Publish(_ context.Context, e models.ToggleEvent) error {
	p.published = append(p.published, e)
	return p.err
}

func (p *fakePublisher) Close() error { return nil }
