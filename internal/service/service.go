package service

import (
	"context"
	"time"

	"mpihole/internal/logger"
	"mpihole/internal/models"
	"mpihole/internal/notify"
	"mpihole/internal/pihole"
	"mpihole/internal/repository"
)

// Authorization manages operator accounts and their tokens.
type Authorization interface {
	SignUp(ctx context.Context, username, password string) (int, error)
	GenerateToken(ctx context.Context, username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Toggle fans enable/disable out to every configured Pi-hole.
type Toggle interface {
	Enable(ctx context.Context) (models.ToggleEvent, error)
	Disable(ctx context.Context, seconds uint) (models.ToggleEvent, error)
}

// Monitoring exposes the blocking status of the configured servers.
type Monitoring interface {
	GetStatus(ctx context.Context) ([]models.ServerStatus, error)
	Refresh(ctx context.Context) ([]models.ServerStatus, error)
}

// EventLog exposes the toggle history with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.ToggleEvent, error)
}

// Poller refreshes server status in the background.
// Stop via context cancellation in main() for graceful shutdown.
type Poller interface {
	Run(ctx context.Context, tick time.Duration)
}

// PiHole is the part of pihole.Client the services use.
type PiHole interface {
	Authenticated() bool
	Auth(ctx context.Context) error
	Enable(ctx context.Context) (bool, error)
	Disable(ctx context.Context, seconds uint) (bool, error)
	Status(ctx context.Context) (pihole.BlockingState, error)
}

// Server is one configured Pi-hole.
type Server struct {
	BaseURL string
	API     PiHole
}

// Servers wraps API clients, keeping their order.
func Servers(clients []*pihole.Client) []Server {
	out := make([]Server, 0, len(clients))
	for _, c := range clients {
		out = append(out, Server{BaseURL: c.BaseURL, API: c})
	}
	return out
}

// Recorder is implemented by metrics.Metrics.
type Recorder interface {
	ObserveToggle(e models.ToggleEvent, took time.Duration)
	SetStatus(s models.ServerStatus)
}

// Broadcaster is implemented by notify.Hub.
type Broadcaster interface {
	BroadcastEvent(e models.ToggleEvent)
	BroadcastStatus(status []models.ServerStatus)
}

// Deps are the collaborators shared by the services. Nil fields are
// replaced by no-op implementations.
type Deps struct {
	Servers    []Server
	Metrics    Recorder
	Hub        Broadcaster
	Publisher  notify.Publisher
	Log        *logger.Logger
	SigningKey string
}

func (d Deps) withDefaults() Deps {
	if d.Metrics == nil {
		d.Metrics = nopRecorder{}
	}
	if d.Hub == nil {
		d.Hub = nopBroadcaster{}
	}
	if d.Publisher == nil {
		d.Publisher = notify.Nop{}
	}
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	return d
}

// Service groups the services the handlers depend on.
type Service struct {
	Toggle
	Monitoring
	EventLog
	Poller
	Authorization
}

// NewService wires every service from the repositories and deps.
func NewService(repos *repository.Repository, deps Deps) *Service {
	deps = deps.withDefaults()
	monitoring := NewMonitoringService(repos.StatusRepo, deps)
	return &Service{
		Toggle:        NewToggleService(repos.EventRepo, repos.StatusRepo, deps),
		Monitoring:    monitoring,
		EventLog:      NewEventLogService(repos.EventRepo),
		Poller:        NewPollerService(monitoring, deps.Log),
		Authorization: NewAuthService(repos.Auth, deps.SigningKey),
	}
}

type nopRecorder struct{}

func (nopRecorder) ObserveToggle(models.ToggleEvent, time.Duration) {}
func (nopRecorder) SetStatus(models.ServerStatus)                   {}

type nopBroadcaster struct{}

func (nopBroadcaster) BroadcastEvent(models.ToggleEvent)     {}
func (nopBroadcaster) BroadcastStatus([]models.ServerStatus) {}
