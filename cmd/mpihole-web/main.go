package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "mpihole/docs"
	"mpihole/internal/config"
	"mpihole/internal/handlers"
	"mpihole/internal/logger"
	"mpihole/internal/metrics"
	"mpihole/internal/notify"
	"mpihole/internal/pihole"
	"mpihole/internal/repository"
	"mpihole/internal/repository/db"
	"mpihole/internal/server"
	mservice "mpihole/internal/service"

	"github.com/kardianos/service"
	"github.com/spf13/cobra"
)

const (
	defaultConfigPath = "/etc/mpihole-web.yaml"
	shutdownTimeout   = 10 * time.Second
)

var (
	cfgPath       string
	piListConfig  string
	debug         bool
	serviceAction string
)

// @title mpihole control server
// @version 1.0
// @description Toggles ad blocking on a group of Pi-hole servers.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	root := &cobra.Command{
		Use:   "mpihole-web",
		Short: "Serve the enable/disable endpoints for a group of Pi-hole servers",
		Long: `Starts the control server. With --service it installs, removes,
starts or stops the server as a system service instead.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runWeb,
	}
	root.Flags().StringVarP(&cfgPath, "config", "c", defaultConfigPath, "Path to the web config")
	root.Flags().StringVarP(&piListConfig, "pi-list-config", "l", "", "Server list written by mpihole -r, overrides main.pi_list_config")
	root.Flags().BoolVarP(&debug, "debug", "D", false, "Turn on debug output")
	root.Flags().StringVar(&serviceAction, "service", "", "Control the system service: install, uninstall, start, stop, restart")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runWeb(cmd *cobra.Command, args []string) error {
	// the service manager starts us from another working directory
	if abs, err := filepath.Abs(cfgPath); err == nil {
		cfgPath = abs
	}
	if piListConfig != "" {
		if abs, err := filepath.Abs(piListConfig); err == nil {
			piListConfig = abs
		}
	}
	svcConfig := &service.Config{
		Name:        "mpihole-web",
		DisplayName: "mpihole control server",
		Description: "Enables and disables ad blocking on a group of Pi-hole servers",
		Arguments:   serviceArgs(),
	}

	prg := &program{}
	s, err := service.New(prg, svcConfig)
	if err != nil {
		return err
	}

	if serviceAction != "" {
		if err := service.Control(s, serviceAction); err != nil {
			return fmt.Errorf("failed to %s service: %w", serviceAction, err)
		}
		fmt.Printf("Service action '%s' completed successfully.\n", serviceAction)
		return nil
	}

	// Blocks until the service manager or a signal stops the program
	return s.Run()
}

// serviceArgs are the flags the installed service is started with.
func serviceArgs() []string {
	out := []string{"--config", cfgPath}
	if piListConfig != "" {
		out = append(out, "--pi-list-config", piListConfig)
	}
	if debug {
		out = append(out, "--debug")
	}
	return out
}

// program adapts the control server to service.Interface.
type program struct {
	log      *logger.Logger
	srv      *server.Server
	hub      *notify.Hub
	pub      notify.Publisher
	db       *sql.DB
	cancel   context.CancelFunc
	services *mservice.Service
}

func (p *program) Start(s service.Service) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	p.log = logger.Get(cfg.LogLevel)
	if cfg.Source == "" {
		p.log.Infow("web config not found; using defaults and environment", "path", cfgPath)
	}

	clients, err := loadServers(cfg.PiListConfig, p.log)
	if err != nil {
		return err
	}

	if p.db, err = openDB(cfg.DBPath, p.log); err != nil {
		return err
	}

	p.pub = openPublisher(cfg, p.log)
	p.hub = notify.NewHub()
	m := metrics.New()

	// wire dependencies
	repos := repository.NewRepository(p.db)
	p.services = mservice.NewService(repos, mservice.Deps{
		Servers:    mservice.Servers(clients),
		Metrics:    m,
		Hub:        p.hub,
		Publisher:  p.pub,
		Log:        p.log,
		SigningKey: cfg.SigningKey,
	})
	apiHandler := handlers.NewHandler(p.services, p.log, handlers.Options{
		StaticDir: cfg.StaticDir,
		Metrics:   m.Handler(),
		Events:    p.hub,
	})

	// context for background goroutines
	var ctx context.Context
	ctx, p.cancel = context.WithCancel(context.Background())
	go p.services.Poller.Run(ctx, cfg.PollInterval)

	p.srv = &server.Server{}
	runHTTPServer(p.srv, cfg.BindTo, apiHandler, p.log)
	return nil
}

// Stop performs the graceful shutdown.
func (p *program) Stop(s service.Service) error {
	p.log.Infow("shutting down server...")

	// stop background goroutines
	p.cancel()

	// allow in-flight requests to complete
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := p.srv.Shutdown(ctx); err != nil {
		p.log.Errorw("server forced to shutdown", "err", err)
	}
	p.hub.Close()
	if err := p.pub.Close(); err != nil {
		p.log.Warnw("failed to close publisher", "err", err)
	}
	if err := p.db.Close(); err != nil {
		p.log.Errorw("failed to close sqlite", "err", err)
	}
	return nil
}

func loadConfig() (config.Web, error) {
	cfg, err := config.LoadWeb(cfgPath)
	if err != nil {
		return config.Web{}, err
	}
	if piListConfig != "" {
		cfg.PiListConfig = piListConfig
	}
	if debug {
		cfg.LogLevel = logger.DebugLevel
	}
	return cfg, nil
}

// loadServers reads the list written by the CLI. Sessions are opened
// lazily on the first call to each server.
func loadServers(path string, log *logger.Logger) ([]*pihole.Client, error) {
	conf, err := config.LoadServers(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load server list: %w", err)
	}
	if len(conf.Servers) == 0 {
		log.Warnw("server list is empty; toggles will answer 503", "path", path)
	}
	clients := make([]*pihole.Client, 0, len(conf.Servers))
	for _, s := range conf.Servers {
		clients = append(clients, s.Client())
	}
	log.Infow("loaded server list", "path", path, "servers", len(clients))
	return clients, nil
}

// openDB initializes the SQLite database using configuration.
func openDB(path string, log *logger.Logger) (*sql.DB, error) {
	if path == "" {
		log.Infow("db.path not set in config; using default file", "default", "mpihole.db")
		path = "mpihole.db"
	}
	conn, err := db.InitDB(path)
	if err != nil {
		return nil, fmt.Errorf("failed to init sqlite: %w", err)
	}
	return conn, nil
}

// openPublisher connects to the broker when amqp.url is set. A broker
// that cannot be reached disables publishing instead of failing startup.
func openPublisher(cfg config.Web, log *logger.Logger) notify.Publisher {
	if cfg.AMQPURL == "" {
		return notify.Nop{}
	}
	pub, err := notify.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange, log)
	if err != nil {
		log.Errorw("amqp publisher disabled", "err", err)
		return notify.Nop{}
	}
	return pub
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, bindTo string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		log.Infow("starting server", "bind_to", server.NormalizeAddr(bindTo))
		if err := srv.Run(bindTo, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}
