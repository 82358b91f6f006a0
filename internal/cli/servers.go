package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"mpihole/internal/config"
	"mpihole/internal/pihole"
)

// servers loads the server list and returns a client per server,
// authenticated when auth is set. It also handles --show-config and
// --reconfigure: when either ends the run, the client list is nil.
func (a *app) servers(ctx context.Context, auth bool) ([]*pihole.Client, error) {
	if a.showConfig {
		return nil, a.printConfig()
	}

	conf, err := config.LoadServers(a.cfgPath)
	switch {
	case errors.Is(err, config.ErrConfigNotFound):
		a.log.Debugw("config not found, starting configuration", "path", a.cfgPath)
		if conf, err = a.configure(nil); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, fmt.Errorf("failed to deserialize config: %w", err)
	}

	if a.reconfigure || len(conf.Servers) == 0 {
		_, err := a.configure(conf)
		return nil, err
	}

	clients := make([]*pihole.Client, 0, len(conf.Servers))
	for _, s := range conf.Servers {
		c := s.Client()
		if auth {
			if err := c.Auth(ctx); err != nil {
				return nil, fmt.Errorf("failed to authenticate with server %s: %w", s.BaseURL, err)
			}
		}
		clients = append(clients, c)
	}
	return clients, nil
}

func (a *app) configure(current *config.PiConfig) (*config.PiConfig, error) {
	conf := config.NewPrompter(a.in, a.out).Configure(current)
	if err := config.SaveServers(a.cfgPath, conf); err != nil {
		return nil, err
	}
	a.log.Debugw("config saved", "path", a.cfgPath, "servers", len(conf.Servers))
	return conf, nil
}

func (a *app) printConfig() error {
	b, err := os.ReadFile(a.cfgPath)
	if err != nil {
		return fmt.Errorf("could not open conf file at %s: %w", a.cfgPath, err)
	}
	a.println(string(b))
	return nil
}

// eachServer runs fn for every configured server. A failing server is
// logged and skipped; the run fails once all servers were tried.
func (a *app) eachServer(ctx context.Context, auth bool, fn func(context.Context, *pihole.Client) error) error {
	clients, err := a.servers(ctx, auth)
	if err != nil {
		return err
	}
	var failed int
	for _, c := range clients {
		if err := fn(ctx, c); err != nil {
			a.warnf("%s: %v", c.BaseURL, err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d servers failed", failed, len(clients))
	}
	return nil
}
