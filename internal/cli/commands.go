package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"mpihole/internal/pihole"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

const (
	defaultDisableSecs = 300
	defaultTopN        = 10
)

var (
	enabledColor  = color.New(color.FgGreen, color.Bold)
	disabledColor = color.New(color.FgRed, color.Bold)
	unknownColor  = color.New(color.FgYellow)
)

func (a *app) printState(base, state string) {
	c := unknownColor
	switch state {
	case "enabled":
		c = enabledColor
	case "disabled":
		c = disabledColor
	}
	fmt.Fprintf(a.out, "%s: %s\n", base, c.Sprint(state))
}

func (a *app) printJSON(title string, doc json.RawMessage) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, doc, "", "  "); err != nil {
		return fmt.Errorf("format response: %w", err)
	}
	a.println(title)
	a.println(buf.String())
	return nil
}

func (a *app) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Get the current status for your pihole servers (enabled|disabled)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.eachServer(cmd.Context(), true, func(ctx context.Context, c *pihole.Client) error {
				st, err := c.Status(ctx)
				if err != nil {
					return fmt.Errorf("couldn't get status: %w", err)
				}
				a.printState(c.BaseURL, st.Blocking)
				return nil
			})
		},
	}
}

func (a *app) enableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "enable",
		Short: "Enable the pihole servers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.eachServer(cmd.Context(), true, func(ctx context.Context, c *pihole.Client) error {
				a.log.Debugf("Enabling '%s'", c.BaseURL)
				ok, err := c.Enable(ctx)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("server did not confirm enabling")
				}
				a.printState(c.BaseURL, "enabled")
				return nil
			})
		},
	}
}

func (a *app) disableCmd() *cobra.Command {
	var secs uint
	cmd := &cobra.Command{
		Use:   "disable",
		Short: "Disable the pihole servers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.eachServer(cmd.Context(), true, func(ctx context.Context, c *pihole.Client) error {
				a.log.Debugf("Disabling '%s' for %d secs", c.BaseURL, secs)
				ok, err := c.Disable(ctx, secs)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("server did not confirm disabling")
				}
				a.printState(c.BaseURL, "disabled")
				return nil
			})
		},
	}
	cmd.Flags().UintVarP(&secs, "time", "t", defaultDisableSecs, "Disable the pihole servers for this many seconds")
	return cmd
}

// rawCmd builds a command that prints one JSON document per server.
func (a *app) rawCmd(use, short, title string, fetch func(context.Context, *pihole.Client) (json.RawMessage, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.eachServer(cmd.Context(), true, func(ctx context.Context, c *pihole.Client) error {
				doc, err := fetch(ctx, c)
				if err != nil {
					return err
				}
				if err := a.printJSON(fmt.Sprintf(title, c.BaseURL), doc); err != nil {
					return err
				}
				a.println()
				return nil
			})
		},
	}
}

func (a *app) summaryCmd() *cobra.Command {
	return a.rawCmd("summary", "Print a summary for each server", "Summary for %s",
		func(ctx context.Context, c *pihole.Client) (json.RawMessage, error) { return c.Summary(ctx) })
}

func (a *app) versionCmd() *cobra.Command {
	return a.rawCmd("version", "Print the version for each server", "Version info for %s",
		func(ctx context.Context, c *pihole.Client) (json.RawMessage, error) { return c.Version(ctx) })
}

func (a *app) upstreamsCmd() *cobra.Command {
	return a.rawCmd("upstreams", "Print the forward destination stats", "Forward destinations for %s",
		func(ctx context.Context, c *pihole.Client) (json.RawMessage, error) { return c.Upstreams(ctx) })
}

func (a *app) queryTypesCmd() *cobra.Command {
	return a.rawCmd("query-types", "Print the query type stats", "Query types for %s",
		func(ctx context.Context, c *pihole.Client) (json.RawMessage, error) { return c.QueryTypes(ctx) })
}

func (a *app) topDomainsCmd() *cobra.Command {
	return a.topCmd("top-domains", "Print the top N domains", "domains",
		func(ctx context.Context, c *pihole.Client, n int) (json.RawMessage, error) { return c.TopDomains(ctx, n) })
}

func (a *app) topClientsCmd() *cobra.Command {
	return a.topCmd("top-clients", "Print the query data for the top N clients", "clients",
		func(ctx context.Context, c *pihole.Client, n int) (json.RawMessage, error) { return c.TopClients(ctx, n) })
}

func (a *app) topCmd(use, short, what string, fetch func(context.Context, *pihole.Client, int) (json.RawMessage, error)) *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if n <= 0 {
				return fmt.Errorf("--topn must be positive, got %d", n)
			}
			return a.eachServer(cmd.Context(), true, func(ctx context.Context, c *pihole.Client) error {
				doc, err := fetch(ctx, c, n)
				if err != nil {
					return err
				}
				return a.printJSON(fmt.Sprintf("The top %d %s for %s", n, what, c.BaseURL), doc)
			})
		},
	}
	cmd.Flags().IntVarP(&n, "topn", "n", defaultTopN, "Print this many "+what)
	return cmd
}

func (a *app) recentBlockedCmd() *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:   "recent-blocked",
		Short: "Print the most recently blocked domains",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if n <= 0 {
				return fmt.Errorf("--num must be positive, got %d", n)
			}
			return a.eachServer(cmd.Context(), true, func(ctx context.Context, c *pihole.Client) error {
				domains, err := c.RecentBlocked(ctx, n)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Most recent blocked for %s\n", c.BaseURL)
				for _, d := range domains {
					a.println(d)
				}
				a.println()
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&n, "num", "n", defaultTopN, "Print this many most recent blocked domains")
	return cmd
}
