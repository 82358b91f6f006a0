// Package cli implements the mpihole command line tool.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"mpihole/internal/logger"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X mpihole/internal/cli.Version=...".
var Version = "dev"

// errReported signals a failure whose message was already printed.
var errReported = errors.New("failed")

// app holds the global flags and the streams every command writes to.
type app struct {
	cfgPath     string
	showConfig  bool
	reconfigure bool
	debug       bool

	in     io.Reader
	out    io.Writer
	errOut io.Writer

	log *logger.Logger
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mpihole.json"
	}
	return filepath.Join(home, ".mpihole.json")
}

// NewRootCmd builds the command tree reading answers from in and
// printing to out and errOut.
func NewRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	a := &app{in: in, out: out, errOut: errOut}

	root := &cobra.Command{
		Use:     "mpihole",
		Short:   "Control multiple Pi-hole servers at once",
		Long:    `Query and toggle every Pi-hole in your server list with a single command.`,
		Version: Version,

		SilenceUsage:  true,
		SilenceErrors: true,

		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.log = logger.Get(logger.LevelFor(a.debug))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.showConfig || a.reconfigure {
				_, err := a.servers(cmd.Context(), false)
				return err
			}
			return cmd.Help()
		},
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringVarP(&a.cfgPath, "config", "c", defaultConfigPath(), "The path to the config file")
	flags.BoolVarP(&a.showConfig, "show-config", "s", false, "Show the current config and exit")
	flags.BoolVarP(&a.reconfigure, "reconfigure", "r", false, "(Re)configure your pihole servers")
	flags.BoolVarP(&a.debug, "debug", "D", false, "Turn on debug output")

	root.AddCommand(
		a.statusCmd(),
		a.enableCmd(),
		a.disableCmd(),
		a.summaryCmd(),
		a.versionCmd(),
		a.topDomainsCmd(),
		a.topClientsCmd(),
		a.upstreamsCmd(),
		a.queryTypesCmd(),
		a.recentBlockedCmd(),
		a.lookupCmd(),
		a.remoteCmd(),
	)
	return root
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := NewRootCmd(os.Stdin, os.Stdout, os.Stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errReported) {
			color.New(color.FgRed).Fprintln(os.Stderr, "Error:", err)
		}
		stop()
		os.Exit(1)
	}
}

func (a *app) warnf(format string, args ...any) {
	a.log.Warnf(format, args...)
}

func (a *app) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}
