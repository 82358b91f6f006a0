package cli

import (
	"mpihole/internal/toggle"

	"github.com/spf13/cobra"
)

// remoteCmd drives the control server instead of talking to each Pi-hole.
func (a *app) remoteCmd() *cobra.Command {
	var endpoint string
	remote := &cobra.Command{
		Use:   "remote",
		Short: "Toggle blocking through the remote control endpoint",
	}
	remote.PersistentFlags().StringVar(&endpoint, "endpoint", toggle.DefaultBaseURL, "Base URL of the control endpoint")

	run := func(cmd *cobra.Command, req toggle.Request) error {
		res := toggle.New(toggle.Config{BaseURL: endpoint}).Do(cmd.Context(), req)
		a.println(res.Message)
		if !res.Succeeded {
			return errReported
		}
		return nil
	}

	enable := &cobra.Command{
		Use:   "enable",
		Short: "Enable blocking on every server behind the endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, toggle.EnableRequest())
		},
	}

	var secs uint
	disable := &cobra.Command{
		Use:   "disable",
		Short: "Disable blocking on every server behind the endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, toggle.DisableRequest(secs))
		},
	}
	disable.Flags().UintVarP(&secs, "time", "t", defaultDisableSecs, "Disable for this many seconds")

	remote.AddCommand(enable, disable)
	return remote
}
