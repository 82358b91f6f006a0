package cli

import (
	"context"
	"fmt"
	"strings"

	"mpihole/internal/pihole"

	"github.com/spf13/cobra"
)

func (a *app) lookupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup DOMAIN",
		Short: "Ask each server's resolver whether DOMAIN is blocked",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			domain := args[0]
			return a.eachServer(cmd.Context(), false, func(ctx context.Context, c *pihole.Client) error {
				res, err := c.Lookup(ctx, domain)
				if err != nil {
					return err
				}
				a.printLookup(c.BaseURL, res)
				return nil
			})
		},
	}
}

func (a *app) printLookup(base string, res pihole.LookupResult) {
	verdict := enabledColor.Sprint("allowed")
	if res.Blocked {
		verdict = disabledColor.Sprint("blocked")
	}
	fmt.Fprintf(a.out, "%s: %s %s (%s)", base, res.Domain, verdict, res.Rcode)
	if len(res.Answers) > 0 {
		fmt.Fprintf(a.out, " %s", strings.Join(res.Answers, ", "))
	}
	fmt.Fprintln(a.out)
}
