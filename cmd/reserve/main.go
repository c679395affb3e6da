// Command reserve is a terminal client for the reservations API.  Run
// without arguments it walks through login or signup and books a table.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iliyamo/shastra-reservations/internal/client"
)

type rootOptions struct {
	server string
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "reserve",
		Short:         "Book a table at Shastra Veg Restaurant",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBook(cmd, opts.client())
		},
	}
	cmd.PersistentFlags().StringVar(&opts.server, "server", envOr("SHASTRA_API", "http://localhost:3001"), "API base URL")

	cmd.AddCommand(newHistoryCommand(opts))
	cmd.AddCommand(newHealthCommand(opts))
	return cmd
}

func (o *rootOptions) client() *client.Client {
	return client.New(o.server, nil)
}

func newHistoryCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "history <email>",
		Short: "List your latest reservations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := opts.client().ListReservations(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(list) == 0 {
				fmt.Fprintln(out, "No reservations yet.")
				return nil
			}
			for _, r := range list {
				fmt.Fprintf(out, "%s  %s %s  %s guests  %s\n", r.ID, r.Date, r.Time, r.Guests, r.Status)
			}
			return nil
		},
	}
}

func newHealthCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the server is up",
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := opts.client().Health(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (database %s, cache %s)\n", h.Status, h.Message, h.Database, h.Cache)
			return nil
		},
	}
}

func envOr(k, d string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return d
}
