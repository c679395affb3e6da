// Command server runs the Shastra reservations API and its notification
// pipeline.  With no subcommand it serves HTTP.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var envFile string
	serve := newServeCommand()

	cmd := &cobra.Command{
		Use:           "server",
		Short:         "Shastra Veg Restaurant reservations backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if envFile != "" {
				loadDotEnv(envFile)
				return
			}
			loadDotEnv()
		},
		RunE: serve.RunE,
	}
	cmd.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file to load (default .env)")
	cmd.Flags().AddFlagSet(serve.Flags())

	cmd.AddCommand(serve)
	cmd.AddCommand(newMigrateCommand())
	cmd.AddCommand(newRelayCommand())
	cmd.AddCommand(newWorkerCommand())
	return cmd
}
