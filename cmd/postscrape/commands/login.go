package commands

import (
	"context"

	"github.com/spf13/cobra"

	"postscrape/internal/app"
	"postscrape/internal/config"
)

func init() {
	rootCmd.AddCommand(loginCmd)
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Runs the configured login steps with credentials from " + config.EnvUsername + " and " + config.EnvPassword + ".",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runJob(cmd, false, func(ctx context.Context, o *app.Orchestrator) (*app.RunStats, error) {
			return o.Login(ctx)
		})
	},
}
