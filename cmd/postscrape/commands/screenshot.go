package commands

import (
	"context"

	"github.com/spf13/cobra"

	"postscrape/internal/app"
)

func init() {
	rootCmd.AddCommand(screenshotCmd)
}

var screenshotCmd = &cobra.Command{
	Use:   "screenshot",
	Short: "Captures the target page viewport to PNG.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runJob(cmd, false, func(ctx context.Context, o *app.Orchestrator) (*app.RunStats, error) {
			return o.Screenshot(ctx)
		})
	},
}
