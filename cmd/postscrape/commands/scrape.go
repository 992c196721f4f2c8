package commands

import (
	"context"

	"github.com/spf13/cobra"

	"postscrape/internal/app"
)

func init() {
	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Extracts post title, author and upvotes from the target page into CSV.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runJob(cmd, true, func(ctx context.Context, o *app.Orchestrator) (*app.RunStats, error) {
			return o.Scrape(ctx)
		})
	},
}
