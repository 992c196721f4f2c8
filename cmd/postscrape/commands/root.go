package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"postscrape/internal/app"
	"postscrape/internal/config"
	"postscrape/internal/normalize"
	"postscrape/internal/observability"
	"postscrape/internal/scraper"
	"postscrape/internal/storage"
	"postscrape/internal/storage/csvfile"
	"postscrape/internal/storage/mssql"
)

var (
	configPath string
	envPath    string
)

var rootCmd = &cobra.Command{
	Use:           "postscrape",
	Short:         "postscrape loads a listing page in headless Chromium and extracts posts, logs in or takes a screenshot.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "Path to the YAML config.")
	rootCmd.PersistentFlags().StringVar(&envPath, "env-file", ".env", "Optional .env file with credentials.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// jobEnv — всё, что нужно одной команде на время прогона
type jobEnv struct {
	cfg          *config.Config
	logger       *observability.Logger
	orchestrator *app.Orchestrator
	closers      []func() error
}

func (r *jobEnv) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			r.logger.Warn("Close failed", "error", err.Error())
		}
	}
	_ = r.logger.Close()
}

// setup загружает конфиг, селекторы и собирает оркестратор.
// withSinks=false для команд, которые ничего не сохраняют.
func setup(ctx context.Context, withSinks bool) (*jobEnv, error) {
	if err := config.LoadDotEnv(envPath); err != nil {
		return nil, err
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := observability.NewLogger(cfg.Observability)
	if err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}
	rt := &jobEnv{cfg: cfg, logger: logger}

	selectors, err := config.LoadSelectors(cfg.ResolveSelectorsPath(configPath))
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("failed to load selectors: %w", err)
	}
	logger.Debug("Selectors loaded", "version", selectors.Version, "container", selectors.Container.Selector())

	var sinks []storage.Sink
	if withSinks {
		sinks = append(sinks, csvfile.NewWriter(cfg.Output.CSVPath))

		if cfg.Storage.Driver == "mssql" {
			repo, err := mssql.NewRepository(ctx, cfg.Storage.DSN, cfg.GetCommandTimeout(), logger)
			if err != nil {
				rt.Close()
				return nil, fmt.Errorf("failed to open storage: %w", err)
			}
			sink := storage.NewRepositorySink(repo, logger)
			rt.closers = append(rt.closers, sink.Close)
			sinks = append(sinks, sink)
		}
	}

	rt.orchestrator = app.NewOrchestrator(
		cfg,
		logger,
		app.RodSessions(cfg, logger),
		scraper.NewScraper(selectors, normalize.NewNormalizer(cfg.Normalize)),
		selectors.Container.Selector(),
		sinks...,
	)
	return rt, nil
}

// runJob оборачивает команду: сигналы ОС, сборка зависимостей и освобождение ресурсов
func runJob(cmd *cobra.Command, withSinks bool, job func(ctx context.Context, o *app.Orchestrator) (*app.RunStats, error)) error {
	rt, err := setup(cmd.Context(), withSinks)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, cancel := app.GracefulShutdown(cmd.Context(), rt.logger)
	defer cancel()

	stats, err := job(ctx, rt.orchestrator)
	if err != nil {
		return err
	}

	took := stats.Duration.Round(time.Millisecond)
	switch {
	case stats.Job == "scrape":
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %d posts written to %s (%s)\n", stats.Posts, stats.Output, took)
	case stats.Output != "":
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s saved to %s (%s)\n", stats.Job, stats.Output, took)
	default:
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s done (%s)\n", stats.Job, took)
	}
	return nil
}
