package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"postscrape/internal/config"
	"postscrape/internal/fetcher"
	"postscrape/internal/observability"
	"postscrape/internal/scraper"
	"postscrape/internal/storage"
)

// Browser — то, что оркестратору нужно от сессии браузера
type Browser interface {
	Render(ctx context.Context, url, waitSelector string) (string, error)
	Screenshot(ctx context.Context, url, waitSelector, path string) error
	Login(ctx context.Context, login config.LoginConfig, creds config.Credentials) error
}

// SessionFunc открывает браузер, вызывает fn и гарантированно закрывает браузер
type SessionFunc func(ctx context.Context, fn func(Browser) error) error

// RodSessions — SessionFunc поверх fetcher.WithSession
func RodSessions(cfg *config.Config, logger *observability.Logger) SessionFunc {
	return func(ctx context.Context, fn func(Browser) error) error {
		return fetcher.WithSession(ctx, cfg, logger, func(s *fetcher.Session) error {
			return fn(s)
		})
	}
}

type Orchestrator struct {
	cfg      *config.Config
	logger   *observability.Logger
	sessions SessionFunc
	scraper  *scraper.Scraper
	waitFor  string
	sinks    []storage.Sink
}

func NewOrchestrator(
	cfg *config.Config,
	logger *observability.Logger,
	sessions SessionFunc,
	s *scraper.Scraper,
	waitFor string,
	sinks ...storage.Sink,
) *Orchestrator {
	return &Orchestrator{
		cfg:      cfg,
		logger:   logger,
		sessions: sessions,
		scraper:  s,
		waitFor:  waitFor,
		sinks:    sinks,
	}
}

type RunStats struct {
	Job      string
	Posts    int
	Output   string
	Duration time.Duration
}

// Scrape: Start → BrowserLaunched → Navigated → Waited → DataExtracted → BrowserClosed, затем запись в sinks
func (o *Orchestrator) Scrape(ctx context.Context) (*RunStats, error) {
	start := time.Now()
	log := o.logger.With("job", "scrape", "url", o.cfg.TargetURL)

	var posts []scraper.Post
	err := o.run(ctx, log, func(b Browser) error {
		html, err := b.Render(ctx, o.cfg.TargetURL, o.waitFor)
		if err != nil {
			return err
		}
		log.Info("State", "state", "Waited", "html_bytes", len(html))

		posts, err = o.scraper.Extract(html)
		if err != nil {
			var extractErr *scraper.ExtractError
			if errors.As(err, &extractErr) {
				log.Error("Container is missing a required field",
					"container", extractErr.Index,
					"field", extractErr.Field,
					"selector", extractErr.Selector,
				)
			}
			return fmt.Errorf("extract posts: %w", err)
		}
		log.Info("State", "state", "DataExtracted", "posts", len(posts))
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, sink := range o.sinks {
		if err := sink.Save(ctx, posts); err != nil {
			return nil, fmt.Errorf("save to %s: %w", sink.Name(), err)
		}
		log.Info("Posts saved", "sink", sink.Name(), "posts", len(posts))
	}

	stats := &RunStats{
		Job:      "scrape",
		Posts:    len(posts),
		Output:   o.cfg.Output.CSVPath,
		Duration: time.Since(start),
	}
	log.Info("Run completed", "posts", stats.Posts, "output", stats.Output, "duration", stats.Duration.String())
	return stats, nil
}

// Login: Start → BrowserLaunched → Navigated → ActionsPerformed → BrowserClosed
func (o *Orchestrator) Login(ctx context.Context) (*RunStats, error) {
	start := time.Now()
	log := o.logger.With("job", "login", "url", o.cfg.Login.URL)

	if o.cfg.Credentials.Username == "" || o.cfg.Credentials.Password == "" {
		log.Warn("Credentials are empty", "username_env", config.EnvUsername, "password_env", config.EnvPassword)
	}

	err := o.run(ctx, log, func(b Browser) error {
		if err := b.Login(ctx, o.cfg.Login, o.cfg.Credentials); err != nil {
			return err
		}
		log.Info("State", "state", "ActionsPerformed", "steps", len(o.cfg.Login.Steps))
		return nil
	})
	if err != nil {
		return nil, err
	}

	stats := &RunStats{Job: "login", Duration: time.Since(start)}
	log.Info("Run completed", "verified", o.cfg.Login.SuccessXPath != "", "duration", stats.Duration.String())
	return stats, nil
}

// Screenshot: Start → BrowserLaunched → Navigated → Waited → ScreenshotSaved → BrowserClosed
func (o *Orchestrator) Screenshot(ctx context.Context) (*RunStats, error) {
	start := time.Now()
	log := o.logger.With("job", "screenshot", "url", o.cfg.TargetURL)
	path := o.cfg.Output.ScreenshotPath

	err := o.run(ctx, log, func(b Browser) error {
		if err := b.Screenshot(ctx, o.cfg.TargetURL, o.waitFor, path); err != nil {
			return err
		}
		log.Info("State", "state", "ScreenshotSaved", "path", path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	stats := &RunStats{Job: "screenshot", Output: path, Duration: time.Since(start)}
	log.Info("Run completed", "output", path, "duration", stats.Duration.String())
	return stats, nil
}

func (o *Orchestrator) run(ctx context.Context, log *observability.Logger, fn func(Browser) error) error {
	log.Info("State", "state", "Start")
	launched := false
	err := o.sessions(ctx, func(b Browser) error {
		launched = true
		log.Info("State", "state", "BrowserLaunched")
		return fn(b)
	})
	if launched {
		log.Info("State", "state", "BrowserClosed")
	}
	if err != nil {
		log.Error("Run failed", "error", err.Error())
		return err
	}
	return nil
}
