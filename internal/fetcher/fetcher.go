package fetcher

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"

	"postscrape/internal/config"
	"postscrape/internal/observability"
)

// Session владеет одним процессом браузера. Закрывается через Close или WithSession.
type Session struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	cfg      *config.Config
	logger   *observability.Logger

	closeOnce sync.Once
	closeErr  error
}

// Open запускает Chromium и подключается к нему по CDP
func Open(ctx context.Context, cfg *config.Config, logger *observability.Logger) (*Session, error) {
	l := launcher.New().
		Context(ctx).
		Headless(cfg.Rod.Headless).
		NoSandbox(cfg.Rod.NoSandbox)

	if cfg.Rod.ChromePath != "" {
		l = l.Bin(cfg.Rod.ChromePath)
	}
	l.Set(flags.Flag("window-size"), fmt.Sprintf("%d,%d", cfg.Rod.ViewportWidth, cfg.Rod.ViewportHeight))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, NewBrowserError(ErrCodeLaunch, "failed to launch browser", err)
	}
	logger.Debug("Browser launched", "control_url", controlURL, "headless", cfg.Rod.Headless)

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		return nil, NewBrowserError(ErrCodeLaunch, "failed to connect to browser", err)
	}

	return &Session{
		browser:  browser,
		launcher: l,
		cfg:      cfg,
		logger:   logger,
	}, nil
}

// WithSession открывает сессию, выполняет fn и закрывает браузер на любом пути выхода
func WithSession(ctx context.Context, cfg *config.Config, logger *observability.Logger, fn func(*Session) error) (err error) {
	session, err := Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := session.Close(); closeErr != nil {
			logger.Warn("Browser close reported error", "error", closeErr.Error())
			if err == nil {
				err = closeErr
			}
		}
	}()

	return fn(session)
}

// Close закрывает браузер и дожидается завершения процесса. Повторный вызов — no-op.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		if err := s.browser.Close(); err != nil {
			s.closeErr = fmt.Errorf("failed to close browser: %w", err)
			s.launcher.Kill()
		}
		s.launcher.Cleanup()
		s.logger.Debug("Browser closed")
	})
	return s.closeErr
}

// Render открывает url, дожидается появления waitSelector и возвращает отрендеренный HTML
func (s *Session) Render(ctx context.Context, url, waitSelector string) (string, error) {
	var html string
	err := s.withPage(ctx, url, waitSelector, func(p *rod.Page) error {
		var err error
		html, err = p.HTML()
		if err != nil {
			return categorizeError(err, ErrCodeNavigation, "failed to extract page HTML")
		}
		return nil
	})
	return html, err
}

// withPage создаёт вкладку, переходит по url, ждёт контент и всегда закрывает вкладку
func (s *Session) withPage(ctx context.Context, url, waitSelector string, fn func(p *rod.Page) error) error {
	page, err := s.newPage(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := page.Close(); err != nil {
			s.logger.Debug("Failed to close page", "error", err.Error())
		}
	}()

	if err := s.navigate(ctx, page, url); err != nil {
		return err
	}
	if err := s.waitContent(ctx, page, waitSelector); err != nil {
		return err
	}

	return fn(page.Context(ctx))
}

func (s *Session) newPage(ctx context.Context) (*rod.Page, error) {
	page, err := s.browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, categorizeError(err, ErrCodeLaunch, "failed to open page")
	}

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             s.cfg.Rod.ViewportWidth,
		Height:            s.cfg.Rod.ViewportHeight,
		DeviceScaleFactor: 1,
	}); err != nil {
		_ = page.Close()
		return nil, categorizeError(err, ErrCodeLaunch, "failed to set viewport")
	}

	return page, nil
}

func (s *Session) navigate(ctx context.Context, page *rod.Page, url string) error {
	navCtx, cancel := context.WithTimeout(ctx, s.cfg.GetRodPageTimeout())
	defer cancel()

	p := page.Context(navCtx)
	if err := p.Navigate(url); err != nil {
		return categorizeError(err, ErrCodeNavigation, "navigation to "+url+" failed")
	}
	if err := p.WaitLoad(); err != nil {
		return categorizeError(err, ErrCodeNavigation, "page load did not complete")
	}
	s.logger.Debug("Navigated", "url", url)
	return nil
}

// waitContent ждёт по условию, а не фиксированную паузу: сначала появление
// waitSelector, затем стабилизацию DOM (best-effort).
func (s *Session) waitContent(ctx context.Context, page *rod.Page, waitSelector string) error {
	waitCtx, cancel := context.WithTimeout(ctx, s.cfg.GetRodWaitTimeout())
	defer cancel()

	p := page.Context(waitCtx)
	if waitSelector != "" {
		start := time.Now()
		if err := p.WaitElementsMoreThan(waitSelector, 0); err != nil {
			return categorizeError(err, ErrCodeElementNotFound, fmt.Sprintf("content %q did not appear", waitSelector))
		}
		s.logger.Debug("Content appeared", "selector", waitSelector, "after", time.Since(start).String())
	}

	if stable := s.cfg.GetRodDOMStable(); stable > 0 {
		if err := p.WaitDOMStable(stable, 0.1); err != nil {
			s.logger.Debug("WaitDOMStable did not converge, proceeding with current DOM", "error", err.Error())
		}
	}
	return nil
}
