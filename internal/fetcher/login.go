package fetcher

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"postscrape/internal/config"
)

// Login выполняет шаги входа строго по порядку. Каждый шаг ищет элемент по XPath
// не дольше step_timeout; ошибка указывает номер и тип шага.
func (s *Session) Login(ctx context.Context, login config.LoginConfig, creds config.Credentials) error {
	if len(login.Steps) == 0 {
		return fmt.Errorf("no login steps configured")
	}

	page, err := s.newPage(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := page.Close(); err != nil {
			s.logger.Debug("Failed to close page", "error", err.Error())
		}
	}()

	if err := s.navigate(ctx, page, login.URL); err != nil {
		return err
	}

	top := page.Context(ctx)
	current := top
	for i, step := range login.Steps {
		current, err = s.runStep(ctx, current, step, creds)
		if err != nil {
			return fmt.Errorf("login step %d (%s) failed after %d completed: %w", i, step.Action, i, err)
		}
		s.logger.Info("Login step done", "step", i, "action", step.Action)
	}

	if login.SuccessXPath == "" {
		return nil
	}

	verifyCtx, cancel := context.WithTimeout(ctx, s.cfg.GetLoginStepTimeout())
	defer cancel()
	if _, err := top.Context(verifyCtx).ElementX(login.SuccessXPath); err != nil {
		return fmt.Errorf("%w: %w", ErrLoginUnverified, locateError(err, "success marker not found"))
	}
	return nil
}

// runStep возвращает страницу, в контексте которой выполняются следующие шаги:
// после "frame" это документ iframe.
func (s *Session) runStep(ctx context.Context, current *rod.Page, step config.LoginStep, creds config.Credentials) (*rod.Page, error) {
	stepCtx, cancel := context.WithTimeout(ctx, s.cfg.GetLoginStepTimeout())
	defer cancel()

	el, err := current.Context(stepCtx).ElementX(step.XPath)
	if err != nil {
		return nil, locateError(err, fmt.Sprintf("element %q not found", step.XPath))
	}

	switch step.Action {
	case "frame":
		frame, err := el.Frame()
		if err != nil {
			return nil, categorizeError(err, ErrCodeActionFailed, "failed to enter frame")
		}
		return frame.Context(ctx), nil

	case "input":
		if err := el.WaitVisible(); err != nil {
			return nil, categorizeError(err, ErrCodeActionFailed, "input is not visible")
		}
		if err := el.Input(credentialValue(step.Value, creds)); err != nil {
			return nil, categorizeError(err, ErrCodeActionFailed, "failed to type into input")
		}

	case "click", "submit":
		if err := el.WaitVisible(); err != nil {
			return nil, categorizeError(err, ErrCodeActionFailed, "element is not visible")
		}
		if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
			return nil, categorizeError(err, ErrCodeActionFailed, "click failed")
		}

	default:
		return nil, fmt.Errorf("unknown login action: %s", step.Action)
	}

	return current, nil
}

func credentialValue(ref string, creds config.Credentials) string {
	if ref == "password" {
		return creds.Password
	}
	return creds.Username
}
