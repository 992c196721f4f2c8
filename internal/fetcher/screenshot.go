package fetcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// Screenshot снимает видимую область страницы в PNG и перезаписывает файл path
func (s *Session) Screenshot(ctx context.Context, url, waitSelector, path string) error {
	return s.withPage(ctx, url, waitSelector, func(p *rod.Page) error {
		data, err := p.Screenshot(false, &proto.PageCaptureScreenshot{
			Format: proto.PageCaptureScreenshotFormatPng,
		})
		if err != nil {
			return categorizeError(err, ErrCodeCapture, "failed to capture screenshot")
		}
		if len(data) == 0 {
			return NewBrowserError(ErrCodeCapture, "browser returned an empty screenshot", nil)
		}

		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("failed to create screenshot dir: %w", err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("failed to write screenshot: %w", err)
		}

		s.logger.Debug("Screenshot written", "path", path, "bytes", len(data))
		return nil
	})
}
