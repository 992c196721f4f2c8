package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"postscrape/internal/scraper"
)

var Header = []string{"Post title", "Author", "Number of upvotes"}

// Writer перезаписывает CSV файл целиком при каждом Save
type Writer struct {
	path string
}

func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

func (w *Writer) Name() string {
	return "csv"
}

func (w *Writer) Path() string {
	return w.path
}

// Save пишет заголовок и строки во временный файл и переименовывает его поверх старого
func (w *Writer) Save(ctx context.Context, posts []scraper.Post) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(w.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := writePosts(tmp, posts); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), w.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", w.path, err)
	}
	return nil
}

func writePosts(f *os.File, posts []scraper.Post) error {
	cw := csv.NewWriter(f)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, p := range posts {
		if err := cw.Write([]string{p.Title, p.Author, p.Upvotes}); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}
