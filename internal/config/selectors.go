package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/andybalholm/cascadia"
	"gopkg.in/yaml.v3"

	"postscrape/internal/scraper"
)

// SelectorsVersion — последняя известная версия файла селекторов
const SelectorsVersion = 1

// LoadSelectors загружает селекторы из YAML файла
func LoadSelectors(filePath string) (*scraper.Selectors, error) {
	if filePath == "" {
		return nil, fmt.Errorf("selectors file path is empty")
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read selectors file %s: %w", filePath, err)
	}

	var selectors scraper.Selectors
	if err := yaml.Unmarshal(data, &selectors); err != nil {
		return nil, fmt.Errorf("failed to parse selectors YAML: %w", err)
	}

	if err := validateSelectors(&selectors); err != nil {
		return nil, fmt.Errorf("selectors %s: %w", filePath, err)
	}

	return &selectors, nil
}

// ResolveSelectorsPath возвращает путь к файлу селекторов относительно каталога конфига
func (c *Config) ResolveSelectorsPath(configPath string) string {
	if filepath.IsAbs(c.SelectorsFile) {
		return c.SelectorsFile
	}
	return filepath.Join(filepath.Dir(configPath), c.SelectorsFile)
}

// validateSelectors проверяет версию и компилирует каждый селектор
func validateSelectors(s *scraper.Selectors) error {
	if s.Version < 1 {
		return fmt.Errorf("version is required")
	}
	if s.Version > SelectorsVersion {
		return fmt.Errorf("unsupported version %d (max %d)", s.Version, SelectorsVersion)
	}

	locators := []struct {
		name    string
		locator scraper.Locator
	}{
		{"container", s.Container},
		{scraper.FieldTitle, s.Title},
		{scraper.FieldAuthor, s.Author},
		{scraper.FieldUpvotes, s.Upvotes},
	}

	for _, l := range locators {
		if l.locator.IsZero() {
			return fmt.Errorf("%s is required", l.name)
		}
		if _, err := cascadia.ParseGroup(l.locator.Selector()); err != nil {
			return fmt.Errorf("%s: invalid selector %q: %w", l.name, l.locator.Selector(), err)
		}
	}

	return nil
}
