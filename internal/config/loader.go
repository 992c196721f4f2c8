package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvUsername   = "POSTSCRAPE_USERNAME"
	EnvPassword   = "POSTSCRAPE_PASSWORD"
	EnvChromePath = "POSTSCRAPE_CHROME_PATH"
	EnvTargetURL  = "POSTSCRAPE_TARGET_URL"
	EnvDSN        = "POSTSCRAPE_DSN"
)

func LoadConfig(filePath string) (*Config, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			// Логируем ошибку, но не возвращаем — иначе перезапишем основную ошибку
			log.Printf("Warning: failed to close config file: %v", closeErr)
		}
	}()

	var cfg Config
	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	return &cfg, nil
}

// LoadDotEnv подгружает переменные из .env, если файл существует.
// Уже выставленные переменные окружения не перезаписываются.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv переносит секреты и переопределения из окружения в конфиг
func (c *Config) ApplyEnv() {
	c.Credentials = Credentials{
		Username: os.Getenv(EnvUsername),
		Password: os.Getenv(EnvPassword),
	}
	if v := os.Getenv(EnvChromePath); v != "" {
		c.Rod.ChromePath = v
	}
	if v := os.Getenv(EnvTargetURL); v != "" {
		c.TargetURL = v
	}
	if v := os.Getenv(EnvDSN); v != "" {
		c.Storage.DSN = v
	}
}
