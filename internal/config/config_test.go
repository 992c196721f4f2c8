package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const testConfigYAML = `
target_url: "https://www.reddit.com/r/learnprogramming/top/?t=month"
selectors_file: "selectors.yaml"
rod:
  headless: true
  viewport_width: 1920
  viewport_height: 1080
  page_timeout_s: 60
  wait_timeout_s: 15
  dom_stable_ms: 300
output:
  csv_path: "posts.csv"
  screenshot_path: "screenshot.png"
login:
  url: "https://www.reddit.com/login"
  step_timeout_s: 10
  steps:
    - action: click
      xpath: '//*[@id="login"]'
    - action: input
      xpath: '//*[@id="loginUsername"]'
      value: username
observability:
  log_path: "logs/postscrape.log"
  log_level: "info"
`

const testSelectorsYAML = `
version: 1
container:
  tag: div
  class: rpBJOHq2PR60pnwJlUyP0
title:
  tag: h3
  class: _eYtD2XCVieq6emjKBH3m
author:
  tag: a
  class: _2tbHP6ZydRpjI44J3syuqC
upvotes:
  tag: div
  class: "_1rZYMD_4xY3gRcSS3p8ODO _3a2ZHWaih05DgAOtvu6cIo "
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", testConfigYAML)

	t.Setenv(EnvUsername, "alice")
	t.Setenv(EnvPassword, "secret")
	t.Setenv(EnvChromePath, "/usr/bin/chromium")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, 1920, cfg.Rod.ViewportWidth)
	require.Equal(t, "alice", cfg.Credentials.Username)
	require.Equal(t, "secret", cfg.Credentials.Password)
	require.Equal(t, "/usr/bin/chromium", cfg.Rod.ChromePath)
	require.Len(t, cfg.Login.Steps, 2)
	require.Equal(t, filepath.Join(dir, "selectors.yaml"), cfg.ResolveSelectorsPath(path))
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			TargetURL:     "https://example.com",
			SelectorsFile: "selectors.yaml",
			Rod: RodConfig{
				ViewportWidth:  1920,
				ViewportHeight: 1080,
				PageTimeoutS:   30,
				WaitTimeoutS:   10,
			},
			Output: OutputConfig{
				CSVPath:        "posts.csv",
				ScreenshotPath: "screenshot.png",
			},
			Observability: ObservabilityConfig{LogLevel: "info"},
		}
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"missing target url", func(c *Config) { c.TargetURL = "" }},
		{"zero viewport", func(c *Config) { c.Rod.ViewportWidth = 0 }},
		{"zero wait timeout", func(c *Config) { c.Rod.WaitTimeoutS = 0 }},
		{"missing csv path", func(c *Config) { c.Output.CSVPath = "" }},
		{"bad log level", func(c *Config) { c.Observability.LogLevel = "trace" }},
		{"unknown driver", func(c *Config) { c.Storage.Driver = "postgres" }},
		{"mssql without dsn", func(c *Config) { c.Storage.Driver = "mssql"; c.Storage.CommandTimeoutMS = 1000 }},
		{"login steps without url", func(c *Config) {
			c.Login.StepTimeoutS = 5
			c.Login.Steps = []LoginStep{{Action: "click", XPath: "//a"}}
		}},
		{"unknown login action", func(c *Config) {
			c.Login = LoginConfig{URL: "https://example.com/login", StepTimeoutS: 5, Steps: []LoginStep{{Action: "hover", XPath: "//a"}}}
		}},
		{"input without credential ref", func(c *Config) {
			c.Login = LoginConfig{URL: "https://example.com/login", StepTimeoutS: 5, Steps: []LoginStep{{Action: "input", XPath: "//input", Value: "hunter2"}}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestLoadSelectors(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "selectors.yaml", testSelectorsYAML)

	sel, err := LoadSelectors(path)
	require.NoError(t, err)
	require.Equal(t, 1, sel.Version)
	require.Equal(t, "div.rpBJOHq2PR60pnwJlUyP0", sel.Container.Selector())
	require.Equal(t, "div._1rZYMD_4xY3gRcSS3p8ODO._3a2ZHWaih05DgAOtvu6cIo", sel.Upvotes.Selector())
}

func TestLoadSelectorsRejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing version", "container: {tag: div}\ntitle: {tag: h3}\nauthor: {tag: a}\nupvotes: {tag: span}\n"},
		{"future version", "version: 99\ncontainer: {tag: div}\ntitle: {tag: h3}\nauthor: {tag: a}\nupvotes: {tag: span}\n"},
		{"missing author", "version: 1\ncontainer: {tag: div}\ntitle: {tag: h3}\nupvotes: {tag: span}\n"},
		{"invalid css", "version: 1\ncontainer: {css: 'div[['}\ntitle: {tag: h3}\nauthor: {tag: a}\nupvotes: {tag: span}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "selectors.yaml", tt.content)
			_, err := LoadSelectors(path)
			require.Error(t, err)
		})
	}
}

func TestLoadDotEnvMissingFileIsIgnored(t *testing.T) {
	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), ".env")))
}

func TestLoadDotEnv(t *testing.T) {
	path := writeFile(t, t.TempDir(), ".env", EnvUsername+"=from-dotenv\n")
	t.Setenv(EnvUsername, "")
	require.NoError(t, os.Unsetenv(EnvUsername))

	require.NoError(t, LoadDotEnv(path))
	require.Equal(t, "from-dotenv", os.Getenv(EnvUsername))
}
