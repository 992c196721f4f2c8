package config

import (
	"fmt"
	"time"
)

type Config struct {
	TargetURL     string              `yaml:"target_url"`
	Rod           RodConfig           `yaml:"rod"`
	SelectorsFile string              `yaml:"selectors_file"`
	Output        OutputConfig        `yaml:"output"`
	Normalize     NormalizeConfig     `yaml:"normalize"`
	Login         LoginConfig         `yaml:"login"`
	Storage       StorageConfig       `yaml:"storage"`
	Observability ObservabilityConfig `yaml:"observability"`

	// Заполняется из окружения, в YAML не хранится
	Credentials Credentials `yaml:"-"`
}

type RodConfig struct {
	ChromePath     string `yaml:"chrome_path"`
	Headless       bool   `yaml:"headless"`
	NoSandbox      bool   `yaml:"no_sandbox"`
	ViewportWidth  int    `yaml:"viewport_width"`
	ViewportHeight int    `yaml:"viewport_height"`
	PageTimeoutS   int    `yaml:"page_timeout_s"`
	WaitTimeoutS   int    `yaml:"wait_timeout_s"`
	DOMStableMS    int    `yaml:"dom_stable_ms"`
}

type OutputConfig struct {
	CSVPath        string `yaml:"csv_path"`
	ScreenshotPath string `yaml:"screenshot_path"`
}

type NormalizeConfig struct {
	TrimNBSP       bool `yaml:"trim_nbsp"`
	CollapseSpaces bool `yaml:"collapse_spaces"`
	UnicodeNFC     bool `yaml:"unicode_nfc"`
}

type LoginConfig struct {
	URL          string      `yaml:"url"`
	StepTimeoutS int         `yaml:"step_timeout_s"`
	SuccessXPath string      `yaml:"success_xpath"`
	Steps        []LoginStep `yaml:"steps"`
}

type LoginStep struct {
	Action string `yaml:"action"`
	XPath  string `yaml:"xpath"`
	Value  string `yaml:"value"`
}

type Credentials struct {
	Username string
	Password string
}

type StorageConfig struct {
	Driver           string `yaml:"driver"`
	DSN              string `yaml:"dsn"`
	CommandTimeoutMS int    `yaml:"command_timeout_ms"`
}

type ObservabilityConfig struct {
	LogPath       string `yaml:"log_path"`
	LogLevel      string `yaml:"log_level"`
	LogMaxSizeMB  int    `yaml:"log_max_size_mb"`
	LogMaxBackups int    `yaml:"log_max_backups"`
	LogMaxAgeDays int    `yaml:"log_max_age_days"`
}

var loginActions = map[string]bool{
	"click":  true,
	"frame":  true,
	"input":  true,
	"submit": true,
}

// Validation
func (c *Config) Validate() error {
	if c.TargetURL == "" {
		return fmt.Errorf("target_url is required")
	}
	if c.Rod.ViewportWidth <= 0 || c.Rod.ViewportHeight <= 0 {
		return fmt.Errorf("rod.viewport_width and rod.viewport_height must be > 0")
	}
	if c.Rod.PageTimeoutS <= 0 {
		return fmt.Errorf("rod.page_timeout_s must be > 0")
	}
	if c.Rod.WaitTimeoutS <= 0 {
		return fmt.Errorf("rod.wait_timeout_s must be > 0")
	}
	if c.Rod.DOMStableMS < 0 {
		return fmt.Errorf("rod.dom_stable_ms must be >= 0")
	}
	if c.SelectorsFile == "" {
		return fmt.Errorf("selectors_file is required")
	}
	if c.Output.CSVPath == "" {
		return fmt.Errorf("output.csv_path is required")
	}
	if c.Output.ScreenshotPath == "" {
		return fmt.Errorf("output.screenshot_path is required")
	}
	if err := c.Login.validate(); err != nil {
		return err
	}
	if c.Storage.Driver != "" && c.Storage.Driver != "none" && c.Storage.Driver != "mssql" {
		return fmt.Errorf("storage.driver must be 'none' or 'mssql'")
	}
	if c.Storage.Driver == "mssql" {
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn is required when storage.driver is 'mssql'")
		}
		if c.Storage.CommandTimeoutMS <= 0 {
			return fmt.Errorf("storage.command_timeout_ms must be > 0")
		}
	}
	if c.Observability.LogLevel == "" {
		return fmt.Errorf("observability.log_level is required")
	}
	switch c.Observability.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("observability.log_level must be one of debug, info, warn, error")
	}
	return nil
}

func (l *LoginConfig) validate() error {
	if len(l.Steps) == 0 {
		return nil
	}
	if l.URL == "" {
		return fmt.Errorf("login.url is required when login.steps are set")
	}
	if l.StepTimeoutS <= 0 {
		return fmt.Errorf("login.step_timeout_s must be > 0")
	}
	for i, step := range l.Steps {
		if !loginActions[step.Action] {
			return fmt.Errorf("login.steps[%d]: unknown action %q", i, step.Action)
		}
		if step.XPath == "" {
			return fmt.Errorf("login.steps[%d]: xpath is required", i)
		}
		if step.Action == "input" && step.Value != "username" && step.Value != "password" {
			return fmt.Errorf("login.steps[%d]: input value must be 'username' or 'password'", i)
		}
	}
	return nil
}

// Getters
func (c *Config) GetRodPageTimeout() time.Duration {
	return time.Duration(c.Rod.PageTimeoutS) * time.Second
}

func (c *Config) GetRodWaitTimeout() time.Duration {
	return time.Duration(c.Rod.WaitTimeoutS) * time.Second
}

func (c *Config) GetRodDOMStable() time.Duration {
	return time.Duration(c.Rod.DOMStableMS) * time.Millisecond
}

func (c *Config) GetLoginStepTimeout() time.Duration {
	return time.Duration(c.Login.StepTimeoutS) * time.Second
}

func (c *Config) GetCommandTimeout() time.Duration {
	return time.Duration(c.Storage.CommandTimeoutMS) * time.Millisecond
}
