// Package config loads the CLI configuration: a YAML file, environment
// overrides, and command line flags, applied in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Environment variables read by Load.
const (
	EnvConfigPath = "PUBTEMPLATE_CONFIG"
	EnvAPIURL     = "PUBTEMPLATE_API_URL"
	EnvToken      = "PUBTEMPLATE_TOKEN"
	EnvTimeout    = "PUBTEMPLATE_TIMEOUT"
	EnvLogLevel   = "PUBTEMPLATE_LOG_LEVEL"
	EnvTaskID     = "PUBTEMPLATE_TASK_ID"
)

// Config holds every setting the CLI consumes.
type Config struct {
	API        APIConfig        `yaml:"api"`
	Task       TaskConfig       `yaml:"task"`
	Render     RenderConfig     `yaml:"render"`
	Preview    PreviewConfig    `yaml:"preview"`
	Presets    PresetsConfig    `yaml:"presets"`
	Validation ValidationConfig `yaml:"validation"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// APIConfig points at the templates API.
type APIConfig struct {
	BaseURL   string `yaml:"base_url"`
	Token     string `yaml:"token"`
	Timeout   string `yaml:"timeout"`
	UserAgent string `yaml:"user_agent"`
}

// TaskConfig carries defaults for task scoped commands.
type TaskConfig struct {
	DefaultID int64 `yaml:"default_id"`
}

// RenderConfig selects the output dialect.
type RenderConfig struct {
	Dialect  string `yaml:"dialect"`
	Sanitize *bool  `yaml:"sanitize,omitempty"`
}

// PreviewConfig overrides the bundled preview templates.
type PreviewConfig struct {
	TemplatesDir string `yaml:"templates_dir"`
}

// PresetsConfig replaces the bundled preset catalog.
type PresetsConfig struct {
	CatalogPath string `yaml:"catalog_path"`
}

// ValidationConfig selects the OpenAPI document templates are validated
// against. An empty Document uses the bundled one.
type ValidationConfig struct {
	Document string `yaml:"document"`
	Schema   string `yaml:"schema"`
	Disabled bool   `yaml:"disabled"`
}

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// Overrides are the values supplied on the command line. Empty fields leave
// the loaded configuration untouched.
type Overrides struct {
	APIURL  string
	Token   string
	TaskID  int64
	Dialect string
	Verbose bool
}

// DefaultTimeout is used when no timeout is configured or it fails to parse.
const DefaultTimeout = 15 * time.Second

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{
			Timeout:   DefaultTimeout.String(),
			UserAgent: "pubtemplate",
		},
		Render: RenderConfig{
			Dialect: "telegram-html",
		},
		Validation: ValidationConfig{
			Schema: "Template",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads the YAML file at path, falling back to $PUBTEMPLATE_CONFIG when
// path is empty, then applies environment overrides. A missing file yields
// the defaults unless the path was given explicitly.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = os.Getenv(EnvConfigPath)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist) && !explicit:
		default:
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if url := os.Getenv(EnvAPIURL); url != "" {
		c.API.BaseURL = url
	}
	if token := os.Getenv(EnvToken); token != "" {
		c.API.Token = token
	}
	if timeout := os.Getenv(EnvTimeout); timeout != "" {
		c.API.Timeout = timeout
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		c.Logging.Level = level
	}
	if raw := os.Getenv(EnvTaskID); raw != "" {
		id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvTaskID, err)
		}
		c.Task.DefaultID = id
	}
	return nil
}

// Apply overlays command line values.
func (c *Config) Apply(o Overrides) {
	if o.APIURL != "" {
		c.API.BaseURL = o.APIURL
	}
	if o.Token != "" {
		c.API.Token = o.Token
	}
	if o.TaskID > 0 {
		c.Task.DefaultID = o.TaskID
	}
	if o.Dialect != "" {
		c.Render.Dialect = o.Dialect
	}
	if o.Verbose {
		c.Logging.Level = "debug"
	}
}

// Validate reports settings that cannot be used.
func (c *Config) Validate() error {
	var problems []string
	if c.API.Timeout != "" {
		if d, err := time.ParseDuration(c.API.Timeout); err != nil || d <= 0 {
			problems = append(problems, fmt.Sprintf("api.timeout %q is not a positive duration", c.API.Timeout))
		}
	}
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		problems = append(problems, fmt.Sprintf("logging.level %q is unknown", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "", "json", "console":
	default:
		problems = append(problems, fmt.Sprintf("logging.format %q is unknown", c.Logging.Format))
	}
	if c.Task.DefaultID < 0 {
		problems = append(problems, "task.default_id must not be negative")
	}
	if len(problems) > 0 {
		return fmt.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Timeout returns the API timeout as a duration.
func (c *Config) Timeout() time.Duration {
	d, err := time.ParseDuration(c.API.Timeout)
	if err != nil || d <= 0 {
		return DefaultTimeout
	}
	return d
}

// SanitizeValues reports whether rendered values are sanitised. Defaults to
// true.
func (c *Config) SanitizeValues() bool {
	return c.Render.Sanitize == nil || *c.Render.Sanitize
}

// NewLogger builds the CLI logger: zap's production config writing to
// stderr, at the configured level.
func (c *Config) NewLogger() (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()

	level, err := zapcore.ParseLevel(c.Logging.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	if level == zapcore.DebugLevel {
		zcfg.Development = true
	}
	if c.Logging.Format != "json" {
		zcfg.Encoding = "console"
		zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("config: build logger: %w", err)
	}
	return logger, nil
}
