package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap/zapcore"

	"github.com/goliatone/go-pubtemplate/pkg/config"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		config.EnvConfigPath, config.EnvAPIURL, config.EnvToken,
		config.EnvTimeout, config.EnvLogLevel, config.EnvTaskID,
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(config.Default(), cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
	if cfg.Timeout() != config.DefaultTimeout {
		t.Fatalf("expected default timeout, got %s", cfg.Timeout())
	}
	if !cfg.SanitizeValues() {
		t.Fatalf("expected sanitising by default")
	}
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load(filepath.Join("testdata", "pubtemplate.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	sanitize := false
	want := config.Default()
	want.API = config.APIConfig{
		BaseURL:   "https://bot.example.com/api",
		Token:     "file-token",
		Timeout:   "5s",
		UserAgent: "pubtemplate",
	}
	want.Task.DefaultID = 4
	want.Render = config.RenderConfig{Dialect: "plain", Sanitize: &sanitize}
	want.Preview.TemplatesDir = "./views"
	want.Validation.Document = "./openapi.yaml"
	want.Logging = config.LoggingConfig{Level: "warn", Format: "json"}

	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
	if cfg.Timeout() != 5*time.Second {
		t.Fatalf("expected 5s timeout, got %s", cfg.Timeout())
	}
	if cfg.SanitizeValues() {
		t.Fatalf("expected sanitising disabled")
	}
}

func TestLoadFromEnvPath(t *testing.T) {
	clearEnv(t)
	t.Setenv(config.EnvConfigPath, filepath.Join("testdata", "pubtemplate.yaml"))

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.API.Token != "file-token" {
		t.Fatalf("expected file token, got %q", cfg.API.Token)
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	missing := filepath.Join(t.TempDir(), "missing.yaml")

	if _, err := config.Load(missing); err == nil {
		t.Fatalf("expected error for an explicit missing file")
	}

	t.Setenv(config.EnvConfigPath, missing)
	if _, err := config.Load(""); err != nil {
		t.Fatalf("expected defaults when the env path is missing, got %v", err)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("api: [unterminated"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := config.Load(path); err == nil || !strings.Contains(err.Error(), "config: parse") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestEnvOverridesAndFlags(t *testing.T) {
	clearEnv(t)
	t.Setenv(config.EnvAPIURL, "https://env.example.com")
	t.Setenv(config.EnvToken, "env-token")
	t.Setenv(config.EnvTimeout, "30s")
	t.Setenv(config.EnvLogLevel, "error")
	t.Setenv(config.EnvTaskID, "9")

	cfg, err := config.Load(filepath.Join("testdata", "pubtemplate.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	type view struct {
		URL, Token, Timeout, Level string
		Task                       int64
	}
	got := view{cfg.API.BaseURL, cfg.API.Token, cfg.API.Timeout, cfg.Logging.Level, cfg.Task.DefaultID}
	want := view{"https://env.example.com", "env-token", "30s", "error", 9}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("env mismatch (-want +got):\n%s", diff)
	}

	cfg.Apply(config.Overrides{APIURL: "https://flag.example.com", TaskID: 11, Dialect: "markdown", Verbose: true})
	got = view{cfg.API.BaseURL, cfg.API.Token, cfg.API.Timeout, cfg.Logging.Level, cfg.Task.DefaultID}
	want = view{"https://flag.example.com", "env-token", "30s", "debug", 11}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("flag mismatch (-want +got):\n%s", diff)
	}
	if cfg.Render.Dialect != "markdown" {
		t.Fatalf("expected markdown dialect, got %q", cfg.Render.Dialect)
	}
}

func TestEnvTaskIDMustBeNumeric(t *testing.T) {
	clearEnv(t)
	t.Setenv(config.EnvTaskID, "four")
	if _, err := config.Load(""); err == nil {
		t.Fatalf("expected error for a non numeric task id")
	}
}

func TestValidate(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}

	cfg.API.Timeout = "soon"
	cfg.Logging.Level = "loud"
	cfg.Logging.Format = "xml"
	err := cfg.Validate()
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, fragment := range []string{"api.timeout", "logging.level", "logging.format"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Fatalf("expected %q in %v", fragment, err)
		}
	}
}

func TestNewLogger(t *testing.T) {
	cfg := config.Default()
	cfg.Apply(config.Overrides{Verbose: true})

	logger, err := cfg.NewLogger()
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if !logger.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("expected debug level to be enabled")
	}
}
