package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/torosent/volley/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.NewLoader().Load([]string{"--url", "http://a.test"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Method != "GET" {
		t.Errorf("Method = %q, want GET", cfg.Method)
	}
	if cfg.Concurrency != 5 {
		t.Errorf("Concurrency = %d, want 5", cfg.Concurrency)
	}
	if cfg.Timeout != 10*time.Second {
		t.Errorf("Timeout = %s, want 10s", cfg.Timeout)
	}
	if cfg.Interval != 0 {
		t.Errorf("Interval = %s, want 0", cfg.Interval)
	}
	if cfg.ProgressMode != "run" {
		t.Errorf("ProgressMode = %q, want run", cfg.ProgressMode)
	}
	if cfg.Tracing.Endpoint != "" || cfg.Tracing.SampleRate != 1 {
		t.Errorf("unexpected tracing defaults %+v", cfg.Tracing)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoadFromFlags(t *testing.T) {
	args := []string{
		"--url", "http://a.test",
		"-u", "http://b.test",
		"--method", "post",
		"--body", `{"k":"v"}`,
		"-c", "12",
		"--timeout", "3s",
		"--interval", "250ms",
		"-o", "results.csv",
		"--progress-mode", "PASS",
		"--log-format", "JSON",
		"--metrics-addr", ":9115",
		"--trace-endpoint", "localhost:4317",
		"--trace-propagate",
		"http://c.test",
	}

	cfg, err := config.NewLoader().Load(args)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got := strings.Join(cfg.URLs, " "); got != "http://a.test http://b.test http://c.test" {
		t.Errorf("URLs = %q", got)
	}
	if cfg.Method != "POST" {
		t.Errorf("Method = %q, want POST", cfg.Method)
	}
	if cfg.Body != `{"k":"v"}` {
		t.Errorf("Body = %q", cfg.Body)
	}
	if cfg.Concurrency != 12 {
		t.Errorf("Concurrency = %d, want 12", cfg.Concurrency)
	}
	if cfg.Timeout != 3*time.Second {
		t.Errorf("Timeout = %s, want 3s", cfg.Timeout)
	}
	if cfg.Interval != 250*time.Millisecond {
		t.Errorf("Interval = %s, want 250ms", cfg.Interval)
	}
	if cfg.Output != "results.csv" {
		t.Errorf("Output = %q", cfg.Output)
	}
	if cfg.ProgressMode != "pass" || cfg.LogFormat != "json" {
		t.Errorf("ProgressMode/LogFormat = %q/%q", cfg.ProgressMode, cfg.LogFormat)
	}
	if cfg.MetricsAddr != ":9115" {
		t.Errorf("MetricsAddr = %q", cfg.MetricsAddr)
	}
	if cfg.Tracing.Endpoint != "localhost:4317" || !cfg.Tracing.Propagate {
		t.Errorf("Tracing = %+v", cfg.Tracing)
	}
}

func TestLoadConfigFileYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := strings.Join([]string{
		"urls:",
		"  - https://a.example.com",
		"  - https://b.example.com",
		"method: POST",
		"body: '{\"ping\":true}'",
		"concurrency: 8",
		"timeout: 2.5",
		"interval: 150",
		"output: out.csv",
		"dashboard: true",
		"tracing:",
		"  endpoint: collector:4318",
		"  protocol: HTTP",
		"  sample_rate: 0.25",
		"  insecure: true",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := config.NewLoader().Load([]string{"--config", path})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(cfg.URLs) != 2 || cfg.URLs[1] != "https://b.example.com" {
		t.Errorf("URLs = %v", cfg.URLs)
	}
	if cfg.Method != "POST" || cfg.Body != `{"ping":true}` {
		t.Errorf("Method/Body = %q/%q", cfg.Method, cfg.Body)
	}
	if cfg.Concurrency != 8 {
		t.Errorf("Concurrency = %d, want 8", cfg.Concurrency)
	}
	if cfg.Timeout != 2500*time.Millisecond {
		t.Errorf("Timeout = %s, want 2.5s", cfg.Timeout)
	}
	if cfg.Interval != 150*time.Millisecond {
		t.Errorf("Interval = %s, want 150ms", cfg.Interval)
	}
	if cfg.Output != "out.csv" || !cfg.Dashboard {
		t.Errorf("Output/Dashboard = %q/%v", cfg.Output, cfg.Dashboard)
	}
	want := config.TracingConfig{Endpoint: "collector:4318", Protocol: "http", SampleRate: 0.25, Insecure: true}
	if cfg.Tracing != want {
		t.Errorf("Tracing = %+v, want %+v", cfg.Tracing, want)
	}
	if cfg.ConfigFile != path {
		t.Errorf("ConfigFile = %q", cfg.ConfigFile)
	}
}

func TestLoadConfigFileJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	content := `{
		"urlsFile": "targets.json",
		"urlsFormat": "json",
		"urlsJsonPath": "targets.#.url",
		"timeout": "750ms",
		"interval": "1s",
		"jsonOutput": true,
		"logLevel": "debug"
	}`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := config.NewLoader().Load([]string{"--config", path})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.URLsFile != "targets.json" || cfg.URLsFormat != "json" || cfg.URLsJSONPath != "targets.#.url" {
		t.Errorf("URL source = %q/%q/%q", cfg.URLsFile, cfg.URLsFormat, cfg.URLsJSONPath)
	}
	if cfg.Timeout != 750*time.Millisecond || cfg.Interval != time.Second {
		t.Errorf("Timeout/Interval = %s/%s", cfg.Timeout, cfg.Interval)
	}
	if !cfg.JSONOutput || cfg.LogLevel != "debug" {
		t.Errorf("JSONOutput/LogLevel = %v/%q", cfg.JSONOutput, cfg.LogLevel)
	}
}

func TestFlagsOverrideConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("concurrency: 8\nurls: [http://file.test]\n"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := config.NewLoader().Load([]string{"--config", path, "-c", "3", "--url", "http://flag.test"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Concurrency != 3 {
		t.Errorf("Concurrency = %d, want 3", cfg.Concurrency)
	}
	if len(cfg.URLs) != 1 || cfg.URLs[0] != "http://flag.test" {
		t.Errorf("URLs = %v", cfg.URLs)
	}
}

func TestFlagBodyOverridesConfigBodyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"bodyFile":"payload.json","urls":["http://a.test"]}`), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := config.NewLoader().Load([]string{"--config", path, "--body", "inline"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Body != "inline" {
		t.Errorf("Body = %q, want inline", cfg.Body)
	}
	if cfg.BodyFile != "" {
		t.Errorf("BodyFile = %q, want empty", cfg.BodyFile)
	}
}

func TestLoadHelp(t *testing.T) {
	for _, args := range [][]string{nil, {"--help"}} {
		if _, err := config.NewLoader().Load(args); !errors.Is(err, config.ErrHelpRequested) {
			t.Errorf("Load(%v) error = %v, want ErrHelpRequested", args, err)
		}
	}
}

func TestLoadMissingConfigFile(t *testing.T) {
	if _, err := config.NewLoader().Load([]string{"--config", filepath.Join(t.TempDir(), "none.yaml")}); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestConfigValidationErrors(t *testing.T) {
	valid := config.Defaults()
	valid.URLs = []string{"http://a.test"}

	cases := []struct {
		name   string
		mutate func(c *config.Config)
		want   []string
	}{
		{"missing urls", func(c *config.Config) { c.URLs = nil }, []string{"--url"}},
		{"method", func(c *config.Config) { c.Method = "PUT" }, []string{"method"}},
		{"concurrency low", func(c *config.Config) { c.Concurrency = 0 }, []string{"concurrency"}},
		{"concurrency high", func(c *config.Config) { c.Concurrency = 51 }, []string{"concurrency"}},
		{"timeout", func(c *config.Config) { c.Timeout = 0 }, []string{"timeout"}},
		{"interval", func(c *config.Config) { c.Interval = -time.Second }, []string{"interval"}},
		{"body conflict", func(c *config.Config) { c.Body = "x"; c.BodyFile = "y" }, []string{"body"}},
		{"progress mode", func(c *config.Config) { c.ProgressMode = "batch" }, []string{"progress mode"}},
		{"log level", func(c *config.Config) { c.LogLevel = "loud" }, []string{"log level"}},
		{"log format", func(c *config.Config) { c.LogFormat = "xml" }, []string{"log format"}},
		{"urls format", func(c *config.Config) { c.URLsFormat = "xml" }, []string{"urls format"}},
		{"tracing", func(c *config.Config) { c.Tracing.Protocol = "udp"; c.Tracing.SampleRate = 2 }, []string{"tracing protocol", "sample_rate"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid
			tc.mutate(&cfg)
			err := cfg.Validate()
			var verr config.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() error = %v, want ValidationError", err)
			}
			for _, want := range tc.want {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("Validate() error %q missing %q", err.Error(), want)
				}
			}
		})
	}

	if err := valid.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func TestURLsFileSatisfiesValidation(t *testing.T) {
	cfg := config.Defaults()
	cfg.URLsFile = "-"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}
