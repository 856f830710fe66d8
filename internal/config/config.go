package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	DefaultConcurrency = 5
	DefaultTimeout     = 10 * time.Second
	MinConcurrency     = 1
	MaxConcurrency     = 50
)

type Config struct {
	URLs          []string      `mapstructure:"urls"`
	URLsFile      string        `mapstructure:"urls_file"`
	URLsFormat    string        `mapstructure:"urls_format"`
	URLsJSONPath  string        `mapstructure:"urls_json_path"`
	URLsCSVColumn string        `mapstructure:"urls_csv_column"`
	Method        string        `mapstructure:"method"`
	Body          string        `mapstructure:"body"`
	BodyFile      string        `mapstructure:"body_file"`
	Concurrency   int           `mapstructure:"concurrency"`
	Timeout       time.Duration `mapstructure:"timeout"`
	Interval      time.Duration `mapstructure:"interval"`
	Output        string        `mapstructure:"output"`
	HTMLOutput    string        `mapstructure:"html_output"`
	JSONOutput    bool          `mapstructure:"json_output"`
	Dashboard     bool          `mapstructure:"dashboard"`
	ProgressMode  string        `mapstructure:"progress_mode"`
	LogLevel      string        `mapstructure:"log_level"`
	LogFormat     string        `mapstructure:"log_format"`
	MetricsAddr   string        `mapstructure:"metrics_addr"`
	ConfigFile    string        `mapstructure:"-"`
	Tracing       TracingConfig `mapstructure:"tracing"`
}

// TracingConfig controls OpenTelemetry export. Tracing stays off unless an
// endpoint is set here or through OTEL_EXPORTER_OTLP_ENDPOINT.
type TracingConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`
	Protocol    string  `mapstructure:"protocol"`
	ServiceName string  `mapstructure:"service_name"`
	SampleRate  float64 `mapstructure:"sample_rate"`
	Insecure    bool    `mapstructure:"insecure"`
	Propagate   bool    `mapstructure:"propagate"`
}

// Defaults returns the configuration used before any file or flag applies.
func Defaults() Config {
	return Config{
		Method:       "GET",
		Concurrency:  DefaultConcurrency,
		Timeout:      DefaultTimeout,
		ProgressMode: "run",
		LogLevel:     "info",
		LogFormat:    "text",
		Tracing: TracingConfig{
			Protocol:   "grpc",
			SampleRate: 1.0,
		},
	}
}

type ValidationError struct {
	issues []string
}

func (e ValidationError) Error() string {
	if len(e.issues) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.issues, "; "))
}

func (e ValidationError) Issues() []string {
	return append([]string(nil), e.issues...)
}

func (c Config) Validate() error {
	var issues []string

	if len(c.URLs) == 0 && strings.TrimSpace(c.URLsFile) == "" {
		issues = append(issues, "at least one --url or a --urls-file is required")
	}

	switch strings.ToUpper(strings.TrimSpace(c.Method)) {
	case "GET", "POST":
	default:
		issues = append(issues, fmt.Sprintf("method must be GET or POST, got %q", c.Method))
	}
	if c.Body != "" && c.BodyFile != "" {
		issues = append(issues, "body and body_file are mutually exclusive")
	}

	if c.Concurrency < MinConcurrency || c.Concurrency > MaxConcurrency {
		issues = append(issues, fmt.Sprintf("concurrency must be between %d and %d", MinConcurrency, MaxConcurrency))
	}
	if c.Timeout <= 0 {
		issues = append(issues, "timeout must be greater than zero")
	}
	if c.Interval < 0 {
		issues = append(issues, "interval must be non-negative")
	}

	switch strings.ToLower(strings.TrimSpace(c.URLsFormat)) {
	case "", "text", "txt", "csv", "json", "yaml", "yml":
	default:
		issues = append(issues, fmt.Sprintf("urls format %q is not supported", c.URLsFormat))
	}

	switch strings.ToLower(strings.TrimSpace(c.ProgressMode)) {
	case "", "run", "pass":
	default:
		issues = append(issues, fmt.Sprintf("progress mode %q is not supported (use run or pass)", c.ProgressMode))
	}

	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		issues = append(issues, fmt.Sprintf("log level %q is not valid", c.LogLevel))
	}
	switch strings.ToLower(strings.TrimSpace(c.LogFormat)) {
	case "", "text", "json":
	default:
		issues = append(issues, fmt.Sprintf("log format %q is not supported (use text or json)", c.LogFormat))
	}

	issues = append(issues, validateTracing(c.Tracing)...)

	if len(issues) > 0 {
		return ValidationError{issues: issues}
	}
	return nil
}

func validateTracing(t TracingConfig) []string {
	var issues []string
	switch strings.ToLower(strings.TrimSpace(t.Protocol)) {
	case "", "grpc", "http":
	default:
		issues = append(issues, fmt.Sprintf("tracing protocol %q is not supported (use grpc or http)", t.Protocol))
	}
	if t.SampleRate < 0 || t.SampleRate > 1 {
		issues = append(issues, "tracing sample_rate must be between 0.0 and 1.0")
	}
	return issues
}
