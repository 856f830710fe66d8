package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// RegisterFlags registers all CLI flags to a cobra command.
func RegisterFlags(cmd *cobra.Command) {
	configureFlags(cmd.Flags())
}

// newFlagCommand creates a cobra command with all flags configured.
func newFlagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "volley [flags] [url...]",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetOut(os.Stdout)
	configureFlags(cmd.Flags())
	return cmd
}

// configureFlags sets up all CLI flags on the provided flag set.
func configureFlags(flags *pflag.FlagSet) {
	defaults := Defaults()

	// Target flags
	flags.StringArrayP("url", "u", nil, "Target URL (repeatable)")
	flags.String("urls-file", "", "File with target URLs, or - for stdin")
	flags.String("urls-format", "", "URL file format: text, csv, json or yaml (default: by extension)")
	flags.String("urls-json-path", "", "gjson path selecting URLs in a JSON file")
	flags.String("urls-csv-column", "", "CSV column holding URLs (default: url)")

	// Request flags
	flags.StringP("method", "X", defaults.Method, "HTTP method: GET or POST")
	flags.String("body", "", "Inline request body for POST")
	flags.String("body-file", "", "Path to file containing the POST body")
	flags.IntP("concurrency", "c", defaults.Concurrency, fmt.Sprintf("Maximum parallel requests (%d-%d)", MinConcurrency, MaxConcurrency))
	flags.Duration("timeout", defaults.Timeout, "Per-request timeout")
	flags.Duration("interval", 0, "Delay before each request is sent")

	// Output flags
	flags.StringP("output", "o", "", "Write results as CSV to this path")
	flags.String("html-output", "", "Write an HTML results page to this path")
	flags.Bool("json-output", false, "Emit JSON formatted summary")
	flags.Bool("dashboard", false, "Show live terminal dashboard")
	flags.String("progress-mode", defaults.ProgressMode, "Progress accounting: run or pass")
	flags.String("log-level", defaults.LogLevel, "Log level: trace, debug, info, warn, error")
	flags.String("log-format", defaults.LogFormat, "Log format: text or json")
	flags.String("metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9115)")
	flags.String("config", "", "Path to configuration file (JSON or YAML)")

	// Tracing flags
	flags.String("trace-endpoint", "", "OTLP endpoint for traces (enables tracing)")
	flags.String("trace-protocol", defaults.Tracing.Protocol, "OTLP protocol: grpc or http")
	flags.String("trace-service-name", "", "Service name reported with spans")
	flags.Float64("trace-sample-rate", defaults.Tracing.SampleRate, "Fraction of requests traced (0.0-1.0)")
	flags.Bool("trace-insecure", false, "Use plaintext connection to the OTLP endpoint")
	flags.Bool("trace-propagate", false, "Inject W3C trace headers into requests")
}

// displayHelp prints the help message for a command.
func displayHelp(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Usage: %s\n\nFlags:\n", cmd.UseLine())
	fs := cmd.Flags()
	fs.SetOutput(out)
	fs.PrintDefaults()
}

// applyFlagOverrides applies command-line flag values to the config, overriding
// values from the config file.
func applyFlagOverrides(cfg *Config, fs *pflag.FlagSet) error {
	if fs.Changed("url") {
		val, err := fs.GetStringArray("url")
		if err != nil {
			return err
		}
		cfg.URLs = val
	}
	if fs.Changed("urls-file") {
		val, err := fs.GetString("urls-file")
		if err != nil {
			return err
		}
		cfg.URLsFile = strings.TrimSpace(val)
	}
	if fs.Changed("urls-format") {
		val, err := fs.GetString("urls-format")
		if err != nil {
			return err
		}
		cfg.URLsFormat = val
	}
	if fs.Changed("urls-json-path") {
		val, err := fs.GetString("urls-json-path")
		if err != nil {
			return err
		}
		cfg.URLsJSONPath = val
	}
	if fs.Changed("urls-csv-column") {
		val, err := fs.GetString("urls-csv-column")
		if err != nil {
			return err
		}
		cfg.URLsCSVColumn = val
	}
	if fs.Changed("method") {
		val, err := fs.GetString("method")
		if err != nil {
			return err
		}
		cfg.Method = val
	}
	if fs.Changed("body") {
		val, err := fs.GetString("body")
		if err != nil {
			return err
		}
		cfg.Body = val
		cfg.BodyFile = ""
	}
	if fs.Changed("body-file") {
		val, err := fs.GetString("body-file")
		if err != nil {
			return err
		}
		cfg.BodyFile = val
		cfg.Body = ""
	}
	if fs.Changed("concurrency") {
		val, err := fs.GetInt("concurrency")
		if err != nil {
			return err
		}
		cfg.Concurrency = val
	}
	if fs.Changed("timeout") {
		val, err := fs.GetDuration("timeout")
		if err != nil {
			return err
		}
		cfg.Timeout = val
	}
	if fs.Changed("interval") {
		val, err := fs.GetDuration("interval")
		if err != nil {
			return err
		}
		cfg.Interval = val
	}
	if fs.Changed("output") {
		val, err := fs.GetString("output")
		if err != nil {
			return err
		}
		cfg.Output = strings.TrimSpace(val)
	}
	if fs.Changed("html-output") {
		val, err := fs.GetString("html-output")
		if err != nil {
			return err
		}
		cfg.HTMLOutput = strings.TrimSpace(val)
	}
	if fs.Changed("json-output") {
		val, err := fs.GetBool("json-output")
		if err != nil {
			return err
		}
		cfg.JSONOutput = val
	}
	if fs.Changed("dashboard") {
		val, err := fs.GetBool("dashboard")
		if err != nil {
			return err
		}
		cfg.Dashboard = val
	}
	if fs.Changed("progress-mode") {
		val, err := fs.GetString("progress-mode")
		if err != nil {
			return err
		}
		cfg.ProgressMode = val
	}
	if fs.Changed("log-level") {
		val, err := fs.GetString("log-level")
		if err != nil {
			return err
		}
		cfg.LogLevel = val
	}
	if fs.Changed("log-format") {
		val, err := fs.GetString("log-format")
		if err != nil {
			return err
		}
		cfg.LogFormat = val
	}
	if fs.Changed("metrics-addr") {
		val, err := fs.GetString("metrics-addr")
		if err != nil {
			return err
		}
		cfg.MetricsAddr = strings.TrimSpace(val)
	}
	return applyTracingFlags(&cfg.Tracing, fs)
}

func applyTracingFlags(t *TracingConfig, fs *pflag.FlagSet) error {
	if fs.Changed("trace-endpoint") {
		val, err := fs.GetString("trace-endpoint")
		if err != nil {
			return err
		}
		t.Endpoint = strings.TrimSpace(val)
	}
	if fs.Changed("trace-protocol") {
		val, err := fs.GetString("trace-protocol")
		if err != nil {
			return err
		}
		t.Protocol = strings.ToLower(strings.TrimSpace(val))
	}
	if fs.Changed("trace-service-name") {
		val, err := fs.GetString("trace-service-name")
		if err != nil {
			return err
		}
		t.ServiceName = strings.TrimSpace(val)
	}
	if fs.Changed("trace-sample-rate") {
		val, err := fs.GetFloat64("trace-sample-rate")
		if err != nil {
			return err
		}
		t.SampleRate = val
	}
	if fs.Changed("trace-insecure") {
		val, err := fs.GetBool("trace-insecure")
		if err != nil {
			return err
		}
		t.Insecure = val
	}
	if fs.Changed("trace-propagate") {
		val, err := fs.GetBool("trace-propagate")
		if err != nil {
			return err
		}
		t.Propagate = val
	}
	return nil
}
