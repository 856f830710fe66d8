package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/torosent/volley/internal/config"
	"github.com/torosent/volley/internal/dashboard"
	"github.com/torosent/volley/internal/httpclient"
	"github.com/torosent/volley/internal/metrics"
	"github.com/torosent/volley/internal/output"
	"github.com/torosent/volley/internal/runner"
	"github.com/torosent/volley/internal/task"
	"github.com/torosent/volley/internal/tracing"
	"github.com/torosent/volley/internal/urlsource"
)

const (
	progressInterval = 200 * time.Millisecond
	shutdownTimeout  = 5 * time.Second
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run executes one batch. Cancelling ctx stops the run; captured results
// are still exported and reported.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	loader := config.NewLoader()
	cfg, err := loader.Load(args)
	if err != nil {
		if errors.Is(err, config.ErrHelpRequested) {
			return nil
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(cfg, stderr)
	if err != nil {
		return err
	}

	urls, err := gatherURLs(cfg)
	if err != nil {
		return err
	}
	runCfg, err := buildRunConfig(cfg)
	if err != nil {
		return err
	}
	mode, err := runner.ParseProgressMode(cfg.ProgressMode)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	provider, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
		defer done()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Warn("flush traces")
		}
	}()

	collector := metrics.NewCollector()
	prom := metrics.NewPromRecorder()
	notices := &noticeBoard{}

	executor := task.NewExecutor(httpclient.NewClient(runCfg.Timeout), task.WithTracing(provider))
	ctrl := runner.NewController(runner.Options{
		Executor:  executor,
		Logger:    logger,
		Recorders: []runner.Recorder{collector, prom},
		Notifier:  notices,
	})

	if cfg.MetricsAddr != "" {
		srv := serveMetrics(cfg.MetricsAddr, prom.Handler(), logger)
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
			defer done()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	if _, err := ctrl.Start(urls, runCfg); err != nil {
		return err
	}
	snap := ctrl.Snapshot()
	prom.SetRunParams(snap.Total, runCfg.Concurrency)

	stop := func() {
		if err := ctrl.Stop(); err != nil && !errors.Is(err, runner.ErrNotRunning) {
			logger.WithError(err).Warn("stop run")
		}
	}

	var dash *dashboard.Dashboard
	if cfg.Dashboard {
		dash, err = dashboard.New(ctrl, collector, dashboard.RunConfig{
			URLs:         snap.Total,
			Method:       runCfg.Method,
			Concurrency:  runCfg.Concurrency,
			Timeout:      runCfg.Timeout,
			Interval:     runCfg.Interval,
			ProgressMode: mode,
			ConfigFile:   cfg.ConfigFile,
		}, stop)
		if err != nil {
			stop()
			return err
		}
		dash.Start()
	}

	var progress *output.ProgressReporter
	if !cfg.JSONOutput && !cfg.Dashboard {
		progress = output.NewProgressReporter(ctrl, mode, progressInterval, stdout)
		progress.Start()
	}

	go func() {
		<-ctx.Done()
		stop()
	}()

	waitErr := ctrl.Wait(context.Background())
	if dash != nil {
		dash.Stop()
	}
	if progress != nil {
		progress.Stop()
	}
	if waitErr != nil {
		return waitErr
	}
	notices.Flush(stderr)

	snap = ctrl.Snapshot()
	outcomes := ctrl.Outcomes()
	sum := output.NewSummary(snap, collector.Stats(snap.Elapsed(time.Now())))

	if err := exportResults(cfg, sum, outcomes, logger); err != nil {
		return err
	}

	if cfg.JSONOutput {
		return output.PrintJSONReport(stdout, sum)
	}
	output.PrintReport(stdout, sum)
	return nil
}

// newLogger builds the stderr logger. The dashboard owns the terminal, so
// log lines are dropped while it is shown.
func newLogger(cfg *config.Config, w io.Writer) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := logrus.New()
	logger.SetLevel(level)
	logger.SetOutput(w)
	if cfg.Dashboard {
		logger.SetOutput(io.Discard)
	}
	switch cfg.LogFormat {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger, nil
}

// gatherURLs combines --url values with the URL file, in that order.
// Duplicates are left for the controller to drop.
func gatherURLs(cfg *config.Config) ([]string, error) {
	urls := append([]string(nil), cfg.URLs...)
	if cfg.URLsFile == "" {
		return urls, nil
	}
	format, err := urlsource.ParseFormat(cfg.URLsFormat)
	if err != nil {
		return nil, err
	}
	fromFile, err := urlsource.Load(cfg.URLsFile, urlsource.Options{
		Format:    format,
		JSONPath:  cfg.URLsJSONPath,
		CSVColumn: cfg.URLsCSVColumn,
	})
	if err != nil {
		return nil, err
	}
	return append(urls, fromFile...), nil
}

func buildRunConfig(cfg *config.Config) (runner.RunConfig, error) {
	body := cfg.Body
	if cfg.BodyFile != "" {
		data, err := httpclient.ReadBodyFile(cfg.BodyFile)
		if err != nil {
			return runner.RunConfig{}, err
		}
		body = data
	}
	return runner.RunConfig{
		Method:      httpclient.NormalizeMethod(cfg.Method),
		Body:        body,
		Concurrency: cfg.Concurrency,
		Timeout:     cfg.Timeout,
		Interval:    cfg.Interval,
	}, nil
}

func serveMetrics(addr string, handler http.Handler, logger logrus.FieldLogger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.WithField("addr", addr).Info("serving metrics")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("metrics server")
		}
	}()
	return srv
}

func exportResults(cfg *config.Config, sum output.Summary, outcomes []task.Outcome, logger logrus.FieldLogger) error {
	if cfg.Output != "" {
		if err := output.ExportFile(cfg.Output, outcomes); err != nil {
			return err
		}
		logger.WithField("path", cfg.Output).WithField("rows", len(outcomes)).Info("results exported")
	}
	if cfg.HTMLOutput != "" {
		if err := output.ExportHTMLFile(cfg.HTMLOutput, sum, outcomes); err != nil {
			return err
		}
		logger.WithField("path", cfg.HTMLOutput).Info("html report written")
	}
	return nil
}

// noticeBoard holds notices until the terminal is free to show them.
type noticeBoard struct {
	mu   sync.Mutex
	msgs []string
}

func (n *noticeBoard) Notify(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, msg)
}

func (n *noticeBoard) Flush(w io.Writer) {
	n.mu.Lock()
	msgs := n.msgs
	n.msgs = nil
	n.mu.Unlock()
	if len(msgs) > 0 {
		fmt.Fprintln(w, strings.Join(msgs, "\n"))
	}
}
