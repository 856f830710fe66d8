package dashboard

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"

	"github.com/torosent/volley/internal/metrics"
	"github.com/torosent/volley/internal/runner"
	"github.com/torosent/volley/internal/task"
)

// maxResultRows bounds the result list to the most recent outcomes.
const maxResultRows = 200

// Source is the run being displayed. *runner.Controller satisfies it.
type Source interface {
	Snapshot() runner.Snapshot
	Outcomes() []task.Outcome
}

// RunConfig holds run parameters for display.
type RunConfig struct {
	URLs         int           // Number of distinct URLs
	Method       string        // HTTP method
	Concurrency  int           // Maximum parallel requests
	Timeout      time.Duration // Per-request timeout
	Interval     time.Duration // Delay before each request
	ProgressMode runner.ProgressMode
	ConfigFile   string // Path to config file if used
}

// Dashboard renders a live terminal UI for a run.
type Dashboard struct {
	source       Source
	collector    *metrics.Collector
	ctx          context.Context
	cancel       context.CancelFunc
	shutdownFunc func()
	wg           sync.WaitGroup
	mu           sync.Mutex

	// Widgets
	grid           *ui.Grid
	summaryPara    *widgets.Paragraph
	progressGauge  *widgets.Gauge
	metricsPara    *widgets.Paragraph
	latencySparkle *widgets.SparklineGroup
	resultList     *widgets.List
	statusList     *widgets.List
	latencyHistory []float64
	startTime      time.Time
	runConfig      RunConfig
}

// New initializes the terminal and builds the widgets. shutdownFunc is
// called when the user presses q or Ctrl+C.
func New(source Source, collector *metrics.Collector, cfg RunConfig, shutdownFunc func()) (*Dashboard, error) {
	if err := ui.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize termui: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	d := &Dashboard{
		source:         source,
		collector:      collector,
		ctx:            ctx,
		cancel:         cancel,
		shutdownFunc:   shutdownFunc,
		latencyHistory: make([]float64, 0, 100),
		startTime:      time.Now(),
		runConfig:      cfg,
	}

	d.initWidgets()
	d.setupGrid()

	return d, nil
}

func (d *Dashboard) initWidgets() {
	d.summaryPara = widgets.NewParagraph()
	d.summaryPara.Title = "Run"
	d.summaryPara.Text = "Initializing..."
	d.summaryPara.BorderStyle.Fg = ui.ColorCyan

	d.progressGauge = widgets.NewGauge()
	d.progressGauge.Title = "Progress"
	d.progressGauge.Percent = 0
	d.progressGauge.BarColor = ui.ColorBlue
	d.progressGauge.BorderStyle.Fg = ui.ColorCyan
	d.progressGauge.LabelStyle = ui.NewStyle(ui.ColorWhite)

	d.metricsPara = widgets.NewParagraph()
	d.metricsPara.Title = "Metrics"
	d.metricsPara.Text = "Waiting for data..."
	d.metricsPara.BorderStyle.Fg = ui.ColorCyan

	sparkline := widgets.NewSparkline()
	sparkline.Title = "Mean latency (ms)"
	sparkline.LineColor = ui.ColorGreen
	sparkline.Data = []float64{0}

	d.latencySparkle = widgets.NewSparklineGroup(sparkline)
	d.latencySparkle.Title = "Latency"
	d.latencySparkle.BorderStyle.Fg = ui.ColorCyan

	d.resultList = widgets.NewList()
	d.resultList.Title = "Results"
	d.resultList.Rows = []string{"Awaiting results"}
	d.resultList.BorderStyle.Fg = ui.ColorCyan

	d.statusList = widgets.NewList()
	d.statusList.Title = "Status Codes / Failures"
	d.statusList.Rows = []string{"No data"}
	d.statusList.BorderStyle.Fg = ui.ColorCyan
}

func (d *Dashboard) setupGrid() {
	termWidth, termHeight := ui.TerminalDimensions()

	d.grid = ui.NewGrid()
	d.grid.SetRect(0, 0, termWidth, termHeight)

	d.grid.Set(
		ui.NewRow(0.14,
			ui.NewCol(1.0, d.summaryPara),
		),
		ui.NewRow(0.12,
			ui.NewCol(1.0, d.progressGauge),
		),
		ui.NewRow(0.24,
			ui.NewCol(0.6, d.latencySparkle),
			ui.NewCol(0.4, d.metricsPara),
		),
		ui.NewRow(0.5,
			ui.NewCol(0.7, d.resultList),
			ui.NewCol(0.3, d.statusList),
		),
	)
}

// Start begins the dashboard update loop.
func (d *Dashboard) Start() {
	d.wg.Add(1)
	go d.run()
}

// Stop stops the dashboard and restores the terminal.
func (d *Dashboard) Stop() {
	d.cancel()
	d.wg.Wait()
	ui.Close()
	// Give terminal time to restore
	time.Sleep(100 * time.Millisecond)
}

func (d *Dashboard) run() {
	defer d.wg.Done()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	uiEvents := ui.PollEvents()

	d.update()
	d.render()

	for {
		select {
		case <-d.ctx.Done():
			for len(uiEvents) > 0 {
				<-uiEvents
			}
			return
		case e := <-uiEvents:
			select {
			case <-d.ctx.Done():
				return
			default:
			}

			switch e.ID {
			case "q", "<C-c>":
				if d.shutdownFunc != nil {
					d.shutdownFunc()
				}
				// Stop() cancels the context once the run has wound down.
			case "<Resize>":
				payload := e.Payload.(ui.Resize)
				d.grid.SetRect(0, 0, payload.Width, payload.Height)
				ui.Clear()
				d.render()
			}
		case <-ticker.C:
			d.update()
			d.render()
		}
	}
}

// update refreshes all widget data from the run and the collector.
func (d *Dashboard) update() {
	d.mu.Lock()
	defer d.mu.Unlock()

	snap := d.source.Snapshot()
	elapsed := snap.Elapsed(time.Now())
	stats := d.collector.Stats(elapsed)
	progress := runner.Report(snap, d.runConfig.ProgressMode)

	d.summaryPara.Text = fmt.Sprintf(
		"Run: %s | State: %s\n%s\nElapsed: %s",
		displayRunID(snap.RunID),
		snap.State,
		formatRunParams(d.runConfig),
		elapsed.Round(time.Second),
	)

	d.progressGauge.Percent = progress.Percent()
	d.progressGauge.Label = gaugeLabel(snap, progress)
	d.progressGauge.BarColor = stateColor(snap.State)

	if stats.MeanLatency > 0 {
		d.latencyHistory = appendHistory(d.latencyHistory, stats.MeanLatencyMs, 100)
		d.latencySparkle.Sparklines[0].Data = d.latencyHistory
		d.latencySparkle.Title = fmt.Sprintf("Latency | Mean: %.2fms | Max: %.2fms", stats.MeanLatencyMs, stats.MaxLatencyMs)
	}

	d.metricsPara.Text = fmt.Sprintf(
		"[Success:](fg:green)  %d\n[Warning:](fg:yellow)  %d\n[Error:](fg:red)    %d\nRPS:       %.2f\nMin:       %.2fms\nP50/P90/P99: %.2f / %.2f / %.2f ms",
		stats.Successes,
		stats.Warnings,
		stats.Errors,
		stats.RequestsPerSec,
		stats.MinLatencyMs,
		stats.P50LatencyMs,
		stats.P90LatencyMs,
		stats.P99LatencyMs,
	)

	d.resultList.Rows = formatResultRows(d.source.Outcomes(), maxResultRows)
	d.statusList.Rows = formatStatusRows(stats)
}

// render draws all widgets to the screen.
func (d *Dashboard) render() {
	d.mu.Lock()
	defer d.mu.Unlock()

	ui.Render(d.grid)
}

func displayRunID(id string) string {
	if id == "" {
		return "-"
	}
	return id
}

func gaugeLabel(s runner.Snapshot, p runner.Progress) string {
	label := p.String()
	switch s.State {
	case runner.StateStopped:
		label += " | " + runner.StoppedNotice
	case runner.StateCompleted:
		label += " | done"
	}
	return label
}

func stateColor(s runner.State) ui.Color {
	switch s {
	case runner.StateCompleted:
		return ui.ColorGreen
	case runner.StateStopped:
		return ui.ColorYellow
	default:
		return ui.ColorBlue
	}
}

func tagColor(tag task.Tag) string {
	switch tag {
	case task.TagSuccess:
		return "green"
	case task.TagWarning:
		return "yellow"
	default:
		return "red"
	}
}

func appendHistory(history []float64, v float64, limit int) []float64 {
	history = append(history, v)
	if len(history) > limit {
		history = history[len(history)-limit:]
	}
	return history
}

// formatResultRows renders the newest outcomes first, colored by tag.
func formatResultRows(outcomes []task.Outcome, limit int) []string {
	if len(outcomes) == 0 {
		return []string{"Awaiting results"}
	}
	n := len(outcomes)
	if limit > 0 && n > limit {
		n = limit
	}
	rows := make([]string, 0, n)
	for i := len(outcomes) - 1; i >= len(outcomes)-n; i-- {
		rows = append(rows, formatResultRow(outcomes[i]))
	}
	return rows
}

func formatResultRow(out task.Outcome) string {
	status := sanitize(out.StatusText())
	return fmt.Sprintf("[%-6s](fg:%s) %8.2fms  %s", status, tagColor(out.Tag()), out.ElapsedMs, sanitize(out.URL))
}

// sanitize strips the characters termui treats as style markup.
func sanitize(s string) string {
	return strings.NewReplacer("[", "(", "]", ")").Replace(s)
}

func formatStatusRows(stats metrics.Stats) []string {
	codes := metrics.FlattenBuckets(stats.StatusCodes)
	failures := metrics.FlattenBuckets(stats.Failures)
	if len(codes) == 0 && len(failures) == 0 {
		return []string{"No data"}
	}
	rows := make([]string, 0, len(codes)+len(failures))
	for _, row := range codes {
		rows = append(rows, fmt.Sprintf("[%s](fg:%s) %d", row.Label, statusCodeColor(row.Label), row.Count))
	}
	for _, row := range failures {
		rows = append(rows, fmt.Sprintf("[%s](fg:red) %d", metrics.FailureLabel(row.Label), row.Count))
	}
	return rows
}

func statusCodeColor(code string) string {
	switch {
	case strings.HasPrefix(code, "2"):
		return "green"
	case strings.HasPrefix(code, "4"):
		return "yellow"
	default:
		return "red"
	}
}

// formatRunParams formats the run parameters for display.
func formatRunParams(cfg RunConfig) string {
	var parts []string

	if cfg.URLs > 0 {
		parts = append(parts, fmt.Sprintf("URLs: %d", cfg.URLs))
	}
	if cfg.Method != "" && cfg.Method != "GET" {
		parts = append(parts, fmt.Sprintf("Method: %s", cfg.Method))
	}
	if cfg.Concurrency > 0 {
		parts = append(parts, fmt.Sprintf("Workers: %d", cfg.Concurrency))
	}
	if cfg.Timeout > 0 {
		parts = append(parts, fmt.Sprintf("Timeout: %s", cfg.Timeout))
	}
	if cfg.Interval > 0 {
		parts = append(parts, fmt.Sprintf("Interval: %s", cfg.Interval))
	}
	if cfg.ProgressMode == runner.ProgressModePass {
		parts = append(parts, "Progress: per pass")
	}
	if cfg.ConfigFile != "" {
		parts = append(parts, fmt.Sprintf("Config: %s", cfg.ConfigFile))
	}

	return strings.Join(parts, " | ")
}
