package output

import (
	"fmt"
	"html/template"
	"io"
	"os"
	"time"

	"github.com/torosent/volley/internal/task"
)

// HTMLReportData contains all data needed for the HTML report template.
type HTMLReportData struct {
	GeneratedAt string
	Summary     Summary
	Rows        []HTMLRow
}

// HTMLRow is one result line, tagged for coloring.
type HTMLRow struct {
	URL       string
	Status    string
	ElapsedMs string
	Tag       string
	WebURL    bool
}

// GenerateHTMLReport writes a standalone page with the summary and one
// color-tagged row per outcome, in stored order.
func GenerateHTMLReport(w io.Writer, sum Summary, outcomes []task.Outcome) error {
	rows := make([]HTMLRow, len(outcomes))
	for i, out := range outcomes {
		cols := csvRow(out)
		rows[i] = HTMLRow{
			URL:       cols[0],
			Status:    cols[1],
			ElapsedMs: cols[2],
			Tag:       string(out.Tag()),
			WebURL:    task.IsWebURL(out.URL),
		}
	}

	data := HTMLReportData{
		GeneratedAt: time.Now().Format(time.RFC3339),
		Summary:     sum,
		Rows:        rows,
	}

	tmpl, err := template.New("report").Funcs(template.FuncMap{
		"formatFloat": func(f float64) string {
			return fmt.Sprintf("%.2f", f)
		},
	}).Parse(htmlTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}
	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}
	return nil
}

// ExportHTMLFile writes the HTML report to path, replacing any existing file.
func ExportHTMLFile(path string, sum Summary, outcomes []task.Outcome) error {
	f, err := os.Create(path)
	if err != nil {
		return &ExportError{Path: path, Op: "open", Err: err}
	}
	if err := GenerateHTMLReport(f, sum, outcomes); err != nil {
		f.Close()
		return &ExportError{Path: path, Op: "write", Err: err}
	}
	if err := f.Close(); err != nil {
		return &ExportError{Path: path, Op: "close", Err: err}
	}
	return nil
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Volley Results {{.Summary.RunID}}</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif;
            background: #f5f7fa;
            color: #2c3e50;
            padding: 20px;
        }
        .container {
            max-width: 1200px;
            margin: 0 auto;
            background: white;
            border-radius: 8px;
            box-shadow: 0 2px 8px rgba(0,0,0,0.1);
            padding: 30px 40px;
        }
        .meta {
            color: #6c757d;
            font-size: 0.9rem;
        }
        .grid {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(200px, 1fr));
            gap: 20px;
            margin: 30px 0;
        }
        .card {
            background: #f8f9fa;
            border-radius: 8px;
            padding: 20px;
            border-left: 4px solid #667eea;
        }
        .card .value {
            font-size: 2rem;
            font-weight: bold;
        }
        .card.success { border-left-color: #10b981; }
        .card.warning { border-left-color: #f59e0b; }
        .card.error { border-left-color: #ef4444; }
        table {
            width: 100%;
            border-collapse: collapse;
        }
        th, td {
            text-align: left;
            padding: 10px;
            border-bottom: 1px solid #e5e7eb;
        }
        tr.success { background: #d1fae5; }
        tr.warning { background: #fef3c7; }
        tr.error { background: #fee2e2; }
        .no-data {
            text-align: center;
            padding: 40px;
            color: #6c757d;
            font-style: italic;
        }
    </style>
</head>
<body>
<div class="container">
    <h1>Volley Results</h1>
    <div class="meta">Run {{.Summary.RunID}} ({{.Summary.State}}) generated {{.GeneratedAt}}</div>
    <div class="grid">
        <div class="card"><h3>Progress</h3><div class="value">{{.Summary.Progress}}</div></div>
        <div class="card success"><h3>Successful</h3><div class="value">{{.Summary.Stats.Successes}}</div></div>
        <div class="card warning"><h3>Warnings</h3><div class="value">{{.Summary.Stats.Warnings}}</div></div>
        <div class="card error"><h3>Errors</h3><div class="value">{{.Summary.Stats.Errors}}</div></div>
        <div class="card"><h3>P99 latency</h3><div class="value">{{formatFloat .Summary.Stats.P99LatencyMs}} ms</div></div>
    </div>
    {{if .Rows}}
    <table>
        <thead><tr><th>URL</th><th>状态码/错误</th><th>响应时间(ms)</th></tr></thead>
        <tbody>
        {{range .Rows}}
            <tr class="{{.Tag}}">
                <td>{{if .WebURL}}<a href="{{.URL}}">{{.URL}}</a>{{else}}{{.URL}}{{end}}</td>
                <td>{{.Status}}</td>
                <td>{{.ElapsedMs}}</td>
            </tr>
        {{end}}
        </tbody>
    </table>
    {{else}}
    <div class="no-data">No results captured</div>
    {{end}}
</div>
</body>
</html>
`
