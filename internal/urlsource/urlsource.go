// Package urlsource loads the list of target URLs from files or stdin.
//
// Supported formats:
//   - text: one URL per line, blank lines and lines starting with # ignored
//   - csv: a header row, URLs taken from the "url" column (case-insensitive)
//     or the column named by Options.CSVColumn
//   - json: a gjson path selecting strings, or objects with a "url" field;
//     the default path is the document root
//   - yaml: a list of URLs, a list of objects with a "url" field, or a
//     mapping with a "urls" key holding either
//
// Loaders return URLs in file order without deduplication; cleaning is
// the runner's job.
package urlsource

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Format names a URL file format.
type Format string

const (
	FormatAuto Format = ""
	FormatText Format = "text"
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Stdin is the path that selects standard input.
const Stdin = "-"

// Options tune how a source is parsed.
type Options struct {
	Format    Format
	JSONPath  string
	CSVColumn string
}

// ParseFormat validates a user-supplied format name. Empty means auto.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatAuto, FormatText, FormatCSV, FormatJSON, FormatYAML:
		return f, nil
	case "txt":
		return FormatText, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported URL file format %q (want text, csv, json or yaml)", s)
	}
}

// DetectFormat guesses the format from a file extension, defaulting to text.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatText
	}
}

// Load reads URLs from path, or from stdin when path is "-".
func Load(path string, opt Options) ([]string, error) {
	if path == Stdin {
		return Read(os.Stdin, opt)
	}
	if opt.Format == FormatAuto {
		opt.Format = DetectFormat(path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open URL file: %w", err)
	}
	defer file.Close()

	urls, err := Read(file, opt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return urls, nil
}

// Read parses URLs from r. An auto format is treated as text.
func Read(r io.Reader, opt Options) ([]string, error) {
	switch opt.Format {
	case FormatAuto, FormatText:
		return readText(r)
	case FormatCSV:
		return readCSV(r, opt.CSVColumn)
	case FormatJSON:
		return readJSON(r, opt.JSONPath)
	case FormatYAML:
		return readYAML(r)
	default:
		return nil, fmt.Errorf("unsupported URL file format %q", opt.Format)
	}
}
