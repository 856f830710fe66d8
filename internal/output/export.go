package output

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/gofrs/flock"

	"github.com/torosent/volley/internal/task"
)

// CSVHeader is the first row of every export.
var CSVHeader = []string{"URL", "状态码/错误", "响应时间(ms)"}

// ExportError reports a failed export. It unwraps to the underlying
// filesystem error.
type ExportError struct {
	Path string
	Op   string
	Err  error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export %s: %s: %v", e.Path, e.Op, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }

// ExportCSV writes outcomes in stored order. Equal input always yields
// identical bytes.
func ExportCSV(w io.Writer, outcomes []task.Outcome) error {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, out := range outcomes {
		if err := cw.Write(csvRow(out)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvRow(out task.Outcome) []string {
	if !out.Success() {
		return []string{out.URL, out.Error, "0"}
	}
	return []string{out.URL, strconv.Itoa(out.StatusCode), formatMillis(out.ElapsedMs)}
}

// formatMillis prints the shortest exact form, always with a fraction.
func formatMillis(ms float64) string {
	s := strconv.FormatFloat(ms, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// ExportFile writes outcomes to path, replacing any existing file. The
// destination itself is locked while it is rewritten, so concurrent exports
// never interleave and no extra file is created.
func ExportFile(path string, outcomes []task.Outcome) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return &ExportError{Path: path, Op: "open", Err: err}
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = &ExportError{Path: path, Op: "close", Err: cerr}
		}
	}()

	lock := flock.New(path, flock.SetFlag(os.O_WRONLY))
	if err := lock.Lock(); err != nil {
		return &ExportError{Path: path, Op: "lock", Err: err}
	}
	defer func() {
		if uerr := lock.Close(); uerr != nil && err == nil {
			err = &ExportError{Path: path, Op: "unlock", Err: uerr}
		}
	}()

	if err := f.Truncate(0); err != nil {
		return &ExportError{Path: path, Op: "truncate", Err: err}
	}
	bw := bufio.NewWriter(f)
	if err := ExportCSV(bw, outcomes); err != nil {
		return &ExportError{Path: path, Op: "write", Err: err}
	}
	if err := bw.Flush(); err != nil {
		return &ExportError{Path: path, Op: "write", Err: err}
	}
	if err := f.Sync(); err != nil {
		return &ExportError{Path: path, Op: "sync", Err: err}
	}
	return nil
}
