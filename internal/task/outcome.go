package task

import (
	"math"
	"strconv"
	"time"
)

// Tag is the display class of an outcome.
type Tag string

const (
	TagSuccess Tag = "success"
	TagWarning Tag = "warning"
	TagError   Tag = "error"
)

// Outcome is the result of executing one task. Error is empty on success;
// failures carry StatusCode 0 and ElapsedMs 0.
type Outcome struct {
	URL        string  `json:"url"`
	Index      int     `json:"index"`
	StatusCode int     `json:"status_code,omitempty"`
	ElapsedMs  float64 `json:"elapsed_ms"`
	Error      string  `json:"error,omitempty"`
	Kind       Kind    `json:"kind,omitempty"`
}

// Succeeded builds the outcome of a completed call.
func Succeeded(t Task, statusCode int, elapsed time.Duration) Outcome {
	return Outcome{
		URL:        t.URL(),
		Index:      t.Index(),
		StatusCode: statusCode,
		ElapsedMs:  RoundMillis(elapsed),
	}
}

// Failed builds the outcome of a call that did not complete.
func Failed(t Task, err error) Outcome {
	out := Outcome{URL: t.URL(), Index: t.Index(), Kind: KindOf(err)}
	if err != nil {
		out.Error = err.Error()
	} else {
		out.Error = "unknown error"
	}
	return out
}

// Success reports whether the call completed with a status code.
func (o Outcome) Success() bool {
	return o.Error == ""
}

// StatusText is the status code for completed calls and the error message otherwise.
func (o Outcome) StatusText() string {
	if o.Success() {
		return strconv.Itoa(o.StatusCode)
	}
	return o.Error
}

// Tag classifies the outcome; see Classify.
func (o Outcome) Tag() Tag {
	return Classify(o)
}

// Classify maps 2xx to success, 4xx to warning and everything else,
// including failures, to error.
func Classify(o Outcome) Tag {
	if !o.Success() {
		return TagError
	}
	switch {
	case o.StatusCode >= 200 && o.StatusCode < 300:
		return TagSuccess
	case o.StatusCode >= 400 && o.StatusCode < 500:
		return TagWarning
	default:
		return TagError
	}
}

// RoundMillis converts d to milliseconds rounded to two decimals.
func RoundMillis(d time.Duration) float64 {
	ms := float64(d) / float64(time.Millisecond)
	return math.Round(ms*100) / 100
}
