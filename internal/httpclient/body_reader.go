package httpclient

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

type BodySource interface {
	NewReader() (io.ReadCloser, error)
	ContentLength() (int64, bool)
}

// NewBodySource returns the payload source for a request. Only POST carries a body.
func NewBodySource(method, body string) BodySource {
	if NormalizeMethod(method) != http.MethodPost || body == "" {
		return emptyBodySource{}
	}
	return &inlineBodySource{data: []byte(body)}
}

// ReadBodyFile loads a POST payload from disk.
func ReadBodyFile(path string) (string, error) {
	path = strings.TrimSpace(path)
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("body file: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("body file %q is a directory", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("body file: %w", err)
	}
	return string(data), nil
}

type inlineBodySource struct {
	data []byte
}

func (s *inlineBodySource) NewReader() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(s.data)), nil
}

func (s *inlineBodySource) ContentLength() (int64, bool) {
	return int64(len(s.data)), true
}

type emptyBodySource struct{}

func (emptyBodySource) NewReader() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(nil)), nil
}

func (emptyBodySource) ContentLength() (int64, bool) {
	return 0, true
}
