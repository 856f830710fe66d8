package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// ContentTypeJSON is sent with every request.
const ContentTypeJSON = "application/json"

// DefaultHeaders returns the fixed header set attached to every request.
func DefaultHeaders() map[string]string {
	return map[string]string{"Content-Type": ContentTypeJSON}
}

// NormalizeMethod upper-cases method and falls back to GET when empty.
func NormalizeMethod(method string) string {
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		return http.MethodGet
	}
	return method
}

// CanonicalHeaders validates header keys and values and returns them as an http.Header.
func CanonicalHeaders(headers map[string]string) (http.Header, error) {
	out := make(http.Header, len(headers))
	for key, value := range headers {
		trimmedKey := strings.TrimSpace(key)
		if trimmedKey == "" {
			return nil, fmt.Errorf("invalid header key %q", key)
		}
		if strings.ContainsAny(trimmedKey, "\r\n") {
			return nil, fmt.Errorf("invalid header key %q", key)
		}
		canonicalKey := http.CanonicalHeaderKey(trimmedKey)
		if canonicalKey == "" {
			return nil, fmt.Errorf("invalid header key %q", key)
		}

		if strings.ContainsAny(value, "\r\n") {
			return nil, fmt.Errorf("invalid header value for %s", canonicalKey)
		}

		out.Set(canonicalKey, value)
	}
	return out, nil
}

// NewRequest builds an HTTP request. The body is attached only for POST.
func NewRequest(ctx context.Context, method, target, body string, headers http.Header) (*http.Request, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	target = strings.TrimSpace(target)
	if target == "" {
		return nil, errors.New("target URL is required")
	}
	method = NormalizeMethod(method)

	source := NewBodySource(method, body)
	reader, err := source.NewReader()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		_ = reader.Close()
		return nil, err
	}

	req.Header = make(http.Header, len(headers))
	for key, values := range headers {
		for _, val := range values {
			req.Header.Add(key, val)
		}
	}

	if length, ok := source.ContentLength(); ok {
		req.ContentLength = length
	}
	if req.ContentLength == 0 {
		req.Body = http.NoBody
	}
	req.GetBody = func() (io.ReadCloser, error) {
		return source.NewReader()
	}

	return req, nil
}

// NewClient returns the client shared by every task of a run. The timeout is a
// hard upper bound; tasks apply their own timeout through the request context.
func NewClient(timeout time.Duration) *http.Client {
	if timeout < 0 {
		timeout = 0
	}

	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         dialer.DialContext,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
