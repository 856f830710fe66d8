package task

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Kind categorizes request failures.
type Kind string

const (
	KindTimeout   Kind = "timeout"
	KindDNS       Kind = "dns"
	KindNetwork   Kind = "network"
	KindRequest   Kind = "request"
	KindResponse  Kind = "response"
	KindCancelled Kind = "cancelled"
)

// RequestError is the failure recorded for a task that produced no status code.
type RequestError struct {
	Kind Kind
	URL  string
	Err  error
}

func (e *RequestError) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// KindOf returns the failure kind carried by err, classifying raw errors.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Kind
	}
	return classify(err)
}

func newRequestError(kind Kind, url string, err error) *RequestError {
	return &RequestError{Kind: kind, URL: url, Err: err}
}

func classify(err error) Kind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	if errors.Is(err, context.Canceled) {
		return KindCancelled
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsTimeout {
			return KindTimeout
		}
		return KindDNS
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	return KindNetwork
}
