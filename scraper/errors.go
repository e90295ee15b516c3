package scraper

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
)

// ErrorKind labels a fetch failure for logs and metrics.
type ErrorKind string

const (
	KindTimeout     ErrorKind = "timeout"
	KindConnection  ErrorKind = "connection"
	KindInvalidURL  ErrorKind = "invalid_url"
	KindForbidden   ErrorKind = "forbidden"
	KindNotFound    ErrorKind = "not_found"
	KindRateLimited ErrorKind = "rate_limited"
	KindServer      ErrorKind = "server_error"
	KindStatus      ErrorKind = "bad_status"
	KindCanceled    ErrorKind = "canceled"
	KindOther       ErrorKind = "other"
)

// FetchError describes why a URL could not be fetched. Fetch failures are
// local to the URL: callers drop that unit of work and carry on.
type FetchError struct {
	Kind   ErrorKind
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: %s (status %d): %v", e.URL, e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func errorTypeLabel(err error) string {
	if err == nil {
		return "unknown"
	}
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		return string(fetchErr.Kind)
	}
	return string(KindOther)
}

func classifyError(rawURL string, err error, statusCode int) error {
	if err == nil && statusCode == 0 {
		return nil
	}
	if err == nil {
		err = fmt.Errorf("http status %d", statusCode)
	}

	fetchErr := &FetchError{URL: rawURL, Status: statusCode, Err: err}
	fetchErr.Kind = classifyKind(err, statusCode)
	return fetchErr
}

func classifyKind(err error, statusCode int) ErrorKind {
	if errors.Is(err, context.Canceled) {
		return KindCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return KindConnection
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return KindConnection
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Op == "parse" {
		return KindInvalidURL
	}

	switch {
	case statusCode == http.StatusForbidden:
		return KindForbidden
	case statusCode == http.StatusNotFound:
		return KindNotFound
	case statusCode == http.StatusTooManyRequests:
		return KindRateLimited
	case statusCode >= http.StatusInternalServerError:
		return KindServer
	case statusCode != 0:
		return KindStatus
	}
	return KindOther
}
