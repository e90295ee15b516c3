package scraper

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aluiziolira/go-catalog-crawler/config"
	"github.com/gocolly/colly/v2"
	"golang.org/x/net/html/charset"
)

// Fetcher retrieves the body of a single URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// CollyFetcher issues GET requests through a shared colly collector. The
// collector's limit rule caps in-flight requests across every caller.
type CollyFetcher struct {
	collector *colly.Collector
	metrics   *Metrics
}

// NewCollyFetcher builds a fetcher configured from cfg.
func NewCollyFetcher(cfg *config.Config, metrics *Metrics) (*CollyFetcher, error) {
	collector := colly.NewCollector(
		colly.UserAgent(cfg.UserAgent),
		colly.AllowURLRevisit(),
	)

	collector.SetRequestTimeout(cfg.Timeout)
	collector.IgnoreRobotsTxt = !cfg.RespectRobotsTxt
	collector.WithTransport(&http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: cfg.Parallelism,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	})

	if err := collector.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: cfg.Parallelism,
	}); err != nil {
		return nil, fmt.Errorf("configure request limits: %w", err)
	}

	return &CollyFetcher{collector: collector, metrics: metrics}, nil
}

// WithTransport swaps the HTTP transport used by every fetch.
func (f *CollyFetcher) WithTransport(rt http.RoundTripper) {
	f.collector.WithTransport(rt)
}

// Fetch performs one GET, following redirects. Any transport error, timeout,
// malformed URL or non-2xx status is returned as a *FetchError.
//
// ctx is checked before the request is issued. A request already in flight
// is bounded by the configured timeout, not by ctx.
func (f *CollyFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, classifyError(rawURL, err, 0)
	}
	if err := checkURL(rawURL); err != nil {
		return nil, err
	}

	c := f.collector.Clone()

	var (
		body        []byte
		contentType string
		status      int
	)
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
		status = r.StatusCode
		if r.Headers != nil {
			contentType = r.Headers.Get("Content-Type")
		}
	})
	c.OnError(func(r *colly.Response, _ error) {
		if r != nil {
			status = r.StatusCode
		}
	})

	start := time.Now()
	err := c.Visit(rawURL)
	f.metrics.ObserveDuration(time.Since(start))
	if err != nil {
		return nil, classifyError(rawURL, err, status)
	}
	if status != 0 && (status < 200 || status > 299) {
		return nil, classifyError(rawURL, nil, status)
	}

	return toUTF8(body, contentType), nil
}

// checkURL rejects URLs colly could not request, such as a bare host
// without a scheme.
func checkURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return classifyError(rawURL, err, 0)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return &FetchError{
			Kind: KindInvalidURL,
			URL:  rawURL,
			Err:  fmt.Errorf("url must be absolute with scheme and host"),
		}
	}
	return nil
}

// toUTF8 converts body to UTF-8 based on its Content-Type and meta tags.
// Bodies that are already valid UTF-8 are returned untouched.
func toUTF8(body []byte, contentType string) []byte {
	if len(body) == 0 || utf8.Valid(body) {
		return body
	}
	enc, name, _ := charset.DetermineEncoding(body, contentType)
	if strings.EqualFold(name, "utf-8") {
		return body
	}
	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return body
	}
	return decoded
}
