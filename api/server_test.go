package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aluiziolira/go-catalog-crawler/auth"
	"github.com/aluiziolira/go-catalog-crawler/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCrawler struct {
	sites []models.SiteEntry
	err   error
	calls atomic.Int32
}

func (c *stubCrawler) Run(ctx context.Context) ([]models.SiteEntry, error) {
	c.calls.Add(1)
	return c.sites, c.err
}

func newTestServer(t *testing.T, crawler Crawler) (*httptest.Server, *auth.TokenStore) {
	t.Helper()

	users, err := auth.ParseUsers(strings.NewReader("admin@example.com:secret\n"))
	require.NoError(t, err)
	tokens, err := auth.NewTokenStore(8, time.Hour, "")
	require.NoError(t, err)

	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("crawler_runs_total 0\n"))
	})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := httptest.NewServer(NewServer(crawler, users, tokens, metrics, logger).Handler())
	t.Cleanup(srv.Close)
	return srv, tokens
}

func do(t *testing.T, method, url, authorization string) (*http.Response, map[string]any) {
	t.Helper()

	req, err := http.NewRequest(method, url, nil)
	require.NoError(t, err)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]any
	_ = json.Unmarshal(body, &decoded)
	return resp, decoded
}

func basic(email, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(email+":"+password))
}

func sampleSites() []models.SiteEntry {
	site := models.NewSiteEntry("Books to Scrape", "http://example.test/")
	site.Categories["Poetry"] = models.Products{{ID: 0, Name: "Olio", Price: "23.88", Rating: 1}}
	return []models.SiteEntry{site}
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := newTestServer(t, &stubCrawler{})

	for _, path := range []string{"/api/crawl", "/api/login", "/api/"} {
		resp, _ := do(t, http.MethodOptions, srv.URL+path, "")
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "GET, POST, OPTIONS", resp.Header.Get("Access-Control-Allow-Methods"))
		assert.Equal(t, "Content-Type, Authorization", resp.Header.Get("Access-Control-Allow-Headers"))
	}
}

func TestCrawlRequiresAuthorization(t *testing.T) {
	crawler := &stubCrawler{sites: sampleSites()}
	srv, _ := newTestServer(t, crawler)

	resp, body := do(t, http.MethodGet, srv.URL+"/api/crawl", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Authorization header missing", body["error"])
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	resp, body = do(t, http.MethodGet, srv.URL+"/api/crawl", "Bearer nope")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "Invalid token", body["error"])

	resp, body = do(t, http.MethodPost, srv.URL+"/api/crawl", "Bearer nope")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, "Method not allowed", body["error"])

	assert.Equal(t, int32(0), crawler.calls.Load())
}

func TestLoginThenCrawl(t *testing.T) {
	crawler := &stubCrawler{sites: sampleSites()}
	srv, _ := newTestServer(t, crawler)

	resp, body := do(t, http.MethodPost, srv.URL+"/api/login", basic("admin@example.com", "secret"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token, ok := body["token"].(string)
	require.True(t, ok)
	assert.Len(t, token, 32)

	for _, path := range []string{"/api/crawl", "/api/"} {
		req, err := http.NewRequest(http.MethodGet, srv.URL+path, nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)

		var sites []models.SiteEntry
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&sites))
		resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
		require.Len(t, sites, 1)
		assert.Equal(t, "Olio", sites[0].Categories["Poetry"][0].Name)
	}
	assert.Equal(t, int32(2), crawler.calls.Load())
}

func TestLoginFailures(t *testing.T) {
	srv, tokens := newTestServer(t, &stubCrawler{})

	resp, body := do(t, http.MethodPost, srv.URL+"/api/login", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Authorization header missing", body["error"])

	resp, body = do(t, http.MethodPost, srv.URL+"/api/login", basic("admin@example.com", "wrong"))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "Invalid email or password", body["error"])

	resp, body = do(t, http.MethodPost, srv.URL+"/api/login", "Basic garbage")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "Invalid email or password", body["error"])

	resp, body = do(t, http.MethodGet, srv.URL+"/api/login", "")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, "Method not allowed", body["error"])

	assert.Equal(t, 0, tokens.Len())
}

func TestCrawlEmptyResultIsArray(t *testing.T) {
	srv, tokens := newTestServer(t, &stubCrawler{})
	token, err := tokens.Issue()
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/crawl", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestCrawlErrorWithoutResults(t *testing.T) {
	srv, tokens := newTestServer(t, &stubCrawler{err: errors.New("boom")})
	token, err := tokens.Issue()
	require.NoError(t, err)

	resp, body := do(t, http.MethodGet, srv.URL+"/api/crawl", "Bearer "+token)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Crawl failed", body["error"])
}

func TestHealthAndMetrics(t *testing.T) {
	srv, _ := newTestServer(t, &stubCrawler{})

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	data, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "ok", string(data))

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	data, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(data), "crawler_runs_total")
}
