package scraper

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/aluiziolira/go-catalog-crawler/config"
	"github.com/jarcoal/httpmock"
)

// fakeFetcher serves canned bodies by URL; unknown URLs fail with 404.
type fakeFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	calls []string
}

func newFakeFetcher(pages map[string]string) *fakeFetcher {
	return &fakeFetcher{pages: pages}
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, url)
	body, ok := f.pages[url]
	if !ok {
		return nil, classifyError(url, nil, http.StatusNotFound)
	}
	return []byte(body), nil
}

func (f *fakeFetcher) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

func testConfig(sites ...string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Sites = sites
	cfg.Workers = 4
	cfg.Parallelism = 4
	return cfg
}

// buildListingPage renders a category page with one product per name and an
// optional next link.
func buildListingPage(names []string, next string) string {
	var builder strings.Builder
	builder.WriteString("<html><body><section><ol class=\"row\">")
	for i, name := range names {
		builder.WriteString("<li><article class=\"product_pod\">")
		fmt.Fprintf(&builder, "<h3><a href=\"../../../%s/index.html\" title=\"%s\">%s</a></h3>", strings.ToLower(name), name, name)
		fmt.Fprintf(&builder, "<p class=\"star-rating %s\"></p>", ratingWords[i%len(ratingWords)])
		fmt.Fprintf(&builder, "<p class=\"price_color\">&pound;%d.50</p>", 10+i)
		builder.WriteString("</article></li>")
	}
	builder.WriteString("</ol>")
	if next != "" {
		fmt.Fprintf(&builder, "<ul class=\"pager\"><li class=\"next\"><a href=\"%s\">next</a></li></ul>", next)
	}
	builder.WriteString("</section></body></html>")
	return builder.String()
}

var ratingWords = []string{"One", "Two", "Three", "Four", "Five"}

// buildHomePage renders a homepage linking the given category hrefs keyed by
// display name, in the order of names.
func buildHomePage(title string, names []string, hrefs map[string]string) string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "<html><head><title>%s</title></head><body><ul class=\"nav\">", title)
	builder.WriteString("<li><a href=\"catalogue/category/books_1/index.html\">Books</a></li>")
	for _, name := range names {
		fmt.Fprintf(&builder, "<li><a href=\"%s\">%s</a></li>", hrefs[name], name)
	}
	builder.WriteString("</ul></body></html>")
	return builder.String()
}

func namesN(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s %d", prefix, i+1)
	}
	return out
}

func htmlResponder(body string) httpmock.Responder {
	resp := httpmock.NewStringResponse(200, body)
	resp.Header.Set("Content-Type", "text/html; charset=utf-8")
	return httpmock.ResponderFromResponse(resp)
}
