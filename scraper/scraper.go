package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aluiziolira/go-catalog-crawler/config"
	"github.com/aluiziolira/go-catalog-crawler/models"
	"github.com/aluiziolira/go-catalog-crawler/parser"
	"golang.org/x/sync/errgroup"
)

// Scraper crawls every configured site: it discovers categories on each
// homepage, walks every category's pagination chain on a bounded pool of
// workers, and folds the products back into per-site entries.
type Scraper struct {
	cfg       *config.Config
	fetcher   Fetcher
	extractor *parser.Extractor
	Metrics   *Metrics

	mu        sync.Mutex
	lastStats models.CrawlStats
}

// Option customises a Scraper.
type Option func(*Scraper)

// WithFetcher replaces the default colly fetcher.
func WithFetcher(f Fetcher) Option {
	return func(s *Scraper) {
		s.fetcher = f
	}
}

// WithMetrics replaces the scraper's metrics bundle.
func WithMetrics(m *Metrics) Option {
	return func(s *Scraper) {
		s.Metrics = m
	}
}

// NewScraper builds a scraper instance configured from cfg.
func NewScraper(cfg *config.Config, opts ...Option) (*Scraper, error) {
	extractor, err := parser.NewExtractor(cfg.Parser)
	if err != nil {
		return nil, fmt.Errorf("configure parser: %w", err)
	}

	s := &Scraper{
		cfg:       cfg,
		extractor: extractor,
		Metrics:   NewMetrics(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.fetcher == nil {
		fetcher, err := NewCollyFetcher(cfg, s.Metrics)
		if err != nil {
			return nil, err
		}
		s.fetcher = fetcher
	}
	return s, nil
}

// Fetcher returns the fetcher used for every request.
func (s *Scraper) Fetcher() Fetcher {
	return s.fetcher
}

type categoryTask struct {
	site int
	ref  models.CategoryRef
}

// Run crawls all configured sites and returns one entry per site whose
// homepage could be fetched, in configuration order. Unreachable sites and
// pages only shorten the result. If ctx is cancelled the entries gathered so
// far are returned together with the context error.
func (s *Scraper) Run(ctx context.Context) ([]models.SiteEntry, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	run := newRunState(len(s.cfg.Sites))
	workers := s.cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	type discovery struct {
		entry models.SiteEntry
		refs  []models.CategoryRef
		ok    bool
	}
	found := make([]discovery, len(s.cfg.Sites))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, site := range s.cfg.Sites {
		g.Go(func() error {
			entry, refs, ok := s.discover(ctx, run, site)
			found[i] = discovery{entry: entry, refs: refs, ok: ok}
			return nil
		})
	}
	_ = g.Wait()

	entries := make([]models.SiteEntry, 0, len(found))
	var tasks []categoryTask
	for _, d := range found {
		if !d.ok {
			continue
		}
		idx := len(entries)
		entries = append(entries, d.entry)
		for _, ref := range d.refs {
			tasks = append(tasks, categoryTask{site: idx, ref: ref})
		}
	}

	slog.Info("discovery complete",
		slog.Int("sites", len(entries)),
		slog.Int("configured", len(s.cfg.Sites)),
		slog.Int("categories", len(tasks)),
	)

	results := make([]models.Products, len(tasks))
	var pool errgroup.Group
	pool.SetLimit(workers)
	for i, task := range tasks {
		pool.Go(func() error {
			results[i] = s.paginate(ctx, run, task.ref)
			return nil
		})
	}
	_ = pool.Wait()

	for i, task := range tasks {
		owner := task.site
		if s.cfg.AttributeToFirstSite {
			owner = 0
		}
		entries[owner].Categories[task.ref.Name] = results[i]
	}

	stats := run.finish(len(entries), len(tasks))
	s.mu.Lock()
	s.lastStats = stats
	s.mu.Unlock()
	s.Metrics.ObserveRun(stats.Duration())

	slog.Info("crawl complete",
		slog.Int("sites", stats.SitesFetched),
		slog.Int("categories", stats.CategoryCount),
		slog.Int("pages", stats.PageCount),
		slog.Int("products", stats.ProductCount),
		slog.Int("errors", stats.ErrorCount),
		slog.Duration("duration", stats.Duration()),
	)

	if err := ctx.Err(); err != nil {
		return entries, fmt.Errorf("crawl interrupted: %w", err)
	}
	return entries, nil
}

// Stats returns a summary of the most recent completed run.
func (s *Scraper) Stats() models.CrawlStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastStats
}

// fetch wraps the fetcher with per-run accounting. Failures are logged and
// counted here; callers only see that the fetch did not succeed.
func (s *Scraper) fetch(ctx context.Context, run *runState, phase, url string) ([]byte, bool) {
	s.Metrics.IncRequest(phase)
	run.addRequest()

	body, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		category := errorTypeLabel(err)
		run.addError(url, category)
		s.Metrics.IncError(category)
		slog.Error("request error",
			slog.String("url", url),
			slog.String("phase", phase),
			slog.String("category", category),
			slog.Any("error", err),
		)
		return nil, false
	}
	return body, true
}

// runState accumulates the counters of a single Run call.
type runState struct {
	start time.Time

	mu           sync.Mutex
	configured   int
	requests     int
	pages        int
	products     int
	errors       int
	errorsByType map[string]int
	failedURLs   []string
}

func newRunState(configured int) *runState {
	return &runState{
		start:        time.Now(),
		configured:   configured,
		errorsByType: make(map[string]int),
	}
}

func (r *runState) addRequest() {
	r.mu.Lock()
	r.requests++
	r.mu.Unlock()
}

func (r *runState) addPage(products int) {
	r.mu.Lock()
	r.pages++
	r.products += products
	r.mu.Unlock()
}

func (r *runState) addError(url, category string) {
	r.mu.Lock()
	r.errors++
	r.errorsByType[category]++
	r.failedURLs = append(r.failedURLs, url)
	r.mu.Unlock()
}

func (r *runState) finish(sites, categories int) models.CrawlStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	errorsByType := make(map[string]int, len(r.errorsByType))
	for k, v := range r.errorsByType {
		errorsByType[k] = v
	}
	failed := make([]string, len(r.failedURLs))
	copy(failed, r.failedURLs)

	return models.CrawlStats{
		StartTime:       r.start,
		EndTime:         time.Now(),
		SitesConfigured: r.configured,
		SitesFetched:    sites,
		CategoryCount:   categories,
		RequestCount:    r.requests,
		PageCount:       r.pages,
		ProductCount:    r.products,
		ErrorCount:      r.errors,
		ErrorsByType:    errorsByType,
		FailedURLs:      failed,
	}
}
