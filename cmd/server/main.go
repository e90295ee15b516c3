package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aluiziolira/go-catalog-crawler/api"
	"github.com/aluiziolira/go-catalog-crawler/auth"
	"github.com/aluiziolira/go-catalog-crawler/config"
	"github.com/aluiziolira/go-catalog-crawler/models"
	"github.com/aluiziolira/go-catalog-crawler/scraper"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		os.Exit(1)
	}
	cfg := config.DefaultConfig()
	if err := config.ApplyEnv(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "invalid environment: %v\n", err)
		os.Exit(1)
	}

	sitesList := flag.String("sites", strings.Join(cfg.Sites, ","), "Comma separated site root URLs (overrides -sites-file)")
	flag.StringVar(&cfg.SitesFile, "sites-file", cfg.SitesFile, "File with one site root URL per line, read on every crawl")
	flag.IntVar(&cfg.Workers, "workers", cfg.Workers, "Number of concurrent crawl tasks")
	flag.IntVar(&cfg.Parallelism, "parallel", cfg.Parallelism, "Maximum in-flight HTTP requests per crawl")
	flag.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Per-request timeout")
	flag.IntVar(&cfg.MaxPages, "max-pages", cfg.MaxPages, "Maximum pages followed per category")
	flag.StringVar(&cfg.Parser, "parser", cfg.Parser, "HTML query backend: css or xpath")
	flag.BoolVar(&cfg.AttributeToFirstSite, "first-site-bucket", cfg.AttributeToFirstSite, "Attach every category to the first fetched site")
	flag.StringVar(&cfg.ListenAddr, "listen", cfg.ListenAddr, "HTTP listen address")
	flag.StringVar(&cfg.UsersFile, "users-file", cfg.UsersFile, "File with email:password pairs")
	flag.StringVar(&cfg.TokenFile, "token-file", cfg.TokenFile, "File holding the persisted login token (empty disables)")
	flag.DurationVar(&cfg.TokenTTL, "token-ttl", cfg.TokenTTL, "Lifetime of issued tokens")
	flag.IntVar(&cfg.MaxTokens, "max-tokens", cfg.MaxTokens, "Maximum number of live tokens")
	flag.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "Enable verbose logging")

	flag.Parse()

	logger, level := newLogger(cfg.Verbose)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level.Level())

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}
	if err := cfg.ValidateServer(); err != nil {
		slog.Error("invalid server configuration", slog.Any("error", err))
		os.Exit(1)
	}

	users, err := auth.LoadUsers(cfg.UsersFile)
	if err != nil {
		slog.Error("loading users", slog.Any("error", err))
		os.Exit(1)
	}
	tokens, err := auth.NewTokenStore(cfg.MaxTokens, cfg.TokenTTL, cfg.TokenFile)
	if err != nil {
		slog.Error("initialising token store", slog.Any("error", err))
		os.Exit(1)
	}

	metrics := scraper.NewMetrics()
	crawler := &fileCrawler{
		cfg:     *cfg,
		sites:   config.SplitSites(*sitesList),
		metrics: metrics,
	}

	handler := api.NewServer(crawler, users, tokens,
		promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}), logger).Handler()
	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("api server failed", slog.Any("error", err))
			stop()
		}
	}()
	slog.Info("api server listening",
		slog.String("addr", cfg.ListenAddr),
		slog.Int("users", users.Len()),
	)

	<-ctx.Done()
	slog.Info("shutdown signal received, draining requests")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("api server shutdown failed", slog.Any("error", err))
	}
}

// fileCrawler builds a fresh scraper for every request so edits to the
// sites file apply to the next crawl. Metrics accumulate across crawls.
type fileCrawler struct {
	cfg     config.Config
	sites   []string
	metrics *scraper.Metrics
}

func (c *fileCrawler) Run(ctx context.Context) ([]models.SiteEntry, error) {
	cfg := c.cfg
	cfg.Sites = c.sites
	if len(cfg.Sites) == 0 {
		sites, err := config.LoadSites(cfg.SitesFile)
		if err != nil {
			slog.Warn("site list unavailable, nothing to crawl",
				slog.String("file", cfg.SitesFile),
				slog.Any("error", err),
			)
		}
		cfg.Sites = sites
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s, err := scraper.NewScraper(&cfg, scraper.WithMetrics(c.metrics))
	if err != nil {
		return nil, err
	}
	return s.Run(ctx)
}

func newLogger(verbose bool) (*slog.Logger, *slog.LevelVar) {
	level := &slog.LevelVar{}
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if isTerminal(os.Stdout) {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler), level
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
