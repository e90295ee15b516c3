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

	"github.com/aluiziolira/go-catalog-crawler/config"
	"github.com/aluiziolira/go-catalog-crawler/models"
	"github.com/aluiziolira/go-catalog-crawler/output"
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
	flag.StringVar(&cfg.SitesFile, "sites-file", cfg.SitesFile, "File with one site root URL per line")
	flag.IntVar(&cfg.Workers, "workers", cfg.Workers, "Number of concurrent crawl tasks")
	flag.IntVar(&cfg.Parallelism, "parallel", cfg.Parallelism, "Maximum in-flight HTTP requests")
	flag.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Per-request timeout")
	flag.IntVar(&cfg.MaxPages, "max-pages", cfg.MaxPages, "Maximum pages followed per category")
	flag.StringVar(&cfg.UserAgent, "user-agent", cfg.UserAgent, "User-Agent header")
	flag.StringVar(&cfg.Parser, "parser", cfg.Parser, "HTML query backend: css or xpath")
	flag.BoolVar(&cfg.AttributeToFirstSite, "first-site-bucket", cfg.AttributeToFirstSite, "Attach every category to the first fetched site")
	flag.BoolVar(&cfg.RespectRobotsTxt, "respect-robots", cfg.RespectRobotsTxt, "Respect robots.txt directives")
	flag.StringVar(&cfg.OutputFile, "output", cfg.OutputFile, "Output file path")
	flag.StringVar(&cfg.OutputFormat, "format", cfg.OutputFormat, "Output format: json, csv, or dual")
	flag.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "Prometheus metrics listen address (e.g. :9090)")
	flag.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "Enable verbose logging")
	indent := flag.Bool("indent", true, "Pretty-print JSON output")

	flag.Parse()

	logger, level := newLogger(cfg.Verbose)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level.Level())

	cfg.OutputFormat = strings.ToLower(cfg.OutputFormat)
	cfg.Sites = resolveSites(*sitesList, cfg.SitesFile)
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	slog.Info("starting crawl",
		slog.Int("sites", len(cfg.Sites)),
		slog.Int("workers", cfg.Workers),
		slog.Int("parallel", cfg.Parallelism),
		slog.String("parser", cfg.Parser),
	)

	s, err := scraper.NewScraper(cfg)
	if err != nil {
		slog.Error("initialising scraper", slog.Any("error", err))
		os.Exit(1)
	}

	writer, err := output.NewWriter(cfg.OutputFormat, cfg.OutputFile, *indent)
	if err != nil {
		slog.Error("creating writer", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := writer.Close(); err != nil {
			slog.Error("close writer", slog.Any("error", err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received, waiting for in-flight requests to finish")
	}()

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" && s.Metrics != nil {
		metricsServer = &http.Server{
			Addr:    cfg.MetricsAddr,
			Handler: promhttp.HandlerFor(s.Metrics.Registry, promhttp.HandlerOpts{}),
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		slog.Info("metrics server enabled", slog.String("addr", cfg.MetricsAddr))
	}

	sites, err := s.Run(ctx)
	if err != nil {
		// partial results are still written
		slog.Warn("crawl interrupted", slog.Any("error", err))
	}

	if err := writer.Write(sites); err != nil {
		slog.Error("writing results", slog.Any("error", err))
		os.Exit(1)
	}
	if err := writer.Validate(); err != nil {
		slog.Error("output validation failed", slog.Any("error", err))
		os.Exit(1)
	}

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("metrics server shutdown failed", slog.Any("error", err))
		}
		cancel()
	}

	printSummary(s.Stats(), cfg.OutputFile)
}

// resolveSites prefers an explicit list and falls back to the sites file.
// An unreadable file means there is nothing to crawl.
func resolveSites(list, file string) []string {
	if sites := config.SplitSites(list); len(sites) > 0 {
		return sites
	}
	sites, err := config.LoadSites(file)
	if err != nil {
		slog.Warn("site list unavailable, nothing to crawl",
			slog.String("file", file),
			slog.Any("error", err),
		)
		return nil
	}
	return sites
}

func printSummary(stats models.CrawlStats, outputFile string) {
	separator := "--------------------------------------------------"
	fmt.Println("\n" + separator)
	fmt.Println("Crawl complete")

	fmt.Printf("  Sites:         %d of %d\n", stats.SitesFetched, stats.SitesConfigured)
	fmt.Printf("  Categories:    %d\n", stats.CategoryCount)
	fmt.Printf("  Pages:         %d\n", stats.PageCount)
	fmt.Printf("  Products:      %d\n", stats.ProductCount)
	successRate := 0.0
	if stats.RequestCount > 0 {
		successRate = float64(stats.RequestCount-stats.ErrorCount) / float64(stats.RequestCount) * 100
	}
	fmt.Printf("  Success rate:  %.2f%%\n", successRate)
	fmt.Printf("  Errors:        %d\n", stats.ErrorCount)
	fmt.Printf("  Failed URLs:   %d\n", len(stats.FailedURLs))
	if len(stats.ErrorsByType) > 0 {
		fmt.Printf("  Error types:   %v\n", stats.ErrorsByType)
	}
	duration := stats.Duration()
	fmt.Printf("  Duration:      %v\n", duration)
	if duration.Seconds() > 0 {
		fmt.Printf("  Products/sec:  %.2f\n", float64(stats.ProductCount)/duration.Seconds())
	}
	fmt.Printf("  Output file:   %s\n", outputFile)
	fmt.Println(separator)
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
