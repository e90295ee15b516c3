package scraper

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Request phases used as metric labels.
const (
	phaseDiscovery = "discovery"
	phaseCategory  = "category"
)

// Metrics bundles Prometheus collectors for the crawler.
type Metrics struct {
	Registry        *prometheus.Registry
	RequestsTotal   *prometheus.CounterVec
	RequestDuration prometheus.Histogram
	PagesTotal      prometheus.Counter
	ProductsTotal   prometheus.Counter
	CategoriesTotal prometheus.Counter
	ErrorsTotal     *prometheus.CounterVec
	RunsTotal       prometheus.Counter
	RunDuration     prometheus.Histogram
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crawler_requests_total",
			Help: "Total HTTP requests issued by the crawler.",
		},
		[]string{"phase"},
	)
	requestDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "crawler_request_duration_seconds",
			Help:    "HTTP request latency for crawler requests.",
			Buckets: prometheus.DefBuckets,
		},
	)
	pages := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "crawler_pages_total",
			Help: "Total listing pages parsed.",
		},
	)
	products := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "crawler_products_total",
			Help: "Total products extracted from listing pages.",
		},
	)
	categories := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "crawler_categories_total",
			Help: "Total categories discovered on site homepages.",
		},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crawler_errors_total",
			Help: "Total number of fetch errors by type.",
		},
		[]string{"error_type"},
	)
	runs := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "crawler_runs_total",
			Help: "Total number of completed crawl runs.",
		},
	)
	runDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "crawler_run_duration_seconds",
			Help:    "Wall time of complete crawl runs.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
	)

	registry.MustRegister(requests, requestDuration, pages, products, categories, errorsTotal, runs, runDuration)

	return &Metrics{
		Registry:        registry,
		RequestsTotal:   requests,
		RequestDuration: requestDuration,
		PagesTotal:      pages,
		ProductsTotal:   products,
		CategoriesTotal: categories,
		ErrorsTotal:     errorsTotal,
		RunsTotal:       runs,
		RunDuration:     runDuration,
	}
}

// IncRequest increments the requests total counter.
func (m *Metrics) IncRequest(phase string) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(phase).Inc()
}

// ObserveDuration records an HTTP request duration.
func (m *Metrics) ObserveDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.Observe(d.Seconds())
}

// AddPage records one parsed listing page and the products it held.
func (m *Metrics) AddPage(products int) {
	if m == nil {
		return
	}
	m.PagesTotal.Inc()
	m.ProductsTotal.Add(float64(products))
}

// AddCategories increments the discovered categories counter.
func (m *Metrics) AddCategories(n int) {
	if m == nil {
		return
	}
	m.CategoriesTotal.Add(float64(n))
}

// IncError increments the errors counter for a type label.
func (m *Metrics) IncError(errorType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}

// ObserveRun records a finished crawl.
func (m *Metrics) ObserveRun(d time.Duration) {
	if m == nil {
		return
	}
	m.RunsTotal.Inc()
	m.RunDuration.Observe(d.Seconds())
}
