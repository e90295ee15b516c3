package scraper

import (
	"context"
	"log/slog"

	"github.com/aluiziolira/go-catalog-crawler/models"
)

// discover fetches a site's homepage and returns its entry together with the
// categories to crawl. ok is false when the homepage could not be fetched, in
// which case the site is left out of the result.
func (s *Scraper) discover(ctx context.Context, run *runState, rootURL string) (models.SiteEntry, []models.CategoryRef, bool) {
	body, ok := s.fetch(ctx, run, phaseDiscovery, rootURL)
	if !ok {
		slog.Warn("skipping site", slog.String("url", rootURL))
		return models.SiteEntry{}, nil, false
	}

	name, refs, err := s.extractor.Site(body, rootURL)
	if err != nil {
		slog.Warn("homepage parse failed", slog.String("url", rootURL), slog.Any("error", err))
	}
	s.Metrics.AddCategories(len(refs))

	slog.Debug("site discovered",
		slog.String("url", rootURL),
		slog.String("site_name", name),
		slog.Int("categories", len(refs)),
	)
	return models.NewSiteEntry(name, rootURL), refs, true
}
