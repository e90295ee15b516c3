package scraper

import (
	"context"
	"log/slog"

	"github.com/aluiziolira/go-catalog-crawler/models"
)

type chainState int

const (
	chainFetching chainState = iota
	chainDone
)

// paginate walks one category's listing pages in order and returns every
// product found. Ids run on from page to page. A failed fetch ends the chain
// but keeps what was already collected. The chain also ends at MaxPages, on a
// next link pointing back at a page already seen, or when ctx is done.
func (s *Scraper) paginate(ctx context.Context, run *runState, ref models.CategoryRef) models.Products {
	var products models.Products
	visited := make(map[string]struct{})
	current := ref.URL
	pages := 0

	state := chainFetching
	for state == chainFetching {
		if ctx.Err() != nil || pages >= s.cfg.MaxPages {
			state = chainDone
			continue
		}
		if _, seen := visited[current]; seen {
			slog.Warn("pagination cycle", slog.String("category", ref.Name), slog.String("url", current))
			state = chainDone
			continue
		}
		visited[current] = struct{}{}

		body, ok := s.fetch(ctx, run, phaseCategory, current)
		if !ok {
			state = chainDone
			continue
		}
		pages++

		page, err := s.extractor.Page(body, ref.URL, len(products))
		if err != nil {
			slog.Warn("listing parse failed", slog.String("url", current), slog.Any("error", err))
			state = chainDone
			continue
		}
		products = append(products, page.Products...)
		run.addPage(len(page.Products))
		s.Metrics.AddPage(len(page.Products))

		if !page.HasNext {
			state = chainDone
			continue
		}
		current = page.NextURL
	}

	slog.Debug("category complete",
		slog.String("category", ref.Name),
		slog.String("url", ref.URL),
		slog.Int("pages", pages),
		slog.Int("products", len(products)),
	)
	return products
}
