package parser

import (
	"strings"

	"github.com/aluiziolira/go-catalog-crawler/models"
)

// Page is what one listing page yields.
type Page struct {
	Products models.Products
	NextURL  string
	HasNext  bool
}

// ExtractPage pulls every product block out of doc, numbering products from
// offset in document order, and resolves the next-page link against baseURL.
// Listing hrefs are relative to the category's first page, so callers pass
// that URL rather than the URL of the page being parsed.
func ExtractPage(doc Document, sel Selectors, baseURL string, offset int) Page {
	var page Page

	id := offset
	for _, block := range doc.Query(sel.Product) {
		page.Products = append(page.Products, extractProduct(block, sel, id))
		id++
	}

	if next, ok := first(doc.Query(sel.Next)); ok {
		href, _ := next.Attr("href")
		if href = strings.TrimSpace(href); href != "" {
			page.NextURL = NextPageURL(baseURL, href)
			page.HasNext = true
		}
	}
	return page
}

func extractProduct(block Node, sel Selectors, id int) models.Product {
	name := models.UnknownTitle
	if n, ok := first(block.Query(sel.Name)); ok {
		name = strings.TrimSpace(n.Text())
	}

	price := models.DefaultPrice
	if n, ok := first(block.Query(sel.Price)); ok {
		price = strings.TrimSpace(n.Text())
	}

	ratingClass := ""
	if n, ok := first(block.Query(sel.Rating)); ok {
		ratingClass, _ = n.Attr("class")
	}

	return models.Product{
		ID:     id,
		Name:   name,
		Price:  FilterPrice(price),
		Rating: RatingFromClass(ratingClass),
	}
}

// ExtractSite reads the site's display name and its category links from a
// homepage document.
func ExtractSite(doc Document, sel Selectors, rootURL string) (string, []models.CategoryRef) {
	siteName := models.UnknownSite
	if n, ok := first(doc.Query(sel.Title)); ok {
		if title := strings.TrimSpace(n.Text()); title != "" {
			siteName = title
		}
	}

	var refs []models.CategoryRef
	for _, anchor := range doc.Query(sel.Anchor) {
		href, _ := anchor.Attr("href")
		if !IsCategoryHref(href) {
			continue
		}
		href = strings.TrimSpace(href)
		name := strings.TrimSpace(anchor.Text())
		if href == "" || name == "" {
			continue
		}
		refs = append(refs, models.CategoryRef{
			Name: name,
			URL:  CategoryURL(rootURL, href),
		})
	}
	return siteName, refs
}

// Extractor binds a Backend to the extraction routines.
type Extractor struct {
	backend Backend
}

// NewExtractor returns an extractor using the named backend.
func NewExtractor(backendName string) (*Extractor, error) {
	backend, err := NewBackend(backendName)
	if err != nil {
		return nil, err
	}
	return &Extractor{backend: backend}, nil
}

// Backend returns the underlying backend.
func (e *Extractor) Backend() Backend {
	return e.backend
}

// Page parses body and extracts one listing page.
func (e *Extractor) Page(body []byte, baseURL string, offset int) (Page, error) {
	doc, err := e.backend.Parse(body)
	if err != nil {
		return Page{}, err
	}
	return ExtractPage(doc, e.backend.Selectors(), baseURL, offset), nil
}

// Site parses body and extracts the site name and categories.
func (e *Extractor) Site(body []byte, rootURL string) (string, []models.CategoryRef, error) {
	doc, err := e.backend.Parse(body)
	if err != nil {
		return models.UnknownSite, nil, err
	}
	name, refs := ExtractSite(doc, e.backend.Selectors(), rootURL)
	return name, refs, nil
}
