// Package models defines data structures for the crawler.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"
)

// Fallback values used when a page lacks the expected markup.
const (
	UnknownSite  = "Unknown Site"
	UnknownTitle = "Unknown Title"
	DefaultPrice = "0.00"
)

// Product is a single catalog entry from a category listing.
type Product struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Price  string `json:"price"`
	Rating int    `json:"rating"`
}

// Products is the ordered product list of one category. It serializes as an
// object keyed by product id so the id sequence is visible to consumers.
type Products []Product

// MarshalJSON writes {"0": {...}, "1": {...}} in id order.
func (ps Products) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range ps {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(strconv.Itoa(p.ID)))
		buf.WriteByte(':')
		encoded, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("encode product %d: %w", p.ID, err)
		}
		buf.Write(encoded)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON accepts the id-keyed object form and restores id order.
func (ps *Products) UnmarshalJSON(data []byte) error {
	var keyed map[string]Product
	if err := json.Unmarshal(data, &keyed); err != nil {
		return err
	}
	out := make(Products, 0, len(keyed))
	for key, p := range keyed {
		id, err := strconv.Atoi(key)
		if err != nil {
			return fmt.Errorf("product key %q is not an id: %w", key, err)
		}
		p.ID = id
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	*ps = out
	return nil
}

// CategoryRef points at the first listing page of a category. It only lives
// for the duration of one crawl.
type CategoryRef struct {
	Name string
	URL  string
}

// SiteEntry is the crawl result for one configured site.
type SiteEntry struct {
	SiteName   string              `json:"siteName"`
	URL        string              `json:"url"`
	Categories map[string]Products `json:"categories"`
}

// NewSiteEntry returns an entry with an empty, non-nil category map.
func NewSiteEntry(name, url string) SiteEntry {
	return SiteEntry{
		SiteName:   name,
		URL:        url,
		Categories: make(map[string]Products),
	}
}

// CategoryNames returns the category keys in lexical order.
func (s SiteEntry) CategoryNames() []string {
	names := make([]string, 0, len(s.Categories))
	for name := range s.Categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CrawlStats holds the overall result of a crawl run.
type CrawlStats struct {
	StartTime       time.Time
	EndTime         time.Time
	SitesConfigured int
	SitesFetched    int
	CategoryCount   int
	RequestCount    int
	PageCount       int
	ProductCount    int
	ErrorCount      int
	ErrorsByType    map[string]int
	FailedURLs      []string
}

// Duration reports how long the run took.
func (s CrawlStats) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}
