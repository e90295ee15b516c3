package parser

import (
	"bytes"
	"fmt"

	"github.com/PuerkitoBio/goquery"
)

// CSSBackend parses documents with goquery and queries them with CSS
// selectors.
type CSSBackend struct{}

// Name implements Backend.
func (CSSBackend) Name() string { return BackendCSS }

// Parse implements Backend.
func (CSSBackend) Parse(body []byte) (Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return cssNode{sel: doc.Selection}, nil
}

// Selectors implements Backend. Class tests compare the whole attribute, as
// the XPath set does.
func (CSSBackend) Selectors() Selectors {
	return Selectors{
		Title:   "title",
		Product: "article[class='product_pod']",
		Name:    "h3 > a",
		Price:   "p[class='price_color']",
		Rating:  "p[class*='star-rating']",
		Next:    "li[class='next'] > a",
		Anchor:  "a[href]",
	}
}

type cssNode struct {
	sel *goquery.Selection
}

func (n cssNode) Query(sel string) []Node {
	found := n.sel.Find(sel)
	nodes := make([]Node, 0, found.Length())
	found.Each(func(_ int, s *goquery.Selection) {
		nodes = append(nodes, cssNode{sel: s})
	})
	return nodes
}

func (n cssNode) Text() string {
	return n.sel.Text()
}

func (n cssNode) Attr(name string) (string, bool) {
	return n.sel.Attr(name)
}
