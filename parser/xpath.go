package parser

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// XPathBackend parses documents with golang.org/x/net/html and queries them
// with XPath through htmlquery.
type XPathBackend struct{}

// Name implements Backend.
func (XPathBackend) Name() string { return BackendXPath }

// Parse implements Backend.
func (XPathBackend) Parse(body []byte) (Document, error) {
	root, err := htmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return xpathNode{node: root}, nil
}

// Selectors implements Backend.
func (XPathBackend) Selectors() Selectors {
	return Selectors{
		Title:   "//title",
		Product: "//article[@class='product_pod']",
		Name:    ".//h3/a",
		Price:   ".//p[@class='price_color']",
		Rating:  ".//p[contains(@class, 'star-rating')]",
		Next:    "//li[@class='next']/a",
		Anchor:  "//a[@href]",
	}
}

type xpathNode struct {
	node *html.Node
}

func (n xpathNode) Query(sel string) []Node {
	found, err := htmlquery.QueryAll(n.node, sel)
	if err != nil {
		slog.Warn("invalid xpath", slog.String("selector", sel), slog.Any("error", err))
		return nil
	}
	nodes := make([]Node, 0, len(found))
	for _, f := range found {
		nodes = append(nodes, xpathNode{node: f})
	}
	return nodes
}

func (n xpathNode) Text() string {
	return htmlquery.InnerText(n.node)
}

func (n xpathNode) Attr(name string) (string, bool) {
	for _, attr := range n.node.Attr {
		if attr.Key == name {
			return attr.Val, true
		}
	}
	return "", false
}
