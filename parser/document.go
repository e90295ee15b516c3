package parser

import (
	"fmt"
	"strings"
)

// Node is a single element of a parsed document.
type Node interface {
	// Query returns the descendants of the node matching sel.
	Query(sel string) []Node
	// Text returns the concatenated text content of the node.
	Text() string
	// Attr returns the value of the named attribute.
	Attr(name string) (string, bool)
}

// Document is a parsed HTML page. Parsing is lenient: malformed markup
// yields a best-effort tree rather than an error.
type Document interface {
	Query(sel string) []Node
}

// Selectors names the structural markers the extractor looks for, written in
// the query language of a particular backend.
type Selectors struct {
	Title   string
	Product string
	Name    string
	Price   string
	Rating  string
	Next    string
	Anchor  string
}

// Backend parses raw HTML into a Document and knows which selectors to use
// against it.
type Backend interface {
	Name() string
	Parse(body []byte) (Document, error)
	Selectors() Selectors
}

// Backend names accepted by NewBackend.
const (
	BackendCSS   = "css"
	BackendXPath = "xpath"
)

// NewBackend returns the backend registered under name.
func NewBackend(name string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", BackendCSS:
		return CSSBackend{}, nil
	case BackendXPath:
		return XPathBackend{}, nil
	default:
		return nil, fmt.Errorf("unknown parser backend %q", name)
	}
}

func first(nodes []Node) (Node, bool) {
	if len(nodes) == 0 {
		return nil, false
	}
	return nodes[0], true
}
