package parser

import "strings"

const (
	categoryMarker  = "category/books/"
	aggregateMarker = "category/books_1"
	indexPage       = "index.html"
)

// IsCategoryHref reports whether a homepage link points at a single book
// category. The aggregate "books_1" listing is excluded by substring, which
// also drops any other href sharing that prefix (e.g. books_123).
func IsCategoryHref(href string) bool {
	return strings.Contains(href, categoryMarker) && !strings.Contains(href, aggregateMarker)
}

// CategoryURL joins a site root and a category href by plain concatenation.
func CategoryURL(root, href string) string {
	return strings.TrimRight(root, "/") + "/" + strings.TrimLeft(href, "/")
}

// NextPageURL builds the URL of the following listing page. Pages addressed
// as .../index.html have that segment dropped before the href is appended;
// anything else gets the href appended as a child path.
func NextPageURL(current, href string) string {
	href = strings.TrimLeft(href, "/")
	if strings.Contains(current, indexPage) {
		return strings.ReplaceAll(current, indexPage, "") + href
	}
	return strings.TrimRight(current, "/") + "/" + href
}
