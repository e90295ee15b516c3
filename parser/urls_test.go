package parser

import "testing"

func TestIsCategoryHref(t *testing.T) {
	tests := []struct {
		href string
		want bool
	}{
		{href: "catalogue/category/books/travel_2/index.html", want: true},
		{href: "/catalogue/category/books/mystery_3/index.html", want: true},
		{href: "catalogue/category/books_1/index.html", want: false},
		{href: "catalogue/category/books_123/index.html", want: false},
		{href: "catalogue/category/books/", want: true},
		{href: "catalogue/a-light-in-the-attic_1000/index.html", want: false},
		{href: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.href, func(t *testing.T) {
			if got := IsCategoryHref(tt.href); got != tt.want {
				t.Fatalf("IsCategoryHref(%q) = %v, want %v", tt.href, got, tt.want)
			}
		})
	}
}

func TestCategoryURL(t *testing.T) {
	tests := []struct {
		root, href, want string
	}{
		{root: "http://example.test/", href: "catalogue/category/books/poetry_23/index.html", want: "http://example.test/catalogue/category/books/poetry_23/index.html"},
		{root: "http://example.test", href: "/catalogue/category/books/poetry_23/index.html", want: "http://example.test/catalogue/category/books/poetry_23/index.html"},
		{root: "http://example.test//", href: "//catalogue/x", want: "http://example.test/catalogue/x"},
		// plain concatenation, no relative resolution
		{root: "http://example.test/index.html", href: "../category/books/a", want: "http://example.test/index.html/../category/books/a"},
	}

	for _, tt := range tests {
		if got := CategoryURL(tt.root, tt.href); got != tt.want {
			t.Fatalf("CategoryURL(%q, %q) = %q, want %q", tt.root, tt.href, got, tt.want)
		}
	}
}

func TestNextPageURL(t *testing.T) {
	tests := []struct {
		name, current, href, want string
	}{
		{
			name:    "index page",
			current: "http://example.test/catalogue/category/books/mystery_3/index.html",
			href:    "page-2.html",
			want:    "http://example.test/catalogue/category/books/mystery_3/page-2.html",
		},
		{
			name:    "numbered page",
			current: "http://example.test/catalogue/category/books/mystery_3/page-2.html",
			href:    "page-3.html",
			want:    "http://example.test/catalogue/category/books/mystery_3/page-2.html/page-3.html",
		},
		{
			name:    "directory url",
			current: "http://example.test/catalogue/category/books/mystery_3/",
			href:    "/page-2.html",
			want:    "http://example.test/catalogue/category/books/mystery_3/page-2.html",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextPageURL(tt.current, tt.href); got != tt.want {
				t.Fatalf("NextPageURL() = %q, want %q", got, tt.want)
			}
		})
	}
}
