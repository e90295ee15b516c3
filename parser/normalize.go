// Package parser turns listing-page HTML into catalog records.
package parser

import "strings"

// FilterPrice keeps only digits and dots, dropping currency symbols and any
// mis-decoded bytes around them.
func FilterPrice(price string) string {
	return strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, price)
}

var ratingWords = []string{"One", "Two", "Three", "Four", "Five"}

// RatingFromClass converts a star-rating class attribute such as
// "star-rating Three" to 1..5. Matching is case-sensitive by substring and the
// first word in One..Five order wins. Anything else is 0.
func RatingFromClass(class string) int {
	for i, word := range ratingWords {
		if strings.Contains(class, word) {
			return i + 1
		}
	}
	return 0
}
