// Package vocab matches known catalogue terms inside free-form user text.
//
// Matching is deliberately coarse: a vocabulary term counts as a hit if it
// occurs as a case-insensitive substring anywhere in the text, with no
// tokenization, stemming, or word-boundary checks. This is a keyword
// heuristic, not natural-language understanding.
package vocab

import "strings"

// Match returns the vocabulary terms that occur as case-insensitive
// substrings of the text, preserving vocabulary order.
func Match(text string, vocabulary []string) []string {
	lower := strings.ToLower(text)

	var hits []string
	for _, term := range vocabulary {
		if term == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(term)) {
			hits = append(hits, term)
		}
	}
	return hits
}
