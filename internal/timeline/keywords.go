// Package timeline derives topic-labeled timeline segments from a
// timestamped transcript. The package is purely computational: no I/O,
// no shared state, safe for concurrent use with different inputs.
package timeline

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// maxKeywords is the maximum number of keywords returned per text block.
const maxKeywords = 5

// minKeywordLen is the exclusive lower bound on keyword length. Tokens of
// this length or shorter are discarded, which filters most stop words
// without needing a stop-word list.
const minKeywordLen = 4

// ExtractKeywords returns the most frequent meaningful words in text,
// ordered by descending frequency. Ties are broken by first appearance in
// the text, so the result is reproducible for a given input. At most 5
// keywords are returned; the slice is empty when no token qualifies.
//
// Tokens are produced by lowercasing, stripping every rune that is not a
// word character (letter, digit, underscore) or whitespace, and splitting
// on whitespace runs. Tokens of 4 or fewer characters are discarded.
func ExtractKeywords(text string) []string {
	cleaned := stripPunctuation(strings.ToLower(text))

	counts := make(map[string]int)
	var firstSeen []string
	for _, token := range strings.Fields(cleaned) {
		if utf8.RuneCountInString(token) <= minKeywordLen {
			continue
		}
		if _, ok := counts[token]; !ok {
			firstSeen = append(firstSeen, token)
		}
		counts[token]++
	}

	// Stable sort over first-seen order gives the documented tie-break.
	sort.SliceStable(firstSeen, func(i, j int) bool {
		return counts[firstSeen[i]] > counts[firstSeen[j]]
	})

	if len(firstSeen) > maxKeywords {
		firstSeen = firstSeen[:maxKeywords]
	}
	return firstSeen
}

// stripPunctuation removes every rune that is neither a word character
// nor whitespace.
func stripPunctuation(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if isWordRune(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
