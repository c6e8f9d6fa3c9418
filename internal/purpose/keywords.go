package purpose

import (
	"strings"
	"unicode"
)

// minKeywordLen excludes short glue words from keyword sets.
const minKeywordLen = 4

// keywords extracts the case-folded keyword set of a text: words longer than
// three characters, split on anything that is not a letter or digit.
func keywords(text string) map[string]bool {
	set := make(map[string]bool)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		if len(w) >= minKeywordLen {
			set[w] = true
		}
	}
	return set
}

// overlap is the Jaccard ratio of two keyword sets; an empty union yields 0.
func overlap(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}

	intersection := 0
	for w := range a {
		if b[w] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// jaccard over plain string sets, used for event-type pattern comparison.
func jaccard(a, b map[string]bool) float64 {
	return overlap(a, b)
}
