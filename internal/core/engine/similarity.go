// Package engine implements the task reconciliation core: text
// similarity, specificity scoring, bipartite matching of detections
// against open tasks, and the ordered completion rules that decide
// auto-resolution. Everything here is pure and deterministic; no I/O.
package engine

import (
	"regexp"
	"strings"
)

// wordPattern extracts keyword tokens from lowercased text.
var wordPattern = regexp.MustCompile(`[a-z0-9]+`)

// stopwords are excluded from keyword comparison.
var stopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "for": {}, "of": {},
	"with": {}, "by": {}, "from": {},
}

// Similarity returns a combined similarity score in [0, 1] between two
// task descriptions: the mean of a character-sequence ratio and a
// keyword Jaccard ratio, each weighted 0.5. An empty string on either
// side scores 0.0. Identical non-empty strings score 1.0, even when
// every word is a stopword (the keyword component falls back to the
// sequence ratio when neither side has keywords).
func Similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0.0
	}

	la := strings.ToLower(a)
	lb := strings.ToLower(b)

	seq := sequenceRatio(la, lb)

	ka := keywords(la)
	kb := keywords(lb)
	if len(ka) == 0 && len(kb) == 0 {
		return seq
	}

	return 0.5*seq + 0.5*jaccard(ka, kb)
}

// sequenceRatio is a longest-common-subsequence ratio:
// 2*LCS(a,b) / (len(a)+len(b)), computed over runes.
func sequenceRatio(a, b string) float64 {
	ra := []rune(a)
	rb := []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 0.0
	}
	return 2.0 * float64(lcsLength(ra, rb)) / float64(total)
}

// lcsLength computes the longest common subsequence length using a
// single row of the DP matrix updated in place, O(min(m,n)) space.
func lcsLength(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	if len(a) > len(b) {
		a, b = b, a
	}

	previous := make([]int, len(a)+1)

	for j := 1; j <= len(b); j++ {
		current := make([]int, len(a)+1)

		for i := 1; i <= len(a); i++ {
			if a[i-1] == b[j-1] {
				current[i] = previous[i-1] + 1
			} else {
				current[i] = max(previous[i], current[i-1])
			}
		}

		previous = current
	}

	return previous[len(a)]
}

// keywords returns the set of non-stopword tokens in lowercased text.
func keywords(text string) map[string]struct{} {
	words := wordPattern.FindAllString(text, -1)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		if _, skip := stopwords[w]; skip {
			continue
		}
		set[w] = struct{}{}
	}
	return set
}

// jaccard is |intersection| / |union| of two keyword sets. One empty
// side scores 0.0 (callers handle the both-empty case).
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	intersection := 0
	for w := range a {
		if _, ok := b[w]; ok {
			intersection++
		}
	}

	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}
