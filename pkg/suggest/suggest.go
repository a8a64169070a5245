// Package suggest proposes known names close to a mistyped one.
package suggest

import (
	"cmp"
	"slices"
	"strings"
)

// threshold is the minimum similarity score required for a name to be suggested.
const threshold = 0.5

type match struct {
	name  string
	score float64
}

// FindSimilar returns up to maxResults candidates similar to target, best match first. Ties are
// broken alphabetically.
func FindSimilar(target string, candidates []string, maxResults int) []string {
	if target == "" || maxResults <= 0 {
		return []string{}
	}

	var matches []match
	for _, name := range candidates {
		if score := similarity(target, name); score > threshold {
			matches = append(matches, match{name: name, score: score})
		}
	}
	slices.SortFunc(matches, func(a, b match) int {
		if c := cmp.Compare(b.score, a.score); c != 0 {
			return c
		}
		return cmp.Compare(a.name, b.name)
	})

	result := make([]string, 0, min(maxResults, len(matches)))
	for _, m := range matches[:min(maxResults, len(matches))] {
		result = append(result, m.name)
	}
	return result
}

// similarity scores two names between 0 and 1, case-insensitively. A prefix of the candidate
// scores 0.9; otherwise the score is derived from the edit distance.
func similarity(target, candidate string) float64 {
	target, candidate = strings.ToLower(target), strings.ToLower(candidate)
	switch {
	case target == candidate:
		return 1.0
	case strings.HasPrefix(candidate, target):
		return 0.9
	}
	longest := max(len(target), len(candidate))
	return 1.0 - float64(distance(target, candidate))/float64(longest)
}

// distance is the Levenshtein edit distance between a and b.
func distance(a, b string) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
