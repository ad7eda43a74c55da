package metadata

import (
	"sort"
	"strings"
	"unicode"

	"reelcache/models"
)

// titleScore rates how closely a record title matches the query, between
// 0.0 and 1.0. Exact normalized matches win, then substring containment
// weighted by how much of the title the query covers, then edit distance.
func titleScore(title, query string) float64 {
	title = normalizeTitle(title)
	query = normalizeTitle(query)

	if title == query {
		return 1.0
	}
	if len(title) == 0 || len(query) == 0 {
		return 0.0
	}
	if strings.Contains(title, query) {
		return 0.5 + 0.4*float64(len(query))/float64(len(title))
	}

	distance := editDistance(title, query)
	maxLen := len(title)
	if len(query) > maxLen {
		maxLen = len(query)
	}
	return 1.0 - float64(distance)/float64(maxLen)
}

// normalizeTitle lowercases and collapses punctuation so "WALL·E" and
// "wall-e" compare equal.
func normalizeTitle(s string) string {
	var b strings.Builder
	lastSpace := true
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastSpace = false
		} else if !lastSpace {
			b.WriteRune(' ')
			lastSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}

func editDistance(s1, s2 string) int {
	r1 := []rune(s1)
	r2 := []rune(s2)

	prev := make([]int, len(r2)+1)
	curr := make([]int, len(r2)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(r1); i++ {
		curr[0] = i
		for j := 1; j <= len(r2); j++ {
			cost := 1
			if r1[i-1] == r2[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(r2)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

// sortByRelevance orders records by title closeness to the query, keeping
// the original order for ties so cached hits stay ahead of fallback fills.
func sortByRelevance(records []models.MediaRecord, query string) {
	sort.SliceStable(records, func(i, j int) bool {
		return titleScore(records[i].Title, query) > titleScore(records[j].Title, query)
	})
}
