package quality

import (
	"strings"
)

// DefaultSimilarityThreshold is the score above which two names are
// considered near duplicates.
const DefaultSimilarityThreshold = 0.85

// Similarity computes the similarity of two strings in [0, 1] using
// Levenshtein distance over the normalized forms. 1.0 means the strings
// are equal after trimming and case folding.
func Similarity(s1, s2 string) float64 {
	norm1 := strings.ToLower(strings.TrimSpace(s1))
	norm2 := strings.ToLower(strings.TrimSpace(s2))

	if norm1 == norm2 {
		return 1.0
	}

	distance := levenshteinDistance(norm1, norm2)
	maxLen := max(len([]rune(norm1)), len([]rune(norm2)))

	if maxLen == 0 {
		return 1.0
	}

	return 1.0 - float64(distance)/float64(maxLen)
}

// BestMatch returns the index and score of the candidate most similar to
// name. Ties are broken in favor of the earliest candidate. Returns -1
// when candidates is empty.
func BestMatch(name string, candidates []string) (int, float64) {
	bestIndex := -1
	bestScore := 0.0

	for i, candidate := range candidates {
		score := Similarity(name, candidate)
		if score > bestScore {
			bestScore = score
			bestIndex = i
		}
	}

	return bestIndex, bestScore
}

// levenshteinDistance computes the edit distance between two strings
// using a single-column rolling buffer.
func levenshteinDistance(s1, s2 string) int {
	r1, r2 := []rune(s1), []rune(s2)
	column := make([]int, len(r1)+1)

	for y := 1; y <= len(r1); y++ {
		column[y] = y
	}

	for x := 1; x <= len(r2); x++ {
		column[0] = x
		lastDiag := x - 1
		for y := 1; y <= len(r1); y++ {
			oldDiag := column[y]
			cost := 0
			if r1[y-1] != r2[x-1] {
				cost = 1
			}
			column[y] = min3(column[y]+1, column[y-1]+1, lastDiag+cost)
			lastDiag = oldDiag
		}
	}

	return column[len(r1)]
}

// min3 returns the minimum of three numbers.
func min3(a, b, c int) int {
	if a < b {
		if a < c {
			return a
		}
		return c
	}
	if b < c {
		return b
	}
	return c
}

// max returns the maximum of two numbers.
func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
