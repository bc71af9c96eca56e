package util

import "strings"

// Levenshtein returns the edit distance between a and b: the minimum number
// of single-rune insertions, deletions and substitutions turning one into
// the other.
func Levenshtein(a, b string) int {
	ar := []rune(a)
	br := []rune(b)
	if len(ar) == 0 {
		return len(br)
	}
	if len(br) == 0 {
		return len(ar)
	}

	prev := make([]int, len(br)+1)
	cur := make([]int, len(br)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ar); i++ {
		cur[0] = i
		for j := 1; j <= len(br); j++ {
			cost := 1
			if ar[i-1] == br[j-1] {
				cost = 0
			}
			cur[j] = min3(cur[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(br)]
}

// DidYouMean returns the candidate closest to input, if any candidate is
// close enough to be a plausible typo. The threshold scales with the input
// length so short names only match near-exact candidates. Comparison is
// case-insensitive; the returned suggestion keeps the candidate's original
// spelling.
func DidYouMean(candidates []string, input string) (string, bool) {
	if input == "" || len(candidates) == 0 {
		return "", false
	}
	lowered := strings.ToLower(input)
	threshold := len([]rune(input))/3 + 1

	best := ""
	bestDist := threshold + 1
	for _, cand := range candidates {
		d := Levenshtein(strings.ToLower(cand), lowered)
		if d < bestDist {
			best = cand
			bestDist = d
		}
	}
	if bestDist > threshold {
		return "", false
	}
	return best, true
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
