// Package match scores free-text label similarity, used to rank unmapped
// raw labels against known account and category names when suggesting
// aliases.
package match

import (
	"sort"
	"strings"
)

// Normalize lowercases, trims, and collapses interior whitespace.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Score computes Jaccard similarity over character-bigram sets of the
// normalized strings. The score is symmetric and lands in [0,1]; only
// identical normalized strings reach 1.0.
func Score(a, b string) float64 {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}

	setA, setB := bigrams(na), bigrams(nb)
	union := make(map[string]struct{}, len(setA)+len(setB))
	for gram := range setA {
		union[gram] = struct{}{}
	}
	intersection := 0
	for gram := range setB {
		if _, ok := setA[gram]; ok {
			intersection++
		}
		union[gram] = struct{}{}
	}
	if len(union) == 0 {
		return 0
	}

	score := float64(intersection) / float64(len(union))
	// distinct strings can share every bigram ("aab" vs "aba"); keep 1.0
	// reserved for the identity case
	if score >= 1 {
		score = 0.99
	}
	return score
}

func bigrams(s string) map[string]struct{} {
	runes := []rune(s)
	grams := make(map[string]struct{}, len(runes))
	if len(runes) == 1 {
		grams[string(runes)] = struct{}{}
		return grams
	}
	for i := 0; i+1 < len(runes); i++ {
		grams[string(runes[i:i+2])] = struct{}{}
	}
	return grams
}

// Match is one candidate scored against the target.
type Match struct {
	Candidate string  `json:"candidate"`
	Score     float64 `json:"score"`
}

// FindSimilar scores every candidate against target and returns those at
// or above threshold, best first. Ties break alphabetically so the
// ranking is stable across runs.
func FindSimilar(target string, candidates []string, threshold float64) []Match {
	var matches []Match
	for _, candidate := range candidates {
		if score := Score(target, candidate); score >= threshold {
			matches = append(matches, Match{Candidate: candidate, Score: score})
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Candidate < matches[j].Candidate
	})
	return matches
}
