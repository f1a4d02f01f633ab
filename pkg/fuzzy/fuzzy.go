// Package fuzzy scores subsequence matches so that "uf" ranks "unfollow" and "cmp" ranks "compact".
package fuzzy

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Constants for scoring
const (
	firstCharMatchBonus            = 15
	adjacentMatchBonus             = 10
	separatorMatchBonus            = 12
	camelCaseMatchBonus            = 12
	unmatchedLeadingCharPenalty    = -3
	maxUnmatchedLeadingCharPenalty = -9
)

// Match represents a matched string with score
type Match struct {
	Str            string
	Score          int
	MatchedIndexes []int
}

// Score reports whether every rune of pattern appears in candidate in order,
// case-insensitively, and how good the match is. Higher is better.
// An empty pattern matches everything with a score of 0.
func Score(pattern, candidate string) (int, bool) {
	if pattern == "" {
		return 0, true
	}
	match := Match{Str: candidate}
	if !runFuzzyMatch([]rune(pattern), []rune(candidate), &match) {
		return 0, false
	}
	// Unmatched trailing runes cost one point each.
	return match.Score - (utf8.RuneCountInString(candidate) - len(match.MatchedIndexes)), true
}

// Rank returns the candidates matching pattern, best first.
// Ties keep the order of candidates.
func Rank(pattern string, candidates []string) []Match {
	matches := make([]Match, 0, len(candidates))
	for _, candidate := range candidates {
		match := Match{Str: candidate}
		if pattern != "" && !runFuzzyMatch([]rune(pattern), []rune(candidate), &match) {
			continue
		}
		match.Score -= utf8.RuneCountInString(candidate) - len(match.MatchedIndexes)
		matches = append(matches, match)
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches
}

// runFuzzyMatch tests if pattern matches the candidate
// and accumulates the score into match. Returns true if there's a match.
func runFuzzyMatch(pattern []rune, candidateRunes []rune, match *Match) bool {
	if len(pattern) == 0 {
		return true
	}

	var last rune
	var lastIndex int
	var currAdjacentMatchBonus int
	patternIndex := 0
	bestScore := -1
	matchedIndex := -1

	for i := 0; i < len(candidateRunes); i++ {
		curr := candidateRunes[i]

		if equalFold(curr, pattern[patternIndex]) {
			score := 0

			if i == 0 {
				score += firstCharMatchBonus
			}
			if i > 0 && unicode.IsLower(last) && unicode.IsUpper(curr) {
				score += camelCaseMatchBonus
			}
			if i > 0 && isSeparator(last) {
				score += separatorMatchBonus
			}

			if len(match.MatchedIndexes) > 0 {
				lastMatch := match.MatchedIndexes[len(match.MatchedIndexes)-1]
				bonus := 0
				if lastIndex == lastMatch {
					bonus = currAdjacentMatchBonus*2 + adjacentMatchBonus
					currAdjacentMatchBonus = bonus
				} else {
					currAdjacentMatchBonus = 0
				}
				score += bonus
			}

			if score > bestScore {
				bestScore = score
				matchedIndex = i
			}
		}

		// Commit the best position for this pattern rune once the next
		// pattern rune comes up, or the candidate ends.
		var nextPatternRune rune
		if patternIndex < len(pattern)-1 {
			nextPatternRune = pattern[patternIndex+1]
		}
		var nextCandidateRune rune
		if i < len(candidateRunes)-1 {
			nextCandidateRune = candidateRunes[i+1]
		}

		if equalFold(nextPatternRune, nextCandidateRune) || nextCandidateRune == 0 {
			if matchedIndex > -1 {
				if len(match.MatchedIndexes) == 0 {
					penalty := matchedIndex * unmatchedLeadingCharPenalty
					bestScore += max(penalty, maxUnmatchedLeadingCharPenalty)
				}

				match.Score += bestScore
				match.MatchedIndexes = append(match.MatchedIndexes, matchedIndex)
				bestScore = -1
				matchedIndex = -1
				patternIndex++
			}
		}

		last = curr
		lastIndex = i

		if patternIndex >= len(pattern) {
			return true
		}
	}

	return patternIndex >= len(pattern)
}

func isSeparator(r rune) bool {
	return r == ' ' || r == '_' || r == '-' || r == '.' || r == '/'
}

// equalFold is a case-insensitive rune comparison with an ASCII fast path.
func equalFold(a, b rune) bool {
	if a == b {
		return true
	}

	if a < utf8.RuneSelf && b < utf8.RuneSelf {
		if 'A' <= a && a <= 'Z' {
			a += 'a' - 'A'
		}
		if 'A' <= b && b <= 'Z' {
			b += 'a' - 'A'
		}
		return a == b
	}

	return strings.EqualFold(string(a), string(b))
}
