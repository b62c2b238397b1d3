package pattern

import (
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// TokenFloor is the minimum per-token similarity for a token to count as matching.
const TokenFloor = 0.8

// Score measures how much of pattern is present in description, in [0,1].
//
// Every pattern token is compared against every description token with a
// normalized edit-distance ratio; the best ratio counts toward the score only
// when it reaches TokenFloor. The sum is divided by the number of pattern
// tokens. Adding description tokens can only raise a token's best ratio, so a
// description whose matching tokens are a superset of another's never scores
// lower.
func Score(pattern, description string) float64 {
	return containment(Tokens(pattern), Tokens(description))
}

// Similarity is the symmetric comparator used to compare two descriptions.
func Similarity(a, b string) float64 {
	ta, tb := Tokens(a), Tokens(b)
	return (containment(ta, tb) + containment(tb, ta)) / 2
}

func containment(pattern, description []string) float64 {
	if len(pattern) == 0 || len(description) == 0 {
		return 0
	}

	var total float64
	for _, p := range pattern {
		best := 0.0
		for _, d := range description {
			if r := tokenRatio(p, d); r > best {
				best = r
				if best == 1 {
					break
				}
			}
		}
		if best >= TokenFloor {
			total += best
		}
	}

	return total / float64(len(pattern))
}

// tokenRatio is 1 - distance/longest, so identical tokens score 1.
func tokenRatio(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > longest {
		longest = n
	}
	if longest == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}
