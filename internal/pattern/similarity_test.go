package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name        string
		pattern     string
		description string
		want        float64
		delta       float64
	}{
		{name: "identical", pattern: "starbucks", description: "STARBUCKS #123", want: 1},
		{name: "misspelled", pattern: "starbucks", description: "STARBUKS COFFEE", want: 1 - 1.0/9, delta: 1e-9},
		{name: "half the tokens", pattern: "whole foods", description: "WHOLE PAYCHECK", want: 0.5},
		{name: "below token floor", pattern: "uber", description: "UBEREATS", want: 0},
		{name: "empty description", pattern: "target", description: "", want: 0},
		{name: "empty pattern", pattern: "", description: "target", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Score(tt.pattern, tt.description), tt.delta)
		})
	}
}

func TestScore_Deterministic(t *testing.T) {
	for i := 0; i < 5; i++ {
		assert.Equal(t, Score("trader joes", "TRADER JOE'S #552"), Score("trader joes", "TRADER JOE'S #552"))
	}
}

func TestScore_MonotonicInMatchingTokens(t *testing.T) {
	pattern := "whole foods market"

	// Each description's matching tokens are a strict superset of the previous one's.
	descriptions := []string{
		"WHOLE",
		"WHOLE FOODS",
		"WHOLE FOODS MARKET",
		"WHOLE FOODS MARKET AUSTIN TX 10042",
	}

	prev := -1.0
	for _, d := range descriptions {
		s := Score(pattern, d)
		assert.GreaterOrEqual(t, s, prev, d)
		prev = s
	}

	// Near misses on unmatched tokens never outrank an extra exact token.
	nearMiss := Score("aa bb cc dd ee", "aa bb cx dx ex")
	extraToken := Score("aa bb cc dd ee", "aa bb cc zzzzzzzzzzzz")
	assert.GreaterOrEqual(t, extraToken, nearMiss)
}

func TestSimilarity(t *testing.T) {
	t.Run("symmetric", func(t *testing.T) {
		a, b := "STARBUCKS #123 SEATTLE", "STARBUCKS 0123"
		assert.Equal(t, Similarity(a, b), Similarity(b, a))
	})

	t.Run("identical strings", func(t *testing.T) {
		assert.Equal(t, 1.0, Similarity("NETFLIX.COM", "NETFLIX.COM"))
	})

	t.Run("re-ingested copies", func(t *testing.T) {
		assert.Equal(t, 1.0, Similarity("STARBUCKS #123", "STARBUCKS 0123"))
	})

	t.Run("unrelated", func(t *testing.T) {
		assert.Equal(t, 0.0, Similarity("SHELL OIL", "NETFLIX"))
	})
}
