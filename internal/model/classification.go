package model

// MatchTier indicates which stage of the pipeline produced a category.
type MatchTier string

// Match tier constants, in evaluation order.
const (
	TierRule      MatchTier = "RULE"
	TierExact     MatchTier = "EXACT"
	TierFuzzy     MatchTier = "FUZZY"
	TierUnmatched MatchTier = "UNMATCHED"
)

// MatchResult is the outcome of categorizing one transaction.
type MatchResult struct {
	Category   string
	Tier       MatchTier
	Confidence float64
}

// Unmatched returns the fallback result.
func Unmatched() MatchResult {
	return MatchResult{
		Category:   Uncategorized,
		Tier:       TierUnmatched,
		Confidence: 0,
	}
}
