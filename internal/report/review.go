package report

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/tally/internal/engine"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/pattern"
)

// Review thresholds.
const (
	// HighFuzzyConfidence is the fuzzy score treated as certain.
	HighFuzzyConfidence = 0.9
	// LowFuzzyConfidence flags fuzzy matches worth a second look.
	LowFuzzyConfidence = 0.8
)

// LargeAmount is the absolute amount above which an unmatched row is flagged.
var LargeAmount = decimal.NewFromInt(100)

// Review is a row the user may want to correct.
type Review struct {
	RawID       string
	Description string
	Category    string
	Suggested   string
	Reason      string
	Amount      decimal.Decimal
}

type reclassHint struct {
	from    string
	to      string
	reason  string
	keyword []string
}

var reclassHints = []reclassHint{
	{from: "Shopping", to: "Groceries", reason: "Likely grocery store", keyword: []string{"market", "grocery", "food", "foods"}},
}

// SuggestReviews lists kept rows that look miscategorized, in input order.
func SuggestReviews(batch *engine.Batch) []Review {
	if batch == nil {
		return nil
	}

	var out []Review
	for _, r := range batch.Results {
		if r.IsSuppressed {
			continue
		}
		base := Review{
			RawID:       r.Transaction.RawID,
			Description: r.Transaction.Description,
			Category:    r.Category,
			Amount:      r.Transaction.Amount,
		}

		switch {
		case r.Tier == model.TierUnmatched && r.Transaction.Amount.Abs().GreaterThan(LargeAmount):
			base.Suggested = "Review - Large Amount"
			base.Reason = "Large uncategorized transaction"
			out = append(out, base)
		case r.Tier == model.TierFuzzy && r.Confidence < LowFuzzyConfidence:
			base.Suggested = r.Category
			base.Reason = fmt.Sprintf("Low confidence match (%.2f)", r.Confidence)
			out = append(out, base)
		}

		if r.Tier == model.TierRule {
			continue
		}
		if hint, ok := matchHint(r); ok {
			base.Suggested = hint.to
			base.Reason = hint.reason
			out = append(out, base)
		}
	}
	return out
}

func matchHint(r model.Annotated) (reclassHint, bool) {
	tokens := pattern.Tokens(r.Transaction.Description)
	for _, h := range reclassHints {
		if !strings.EqualFold(h.from, r.Category) {
			continue
		}
		for _, t := range tokens {
			for _, kw := range h.keyword {
				if t == kw {
					return h, true
				}
			}
		}
	}
	return reclassHint{}, false
}
