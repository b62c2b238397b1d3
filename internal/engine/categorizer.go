package engine

import (
	"strings"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/pattern"
	"github.com/Veraticus/tally/internal/rules"
)

// Categorizer assigns exactly one category to each transaction by walking the
// rule, exact and fuzzy tiers in order.
type Categorizer struct {
	registry *pattern.Registry
	config   Config
}

// NewCategorizer creates a categorizer over an immutable registry.
func NewCategorizer(reg *pattern.Registry, cfg Config) (*Categorizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Categorizer{registry: reg, config: cfg}, nil
}

// Categorize returns the match for txn. The result depends only on txn, the
// registry and snap. A malformed transaction gets the unmatched result and an
// error wrapping common.ErrMalformedTransaction.
func (c *Categorizer) Categorize(txn model.Transaction, snap *rules.Snapshot) (model.MatchResult, error) {
	if err := checkWellFormed(txn); err != nil {
		return model.Unmatched(), err
	}

	if category, ok := snap.Lookup(txn.Description); ok {
		return model.MatchResult{
			Category:   category,
			Tier:       model.TierRule,
			Confidence: 1.0,
		}, nil
	}

	if best, ok := bestExact(c.registry.ExactCandidates(txn.Description)); ok {
		return model.MatchResult{
			Category:   best.Category.Name,
			Tier:       model.TierExact,
			Confidence: 1.0,
		}, nil
	}

	if best, ok := bestFuzzy(c.registry.FuzzyCandidates(txn.Description), c.config.FuzzyThreshold); ok {
		return model.MatchResult{
			Category:   best.Category.Name,
			Tier:       model.TierFuzzy,
			Confidence: best.Score,
		}, nil
	}

	return model.Unmatched(), nil
}

func checkWellFormed(txn model.Transaction) error {
	switch {
	case !txn.HasAmount:
		return common.MalformedError(txn.RawID, "missing amount")
	case strings.TrimSpace(txn.Description) == "":
		return common.MalformedError(txn.RawID, "empty description")
	}
	return nil
}

// bestExact picks the lowest priority number, then the earliest declaration.
func bestExact(cands []pattern.Candidate) (pattern.Candidate, bool) {
	if len(cands) == 0 {
		return pattern.Candidate{}, false
	}
	best := cands[0]
	for _, c := range cands[1:] {
		if outranks(c, best) {
			best = c
		}
	}
	return best, true
}

// bestFuzzy picks the highest score at or above threshold; ties fall back to
// priority and declaration order.
func bestFuzzy(cands []pattern.Candidate, threshold float64) (pattern.Candidate, bool) {
	var (
		best  pattern.Candidate
		found bool
	)
	for _, c := range cands {
		if c.Score < threshold {
			continue
		}
		if !found || c.Score > best.Score || (c.Score == best.Score && outranks(c, best)) {
			best = c
			found = true
		}
	}
	return best, found
}

func outranks(a, b pattern.Candidate) bool {
	if a.Category.Priority != b.Category.Priority {
		return a.Category.Priority < b.Category.Priority
	}
	return a.Order < b.Order
}
