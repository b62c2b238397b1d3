// Package report turns an annotated batch into totals, review hints and CSV.
package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/tally/internal/engine"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/pattern"
)

// CategoryTotal aggregates the kept rows of one category.
type CategoryTotal struct {
	Total decimal.Decimal
	Name  string
	Count int
}

// Summary describes one processed batch.
type Summary struct {
	Tiers        map[model.MatchTier]int
	Income       decimal.Decimal
	Expenses     decimal.Decimal
	Net          decimal.Decimal
	Categories   []CategoryTotal
	Transactions int
	Kept         int
	Suppressed   int
	CycleLinks   int
	Skipped      int
}

// Summarize totals the non-suppressed rows. Settling rows of a payment cycle
// and rows in system categories are left out of income and expenses so a
// purchase and its card payment are not counted twice. reg may be nil.
func Summarize(batch *engine.Batch, reg *pattern.Registry) Summary {
	s := Summary{
		Tiers:    make(map[model.MatchTier]int),
		Income:   decimal.Zero,
		Expenses: decimal.Zero,
	}
	if batch == nil {
		s.Net = decimal.Zero
		return s
	}

	totals := make(map[string]*CategoryTotal)
	for _, r := range batch.Results {
		s.Transactions++
		if r.Skipped {
			s.Skipped++
		}
		if r.CycleGroupID != nil {
			s.CycleLinks++
		}
		if r.IsSuppressed {
			s.Suppressed++
			continue
		}
		s.Kept++
		s.Tiers[r.Tier]++

		ct, ok := totals[r.Category]
		if !ok {
			ct = &CategoryTotal{Name: r.Category, Total: decimal.Zero}
			totals[r.Category] = ct
		}
		ct.Count++
		ct.Total = ct.Total.Add(r.Transaction.Amount)

		if excludedFromFlow(r, reg) {
			continue
		}
		if r.Transaction.IsOutflow() {
			s.Expenses = s.Expenses.Add(r.Transaction.Amount.Neg())
		} else {
			s.Income = s.Income.Add(r.Transaction.Amount)
		}
	}
	// Each link touches two rows.
	s.CycleLinks /= 2
	s.Net = s.Income.Sub(s.Expenses)

	s.Categories = make([]CategoryTotal, 0, len(totals))
	for _, ct := range totals {
		s.Categories = append(s.Categories, *ct)
	}
	sort.Slice(s.Categories, func(i, j int) bool {
		a, b := s.Categories[i].Total.Abs(), s.Categories[j].Total.Abs()
		if !a.Equal(b) {
			return a.GreaterThan(b)
		}
		return s.Categories[i].Name < s.Categories[j].Name
	})

	return s
}

func excludedFromFlow(r model.Annotated, reg *pattern.Registry) bool {
	if reg == nil {
		return false
	}
	if def, ok := reg.Category(r.Category); ok && def.Type == model.CategoryTypeSystem {
		return true
	}
	if r.CycleGroupID != nil {
		_, settles := reg.MatchSignature(r.Transaction.Description, model.SignaturePayment, model.SignatureTransfer)
		return settles
	}
	return false
}

// ConfidenceLevel buckets a result into High, Medium or Low.
func ConfidenceLevel(ann model.Annotation) string {
	switch {
	case ann.Tier == model.TierRule || ann.Tier == model.TierExact:
		return "High"
	case ann.Tier == model.TierFuzzy && ann.Confidence >= HighFuzzyConfidence:
		return "High"
	case ann.Tier == model.TierFuzzy:
		return "Medium"
	default:
		return "Low"
	}
}
