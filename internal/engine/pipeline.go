package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/pattern"
	"github.com/Veraticus/tally/internal/rules"
)

// Batch is the annotated output of one pass. Suppressed rows stay in Results.
type Batch struct {
	Results []model.Annotated
	Groups  []model.DuplicateGroup
	Skips   []model.Skip
}

// Pipeline runs the categorizer and then the deduplicator over a batch.
type Pipeline struct {
	store        *rules.Store
	categorizer  *Categorizer
	deduplicator *Deduplicator
}

// NewPipeline wires a pipeline. A nil store behaves as an empty rule set.
func NewPipeline(reg *pattern.Registry, store *rules.Store, cfg Config) (*Pipeline, error) {
	if reg == nil {
		return nil, fmt.Errorf("%w: registry is required", common.ErrMissingConfig)
	}

	cat, err := NewCategorizer(reg, cfg)
	if err != nil {
		return nil, err
	}
	dedup, err := NewDeduplicator(reg, cfg)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		store:        store,
		categorizer:  cat,
		deduplicator: dedup,
	}, nil
}

// Run annotates txns in input order. The rule set is read once at the start,
// so rule edits made while Run executes do not affect this batch.
func (p *Pipeline) Run(ctx context.Context, txns []model.Transaction) (*Batch, error) {
	var snap *rules.Snapshot
	if p.store != nil {
		snap = p.store.Snapshot()
	}

	batch := &Batch{Results: make([]model.Annotated, len(txns))}
	skip := make(map[int]bool)

	for i, txn := range txns {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, err := p.categorizer.Categorize(txn, snap)
		ann := model.Annotation{
			Category:   result.Category,
			Tier:       result.Tier,
			Confidence: result.Confidence,
		}

		reason := ""
		switch {
		case errors.Is(err, common.ErrMalformedTransaction):
			reason = err.Error()
		case err != nil:
			return nil, fmt.Errorf("failed to categorize %s: %w", txn.RawID, err)
		case txn.Date.IsZero():
			reason = common.MalformedError(txn.RawID, "missing date").Error()
		}
		if reason != "" {
			ann.Skipped = true
			ann.SkipReason = reason
			skip[i] = true
			batch.Skips = append(batch.Skips, model.Skip{RawID: txn.RawID, Reason: reason})
			common.LogDebug("Excluding transaction from duplicate detection", common.Fields{
				"raw_id": txn.RawID,
				"reason": reason,
			})
		}

		batch.Results[i] = model.Annotated{Transaction: txn, Annotation: ann}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dedup := p.deduplicator.Deduplicate(txns, skip)
	for i := range batch.Results {
		if id := dedup.DuplicateGroup[i]; id != "" {
			batch.Results[i].DuplicateGroupID = &id
		}
		if id := dedup.CycleGroup[i]; id != "" {
			batch.Results[i].CycleGroupID = &id
		}
		batch.Results[i].IsSuppressed = dedup.Suppressed[i]
	}
	batch.Groups = dedup.Groups

	slog.Info("Processed batch",
		"transactions", len(txns),
		"groups", len(batch.Groups),
		"skipped", len(batch.Skips),
		"rules", snap.Len())

	return batch, nil
}

// Kept returns the rows that count toward totals.
func (b *Batch) Kept() []model.Annotated {
	kept := make([]model.Annotated, 0, len(b.Results))
	for _, r := range b.Results {
		if !r.IsSuppressed {
			kept = append(kept, r)
		}
	}
	return kept
}
