// Package rules implements the user-editable merchant-to-category override store.
package rules

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/pattern"
)

// Validation errors.
var (
	ErrEmptyKey      = errors.New("merchant key is empty after normalization")
	ErrEmptyCategory = errors.New("category name cannot be empty")
)

// Persister restores and saves rules across sessions.
type Persister interface {
	LoadRules(ctx context.Context) ([]model.Rule, error)
	SaveRules(ctx context.Context, rules []model.Rule) error
}

// Store holds rules keyed by normalized merchant key. It is safe for
// concurrent use, but a categorization pass should read a Snapshot.
type Store struct {
	rules map[string]model.Rule
	now   func() time.Time
	mu    sync.RWMutex
}

// NewStore creates an empty rule store.
func NewStore() *Store {
	return &Store{
		rules: make(map[string]model.Rule),
		now:   time.Now,
	}
}

// Get returns the category for a merchant key, normalizing it first.
func (s *Store) Get(merchantKey string) (string, bool) {
	key := pattern.NormalizeMerchantKey(merchantKey)

	s.mu.RLock()
	defer s.mu.RUnlock()

	rule, ok := s.rules[key]
	if !ok {
		return "", false
	}
	return rule.CategoryName, true
}

// Put adds or replaces the rule for a merchant key.
func (s *Store) Put(merchantKey, category string) error {
	key := pattern.NormalizeMerchantKey(merchantKey)
	if key == "" {
		return fmt.Errorf("%w: %q", ErrEmptyKey, merchantKey)
	}
	category = strings.TrimSpace(category)
	if category == "" {
		return ErrEmptyCategory
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.rules[key] = model.Rule{
		MerchantKey:   key,
		CategoryName:  category,
		CreatedByUser: true,
		UpdatedAt:     s.now().UTC(),
	}
	return nil
}

// Correct records a user correction for a raw transaction description.
// Historical results are not touched; the next pass re-derives them.
func (s *Store) Correct(description, category string) error {
	return s.Put(description, category)
}

// Remove deletes the rule for a merchant key and reports whether one existed.
func (s *Store) Remove(merchantKey string) bool {
	key := pattern.NormalizeMerchantKey(merchantKey)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rules[key]; ok {
		delete(s.rules, key)
		return true
	}
	// Keys restored verbatim from persistence may not be normalized.
	if _, ok := s.rules[merchantKey]; ok {
		delete(s.rules, merchantKey)
		return true
	}
	return false
}

// Len returns the number of rules.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rules)
}

// Rules returns all rules sorted by merchant key.
func (s *Store) Rules() []model.Rule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedRules(s.rules)
}

// Snapshot returns an immutable point-in-time copy of the store.
func (s *Store) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rules := make(map[string]string, len(s.rules))
	for k, r := range s.rules {
		rules[k] = r.CategoryName
	}
	return &Snapshot{rules: rules}
}

// Load replaces the store contents with the persisted rules. Keys that do not
// survive normalization are kept verbatim so they round-trip, but are logged
// because no lookup can ever reach them.
func (s *Store) Load(ctx context.Context, p Persister) error {
	loaded, err := p.LoadRules(ctx)
	if err != nil {
		return fmt.Errorf("failed to load rules: %w", err)
	}

	rules := make(map[string]model.Rule, len(loaded))
	for _, r := range loaded {
		if err := pattern.ValidateMerchantKey(r.MerchantKey); err != nil {
			common.LogWarn(err, "Rule key will never match", common.Fields{
				"merchant_key": r.MerchantKey,
				"category":     r.CategoryName,
			})
		}
		rules[r.MerchantKey] = r
	}

	s.mu.Lock()
	s.rules = rules
	s.mu.Unlock()

	slog.Debug("Loaded rules", "count", len(rules))
	return nil
}

// Save writes every rule through the persister.
func (s *Store) Save(ctx context.Context, p Persister) error {
	if err := p.SaveRules(ctx, s.Rules()); err != nil {
		return fmt.Errorf("failed to save rules: %w", err)
	}
	return nil
}

// Snapshot is a read-only view of the rules used for one categorization pass.
type Snapshot struct {
	rules map[string]string
}

// Lookup normalizes a description and returns the matching rule category.
// Rule keys that are not themselves normalized can never be returned.
func (s *Snapshot) Lookup(description string) (string, bool) {
	if s == nil {
		return "", false
	}
	key := pattern.NormalizeMerchantKey(description)
	if key == "" {
		return "", false
	}
	category, ok := s.rules[key]
	return category, ok
}

// Len returns the number of rules in the snapshot.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.rules)
}

func sortedRules(m map[string]model.Rule) []model.Rule {
	out := make([]model.Rule, 0, len(m))
	for _, r := range m {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].MerchantKey < out[j].MerchantKey
	})
	return out
}
