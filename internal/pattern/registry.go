// Package pattern holds the static category and duplicate-signature
// configuration and the string comparators shared by the engine.
package pattern

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
)

// FuzzyCeiling caps fuzzy scores so they stay below the exact score of 1.0.
// A regex pattern can miss while its representative text is fully present.
const FuzzyCeiling = 0.99

// Candidate is a category proposed for a description with its score.
type Candidate struct {
	Category model.CategoryDefinition
	Score    float64
	Order    int // Declaration index in the registry
}

type compiledCategory struct {
	def      model.CategoryDefinition
	patterns []compiledPattern
	order    int
}

type compiledSignature struct {
	re  *regexp.Regexp
	sig model.DuplicateSignature
}

// Registry is the read-only set of category definitions and duplicate
// signatures. It is safe for concurrent use once constructed.
type Registry struct {
	byName     map[string]int
	source     string
	categories []compiledCategory
	signatures []compiledSignature
}

// NewRegistry validates and compiles the given configuration. Any problem is
// returned as a *common.ConfigurationError and no registry is produced.
func NewRegistry(defs []model.CategoryDefinition, sigs []model.DuplicateSignature) (*Registry, error) {
	return newRegistry("registry", defs, sigs)
}

func newRegistry(source string, defs []model.CategoryDefinition, sigs []model.DuplicateSignature) (*Registry, error) {
	r := &Registry{
		source:     source,
		byName:     make(map[string]int, len(defs)),
		categories: make([]compiledCategory, 0, len(defs)),
		signatures: make([]compiledSignature, 0, len(sigs)),
	}

	for i, def := range defs {
		name := strings.TrimSpace(def.Name)
		if name == "" {
			return nil, common.NewConfigurationError(source, fmt.Sprintf("category #%d", i+1), errors.New("missing name"))
		}
		if _, dup := r.byName[name]; dup {
			return nil, common.NewConfigurationError(source, name, errors.New("duplicate category name"))
		}
		if len(def.Patterns) == 0 {
			return nil, common.NewConfigurationError(source, name, errors.New("category has no patterns"))
		}

		cc := compiledCategory{def: def, order: i}
		cc.def.Name = name
		for j, p := range def.Patterns {
			cp, err := compilePattern(p)
			if err != nil {
				return nil, common.NewConfigurationError(source, name, fmt.Errorf("pattern %d: %w", j+1, err))
			}
			cc.patterns = append(cc.patterns, cp)
		}

		r.byName[name] = len(r.categories)
		r.categories = append(r.categories, cc)
	}

	for i, sig := range sigs {
		item := sig.Name
		if item == "" {
			item = fmt.Sprintf("signature #%d", i+1)
		}
		switch sig.Kind {
		case model.SignaturePayment, model.SignatureTransfer, model.SignaturePurchase:
		default:
			return nil, common.NewConfigurationError(source, item, fmt.Errorf("unknown signature kind %q", sig.Kind))
		}
		if strings.TrimSpace(sig.Pattern) == "" {
			return nil, common.NewConfigurationError(source, item, errors.New("empty signature pattern"))
		}
		re, err := common.CompileInsensitive(sig.Pattern)
		if err != nil {
			return nil, common.NewConfigurationError(source, item, fmt.Errorf("invalid regex %q: %w", sig.Pattern, err))
		}
		if sig.Name == "" {
			sig.Name = sig.Pattern
		}
		r.signatures = append(r.signatures, compiledSignature{sig: sig, re: re})
	}

	return r, nil
}

// Source names where the registry was loaded from.
func (r *Registry) Source() string {
	return r.source
}

// Categories returns the definitions in declaration order.
func (r *Registry) Categories() []model.CategoryDefinition {
	defs := make([]model.CategoryDefinition, len(r.categories))
	for i, cc := range r.categories {
		defs[i] = cc.def
	}
	return defs
}

// Category looks up a definition by name.
func (r *Registry) Category(name string) (model.CategoryDefinition, bool) {
	i, ok := r.byName[name]
	if !ok {
		return model.CategoryDefinition{}, false
	}
	return r.categories[i].def, true
}

// Signatures returns the duplicate-detection signatures in declaration order.
func (r *Registry) Signatures() []model.DuplicateSignature {
	sigs := make([]model.DuplicateSignature, len(r.signatures))
	for i, cs := range r.signatures {
		sigs[i] = cs.sig
	}
	return sigs
}

// ExactCandidates returns every category with at least one pattern that
// matches the description exactly. Scores are always 1.0.
func (r *Registry) ExactCandidates(description string) []Candidate {
	text := newMatchText(description)

	var out []Candidate
	for _, cc := range r.categories {
		for _, cp := range cc.patterns {
			if cp.matches(text) {
				out = append(out, Candidate{Category: cc.def, Score: 1.0, Order: cc.order})
				break
			}
		}
	}
	return out
}

// FuzzyCandidates returns each category whose best pattern scores above zero
// against the description. Scores are in (0,1), capped at FuzzyCeiling.
func (r *Registry) FuzzyCandidates(description string) []Candidate {
	text := newMatchText(description)
	if text.normalized == "" {
		return nil
	}

	var out []Candidate
	for _, cc := range r.categories {
		best := 0.0
		for _, cp := range cc.patterns {
			if s := cp.fuzzyScore(text); s > best {
				best = s
			}
		}
		if best > FuzzyCeiling {
			best = FuzzyCeiling
		}
		if best > 0 {
			out = append(out, Candidate{Category: cc.def, Score: best, Order: cc.order})
		}
	}
	return out
}

// MatchSignature returns the first signature of one of the given kinds that
// matches the description. With no kinds, any signature qualifies.
func (r *Registry) MatchSignature(description string, kinds ...model.SignatureKind) (model.DuplicateSignature, bool) {
	normalized := NormalizeMerchantKey(description)
	for _, cs := range r.signatures {
		if len(kinds) > 0 && !hasKind(kinds, cs.sig.Kind) {
			continue
		}
		if cs.re.MatchString(description) || cs.re.MatchString(normalized) {
			return cs.sig, true
		}
	}
	return model.DuplicateSignature{}, false
}

func hasKind(kinds []model.SignatureKind, k model.SignatureKind) bool {
	for _, want := range kinds {
		if want == k {
			return true
		}
	}
	return false
}
