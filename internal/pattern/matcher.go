package pattern

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
)

// compiledPattern is a CategoryPattern prepared for matching.
type compiledPattern struct {
	re             *regexp.Regexp
	kind           model.PatternKind
	phrase         string   // normalized substring, padded with spaces
	tokens         []string // keyword tokens
	representative string   // text used for fuzzy scoring
}

func compilePattern(p model.CategoryPattern) (compiledPattern, error) {
	kind, err := model.ParsePatternKind(string(p.Kind))
	if err != nil {
		return compiledPattern{}, err
	}
	if strings.TrimSpace(p.Value) == "" {
		return compiledPattern{}, errors.New("empty pattern")
	}

	cp := compiledPattern{kind: kind}
	switch kind {
	case model.PatternRegex:
		re, err := common.CompileInsensitive(p.Value)
		if err != nil {
			return compiledPattern{}, fmt.Errorf("invalid regex %q: %w", p.Value, err)
		}
		cp.re = re
		cp.representative = NormalizeMerchantKey(p.Representative)
	case model.PatternKeywords:
		cp.tokens = Tokens(p.Value)
		cp.representative = strings.Join(cp.tokens, " ")
	default:
		normalized := NormalizeMerchantKey(p.Value)
		cp.phrase = " " + normalized + " "
		cp.representative = normalized
	}

	if cp.kind != model.PatternRegex && cp.representative == "" {
		return compiledPattern{}, fmt.Errorf("pattern %q is empty after normalization", p.Value)
	}

	return cp, nil
}

// matchText carries the forms of a description each matcher kind needs.
type matchText struct {
	raw        string
	normalized string
	padded     string
	tokens     map[string]bool
}

func newMatchText(description string) matchText {
	normalized := NormalizeMerchantKey(description)
	tokens := make(map[string]bool)
	for _, t := range strings.Fields(normalized) {
		tokens[t] = true
	}
	return matchText{
		raw:        description,
		normalized: normalized,
		padded:     " " + normalized + " ",
		tokens:     tokens,
	}
}

// matches reports an exact hit of the pattern on the text.
func (cp compiledPattern) matches(text matchText) bool {
	switch cp.kind {
	case model.PatternRegex:
		return cp.re.MatchString(text.raw) || cp.re.MatchString(text.normalized)
	case model.PatternKeywords:
		for _, t := range cp.tokens {
			if !text.tokens[t] {
				return false
			}
		}
		return len(cp.tokens) > 0
	default:
		return strings.Contains(text.padded, cp.phrase)
	}
}

// fuzzyScore scores the pattern's representative text against the description.
func (cp compiledPattern) fuzzyScore(text matchText) float64 {
	if cp.representative == "" {
		return 0
	}
	return containment(strings.Fields(cp.representative), strings.Fields(text.normalized))
}
