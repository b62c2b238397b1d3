package pattern

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/Veraticus/tally/internal/common"
)

var storeNumberRegex = regexp.MustCompile(`#\s*\d+`)

// NormalizeMerchantKey folds a raw description into the key used for rule
// lookup and pattern matching. It lower-cases, drops "#123" store numbers,
// turns punctuation into spaces, collapses whitespace and strips trailing
// all-digit reference tokens.
//
// The Rule Store and the Categorizer both call this function; there is no
// other normalization path.
func NormalizeMerchantKey(s string) string {
	s = strings.ToLower(s)
	s = storeNumberRegex.ReplaceAllString(s, " ")
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '&' {
			return r
		}
		return ' '
	}, s)

	fields := strings.Fields(s)
	for len(fields) > 0 && isDigits(fields[len(fields)-1]) {
		fields = fields[:len(fields)-1]
	}

	return strings.Join(fields, " ")
}

// ValidateMerchantKey reports ErrNormalizationMismatch when key is not already
// in normalized form, which means it can never be produced by a lookup.
func ValidateMerchantKey(key string) error {
	if normalized := NormalizeMerchantKey(key); normalized != key {
		return fmt.Errorf("%w: %q normalizes to %q", common.ErrNormalizationMismatch, key, normalized)
	}
	return nil
}

// Tokens splits normalized text into tokens.
func Tokens(s string) []string {
	return strings.Fields(NormalizeMerchantKey(s))
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
