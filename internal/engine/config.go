// Package engine categorizes transactions and groups duplicates and payment cycles.
package engine

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/tally/internal/common"
)

// Config holds the tunables for the categorizer and deduplicator.
type Config struct {
	AmountEpsilon      decimal.Decimal
	FuzzyThreshold     float64
	DuplicateThreshold float64
	DateWindowDays     int
	// LinkPaymentCycles enables purchase/payment linking. Simple duplicates
	// are grouped either way.
	LinkPaymentCycles bool
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		FuzzyThreshold:     0.72,
		DuplicateThreshold: 0.72,
		DateWindowDays:     3,
		AmountEpsilon:      decimal.Zero,
		LinkPaymentCycles:  true,
	}
}

// Validate checks that every setting is in range.
func (c Config) Validate() error {
	if c.FuzzyThreshold <= 0 || c.FuzzyThreshold > 1 {
		return fmt.Errorf("%w: fuzzy threshold %v must be in (0,1]", common.ErrInvalidConfig, c.FuzzyThreshold)
	}
	if c.DuplicateThreshold <= 0 || c.DuplicateThreshold > 1 {
		return fmt.Errorf("%w: duplicate threshold %v must be in (0,1]", common.ErrInvalidConfig, c.DuplicateThreshold)
	}
	if c.DateWindowDays < 0 {
		return fmt.Errorf("%w: date window %d must not be negative", common.ErrInvalidConfig, c.DateWindowDays)
	}
	if c.AmountEpsilon.IsNegative() {
		return fmt.Errorf("%w: amount epsilon %s must not be negative", common.ErrInvalidConfig, c.AmountEpsilon)
	}
	return nil
}
