// Package model defines the core data structures for the tally engine.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction represents a single parsed financial transaction from any source.
// The engine never mutates a Transaction; results are carried in Annotation.
type Transaction struct {
	Date          time.Time
	RawID         string // Stable identifier derived from source position
	Description   string // Raw merchant/memo string
	AccountSource string // Statement or file the record came from
	Amount        decimal.Decimal
	HasAmount     bool // False when the source row had no parseable amount
}

// Day returns the transaction date truncated to a calendar day in UTC.
func (t Transaction) Day() time.Time {
	y, m, d := t.Date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IsOutflow reports whether money left the account.
func (t Transaction) IsOutflow() bool {
	return t.Amount.IsNegative()
}

// Annotation holds everything the engine derives for one transaction.
type Annotation struct {
	DuplicateGroupID *string
	CycleGroupID     *string
	Category         string
	Tier             MatchTier
	SkipReason       string
	Confidence       float64
	IsSuppressed     bool
	Skipped          bool
}

// Annotated pairs a transaction with its annotation.
type Annotated struct {
	Transaction Transaction
	Annotation
}

// Skip records a transaction that was excluded from part of a pass.
type Skip struct {
	RawID  string
	Reason string
}
