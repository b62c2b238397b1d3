package model

import "time"

// Run records one processing pass for the history log.
type Run struct {
	StartedAt    time.Time
	ID           string
	Sources      []string
	Transactions int
	Suppressed   int
	Cycles       int
	Skipped      int
	Unmatched    int
}
