package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/Veraticus/tally/internal/engine"
)

// CSVHeader is the fixed export column order.
var CSVHeader = []string{
	"date",
	"description",
	"amount",
	"account_source",
	"raw_id",
	"category",
	"confidence",
	"match_tier",
	"duplicate_group_id",
	"cycle_group_id",
}

// WriteCSV writes one row per kept transaction, in input order.
func WriteCSV(w io.Writer, batch *engine.Batch) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	if batch != nil {
		for _, r := range batch.Kept() {
			date := ""
			if !r.Transaction.Date.IsZero() {
				date = r.Transaction.Day().Format("2006-01-02")
			}
			amount := ""
			if r.Transaction.HasAmount {
				amount = r.Transaction.Amount.String()
			}
			record := []string{
				date,
				r.Transaction.Description,
				amount,
				r.Transaction.AccountSource,
				r.Transaction.RawID,
				r.Category,
				strconv.FormatFloat(r.Confidence, 'f', 4, 64),
				string(r.Tier),
				deref(r.DuplicateGroupID),
				deref(r.CycleGroupID),
			}
			if err := cw.Write(record); err != nil {
				return fmt.Errorf("failed to write %s: %w", r.Transaction.RawID, err)
			}
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
