// Package ingest reads delimited bank exports into transactions.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/tally/internal/model"
)

// ErrNoColumns is returned when a header lacks a required column.
var ErrNoColumns = errors.New("missing required column")

// Accepted date layouts, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"2006/01/02",
	"01/02/06",
	"Jan 2, 2006",
	"02 Jan 2006",
}

var (
	dateAliases        = []string{"date", "posted", "posting date", "transaction date"}
	descriptionAliases = []string{"description", "name", "memo", "payee", "merchant"}
	amountAliases      = []string{"amount", "amt", "value"}
)

type columns struct {
	date, description, amount int
}

var positional = columns{date: 0, description: 1, amount: 2}

// ReadCSV parses rows of date, description and amount. A header row is
// detected and may reorder those columns. RawID is "source:line". Rows with an
// unreadable amount or date are kept with HasAmount false or a zero Date so the
// engine can record them as skipped.
func ReadCSV(r io.Reader, source string) ([]model.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var (
		txns   []model.Transaction
		cols   = positional
		first  = true
		broken int
	)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", source, err)
		}
		line, _ := cr.FieldPos(0)

		if first {
			first = false
			if hdr, ok, err := headerColumns(rec); ok {
				if err != nil {
					return nil, fmt.Errorf("%s: %w", source, err)
				}
				cols = hdr
				continue
			}
		}
		if blank(rec) {
			continue
		}

		txn := model.Transaction{
			RawID:         fmt.Sprintf("%s:%d", source, line),
			AccountSource: source,
			Description:   strings.TrimSpace(field(rec, cols.description)),
		}
		if d, ok := parseDate(field(rec, cols.date)); ok {
			txn.Date = d
		}
		if amt, ok := parseAmount(field(rec, cols.amount)); ok {
			txn.Amount = amt
			txn.HasAmount = true
		}
		if txn.Date.IsZero() || !txn.HasAmount {
			broken++
		}
		txns = append(txns, txn)
	}

	slog.Info("Parsed CSV file",
		"source", source,
		"total_transactions", len(txns),
		"incomplete", broken)

	return txns, nil
}

func headerColumns(rec []string) (columns, bool, error) {
	idx := func(aliases []string) int {
		for i, h := range rec {
			h = strings.ToLower(strings.TrimSpace(h))
			for _, a := range aliases {
				if h == a {
					return i
				}
			}
		}
		return -1
	}

	cols := columns{
		date:        idx(dateAliases),
		description: idx(descriptionAliases),
		amount:      idx(amountAliases),
	}
	if cols.date < 0 && cols.description < 0 && cols.amount < 0 {
		return columns{}, false, nil
	}

	var missing []string
	if cols.date < 0 {
		missing = append(missing, "date")
	}
	if cols.description < 0 {
		missing = append(missing, "description")
	}
	if cols.amount < 0 {
		missing = append(missing, "amount")
	}
	if len(missing) > 0 {
		return columns{}, true, fmt.Errorf("%w: %s", ErrNoColumns, strings.Join(missing, ", "))
	}
	return cols, true, nil
}

func field(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return rec[i]
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseAmount accepts "1,234.56", "$-4.50", "-$4.50" and "(4.50)".
func parseAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	if strings.HasPrefix(s, "-") {
		negative = !negative
		s = s[1:]
	}
	s = strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if negative {
		d = d.Neg()
	}
	return d, true
}
