package ingest

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV_Positional(t *testing.T) {
	input := "2024-03-01,STARBUCKS #123,-5.25\n" +
		"03/02/2024,\"CC PAYMENT, THANK YOU\",5.25\n" +
		"\n" +
		"2024-03-03,PAYROLL,\"2,000.00\"\n"

	txns, err := ReadCSV(strings.NewReader(input), "card.csv")
	require.NoError(t, err)
	require.Len(t, txns, 3)

	assert.Equal(t, "card.csv:1", txns[0].RawID)
	assert.Equal(t, "card.csv", txns[0].AccountSource)
	assert.Equal(t, "STARBUCKS #123", txns[0].Description)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), txns[0].Date)
	assert.True(t, decimal.RequireFromString("-5.25").Equal(txns[0].Amount))

	assert.Equal(t, "card.csv:2", txns[1].RawID)
	assert.Equal(t, "CC PAYMENT, THANK YOU", txns[1].Description)
	assert.Equal(t, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), txns[1].Date)

	assert.Equal(t, "card.csv:4", txns[2].RawID)
	assert.True(t, decimal.RequireFromString("2000").Equal(txns[2].Amount))
}

func TestReadCSV_Header(t *testing.T) {
	input := "Amount,Transaction Date,Memo\n" +
		"(12.00),2024-01-05,UBER TRIP\n"

	txns, err := ReadCSV(strings.NewReader(input), "bank")
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, "bank:2", txns[0].RawID)
	assert.Equal(t, "UBER TRIP", txns[0].Description)
	assert.True(t, decimal.RequireFromString("-12").Equal(txns[0].Amount))
}

func TestReadCSV_HeaderMissingColumn(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("date,description\n2024-01-01,x\n"), "bad.csv")
	assert.ErrorIs(t, err, ErrNoColumns)
}

func TestReadCSV_IncompleteRowsKept(t *testing.T) {
	input := "2024-03-01,NO AMOUNT,\n" +
		"yesterday,BAD DATE,-3\n" +
		"2024-03-01,JUNK AMOUNT,abc\n"

	txns, err := ReadCSV(strings.NewReader(input), "x")
	require.NoError(t, err)
	require.Len(t, txns, 3)

	assert.False(t, txns[0].HasAmount)
	assert.True(t, txns[1].Date.IsZero())
	assert.True(t, txns[1].HasAmount)
	assert.False(t, txns[2].HasAmount)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{in: "-4.50", want: "-4.5", ok: true},
		{in: "$1,234.56", want: "1234.56", ok: true},
		{in: "-$4.50", want: "-4.5", ok: true},
		{in: "(4.50)", want: "-4.5", ok: true},
		{in: "0", want: "0", ok: true},
		{in: "", ok: false},
		{in: "n/a", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseAmount(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got.String())
			}
		})
	}
}

func TestReadCSV_Malformed(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("2024-01-01,\"unterminated,-1\n"), "broken.csv")
	assert.Error(t, err)
}
