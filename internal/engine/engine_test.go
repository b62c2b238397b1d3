package engine

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/pattern"
)

var day1 = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func testRegistry(t *testing.T) *pattern.Registry {
	t.Helper()
	reg, err := pattern.NewRegistry(
		[]model.CategoryDefinition{
			{
				Name:     "Transfer/Payment",
				Type:     model.CategoryTypeSystem,
				Priority: 5,
				Patterns: []model.CategoryPattern{
					{Kind: model.PatternRegex, Value: `\b(credit\s+card|cc)\s+payment\b`, Representative: "credit card payment"},
				},
			},
			{
				Name:     "Coffee/Dining",
				Priority: 30,
				Patterns: []model.CategoryPattern{{Kind: model.PatternSubstring, Value: "starbucks"}},
			},
			{
				Name:     "Groceries",
				Priority: 40,
				Patterns: []model.CategoryPattern{
					{Kind: model.PatternSubstring, Value: "whole foods market"},
					{Kind: model.PatternSubstring, Value: "target"},
				},
			},
			{
				Name:     "Shopping",
				Priority: 40,
				Patterns: []model.CategoryPattern{{Kind: model.PatternSubstring, Value: "target"}},
			},
			{
				Name:     "Transportation",
				Priority: 45,
				Patterns: []model.CategoryPattern{{Kind: model.PatternKeywords, Value: "shell oil"}},
			},
		},
		[]model.DuplicateSignature{
			{Name: "Credit Card Payment", Kind: model.SignaturePayment, Pattern: `(credit\s+card|cc)\s+payment`},
			{Name: "Savings Transfer", Kind: model.SignatureTransfer, Pattern: `transfer\s+(to|from)\s+(savings|checking)`},
			{Name: "Coffee", Kind: model.SignaturePurchase, Pattern: `starbucks`},
		},
	)
	require.NoError(t, err)
	return reg
}

func txn(rawID, description, amount string, day int) model.Transaction {
	return model.Transaction{
		RawID:         rawID,
		Description:   description,
		Amount:        decimal.RequireFromString(amount),
		HasAmount:     true,
		Date:          day1.AddDate(0, 0, day-1),
		AccountSource: "test",
	}
}
