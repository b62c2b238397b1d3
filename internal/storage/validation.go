// Package storage provides the data persistence layer for tally.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
)

// Validation errors.
var (
	ErrNilContext    = errors.New("context cannot be nil")
	ErrEmptyString   = errors.New("string parameter cannot be empty")
	ErrNilParameter  = errors.New("parameter cannot be nil")
	ErrInvalidRule   = errors.New("invalid rule")
	ErrInvalidRun    = errors.New("invalid run")
	ErrDuplicateRule = fmt.Errorf("%w: merchant key", common.ErrDuplicateEntry)
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateRules(rules []model.Rule) error {
	seen := make(map[string]struct{}, len(rules))
	for i, r := range rules {
		if strings.TrimSpace(r.MerchantKey) == "" {
			return fmt.Errorf("%w at index %d: missing merchant key", ErrInvalidRule, i)
		}
		if strings.TrimSpace(r.CategoryName) == "" {
			return fmt.Errorf("%w at index %d: missing category", ErrInvalidRule, i)
		}
		if _, dup := seen[r.MerchantKey]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateRule, r.MerchantKey)
		}
		seen[r.MerchantKey] = struct{}{}
	}
	return nil
}

func validateRun(run *model.Run) error {
	if run == nil {
		return fmt.Errorf("%w: run", ErrNilParameter)
	}
	if run.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidRun)
	}
	if run.StartedAt.IsZero() {
		return fmt.Errorf("%w: missing start time", ErrInvalidRun)
	}
	return nil
}
