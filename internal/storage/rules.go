package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
)

// LoadRules returns every stored rule ordered by merchant key.
func (s *SQLiteStorage) LoadRules(ctx context.Context) ([]model.Rule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.loadRulesTx(ctx, s.db)
}

func (s *SQLiteStorage) loadRulesTx(ctx context.Context, q queryable) ([]model.Rule, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT merchant_key, category, created_by_user, updated_at
		FROM rules
		ORDER BY merchant_key
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var rules []model.Rule
	for rows.Next() {
		var (
			r         model.Rule
			updatedAt sql.NullTime
		)
		if err := rows.Scan(&r.MerchantKey, &r.CategoryName, &r.CreatedByUser, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		if updatedAt.Valid {
			r.UpdatedAt = updatedAt.Time.UTC()
		}
		rules = append(rules, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rules: %w", err)
	}
	return rules, nil
}

// SaveRules replaces the stored rule set with rules in one transaction.
func (s *SQLiteStorage) SaveRules(ctx context.Context, rules []model.Rule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRules(rules); err != nil {
		return err
	}

	return withWriteRetry(ctx, func() error {
		return s.saveRulesTx(ctx, rules)
	})
}

func (s *SQLiteStorage) saveRulesTx(ctx context.Context, rules []model.Rule) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM rules`); err != nil {
		return fmt.Errorf("failed to clear rules: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO rules (merchant_key, category, created_by_user, updated_at)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	now := time.Now().UTC()
	for _, r := range rules {
		updatedAt := r.UpdatedAt
		if updatedAt.IsZero() {
			updatedAt = now
		}
		if _, err := stmt.ExecContext(ctx, r.MerchantKey, r.CategoryName, r.CreatedByUser, updatedAt.UTC()); err != nil {
			return fmt.Errorf("failed to save rule %q: %w", r.MerchantKey, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rules: %w", err)
	}
	return nil
}

// GetRule retrieves a single rule by its stored merchant key.
func (s *SQLiteStorage) GetRule(ctx context.Context, merchantKey string) (*model.Rule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(merchantKey, "merchantKey"); err != nil {
		return nil, err
	}

	var (
		r         model.Rule
		updatedAt sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT merchant_key, category, created_by_user, updated_at
		FROM rules
		WHERE merchant_key = ?
	`, merchantKey).Scan(&r.MerchantKey, &r.CategoryName, &r.CreatedByUser, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("rule %q: %w", merchantKey, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rule: %w", err)
	}
	if updatedAt.Valid {
		r.UpdatedAt = updatedAt.Time.UTC()
	}
	return &r, nil
}

// CountRulesByCategory returns how many rules point at each category.
func (s *SQLiteStorage) CountRulesByCategory(ctx context.Context) (map[string]int, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT category, COUNT(*)
		FROM rules
		GROUP BY category
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to count rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			category string
			n        int
		)
		if err := rows.Scan(&category, &n); err != nil {
			return nil, fmt.Errorf("failed to scan rule count: %w", err)
		}
		counts[category] = n
	}
	return counts, rows.Err()
}
