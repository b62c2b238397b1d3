package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/Veraticus/tally/internal/model"
)

// sourceSeparator joins source paths in the runs table.
const sourceSeparator = "\n"

// RecordRun stores the summary of a processing pass.
func (s *SQLiteStorage) RecordRun(ctx context.Context, run *model.Run) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRun(run); err != nil {
		return err
	}

	return withWriteRetry(ctx, func() error {
		return s.insertRun(ctx, run)
	})
}

func (s *SQLiteStorage) insertRun(ctx context.Context, run *model.Run) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, sources, transactions, suppressed, cycles, skipped, unmatched)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.StartedAt.UTC(),
		strings.Join(run.Sources, sourceSeparator),
		run.Transactions,
		run.Suppressed,
		run.Cycles,
		run.Skipped,
		run.Unmatched,
	)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *SQLiteStorage) RecentRuns(ctx context.Context, limit int) ([]model.Run, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, sources, transactions, suppressed, cycles, skipped, unmatched
		FROM runs
		ORDER BY started_at DESC, id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []model.Run
	for rows.Next() {
		var (
			run     model.Run
			sources string
		)
		if err := rows.Scan(
			&run.ID,
			&run.StartedAt,
			&sources,
			&run.Transactions,
			&run.Suppressed,
			&run.Cycles,
			&run.Skipped,
			&run.Unmatched,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.StartedAt = run.StartedAt.UTC()
		if sources != "" {
			run.Sources = strings.Split(sources, sourceSeparator)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return runs, nil
}
