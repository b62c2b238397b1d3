package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Veraticus/tally/internal/cli"
	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/config"
	"github.com/Veraticus/tally/internal/engine"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/report"
)

type processOptions struct {
	out      string
	files    []string
	summary  bool
	reviews  bool
	progress bool
	record   bool
}

func processCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process [files...]",
		Short: "Categorize and deduplicate statement files",
		Long: `Read OFX, QFX or CSV statements, categorize every transaction, fold
duplicate imports together and link card purchases to their payments.

The annotated transactions are written as CSV. Suppressed duplicates are left
out of the export.

Examples:
  # Export one statement to stdout
  tally process ~/Downloads/chase_jan.qfx

  # Combine overlapping exports and show totals
  tally process ~/Downloads/*.qfx ~/Downloads/ally.csv --out 2024.csv --summary`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := currentConfig()
			if err != nil {
				return err
			}

			files, err := expandInputs(args)
			if err != nil {
				return err
			}

			opts := processOptions{files: files, record: true, progress: true}
			opts.out, _ = cmd.Flags().GetString("out")
			opts.summary, _ = cmd.Flags().GetBool("summary")
			opts.reviews, _ = cmd.Flags().GetBool("reviews")
			noProgress, _ := cmd.Flags().GetBool("no-progress")
			opts.progress = !noProgress

			return runProcess(cmd.Context(), cfg, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringP("out", "o", "", "write CSV to this file instead of stdout")
	cmd.Flags().BoolP("summary", "s", false, "print category totals after processing")
	cmd.Flags().Bool("reviews", false, "list transactions worth a second look")
	cmd.Flags().Bool("no-progress", false, "hide the progress bar")

	return cmd
}

func runProcess(ctx context.Context, cfg *config.Config, opts processOptions, stdout, stderr io.Writer) error {
	engineCfg, err := cfg.EngineConfig()
	if err != nil {
		return err
	}
	reg, err := loadRegistry(cfg)
	if err != nil {
		return err
	}

	db, err := initStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			slog.Warn("Failed to close rule database", "error", cerr)
		}
	}()

	store, err := loadRuleStore(ctx, db)
	if err != nil {
		return err
	}

	pipeline, err := engine.NewPipeline(reg, store, engineCfg)
	if err != nil {
		return err
	}

	var progress *cli.Progress
	if opts.progress {
		progress = cli.NewProgress(stderr, len(opts.files), "Reading statements...")
	}
	started := time.Now()
	txns, err := readStatements(ctx, opts.files, progress)
	if err != nil {
		return err
	}

	batch, err := pipeline.Run(ctx, txns)
	if err != nil {
		return err
	}

	if err := exportBatch(batch, opts.out, stdout); err != nil {
		return err
	}

	summary := report.Summarize(batch, reg)
	if opts.record {
		run := newRun(started, opts.files, summary, len(batch.Skips))
		if err := db.RecordRun(ctx, run); err != nil {
			// History is best effort.
			common.LogWarn(err, "Failed to record run", common.Fields{"run_id": run.ID})
		}
	}

	if opts.summary {
		if _, err := fmt.Fprintln(stderr, renderSummary(summary)); err != nil {
			return err
		}
	}
	if opts.reviews {
		if _, err := fmt.Fprintln(stderr, renderReviews(report.SuggestReviews(batch))); err != nil {
			return err
		}
	}
	for _, s := range batch.Skips {
		slog.Warn("Skipped transaction", "raw_id", s.RawID, "reason", s.Reason)
	}
	return nil
}

func exportBatch(batch *engine.Batch, out string, stdout io.Writer) error {
	if out == "" || out == "-" {
		return report.WriteCSV(stdout, batch)
	}

	path := config.ExpandPath(out)
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := report.WriteCSV(f, batch); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}

	common.LogInfo("Wrote export", common.Fields{"file": path, "rows": len(batch.Kept())})
	return nil
}

func newRun(started time.Time, files []string, s report.Summary, skipped int) *model.Run {
	sources := make([]string, len(files))
	for i, f := range files {
		sources[i] = filepath.Base(f)
	}
	return &model.Run{
		ID:           uuid.NewString(),
		StartedAt:    started.UTC(),
		Sources:      sources,
		Transactions: s.Transactions,
		Suppressed:   s.Suppressed,
		Cycles:       s.CycleLinks,
		Skipped:      skipped,
		Unmatched:    s.Tiers[model.TierUnmatched],
	}
}
