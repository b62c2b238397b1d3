package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/Veraticus/tally/internal/cli"
	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/config"
	"github.com/Veraticus/tally/internal/ingest"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/ofx"
	"github.com/Veraticus/tally/internal/pattern"
	"github.com/Veraticus/tally/internal/rules"
	"github.com/Veraticus/tally/internal/storage"
)

// currentConfig returns the loaded configuration, falling back to defaults
// when a command runs without the root pre-run (as in tests).
func currentConfig() (*config.Config, error) {
	if appConfig != nil {
		return appConfig, nil
	}
	v := newDefaultViper()
	return config.Load(v)
}

func newDefaultViper() *viper.Viper {
	v := viper.New()
	config.SetDefaults(v)
	return v
}

// initStorage opens and migrates the rule database.
func initStorage(ctx context.Context, cfg *config.Config) (*storage.SQLiteStorage, error) {
	dbPath := cfg.Rules.Database
	if dbPath == "" {
		dbPath = config.ExpandPath(config.DefaultDatabasePath)
	}

	store, err := storage.Open(ctx, dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open rule database: %w", err)
	}
	return store, nil
}

// loadRuleStore restores the persisted rules into a fresh store.
func loadRuleStore(ctx context.Context, db *storage.SQLiteStorage) (*rules.Store, error) {
	store := rules.NewStore()
	if err := store.Load(ctx, db); err != nil {
		return nil, err
	}
	return store, nil
}

func loadRegistry(cfg *config.Config) (*pattern.Registry, error) {
	reg, err := pattern.Load(cfg.Patterns.File)
	if err != nil {
		return nil, common.NewUserError("invalid category patterns", err)
	}
	return reg, nil
}

// expandInputs resolves globs. Arguments that match nothing are warned about
// and skipped.
func expandInputs(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", arg, err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(arg); err == nil {
				files = append(files, arg)
			} else {
				slog.Warn("No files found matching pattern", "pattern", arg)
			}
			continue
		}
		files = append(files, matches...)
	}

	if len(files) == 0 {
		return nil, common.NewUserError("no input files found", nil)
	}
	return files, nil
}

// readStatements parses every file in order, choosing the reader by extension.
func readStatements(ctx context.Context, files []string, progress *cli.Progress) ([]model.Transaction, error) {
	parser := ofx.NewParser()

	var all []model.Transaction
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		txns, err := readStatement(ctx, parser, path)
		if err != nil {
			return nil, err
		}
		slog.Debug("Read statement", "file", filepath.Base(path), "transactions", len(txns))
		all = append(all, txns...)
		progress.Step()
	}
	progress.Finish()
	return all, nil
}

func readStatement(ctx context.Context, parser *ofx.Parser, path string) ([]model.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			slog.Warn("Failed to close input file", "file", path, "error", cerr)
		}
	}()

	return parseStatement(ctx, parser, f, path)
}

func parseStatement(ctx context.Context, parser *ofx.Parser, r io.Reader, path string) ([]model.Transaction, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ofx", ".qfx":
		txns, err := parser.ParseFile(ctx, r)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return txns, nil
	case ".csv":
		return ingest.ReadCSV(r, filepath.Base(path))
	default:
		return nil, common.NewUserError(fmt.Sprintf("unsupported file type %q (want .ofx, .qfx or .csv)", filepath.Base(path)), nil)
	}
}
