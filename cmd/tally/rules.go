package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/tally/internal/cli"
	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/pattern"
	"github.com/Veraticus/tally/internal/storage"
)

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage merchant category rules",
		Long: `Merchant rules map a normalized merchant name to a category. A rule always
wins over the built-in patterns on the next run.`,
	}

	cmd.AddCommand(listRulesCmd())
	cmd.AddCommand(addRuleCmd())
	cmd.AddCommand(removeRuleCmd())
	cmd.AddCommand(showRuleCmd())

	return cmd
}

func listRulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List merchant rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			byCategory, _ := cmd.Flags().GetBool("by-category")
			return withStorage(cmd.Context(), func(db *storage.SQLiteStorage) error {
				if byCategory {
					return listRuleCounts(cmd.Context(), db, cmd.OutOrStdout())
				}
				return listRules(cmd.Context(), db, cmd.OutOrStdout())
			})
		},
	}
	cmd.Flags().Bool("by-category", false, "show how many rules point at each category")
	return cmd
}

func addRuleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <merchant> <category>",
		Short: "Add or replace a merchant rule",
		Example: `  tally rules add "STARBUCKS #123" Coffee/Dining
  tally rules add "joe's pizza" Dining`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStorage(cmd.Context(), func(db *storage.SQLiteStorage) error {
				return addRule(cmd.Context(), db, args[0], args[1], cmd.OutOrStdout())
			})
		},
	}
}

func removeRuleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <merchant>",
		Short: "Remove a merchant rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStorage(cmd.Context(), func(db *storage.SQLiteStorage) error {
				return removeRule(cmd.Context(), db, args[0], cmd.OutOrStdout())
			})
		},
	}
}

func showRuleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <merchant>",
		Short: "Show the rule a merchant description would hit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStorage(cmd.Context(), func(db *storage.SQLiteStorage) error {
				return showRule(cmd.Context(), db, args[0], cmd.OutOrStdout())
			})
		},
	}
}

// withStorage opens the rule database for the duration of fn.
func withStorage(ctx context.Context, fn func(db *storage.SQLiteStorage) error) error {
	cfg, err := currentConfig()
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
	return fn(db)
}

func listRules(ctx context.Context, db *storage.SQLiteStorage, w io.Writer) error {
	rules, err := db.LoadRules(ctx)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, renderRules(rules))
	return err
}

func listRuleCounts(ctx context.Context, db *storage.SQLiteStorage, w io.Writer) error {
	counts, err := db.CountRulesByCategory(ctx)
	if err != nil {
		return err
	}
	if len(counts) == 0 {
		_, err = fmt.Fprintln(w, cli.FormatInfo("No merchant rules yet"))
		return err
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([][]string, len(names))
	for i, name := range names {
		rows[i] = []string{name, strconv.Itoa(counts[name])}
	}
	_, err = fmt.Fprintln(w, cli.RenderTable([]string{"CATEGORY", "RULES"}, rows))
	return err
}

func addRule(ctx context.Context, db *storage.SQLiteStorage, merchant, category string, w io.Writer) error {
	store, err := loadRuleStore(ctx, db)
	if err != nil {
		return err
	}

	if err := store.Correct(merchant, category); err != nil {
		return common.NewUserError("invalid rule", err)
	}
	warnUnknownCategory(category)

	if err := store.Save(ctx, db); err != nil {
		return err
	}

	key := pattern.NormalizeMerchantKey(merchant)
	_, err = fmt.Fprintln(w, cli.FormatSuccess(fmt.Sprintf("%q now maps to %s", key, strings.TrimSpace(category))))
	return err
}

func removeRule(ctx context.Context, db *storage.SQLiteStorage, merchant string, w io.Writer) error {
	store, err := loadRuleStore(ctx, db)
	if err != nil {
		return err
	}

	if !store.Remove(merchant) {
		return common.NewUserError(fmt.Sprintf("no rule for %q", pattern.NormalizeMerchantKey(merchant)), common.ErrNotFound)
	}
	if err := store.Save(ctx, db); err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, cli.FormatSuccess(fmt.Sprintf("Removed rule for %q", pattern.NormalizeMerchantKey(merchant))))
	return err
}

func showRule(ctx context.Context, db *storage.SQLiteStorage, merchant string, w io.Writer) error {
	key := pattern.NormalizeMerchantKey(merchant)
	if key == "" {
		return common.NewUserError(fmt.Sprintf("%q has no merchant key", merchant), nil)
	}

	rule, err := db.GetRule(ctx, key)
	if errors.Is(err, common.ErrNotFound) {
		_, err = fmt.Fprintln(w, cli.FormatInfo(fmt.Sprintf("No rule for %q", key)))
		return err
	}
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, renderRules([]model.Rule{*rule}))
	return err
}

// warnUnknownCategory flags rules pointing at a category the registry does not define.
func warnUnknownCategory(category string) {
	cfg, err := currentConfig()
	if err != nil {
		return
	}
	reg, err := loadRegistry(cfg)
	if err != nil {
		return
	}
	if _, ok := reg.Category(strings.TrimSpace(category)); !ok {
		slog.Warn("Category is not defined in the pattern registry", "category", category, "registry", reg.Source())
	}
}
