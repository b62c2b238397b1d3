package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/tally/internal/cli"
	"github.com/Veraticus/tally/internal/config"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/pattern"
)

func patternsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "Inspect the category pattern registry",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List categories and duplicate signatures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := currentConfig()
			if err != nil {
				return err
			}
			reg, err := loadRegistry(cfg)
			if err != nil {
				return err
			}
			return listPatterns(reg, cmd.OutOrStdout())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate [file]",
		Short: "Check a pattern file without processing anything",
		Long: `Load a registry file and report the first configuration problem. Without an
argument the configured patterns.file is checked, or the built-in defaults.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = config.ExpandPath(args[0])
			} else {
				cfg, err := currentConfig()
				if err != nil {
					return err
				}
				path = cfg.Patterns.File
			}
			return validatePatterns(path, cmd.OutOrStdout())
		},
	})

	return cmd
}

func listPatterns(reg *pattern.Registry, w io.Writer) error {
	rows := make([][]string, 0, len(reg.Categories()))
	for _, c := range reg.Categories() {
		typ := string(c.Type)
		if typ == "" {
			typ = string(model.CategoryTypeExpense)
		}
		rows = append(rows, []string{c.Name, typ, strconv.Itoa(c.Priority), describePatterns(c.Patterns)})
	}
	categories := cli.RenderTable([]string{"CATEGORY", "TYPE", "PRIORITY", "PATTERNS"}, rows)

	sigRows := make([][]string, 0, len(reg.Signatures()))
	for _, s := range reg.Signatures() {
		sigRows = append(sigRows, []string{s.Name, string(s.Kind), s.Pattern})
	}
	signatures := cli.RenderTable([]string{"SIGNATURE", "KIND", "PATTERN"}, sigRows)

	_, err := fmt.Fprintln(w, cli.RenderBox(
		fmt.Sprintf("%s Patterns (%s)", cli.FolderIcon, reg.Source()),
		categories+"\n\n"+signatures,
	))
	return err
}

func describePatterns(patterns []model.CategoryPattern) string {
	parts := make([]string, len(patterns))
	for i, p := range patterns {
		kind := p.Kind
		if kind == "" {
			kind = model.PatternSubstring
		}
		if kind == model.PatternSubstring {
			parts[i] = p.Value
			continue
		}
		parts[i] = fmt.Sprintf("%s:%s", kind, p.Value)
	}
	return strings.Join(parts, ", ")
}

func validatePatterns(path string, w io.Writer) error {
	reg, err := pattern.Load(path)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, cli.FormatSuccess(fmt.Sprintf("%s: %d categories, %d duplicate signatures",
		reg.Source(), len(reg.Categories()), len(reg.Signatures()))))
	return err
}
