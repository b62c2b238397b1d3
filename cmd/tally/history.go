package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Veraticus/tally/internal/storage"
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent processing runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			return withStorage(cmd.Context(), func(db *storage.SQLiteStorage) error {
				return showHistory(cmd.Context(), db, limit, cmd.OutOrStdout())
			})
		},
	}
	cmd.Flags().IntP("limit", "n", 10, "number of runs to show")
	return cmd
}

func showHistory(ctx context.Context, db *storage.SQLiteStorage, limit int, w io.Writer) error {
	runs, err := db.RecentRuns(ctx, limit)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, renderRuns(runs))
	return err
}
