package main

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently processed files",
		RunE:  runHistory,
	}

	cmd.Flags().Int("limit", 20, "number of records to show")

	return cmd
}

func runHistory(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	limit, _ := cmd.Flags().GetInt("limit")

	store, err := openHistory()
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer func() { _ = store.Close() }()
	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate history database: %w", err)
	}

	records, err := store.Recent(ctx, limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		slog.Info("No processing history yet")
		return nil
	}

	for _, rec := range records {
		attrs := []any{
			"when", rec.ProcessedAt.Format("2006-01-02 15:04:05"),
			"file", filepath.Base(rec.OriginalPath),
			"outcome", rec.Outcome,
		}
		if rec.FinalPath != "" {
			attrs = append(attrs, "renamed_to", filepath.Base(rec.FinalPath))
		}
		if rec.Label != "" {
			attrs = append(attrs, "label", rec.Label)
		}
		if rec.Detail != "" {
			attrs = append(attrs, "detail", rec.Detail)
		}
		slog.Info("record", attrs...)
	}

	return nil
}
