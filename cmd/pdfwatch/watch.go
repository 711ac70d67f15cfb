package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdfwatch/pdfwatch/internal/common"
	"github.com/pdfwatch/pdfwatch/internal/config"
	"github.com/pdfwatch/pdfwatch/internal/model"
	"github.com/pdfwatch/pdfwatch/internal/singleton"
	"github.com/pdfwatch/pdfwatch/internal/watcher"
)

func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watch configured folders and process new PDFs",
		Long: `Watch every enabled folder for new PDF files and process each one
automatically: classify, extract metadata, and rename in place.

Only one watch instance runs at a time. Starting a second one signals
the running instance and exits.`,
		RunE: runWatch,
	}
}

func runWatch(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	configDir, err := config.Dir()
	if err != nil {
		return err
	}

	guard, err := singleton.Acquire(configDir, slog.Default())
	if err != nil {
		if errors.Is(err, common.ErrSingletonConflict) {
			slog.Info("pdfwatch is already running, signalled the existing instance")
			return nil
		}
		return err
	}
	defer guard.Release()

	folders, err := config.LoadFolders()
	if err != nil {
		return err
	}
	if len(folders) == 0 {
		return fmt.Errorf("no folders configured, run 'pdfwatch folders add <path>' first")
	}

	history, err := openHistory()
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer func() {
		if closeErr := history.Close(); closeErr != nil {
			slog.Warn("Failed to close history database", "error", closeErr)
		}
	}()
	if err := history.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate history database: %w", err)
	}

	proc, err := buildPipeline(history)
	if err != nil {
		return err
	}

	coordinator := watcher.New(func(job model.PendingJob) {
		proc.Process(context.Background(), job)
	}, slog.Default())

	if err := coordinator.Start(folders); err != nil {
		return err
	}
	defer coordinator.Stop()

	// Folder edits land in the config file ('pdfwatch folders ...' runs
	// in a separate process); reload and reconcile the session table.
	viper.OnConfigChange(func(fsnotify.Event) {
		updated, loadErr := config.LoadFolders()
		if loadErr != nil {
			slog.Warn("Ignoring invalid folder configuration", "error", loadErr)
			return
		}
		slog.Info("Configuration changed, reconciling watched folders", "folders", len(updated))
		coordinator.Reconcile(updated)
	})
	viper.WatchConfig()

	// Later launches poke this loop over the loopback port.
	go guard.Serve(func() {
		slog.Info("👋 Another launch requested attention; still watching")
	})

	slog.Info("🔍 Watching for new PDF files. Press Ctrl+C to stop.")
	<-ctx.Done()

	return nil
}
