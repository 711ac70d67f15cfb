package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdfwatch/pdfwatch/internal/config"
	"github.com/pdfwatch/pdfwatch/internal/model"
)

func processCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process <file.pdf> [file.pdf...]",
		Short: "Classify and rename PDF files once, without watching",
		Long: `Process one or more PDF files immediately using the same pipeline the
watcher runs. Folder options come from the configured folder containing
the file when one exists, otherwise from the flags.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runProcess,
	}

	cmd.Flags().Bool("include-date", false, "append today's date to the filename")
	cmd.Flags().Bool("include-names", false, "append the extracted addressee to the filename")
	cmd.Flags().String("preset", model.PresetAuto, "label preset (auto, business, legal, realestate)")
	cmd.Flags().String("instruction", "", "extra classification instruction")
	cmd.Flags().String("output", "", "move renamed files to this folder")

	return cmd
}

func runProcess(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	history, err := openHistory()
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer func() { _ = history.Close() }()
	if err := history.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate history database: %w", err)
	}

	proc, err := buildPipeline(history)
	if err != nil {
		return err
	}

	folders, err := config.LoadFolders()
	if err != nil {
		return err
	}

	for _, arg := range args {
		path, absErr := filepath.Abs(config.ExpandPath(arg))
		if absErr != nil {
			return absErr
		}
		if !strings.EqualFold(filepath.Ext(path), ".pdf") {
			return fmt.Errorf("not a PDF file: %s", arg)
		}

		folder, ok := config.FindFolder(folders, filepath.Dir(path))
		if !ok {
			folder = folderFromFlags(cmd, filepath.Dir(path))
		}
		if err := folder.Validate(); err != nil {
			return err
		}

		proc.Process(ctx, model.PendingJob{Path: path, Folder: folder})
	}

	return nil
}

// folderFromFlags builds an ad-hoc folder configuration for files
// outside any configured folder.
func folderFromFlags(cmd *cobra.Command, dir string) model.FolderConfig {
	includeDate, _ := cmd.Flags().GetBool("include-date")
	includeNames, _ := cmd.Flags().GetBool("include-names")
	preset, _ := cmd.Flags().GetString("preset")
	instruction, _ := cmd.Flags().GetString("instruction")
	output, _ := cmd.Flags().GetString("output")

	return model.FolderConfig{
		Path:              dir,
		Enabled:           true,
		IncludeDate:       includeDate,
		IncludeNames:      includeNames,
		Preset:            preset,
		CustomInstruction: instruction,
		OutputFolder:      config.ExpandPath(output),
	}
}
