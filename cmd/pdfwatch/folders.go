package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdfwatch/pdfwatch/internal/config"
	"github.com/pdfwatch/pdfwatch/internal/model"
)

func foldersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "folders",
		Short: "Manage watched folders",
		Long:  `List, add, remove, and configure the folders the watcher monitors.`,
	}

	cmd.AddCommand(foldersListCmd())
	cmd.AddCommand(foldersAddCmd())
	cmd.AddCommand(foldersSetCmd())
	cmd.AddCommand(foldersRemoveCmd())
	cmd.AddCommand(foldersEnableCmd(true))
	cmd.AddCommand(foldersEnableCmd(false))

	return cmd
}

func foldersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List watched folders",
		RunE: func(_ *cobra.Command, _ []string) error {
			folders, err := config.LoadFolders()
			if err != nil {
				return err
			}
			if len(folders) == 0 {
				slog.Info("No folders configured. Add one with 'pdfwatch folders add <path>'")
				return nil
			}
			for _, f := range folders {
				state := "enabled"
				if !f.Enabled {
					state = "disabled"
				}
				slog.Info("folder",
					"path", f.Path,
					"state", state,
					"preset", presetOrAuto(f.Preset),
					"include_date", f.IncludeDate,
					"include_names", f.IncludeNames,
					"output", f.OutputFolder)
			}
			return nil
		},
	}
}

func foldersAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <path>",
		Short: "Add a folder to watch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := filepath.Abs(config.ExpandPath(args[0]))
			if err != nil {
				return err
			}
			info, err := os.Stat(path)
			if err != nil || !info.IsDir() {
				return fmt.Errorf("not a directory: %s", path)
			}

			folders, err := config.LoadFolders()
			if err != nil {
				return err
			}
			if _, exists := config.FindFolder(folders, path); exists {
				return fmt.Errorf("folder already configured: %s", path)
			}

			includeDate, _ := cmd.Flags().GetBool("include-date")
			includeNames, _ := cmd.Flags().GetBool("include-names")
			preset, _ := cmd.Flags().GetString("preset")
			instruction, _ := cmd.Flags().GetString("instruction")
			output, _ := cmd.Flags().GetString("output")

			folder := model.FolderConfig{
				Path:              path,
				Enabled:           true,
				IncludeDate:       includeDate,
				IncludeNames:      includeNames,
				Preset:            preset,
				CustomInstruction: instruction,
				OutputFolder:      config.ExpandPath(output),
			}
			if err := folder.Validate(); err != nil {
				return err
			}

			folders = append(folders, folder)
			if err := config.SaveFolders(folders); err != nil {
				return err
			}
			slog.Info("✅ Folder added", "path", path)
			return nil
		},
	}

	cmd.Flags().Bool("include-date", false, "append today's date to filenames")
	cmd.Flags().Bool("include-names", false, "append the extracted addressee to filenames")
	cmd.Flags().String("preset", model.PresetAuto, "label preset (auto, business, legal, realestate)")
	cmd.Flags().String("instruction", "", "extra classification instruction")
	cmd.Flags().String("output", "", "move renamed files to this folder")

	return cmd
}

func foldersSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <path>",
		Short: "Change options on a watched folder",
		Long: `Update naming options for an already configured folder. Only flags
given on the command line change; everything else keeps its value.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.ExpandPath(args[0])
			folders, err := config.LoadFolders()
			if err != nil {
				return err
			}

			idx := -1
			for i := range folders {
				if samePath(folders[i].Path, path) {
					idx = i
					break
				}
			}
			if idx < 0 {
				return fmt.Errorf("folder not configured: %s", path)
			}

			f := &folders[idx]
			if cmd.Flags().Changed("include-date") {
				f.IncludeDate, _ = cmd.Flags().GetBool("include-date")
			}
			if cmd.Flags().Changed("include-names") {
				f.IncludeNames, _ = cmd.Flags().GetBool("include-names")
			}
			if cmd.Flags().Changed("preset") {
				f.Preset, _ = cmd.Flags().GetString("preset")
			}
			if cmd.Flags().Changed("instruction") {
				f.CustomInstruction, _ = cmd.Flags().GetString("instruction")
			}
			if cmd.Flags().Changed("output") {
				output, _ := cmd.Flags().GetString("output")
				f.OutputFolder = config.ExpandPath(output)
			}
			if err := f.Validate(); err != nil {
				return err
			}

			if err := config.SaveFolders(folders); err != nil {
				return err
			}
			slog.Info("✅ Folder updated", "path", f.Path)
			return nil
		},
	}

	cmd.Flags().Bool("include-date", false, "append today's date to filenames")
	cmd.Flags().Bool("include-names", false, "append the extracted addressee to filenames")
	cmd.Flags().String("preset", model.PresetAuto, "label preset (auto, business, legal, realestate)")
	cmd.Flags().String("instruction", "", "extra classification instruction")
	cmd.Flags().String("output", "", "move renamed files to this folder")

	return cmd
}

func foldersRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <path>",
		Short: "Stop watching a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			path := config.ExpandPath(args[0])
			folders, err := config.LoadFolders()
			if err != nil {
				return err
			}

			kept := folders[:0]
			removed := false
			for _, f := range folders {
				if samePath(f.Path, path) {
					removed = true
					continue
				}
				kept = append(kept, f)
			}
			if !removed {
				return fmt.Errorf("folder not configured: %s", path)
			}

			if err := config.SaveFolders(kept); err != nil {
				return err
			}
			slog.Info("Folder removed", "path", path)
			return nil
		},
	}
}

func foldersEnableCmd(enable bool) *cobra.Command {
	use, short := "enable <path>", "Enable a watched folder"
	if !enable {
		use, short = "disable <path>", "Disable a watched folder without removing it"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			path := config.ExpandPath(args[0])
			folders, err := config.LoadFolders()
			if err != nil {
				return err
			}

			found := false
			for i := range folders {
				if samePath(folders[i].Path, path) {
					folders[i].Enabled = enable
					found = true
				}
			}
			if !found {
				return fmt.Errorf("folder not configured: %s", path)
			}

			if err := config.SaveFolders(folders); err != nil {
				return err
			}
			slog.Info("Folder updated", "path", path, "enabled", enable)
			return nil
		},
	}
}

func samePath(a, b string) bool {
	aa, errA := filepath.Abs(a)
	bb, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return aa == bb
}

func presetOrAuto(preset string) string {
	if preset == "" {
		return model.PresetAuto
	}
	return preset
}
