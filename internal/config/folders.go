package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/pdfwatch/pdfwatch/internal/model"
)

// Dir returns the application configuration directory, creating the
// path string only (not the directory itself).
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "pdfwatch"), nil
}

// LoadFolders reads the watched folder list from the active config.
// Paths are tilde- and env-expanded; structural problems are errors.
func LoadFolders() ([]model.FolderConfig, error) {
	var folders []model.FolderConfig
	if err := viper.UnmarshalKey("folders", &folders); err != nil {
		return nil, fmt.Errorf("failed to parse folder configuration: %w", err)
	}

	for i := range folders {
		folders[i].Path = ExpandPath(folders[i].Path)
		folders[i].OutputFolder = ExpandPath(folders[i].OutputFolder)
		if err := folders[i].Validate(); err != nil {
			return nil, fmt.Errorf("folder %d: %w", i+1, err)
		}
	}
	return folders, nil
}

// SaveFolders writes the folder list back to the config file, creating
// the file on first save.
func SaveFolders(folders []model.FolderConfig) error {
	for i := range folders {
		if err := folders[i].Validate(); err != nil {
			return fmt.Errorf("folder %d: %w", i+1, err)
		}
	}

	viper.Set("folders", folders)
	err := viper.WriteConfig()
	if err == nil {
		return nil
	}

	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) || os.IsNotExist(err) {
		dir, dirErr := Dir()
		if dirErr != nil {
			return dirErr
		}
		if mkErr := os.MkdirAll(dir, 0o755); mkErr != nil {
			return fmt.Errorf("failed to create config directory: %w", mkErr)
		}
		return viper.WriteConfigAs(filepath.Join(dir, "config.yaml"))
	}
	return fmt.Errorf("failed to write config: %w", err)
}

// FindFolder returns the configured folder matching path, or false when
// it is not present. Matching ignores trailing separators.
func FindFolder(folders []model.FolderConfig, path string) (model.FolderConfig, bool) {
	want := strings.TrimRight(ExpandPath(path), string(os.PathSeparator))
	for _, f := range folders {
		if strings.TrimRight(f.Path, string(os.PathSeparator)) == want {
			return f, true
		}
	}
	return model.FolderConfig{}, false
}
