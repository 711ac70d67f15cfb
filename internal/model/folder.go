// Package model defines the core domain types shared across the application.
package model

import (
	"fmt"
	"strings"
	"time"
)

// FolderConfig describes a single watched folder and its naming options.
// The path is the unique key; everything else is policy applied to files
// discovered underneath it.
type FolderConfig struct {
	Path              string `mapstructure:"path" yaml:"path"`
	Enabled           bool   `mapstructure:"enabled" yaml:"enabled"`
	IncludeDate       bool   `mapstructure:"include_date" yaml:"include_date"`
	IncludeNames      bool   `mapstructure:"include_names" yaml:"include_names"`
	Preset            string `mapstructure:"preset" yaml:"preset"`
	CustomInstruction string `mapstructure:"custom_instruction" yaml:"custom_instruction"`
	OutputFolder      string `mapstructure:"output_folder" yaml:"output_folder"`
}

// Validate checks the folder configuration for structural problems.
func (f FolderConfig) Validate() error {
	if strings.TrimSpace(f.Path) == "" {
		return fmt.Errorf("folder path is required")
	}
	if f.Preset != "" {
		if _, ok := presetLabels[strings.ToLower(f.Preset)]; !ok && strings.ToLower(f.Preset) != PresetAuto {
			return fmt.Errorf("unknown label preset: %s", f.Preset)
		}
	}
	return nil
}

// Snapshot returns a value copy of the configuration. Jobs hold snapshots
// taken at enqueue time so a concurrent config edit never alters work
// already in flight.
func (f FolderConfig) Snapshot() FolderConfig {
	return f
}

// Instruction returns the trimmed custom classification instruction,
// or the empty string when none is configured.
func (f FolderConfig) Instruction() string {
	return strings.TrimSpace(f.CustomInstruction)
}

// FileEvent is a single file-creation observation from a watch session.
type FileEvent struct {
	Path       string
	Discovered time.Time
}

// PendingJob pairs a file path with the folder configuration snapshot that
// was current when the event fired its debounce timer.
type PendingJob struct {
	Path   string
	Folder FolderConfig
}
