// Package rename performs collision-safe renames and cross-directory
// moves of processed PDFs.
package rename

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pdfwatch/pdfwatch/internal/common"
	"github.com/pdfwatch/pdfwatch/internal/model"
)

// Executor resolves the target directory and final collision-free path.
type Executor struct {
	logger *slog.Logger
}

// New creates an Executor.
func New(logger *slog.Logger) *Executor {
	return &Executor{logger: logger}
}

// Rename moves originalPath to "<baseName>.pdf" in the resolved target
// directory. On collision a numeric suffix starting at 2 is appended and
// incremented until the path is free; an existing file is never
// overwritten. Returns the final path.
func (e *Executor) Rename(originalPath, baseName string, folder model.FolderConfig) (string, error) {
	directory := filepath.Dir(originalPath)
	if out := folder.OutputFolder; out != "" {
		if info, err := os.Stat(out); err == nil && info.IsDir() {
			directory = out
		}
	}

	newPath := availablePath(directory, baseName)

	if directory != filepath.Dir(originalPath) {
		if err := moveFile(originalPath, newPath); err != nil {
			return "", fmt.Errorf("%w: %v", common.ErrRename, err)
		}
	} else {
		if err := os.Rename(originalPath, newPath); err != nil {
			return "", fmt.Errorf("%w: %v", common.ErrRename, err)
		}
	}

	e.logger.Info("file renamed",
		"from", filepath.Base(originalPath),
		"to", filepath.Base(newPath),
		"dir", directory)
	return newPath, nil
}

// availablePath finds the first free "<base>.pdf", "<base>_2.pdf", … path.
func availablePath(directory, baseName string) string {
	for counter := 1; ; counter++ {
		name := baseName + ".pdf"
		if counter > 1 {
			name = fmt.Sprintf("%s_%d.pdf", baseName, counter)
		}
		candidate := filepath.Join(directory, name)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}

// moveFile renames across directories, falling back to copy+remove when
// the rename crosses filesystems.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}
