package rename

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdfwatch/pdfwatch/internal/model"
	"github.com/pdfwatch/pdfwatch/internal/testutil"
)

func writePDF(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o644))
	return path
}

func TestRename_InPlace(t *testing.T) {
	dir := t.TempDir()
	src := writePDF(t, dir, "scan001.pdf")

	e := New(testutil.DiscardLogger())
	got, err := e.Rename(src, "請求書_20250815", model.FolderConfig{Path: dir})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "請求書_20250815.pdf"), got)
	assert.FileExists(t, got)
	assert.NoFileExists(t, src)
}

func TestRename_CollisionSuffixes(t *testing.T) {
	dir := t.TempDir()
	e := New(testutil.DiscardLogger())

	writePDF(t, dir, "請求書.pdf")
	writePDF(t, dir, "請求書_2.pdf")

	src := writePDF(t, dir, "scan002.pdf")
	got, err := e.Rename(src, "請求書", model.FolderConfig{Path: dir})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "請求書_3.pdf"), got)
	assert.FileExists(t, filepath.Join(dir, "請求書.pdf"), "existing files untouched")
	assert.FileExists(t, filepath.Join(dir, "請求書_2.pdf"))
}

func TestRename_CustomOutputFolder(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()
	src := writePDF(t, inDir, "scan003.pdf")

	e := New(testutil.DiscardLogger())
	folder := model.FolderConfig{Path: inDir, OutputFolder: outDir}
	got, err := e.Rename(src, "納品書", folder)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(outDir, "納品書.pdf"), got)
	assert.FileExists(t, got)
	assert.NoFileExists(t, src)
}

func TestRename_MissingOutputFolderFallsBack(t *testing.T) {
	dir := t.TempDir()
	src := writePDF(t, dir, "scan004.pdf")

	e := New(testutil.DiscardLogger())
	folder := model.FolderConfig{Path: dir, OutputFolder: filepath.Join(dir, "does-not-exist")}
	got, err := e.Rename(src, "領収書", folder)
	require.NoError(t, err)

	// The configured output folder vanished; rename in place instead.
	assert.Equal(t, filepath.Join(dir, "領収書.pdf"), got)
}

func TestRename_SourceMissing(t *testing.T) {
	dir := t.TempDir()
	e := New(testutil.DiscardLogger())

	_, err := e.Rename(filepath.Join(dir, "gone.pdf"), "x", model.FolderConfig{Path: dir})
	assert.Error(t, err)
}
