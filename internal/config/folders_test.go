package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdfwatch/pdfwatch/internal/model"
)

func loadConfigYAML(t *testing.T, content string) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	viper.SetConfigFile(path)
	require.NoError(t, viper.ReadInConfig())
}

func TestLoadFolders(t *testing.T) {
	loadConfigYAML(t, `
folders:
  - path: /scan/in
    enabled: true
    include_date: true
    preset: business
  - path: /scan/legal
    enabled: false
    include_names: true
    preset: legal
    output_folder: /scan/out
`)

	folders, err := LoadFolders()
	require.NoError(t, err)
	require.Len(t, folders, 2)

	assert.Equal(t, "/scan/in", folders[0].Path)
	assert.True(t, folders[0].Enabled)
	assert.True(t, folders[0].IncludeDate)
	assert.Equal(t, "business", folders[0].Preset)

	assert.False(t, folders[1].Enabled)
	assert.True(t, folders[1].IncludeNames)
	assert.Equal(t, "/scan/out", folders[1].OutputFolder)
}

func TestLoadFolders_InvalidPreset(t *testing.T) {
	loadConfigYAML(t, `
folders:
  - path: /scan/in
    preset: banking
`)

	_, err := LoadFolders()
	assert.Error(t, err)
}

func TestLoadFolders_EmptyConfig(t *testing.T) {
	loadConfigYAML(t, "logging:\n  level: info\n")

	folders, err := LoadFolders()
	require.NoError(t, err)
	assert.Empty(t, folders)
}

func TestSaveFolders_RoundTrip(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: info\n"), 0o644))
	viper.SetConfigFile(path)
	require.NoError(t, viper.ReadInConfig())

	in := []model.FolderConfig{{
		Path:        "/scan/in",
		Enabled:     true,
		IncludeDate: true,
		Preset:      model.PresetBusiness,
	}}
	require.NoError(t, SaveFolders(in))

	// A fresh read sees the saved list.
	viper.Reset()
	viper.SetConfigFile(path)
	require.NoError(t, viper.ReadInConfig())

	out, err := LoadFolders()
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, in[0].Path, out[0].Path)
	assert.Equal(t, in[0].IncludeDate, out[0].IncludeDate)
	assert.Equal(t, in[0].Preset, out[0].Preset)
}

func TestSaveFolders_RejectsInvalid(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	err := SaveFolders([]model.FolderConfig{{Path: ""}})
	assert.Error(t, err)
}

func TestFindFolder(t *testing.T) {
	folders := []model.FolderConfig{
		{Path: "/scan/in", Enabled: true},
		{Path: "/scan/legal", Enabled: false},
	}

	got, ok := FindFolder(folders, "/scan/legal")
	require.True(t, ok)
	assert.Equal(t, "/scan/legal", got.Path)

	got, ok = FindFolder(folders, "/scan/in/")
	require.True(t, ok, "trailing separator ignored")
	assert.Equal(t, "/scan/in", got.Path)

	_, ok = FindFolder(folders, "/scan/other")
	assert.False(t, ok)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "scans"), ExpandPath("~/scans"))
	assert.Equal(t, home, ExpandPath("~"))
	assert.Equal(t, "", ExpandPath(""))
	assert.Equal(t, "/absolute/path", ExpandPath("/absolute/path"))

	t.Setenv("PDFWATCH_TEST_DIR", "/data")
	assert.Equal(t, "/data/in", ExpandPath("$PDFWATCH_TEST_DIR/in"))
}
