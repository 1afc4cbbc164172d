package iofs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestEnsureDirs_CreatesDirectories verifies all required
// directories are created.
func TestEnsureDirs_CreatesDirectories(t *testing.T) {
	tmpDir := t.TempDir()

	err := EnsureDirs(tmpDir)
	require.NoError(t, err)

	configDir := filepath.Join(tmpDir, ".config", "pixlink")
	info, err := os.Stat(configDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir(),
		"Config directory should exist")

	cacheDir := filepath.Join(tmpDir, ".cache", "pixlink")
	info, err = os.Stat(cacheDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir(),
		"Cache directory should exist")

	logDir := filepath.Join(tmpDir, ".local", "share", "pixlink",
		"logs")
	info, err = os.Stat(logDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir(),
		"Log directory should exist")
}

// TestEnsureDirs_Idempotent verifies multiple calls work.
func TestEnsureDirs_Idempotent(t *testing.T) {
	tmpDir := t.TempDir()

	err := EnsureDirs(tmpDir)
	require.NoError(t, err)

	err = EnsureDirs(tmpDir)
	require.NoError(t, err)
}

// TestEnsureExtractDir verifies the per-source extract directory
// is created under the cache directory.
func TestEnsureExtractDir(t *testing.T) {
	tmpDir := t.TempDir()

	err := EnsureExtractDir(tmpDir, "prism")
	require.NoError(t, err)

	dir := filepath.Join(tmpDir, ".cache", "pixlink", "extract",
		"prism")
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

// TestTouchDir_ExistingDirectory verifies existing directory
// is not modified.
func TestTouchDir_ExistingDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	existingDir := filepath.Join(tmpDir, "existing")

	err := os.MkdirAll(existingDir, 0755)
	require.NoError(t, err)

	err = touchDir(existingDir)
	require.NoError(t, err)

	info, err := os.Stat(existingDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

// TestEnsureConfigFile_CreatesFile verifies config file
// is created from the embedded template.
func TestEnsureConfigFile_CreatesFile(t *testing.T) {
	tmpDir := t.TempDir()

	err := EnsureDirs(tmpDir)
	require.NoError(t, err)

	err = EnsureConfigFile(tmpDir)
	require.NoError(t, err)

	configPath := filepath.Join(tmpDir, ".config", "pixlink",
		"config.yaml")
	content, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Equal(t, ConfigYAML, string(content),
		"Config file content should match embedded template")
}

// TestEnsureConfigFile_Idempotent verifies existing file
// is not overwritten.
func TestEnsureConfigFile_Idempotent(t *testing.T) {
	tmpDir := t.TempDir()

	err := EnsureDirs(tmpDir)
	require.NoError(t, err)

	err = EnsureConfigFile(tmpDir)
	require.NoError(t, err)

	configPath := filepath.Join(tmpDir, ".config", "pixlink",
		"config.yaml")

	customContent := "# Custom config\ndatabase:\n  host: myhost"
	err = os.WriteFile(configPath, []byte(customContent), 0644)
	require.NoError(t, err)

	err = EnsureConfigFile(tmpDir)
	require.NoError(t, err)

	content, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Equal(t, customContent, string(content),
		"Existing config file should not be overwritten")
}

// TestEnsureSourcesFile_CreatesFile verifies sources file
// is created from the embedded template.
func TestEnsureSourcesFile_CreatesFile(t *testing.T) {
	tmpDir := t.TempDir()

	err := EnsureDirs(tmpDir)
	require.NoError(t, err)

	err = EnsureSourcesFile(tmpDir)
	require.NoError(t, err)

	sourcesPath := filepath.Join(tmpDir, ".config", "pixlink",
		"sources.yaml")
	content, err := os.ReadFile(sourcesPath)
	require.NoError(t, err)
	assert.Equal(t, SourcesYAML, string(content),
		"Sources file content should match embedded template")
}

// TestEnsureSourcesFile_Idempotent verifies existing file
// is not overwritten.
func TestEnsureSourcesFile_Idempotent(t *testing.T) {
	tmpDir := t.TempDir()

	err := EnsureDirs(tmpDir)
	require.NoError(t, err)

	err = EnsureSourcesFile(tmpDir)
	require.NoError(t, err)

	sourcesPath := filepath.Join(tmpDir, ".config", "pixlink",
		"sources.yaml")

	customContent := "# Custom sources\nclimate_sources: []"
	err = os.WriteFile(sourcesPath, []byte(customContent), 0644)
	require.NoError(t, err)

	err = EnsureSourcesFile(tmpDir)
	require.NoError(t, err)

	content, err := os.ReadFile(sourcesPath)
	require.NoError(t, err)
	assert.Equal(t, customContent, string(content),
		"Existing sources file should not be overwritten")
}

// TestEmbeddedTemplates verifies the embedded templates carry the
// sections the loaders expect.
func TestEmbeddedTemplates(t *testing.T) {
	assert.Contains(t, ConfigYAML, "database")
	assert.Contains(t, ConfigYAML, "extract")
	assert.Contains(t, ConfigYAML, "log")

	assert.Contains(t, SourcesYAML, "climate_sources")
	assert.Contains(t, SourcesYAML, "layers")
	assert.Contains(t, SourcesYAML, "grid")
}
