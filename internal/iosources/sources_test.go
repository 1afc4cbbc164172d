package iosources

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ecoclim/pixlink/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validYAML = `
climate_sources:
  - id: 1
    name: prism
    kind: remote
    temporal: monthly
    service_url: https://img.example.org/v1
    collection: prism/monthly
    resolution_m: 4000
    year_start: 1990
    year_end: 2000
    grid:
      xmin: -125.0
      ymin: 24.0
      dx: 0.05
      dy: 0.05
      nx: 100
      ny: 100
      srid: 4326
    variables:
      - name: ppt
        scale: 1

layers:
  - name: surveys
    path: /data/surveys.shp
    id_field: OBS_ID
`

func writeSources(t *testing.T, homeDir, content string) {
	t.Helper()
	dir := filepath.Join(homeDir, ".config", "pixlink")
	require.NoError(t, os.MkdirAll(dir, 0755))
	path := filepath.Join(dir, "sources.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoad_Valid(t *testing.T) {
	tmpDir := t.TempDir()
	writeSources(t, tmpDir, validYAML)

	cfg := config.New()
	cfg.HomeDir = tmpDir

	res, err := New(cfg).Load()
	require.NoError(t, err)

	require.Len(t, res.ClimateSources, 1)
	src := res.ClimateSources[0]
	assert.Equal(t, "prism", src.Name)
	assert.Equal(t, 100, src.Grid.Nx)
	require.Len(t, src.Variables, 1)
	assert.Equal(t, "ppt", src.Variables[0].Name)

	require.Len(t, res.Layers, 1)
	assert.Equal(t, "surveys", res.Layers[0].Name)
}

func TestLoad_MissingFile(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := config.New()
	cfg.HomeDir = tmpDir

	_, err := New(cfg).Load()
	assert.Error(t, err)
}

func TestLoad_InvalidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	// Remote source without service_url fails validation.
	writeSources(t, tmpDir, `
climate_sources:
  - id: 1
    name: broken
    kind: remote
    temporal: monthly
    year_start: 1990
    year_end: 2000
    grid: {xmin: 0, ymin: 0, dx: 1, dy: 1, nx: 10, ny: 10}
    variables:
      - name: ppt
`)

	cfg := config.New()
	cfg.HomeDir = tmpDir

	_, err := New(cfg).Load()
	assert.Error(t, err)
}

func TestLoad_MalformedYAML(t *testing.T) {
	tmpDir := t.TempDir()
	writeSources(t, tmpDir, "climate_sources: [broken")

	cfg := config.New()
	cfg.HomeDir = tmpDir

	_, err := New(cfg).Load()
	assert.Error(t, err)
}
