package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCreateCmd(t *testing.T) {
	cmd := getCreateCmd()
	require.NotNil(t, cmd)
	assert.Equal(t, "create", cmd.Use)
	assert.NotNil(t, cmd.RunE)

	forceFlag := cmd.Flags().Lookup("force")
	require.NotNil(t, forceFlag, "--force flag should exist")
	assert.Equal(t, "f", forceFlag.Shorthand)
}

func TestGetMigrateCmd(t *testing.T) {
	cmd := getMigrateCmd()
	require.NotNil(t, cmd)
	assert.Equal(t, "migrate", cmd.Use)
	assert.NotNil(t, cmd.RunE)
}

func TestGetPixmapCmd(t *testing.T) {
	cmd := getPixmapCmd()
	require.NotNil(t, cmd)
	assert.Equal(t, "pixmap", cmd.Use)
	assert.NotNil(t, cmd.RunE)

	for _, name := range []string{"sources", "layers", "jobs"} {
		assert.NotNil(t, cmd.Flags().Lookup(name),
			"--%s flag should exist", name)
	}
}

func TestGetExtractCmd(t *testing.T) {
	cmd := getExtractCmd()
	require.NotNil(t, cmd)
	assert.Equal(t, "extract", cmd.Use)
	assert.NotNil(t, cmd.RunE)

	for _, name := range []string{"sources", "year-start", "year-end"} {
		assert.NotNil(t, cmd.Flags().Lookup(name),
			"--%s flag should exist", name)
	}
}

func TestGetReshapeCmd(t *testing.T) {
	cmd := getReshapeCmd()
	require.NotNil(t, cmd)
	assert.Equal(t, "reshape", cmd.Use)
	assert.NotNil(t, cmd.RunE)
	assert.NotNil(t, cmd.Flags().Lookup("sources"))
}

func TestGetAggregateCmd(t *testing.T) {
	cmd := getAggregateCmd()
	require.NotNil(t, cmd)
	assert.Equal(t, "aggregate", cmd.Use)
	assert.Contains(t, cmd.Aliases, "aggr")
	assert.NotNil(t, cmd.RunE)
}

func TestRootCmd(t *testing.T) {
	require.NotNil(t, rootCmd)
	assert.Equal(t, "pixlink", rootCmd.Use)

	// Database flags are shared by every subcommand.
	for _, name := range []string{
		"host", "port", "user", "password", "database", "ssl-mode",
	} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name),
			"--%s flag should exist", name)
	}

	// All pipeline phases are registered.
	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Use)
	}
	for _, want := range []string{
		"create", "migrate", "pixmap", "extract", "reshape", "aggregate",
	} {
		assert.Contains(t, names, want)
	}
}
