// Package cmd implements the pixlink CLI: one subcommand per pipeline
// phase, sharing configuration bootstrap and database flags.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/ecoclim/pixlink/internal/ioconfig"
	"github.com/ecoclim/pixlink/internal/iofs"
	"github.com/ecoclim/pixlink/internal/iologger"
	"github.com/ecoclim/pixlink/pkg/config"
	app "github.com/ecoclim/pixlink/pkg/pixlink"
	"github.com/gnames/gn"
	"github.com/spf13/cobra"
)

var (
	homeDir string
	cfg     *config.Config
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Version: fmt.Sprintf("version: %s\nbuild:   %s", app.Version, app.Build),
	Use:     "pixlink",
	Short:   "pixlink links survey observations to climate raster values",
	Long: `pixlink manages the lifecycle of a survey-to-climate database:
it maps survey geometries onto climate raster grids, extracts per-pixel
time series in batches, reshapes them into a long analysis table and
aggregates coverage-weighted summaries per observation.

The pipeline runs as sequential phases, each safe to re-run:
  - create:    create the database schema
  - migrate:   update the schema without losing data
  - pixmap:    map survey geometries onto source grids
  - extract:   pull pixel values from raster sources, one file per year
  - reshape:   melt the per-year files into the long pixel_values table
  - aggregate: rebuild coverage-weighted observation summaries

Configuration precedence (highest to lowest):
  1. CLI flags (--host, --port, ...)
  2. Environment variables (PIXLINK_*)
  3. Config file (~/.config/pixlink/config.yaml)
  4. Built-in defaults

Climate sources and survey layers are described in
~/.config/pixlink/sources.yaml; both files are generated with documented
defaults on first run.`,
	PersistentPreRunE: bootstrap,
	SilenceErrors:     true,
	SilenceUsage:      true,
}

func bootstrap(cmd *cobra.Command, args []string) error {
	var err error
	homeDir, err = os.UserHomeDir()
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	if err = iofs.EnsureDirs(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	// Initialize logging with hardcoded defaults; reconfigured below
	// once the user's settings are known.
	defaultLog := config.LogConfig{
		Format:      "json",
		Level:       "info",
		Destination: "file",
	}
	if err = iologger.Init(config.LogDir(homeDir), defaultLog, false); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	if err = iofs.EnsureConfigFile(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}
	if err = iofs.EnsureSourcesFile(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	result, err := ioconfig.Load(homeDir)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}
	cfg = result.Config

	// CLI flags of the invoked subcommand win over file and env values.
	if _, err = ioconfig.BindFlags(cmd, cfg); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	// Reconfigure logging with the user's settings, appending so the
	// bootstrap entries survive.
	if err = iologger.Init(config.LogDir(homeDir), cfg.Log, true); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	slog.Info("Configuration loaded",
		"source", result.Source, "config_file", result.SourcePath)
	return nil
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Remove the automatic "pixlink version" prefix
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	// Override version flag to use -V
	rootCmd.Flags().BoolP("version", "V", false, "version for pixlink")

	addDatabaseFlags(rootCmd)

	rootCmd.AddCommand(getCreateCmd())
	rootCmd.AddCommand(getMigrateCmd())
	rootCmd.AddCommand(getPixmapCmd())
	rootCmd.AddCommand(getExtractCmd())
	rootCmd.AddCommand(getReshapeCmd())
	rootCmd.AddCommand(getAggregateCmd())
}
