package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// addDatabaseFlags registers the PostgreSQL connection flags shared by
// every subcommand. Values are applied by ioconfig.BindFlags only when
// the user actually set them.
func addDatabaseFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.String("host", "", "PostgreSQL host")
	f.Int("port", 0, "PostgreSQL port")
	f.String("user", "", "PostgreSQL user")
	f.String("password", "", "PostgreSQL password")
	f.String("database", "", "PostgreSQL database name")
	f.String("ssl-mode", "", "PostgreSQL SSL mode")
}

// addSourcesFlag restricts a pipeline command to named climate sources.
func addSourcesFlag(cmd *cobra.Command) {
	cmd.Flags().StringSliceP("sources", "s", nil,
		"climate sources to process (empty = all)")
}

// addLayersFlag restricts pixel-map building to named survey layers.
func addLayersFlag(cmd *cobra.Command) {
	cmd.Flags().StringSliceP("layers", "l", nil,
		"survey layers to process (empty = all)")
}

// addYearFlags overrides the configured year range of the sources.
func addYearFlags(cmd *cobra.Command) {
	cmd.Flags().Int("year-start", 0,
		"first year to process (0 = source default)")
	cmd.Flags().Int("year-end", 0,
		"last year to process (0 = source default)")
}

// addJobsFlag overrides the number of concurrent mapping workers.
func addJobsFlag(cmd *cobra.Command) {
	cmd.Flags().IntP("jobs", "j", 0,
		"number of concurrent workers (0 = number of CPUs)")
}

// signalContext returns a context cancelled by SIGINT or SIGTERM, so
// long pipeline phases stop at a batch boundary instead of mid-write.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM)
}
