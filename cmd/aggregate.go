package cmd

import (
	"context"

	"github.com/ecoclim/pixlink/internal/ioaggr"
	"github.com/ecoclim/pixlink/pkg/db"
	"github.com/ecoclim/pixlink/pkg/sources"
	"github.com/spf13/cobra"
)

// getAggregateCmd returns the aggregate command.
func getAggregateCmd() *cobra.Command {
	aggregateCmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Rebuild coverage-weighted observation summaries",
		Long: `Join the long pixel values back to the pixel maps and compute
coverage-weighted means per geometry, time step and variable.

This command:
  1. Connects to PostgreSQL using configuration settings
  2. Rebuilds observation_summaries one variable at a time inside
     the database, so memory stays bounded
  3. Records pixel counts alongside each mean, distinguishing
     partial from full coverage

The summary table is a materialized view over pixel_maps and
pixel_values: recomputable at any time, never authoritative.

Examples:
  pixlink aggregate
  pixlink aggregate --sources prism`,
		Aliases: []string{"aggr"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPhase(cmd, func(
				ctx context.Context,
				op db.Operator,
				srcCfg *sources.SourcesConfig,
			) error {
				return ioaggr.New(cfg, op, srcCfg).Aggregate(ctx)
			})
		},
	}

	addSourcesFlag(aggregateCmd)

	return aggregateCmd
}
