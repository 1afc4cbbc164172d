package cmd

import (
	"context"
	"errors"

	"github.com/ecoclim/pixlink/internal/iodb"
	"github.com/ecoclim/pixlink/internal/iosources"
	"github.com/ecoclim/pixlink/pkg/db"
	"github.com/ecoclim/pixlink/pkg/errcode"
	"github.com/ecoclim/pixlink/pkg/sources"
	"github.com/gnames/gn"
	"github.com/spf13/cobra"
)

// pipelineSetup connects to the database, verifies the schema exists and
// loads sources.yaml. Every pipeline command starts this way; the caller
// must Close the returned operator.
func pipelineSetup(
	ctx context.Context,
) (db.Operator, *sources.SourcesConfig, error) {
	op := iodb.NewPgxOperator()
	if err := op.Connect(ctx, &cfg.Database); err != nil {
		return nil, nil, err
	}

	gn.Info("Connected to database: %s@%s:%d/%s",
		cfg.Database.User, cfg.Database.Host,
		cfg.Database.Port, cfg.Database.Database)

	hasTables, err := op.HasTables(ctx)
	if err != nil {
		op.Close()
		return nil, nil, err
	}
	if !hasTables {
		op.Close()
		return nil, nil, emptyDatabaseError()
	}

	srcCfg, err := iosources.New(cfg).Load()
	if err != nil {
		op.Close()
		return nil, nil, err
	}
	return op, srcCfg, nil
}

func emptyDatabaseError() error {
	return &gn.Error{
		Code: errcode.DBEmptyDatabaseError,
		Msg: `Database appears to be empty.
   Run '<em>pixlink create</em>' first to initialize the schema.`,
		Err: errors.New("database has no tables"),
	}
}

// runPhase wraps a pipeline phase with the shared setup and error
// reporting.
func runPhase(
	_ *cobra.Command,
	phase func(ctx context.Context, op db.Operator,
		srcCfg *sources.SourcesConfig) error,
) error {
	ctx, cancel := signalContext()
	defer cancel()

	op, srcCfg, err := pipelineSetup(ctx)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}
	defer op.Close()

	if err := phase(ctx, op, srcCfg); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}
	return nil
}
