// Package ioschema implements SchemaManager interface for
// database schema management. This is an impure I/O package
// that wraps GORM AutoMigrate functionality.
package ioschema

import (
	"context"

	"github.com/ecoclim/pixlink/pkg/db"
	"github.com/ecoclim/pixlink/pkg/lifecycle"
	"github.com/ecoclim/pixlink/pkg/schema"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// manager implements the lifecycle.SchemaManager interface
// using GORM AutoMigrate.
type manager struct {
	operator db.Operator
}

// NewManager creates a new SchemaManager.
func NewManager(op db.Operator) lifecycle.SchemaManager {
	return &manager{operator: op}
}

// Create creates the initial database schema using GORM AutoMigrate,
// then adds the join indexes the aggregation phase relies on.
func (m *manager) Create(ctx context.Context) error {
	pool := m.operator.Pool()
	if pool == nil {
		return NotConnectedError()
	}

	sqlDB := stdlib.OpenDBFromPool(pool)

	gormDB, err := gorm.Open(
		postgres.New(postgres.Config{Conn: sqlDB}),
		&gorm.Config{},
	)
	if err != nil {
		return GORMConnectionError(err)
	}

	if err := schema.Migrate(gormDB); err != nil {
		return CreateSchemaError(err)
	}

	if err := m.ensureIndexes(ctx); err != nil {
		return err
	}

	return nil
}

// Migrate updates the database schema to the latest version
// using GORM AutoMigrate.
func (m *manager) Migrate(ctx context.Context) error {
	pool := m.operator.Pool()
	if pool == nil {
		return NotConnectedError()
	}

	sqlDB := stdlib.OpenDBFromPool(pool)

	gormDB, err := gorm.Open(
		postgres.New(postgres.Config{Conn: sqlDB}),
		&gorm.Config{},
	)
	if err != nil {
		return GORMConnectionError(err)
	}

	if err := schema.Migrate(gormDB); err != nil {
		return MigrateSchemaError(err)
	}

	if err := m.ensureIndexes(ctx); err != nil {
		return err
	}

	return nil
}

// ensureIndexes adds composite indexes that GORM tags cannot express.
// The aggregation join reads pixel_values by (source, variable, pixel)
// and pixel_maps by (source, pixel); both paths need covering indexes
// once the tables reach hundreds of millions of rows.
func (m *manager) ensureIndexes(ctx context.Context) error {
	pool := m.operator.Pool()
	if pool == nil {
		return NotConnectedError()
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_pixel_values_join
			ON pixel_values (source, variable, pixel_id)`,
		`CREATE INDEX IF NOT EXISTS idx_pixel_values_time
			ON pixel_values (source, year, month)`,
	}

	for _, idx := range indexes {
		if _, err := pool.Exec(ctx, idx); err != nil {
			return IndexError(err)
		}
	}

	return nil
}
