package database

import (
	"context"
	"fmt"

	"patisson-users/internal/config"
	"patisson-users/internal/middleware"

	"gorm.io/gorm"
)

// Schema modes selected with DB_SCHEMA_MODE.
const (
	SchemaModeHybrid = "hybrid"
	SchemaModeSQL    = "sql"
	SchemaModeAuto   = "auto"
)

// SchemaPlan says which schema steps run for a configuration.
type SchemaPlan struct {
	Mode string
	SQL  bool
	Auto bool
}

// PlanSchema resolves DB_SCHEMA_MODE against the environment. Production and
// staging never run AutoMigrate implicitly.
func PlanSchema(cfg *config.Config) (SchemaPlan, error) {
	mode := cfg.DBSchemaMode
	if mode == "" {
		mode = SchemaModeHybrid
	}
	guarded := cfg.IsProduction() || cfg.Env == "staging" || cfg.Env == "stage"

	switch mode {
	case SchemaModeSQL:
		return SchemaPlan{Mode: mode, SQL: true}, nil
	case SchemaModeHybrid:
		return SchemaPlan{Mode: mode, SQL: true, Auto: !guarded}, nil
	case SchemaModeAuto:
		if guarded && !cfg.DBAutoMigrateAllowDestructive {
			return SchemaPlan{}, fmt.Errorf("refusing DB_SCHEMA_MODE=auto in %q without DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE=true", cfg.Env)
		}
		return SchemaPlan{Mode: mode, Auto: true}, nil
	}
	return SchemaPlan{}, fmt.Errorf("unsupported DB_SCHEMA_MODE %q", mode)
}

// AutoMigrate creates or updates the tables of PersistentModels.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(PersistentModels()...)
}

// ApplySchema runs the steps of the schema plan for cfg.
func ApplySchema(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	plan, err := PlanSchema(cfg)
	if err != nil {
		return err
	}

	if plan.SQL {
		n, err := NewMigrator(db).Up(ctx)
		if err != nil {
			return fmt.Errorf("run sql migrations: %w", err)
		}
		middleware.Logger.InfoContext(ctx, "sql migrations applied", "count", n)
	}
	if plan.Auto {
		if cfg.DBAutoMigrateAllowDestructive {
			middleware.Logger.WarnContext(ctx, "automigrate allowed in a guarded environment; review schema diffs", "env", cfg.Env)
		}
		if err := AutoMigrate(db.WithContext(ctx)); err != nil {
			return fmt.Errorf("auto-migrate: %w", err)
		}
	}
	return nil
}

// SchemaStatus is the schema plan plus the migration state of the database.
type SchemaStatus struct {
	SchemaPlan
	Environment string
	Applied     []int
	Pending     []Migration
}

// GetSchemaStatus reports what ApplySchema would do without changing anything.
func GetSchemaStatus(ctx context.Context, db *gorm.DB, cfg *config.Config) (*SchemaStatus, error) {
	plan, err := PlanSchema(cfg)
	if err != nil {
		return nil, err
	}
	status := &SchemaStatus{SchemaPlan: plan, Environment: cfg.Env}
	if !plan.SQL {
		return status, nil
	}

	migrator := NewMigrator(db)
	if status.Applied, err = migrator.Applied(ctx); err != nil {
		return nil, err
	}
	if status.Pending, err = migrator.Pending(ctx); err != nil {
		return nil, err
	}
	return status, nil
}
