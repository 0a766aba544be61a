package database

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"patisson-users/internal/middleware"

	"gorm.io/gorm"
)

// migrationLockKey serializes migration runs of several replicas on PostgreSQL.
const migrationLockKey int64 = 0x7573657273 // "users"

// MigrationLog records an applied migration.
type MigrationLog struct {
	Version   int       `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"size:255;not null"`
	AppliedAt time.Time `gorm:"autoCreateTime"`
}

// TableName returns the database table name for MigrationLog.
func (MigrationLog) TableName() string {
	return "migration_logs"
}

// Migrator applies and reverts versioned SQL migrations, tracking them in
// the migration_logs table.
type Migrator struct {
	db         *gorm.DB
	migrations []Migration
}

// NewMigrator returns a Migrator for the embedded migrations.
func NewMigrator(db *gorm.DB) *Migrator {
	return &Migrator{db: db, migrations: Migrations()}
}

func (m *Migrator) ensureLogTable(ctx context.Context) error {
	if err := m.db.WithContext(ctx).AutoMigrate(&MigrationLog{}); err != nil {
		return fmt.Errorf("ensure migration_logs table: %w", err)
	}
	return nil
}

// Applied returns the applied versions in ascending order. A database that was
// never migrated has none.
func (m *Migrator) Applied(ctx context.Context) ([]int, error) {
	if !m.db.Migrator().HasTable(&MigrationLog{}) {
		return []int{}, nil
	}
	var versions []int
	if err := m.db.WithContext(ctx).Model(&MigrationLog{}).Order("version").Pluck("version", &versions).Error; err != nil {
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}
	return versions, nil
}

// MigrationState is one embedded migration and, when applied, its log entry.
type MigrationState struct {
	Migration
	AppliedAt *time.Time
}

// Applied reports whether the migration is recorded in migration_logs.
func (s MigrationState) Applied() bool {
	return s.AppliedAt != nil
}

// History returns every embedded migration in version order with the time it
// was applied, if it was.
func (m *Migrator) History(ctx context.Context) ([]MigrationState, error) {
	var logs []MigrationLog
	if m.db.Migrator().HasTable(&MigrationLog{}) {
		if err := m.db.WithContext(ctx).Order("version").Find(&logs).Error; err != nil {
			return nil, fmt.Errorf("read migration_logs: %w", err)
		}
	}
	appliedAt := make(map[int]time.Time, len(logs))
	for _, l := range logs {
		appliedAt[l.Version] = l.AppliedAt
	}

	states := make([]MigrationState, 0, len(m.migrations))
	for _, mig := range m.migrations {
		st := MigrationState{Migration: mig}
		if at, ok := appliedAt[mig.Version]; ok {
			st.AppliedAt = &at
		}
		states = append(states, st)
	}
	return states, nil
}

// Latest returns the highest applied version, or 0 when nothing is applied.
func (m *Migrator) Latest(ctx context.Context) (int, error) {
	applied, err := m.Applied(ctx)
	if err != nil || len(applied) == 0 {
		return 0, err
	}
	return slices.Max(applied), nil
}

// Pending returns the migrations that are not applied yet. Applied versions
// unknown to this build are an error: the database is ahead of the code.
func (m *Migrator) Pending(ctx context.Context) ([]Migration, error) {
	applied, err := m.Applied(ctx)
	if err != nil {
		return nil, err
	}

	var unknown []string
	for _, v := range applied {
		if m.find(v) == nil {
			unknown = append(unknown, fmt.Sprintf("%06d", v))
		}
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("migration_logs contains versions unknown to this build: %s", strings.Join(unknown, ", "))
	}

	var pending []Migration
	for _, mig := range m.migrations {
		if !slices.Contains(applied, mig.Version) {
			pending = append(pending, mig)
		}
	}
	return pending, nil
}

// Up applies every pending migration and returns how many ran.
func (m *Migrator) Up(ctx context.Context) (int, error) {
	if err := m.ensureLogTable(ctx); err != nil {
		return 0, err
	}
	pending, err := m.Pending(ctx)
	if err != nil {
		return 0, err
	}
	for i, mig := range pending {
		if err := m.run(ctx, mig, true); err != nil {
			return i, err
		}
	}
	return len(pending), nil
}

// Down reverts the applied migration with the given version.
func (m *Migrator) Down(ctx context.Context, version int) error {
	mig := m.find(version)
	if mig == nil {
		return fmt.Errorf("migration version %d not found", version)
	}
	applied, err := m.Applied(ctx)
	if err != nil {
		return err
	}
	if !slices.Contains(applied, version) {
		return fmt.Errorf("migration %d has not been applied", version)
	}
	return m.run(ctx, *mig, false)
}

func (m *Migrator) find(version int) *Migration {
	for i := range m.migrations {
		if m.migrations[i].Version == version {
			return &m.migrations[i]
		}
	}
	return nil
}

// run executes one script and updates the log in the same transaction.
func (m *Migrator) run(ctx context.Context, mig Migration, up bool) error {
	direction, script := "up", mig.UpScript
	if !up {
		direction, script = "down", mig.DownScript
	}

	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if tx.Dialector.Name() == "postgres" {
			if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", migrationLockKey).Error; err != nil {
				return fmt.Errorf("acquire migration lock: %w", err)
			}
		}

		// Another replica may have finished the same step while we waited for the lock.
		var count int64
		if err := tx.Model(&MigrationLog{}).Where("version = ?", mig.Version).Count(&count).Error; err != nil {
			return err
		}
		if (count > 0) == up {
			return errSkipMigration
		}

		if err := tx.Exec(script).Error; err != nil {
			return fmt.Errorf("migration %s %s: %w", mig, direction, err)
		}
		if up {
			return tx.Create(&MigrationLog{Version: mig.Version, Name: mig.Name}).Error
		}
		return tx.Delete(&MigrationLog{}, "version = ?", mig.Version).Error
	})
	if errors.Is(err, errSkipMigration) {
		middleware.Logger.InfoContext(ctx, "migration already handled elsewhere", "migration", mig.String(), "direction", direction)
		return nil
	}
	if err != nil {
		return err
	}

	middleware.Logger.InfoContext(ctx, "migration finished", "migration", mig.String(), "direction", direction)
	return nil
}

var errSkipMigration = errors.New("migration already in the requested state")
