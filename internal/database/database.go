// Package database handles database connections and migrations.
package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"time"

	"patisson-users/internal/config"
	"patisson-users/internal/middleware"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// slowQuery is the duration after which a query is logged at warn level.
const slowQuery = 200 * time.Millisecond

// GormLogger routes GORM logs to slog so SQL errors carry the request
// and service ids of the context.
type GormLogger struct {
	logger *slog.Logger
	level  logger.LogLevel
}

// NewGormLogger returns a GormLogger at warn level.
func NewGormLogger(l *slog.Logger) *GormLogger {
	return &GormLogger{logger: l, level: logger.Warn}
}

// LogMode implements logger.Interface.
func (l *GormLogger) LogMode(level logger.LogLevel) logger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *GormLogger) log(ctx context.Context, level logger.LogLevel, msg string, attrs ...any) {
	if l.level < level {
		return
	}
	switch level {
	case logger.Error:
		l.logger.ErrorContext(ctx, msg, attrs...)
	case logger.Warn:
		l.logger.WarnContext(ctx, msg, attrs...)
	default:
		l.logger.InfoContext(ctx, msg, attrs...)
	}
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	l.log(ctx, logger.Info, fmt.Sprintf(msg, data...))
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	l.log(ctx, logger.Warn, fmt.Sprintf(msg, data...))
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	l.log(ctx, logger.Error, fmt.Sprintf(msg, data...))
}

// Trace logs failed and slow statements, and every statement at info level.
// A missing record is an expected outcome and is not logged.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= logger.Silent {
		return
	}
	elapsed := time.Since(begin)
	sql, rows := fc()
	attrs := []any{slog.String("sql", sql), slog.Int64("rows", rows), slog.Duration("elapsed", elapsed)}

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		l.log(ctx, logger.Error, "query failed", append(attrs, slog.String("error", err.Error()))...)
	case elapsed > slowQuery:
		l.log(ctx, logger.Warn, "slow query", attrs...)
	default:
		l.log(ctx, logger.Info, "query", attrs...)
	}
}

// ConnectOptions controls what Connect does after the connection is open.
type ConnectOptions struct {
	ApplySchema bool
}

// Connect opens the database and applies the schema according to DB_SCHEMA_MODE.
func Connect(ctx context.Context, cfg *config.Config) (*gorm.DB, error) {
	return ConnectWithOptions(ctx, cfg, ConnectOptions{ApplySchema: true})
}

// DSN builds the PostgreSQL connection URL for cfg. Credentials are escaped,
// so passwords may contain any character.
func DSN(cfg *config.Config) string {
	sslMode := cfg.DBSSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.DBUser, cfg.DBPassword),
		Host:     net.JoinHostPort(cfg.DBHost, cfg.DBPort),
		Path:     "/" + cfg.DBName,
		RawQuery: url.Values{"sslmode": {sslMode}, "timezone": {"UTC"}}.Encode(),
	}
	return u.String()
}

// ConnectWithOptions opens a PostgreSQL connection configured from cfg and
// waits until the server answers.
func ConnectWithOptions(ctx context.Context, cfg *config.Config, opts ConnectOptions) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(DSN(cfg)), &gorm.Config{
		Logger:  NewGormLogger(middleware.Logger),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := configurePool(db, cfg); err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("database is not reachable at %s:%s: %w", cfg.DBHost, cfg.DBPort, err)
	}
	middleware.Logger.InfoContext(ctx, "database connected", "host", cfg.DBHost, "db", cfg.DBName)

	if opts.ApplySchema {
		if err := ApplySchema(ctx, db, cfg); err != nil {
			return nil, err
		}
	}
	return db, nil
}

func configurePool(db *gorm.DB, cfg *config.Config) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to access sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.DBConnMaxLifetimeMinutes) * time.Minute)
	return nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
