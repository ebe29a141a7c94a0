// Package db opens the database and manages schema migrations.
package db

import (
	"fmt"
	"strings"
	"time"

	migrate "github.com/golang-migrate/migrate/v4"
	// Blank imports register the postgres driver and file source for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dieginin/hubsync/internal/config"
	"github.com/dieginin/hubsync/internal/store"
)

// Open connects to the database selected by the DSN: postgres:// URLs use
// the PostgreSQL driver, everything else is a sqlite file path.
func Open(cfg config.DatabaseConfig, debug bool) (*gorm.DB, error) {
	logLevel := logger.Silent
	if debug {
		logLevel = logger.Info
	}
	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel)}

	if IsPostgres(cfg.DSN) {
		// Retry to give the database time to come up.
		var (
			db  *gorm.DB
			err error
		)
		for i := 0; i < 5; i++ {
			db, err = gorm.Open(postgres.Open(cfg.DSN), gormCfg)
			if err == nil {
				return db, nil
			}
			time.Sleep(2 * time.Second)
		}
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	return gorm.Open(sqlite.Open(cfg.DSN), gormCfg)
}

// IsPostgres reports whether the DSN targets PostgreSQL.
func IsPostgres(dsn string) bool {
	lower := strings.ToLower(strings.TrimSpace(dsn))
	return strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://")
}

// Migrate brings the schema up to date. With sqlMigrations set and a
// PostgreSQL DSN it runs the SQL migrations in ./migrations via
// golang-migrate; otherwise it falls back to GORM AutoMigrate, which is the
// path used in development and with sqlite.
func Migrate(db *gorm.DB, dsn string, sqlMigrations bool) error {
	if sqlMigrations && IsPostgres(dsn) {
		if err := runSQLMigrations(dsn); err != nil {
			return fmt.Errorf("sql migrations: %w", err)
		}
		return nil
	}
	if err := db.AutoMigrate(store.AllModels()...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}

// runSQLMigrations executes the migrations in ./migrations using the
// golang-migrate file source.
func runSQLMigrations(dsn string) error {
	m, err := migrate.New("file://migrations", dsn)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}
