package postgres

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Connect opens a PostgreSQL connection via GORM and verifies connectivity.
func Connect(ctx context.Context, dsn string) (*gorm.DB, error) {
	return Open(ctx, DriverPostgres, dsn)
}

// Open dials the named GORM dialect and verifies connectivity.
// SQLite connections are pinned to a single connection so in-memory
// databases stay shared and transactions serialise.
func Open(ctx context.Context, driver, dsn string) (*gorm.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("%s DSN is empty", driver)
	}
	var dialector gorm.Dialector
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverPostgres, "":
		dialector = postgres.Open(dsn)
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if dialector.Name() == DriverSQLite {
		sqlDB.SetMaxOpenConns(1)
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// ConnectFromEnv dials the store selected by STORE_DRIVER (default postgres) using POSTGRES_DSN
// or SQLITE_DSN and returns the DB plus a cleanup function.
// When the DSN is missing or the connection fails, it logs and returns nil with a no-op cleanup.
func ConnectFromEnv(ctx context.Context, logger *slog.Logger) (*gorm.DB, func()) {
	driver := strings.ToLower(strings.TrimSpace(os.Getenv("STORE_DRIVER")))
	dsnKey := "POSTGRES_DSN"
	if driver == DriverSQLite {
		dsnKey = "SQLITE_DSN"
	} else {
		driver = DriverPostgres
	}
	return ConnectWith(ctx, driver, os.Getenv(dsnKey), logger)
}

// ConnectWith is ConnectFromEnv with explicit settings.
func ConnectWith(ctx context.Context, driver, dsn string, logger *slog.Logger) (*gorm.DB, func()) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if strings.TrimSpace(dsn) == "" {
		logger.Warn("database DSN not set, falling back to in-memory repositories", slog.String("driver", driver))
		return nil, func() {}
	}
	db, err := Open(ctx, driver, dsn)
	if err != nil {
		logger.Warn("failed to connect to database, falling back to in-memory repositories",
			slog.String("driver", driver), slog.String("error", err.Error()))
		return nil, func() {}
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Warn("failed to unwrap database connection, falling back to in-memory repositories", slog.String("error", err.Error()))
		return nil, func() {}
	}
	logger.Info("database connection established", slog.String("driver", driver))
	return db, func() { _ = sqlDB.Close() }
}
