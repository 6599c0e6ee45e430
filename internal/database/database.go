package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/redmonkez12/healthmate-api/internal/config"
)

// Open connects to the database named by cfg, verifies the connection and
// wraps it in a Bun DB with the matching dialect. The returned handle is
// meant to live for the whole process.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*bun.DB, error) {
	driver := cfg.Driver()
	if driver == "" {
		return nil, fmt.Errorf("%w: unsupported database URL scheme", config.ErrConfig)
	}

	sqlDB, err := sql.Open(driver, cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if driver == "postgres" {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		return bun.NewDB(sqlDB, pgdialect.New()), nil
	}

	// sqlite allows a single writer
	sqlDB.SetMaxOpenConns(1)
	return bun.NewDB(sqlDB, sqlitedialect.New()), nil
}

// IsUniqueViolation reports whether err is a unique constraint violation
// from either supported driver.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}

	return false
}
