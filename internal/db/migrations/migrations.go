// Package migrations holds the versioned schema of the users database, one
// directory of goose SQL migrations per dialect.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"github.com/patric-chuzhbe/userstore/internal/logger"
)

//go:embed postgres/*.sql sqlite3/*.sql
var migrationsFS embed.FS

func prepare(dialect string) error {
	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(zap.NewStdLog(logger.Log.Desugar()))

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("error while `goose.SetDialect()` calling: %w", err)
	}

	return nil
}

// Up applies every pending migration for dialect.
func Up(ctx context.Context, db *sql.DB, dialect string) error {
	if err := prepare(dialect); err != nil {
		return err
	}

	if err := goose.UpContext(ctx, db, dialect); err != nil {
		return fmt.Errorf("error while `goose.UpContext()` calling: %w", err)
	}

	return nil
}

// Version returns the current schema version for dialect.
func Version(ctx context.Context, db *sql.DB, dialect string) (int64, error) {
	if err := prepare(dialect); err != nil {
		return 0, err
	}

	return goose.GetDBVersionContext(ctx, db)
}
