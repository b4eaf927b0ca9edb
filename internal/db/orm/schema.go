package orm

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/patric-chuzhbe/userstore/internal/config"
	"github.com/patric-chuzhbe/userstore/internal/db/migrations"
	"github.com/patric-chuzhbe/userstore/internal/logger"
)

// ErrSchemaValidation is returned in validate mode when a mapped table or
// column is missing from the database.
var ErrSchemaValidation = errors.New("schema validation failed")

func (f *SessionFactory) manageSchema(ctx context.Context) error {
	session := f.db.WithContext(ctx)

	switch f.settings.DDLAuto {
	case config.DDLNone, "":
		return nil

	case config.DDLValidate:
		return f.validateSchema(session)

	case config.DDLUpdate:
		if err := session.AutoMigrate(f.models...); err != nil {
			return fmt.Errorf("failed to update schema: %w", err)
		}

	case config.DDLCreate, config.DDLCreateDrop:
		if err := session.Migrator().DropTable(f.models...); err != nil {
			return fmt.Errorf("failed to drop schema: %w", err)
		}
		if err := session.AutoMigrate(f.models...); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}

	case config.DDLMigrate:
		if err := migrations.Up(ctx, f.dataSource.DB(), f.dataSource.Dialect()); err != nil {
			return err
		}
		return f.validateSchema(session)

	default:
		return fmt.Errorf("unknown schema management mode %q", f.settings.DDLAuto)
	}

	logger.Log.Infow("schema managed", "mode", f.settings.DDLAuto)

	return nil
}

func (f *SessionFactory) validateSchema(session *gorm.DB) error {
	migrator := session.Migrator()

	for _, model := range f.models {
		stmt := &gorm.Statement{DB: session}
		if err := stmt.Parse(model); err != nil {
			return fmt.Errorf("failed to parse model %T: %w", model, err)
		}

		if !migrator.HasTable(model) {
			return fmt.Errorf("%w: missing table %s", ErrSchemaValidation, stmt.Schema.Table)
		}

		for _, field := range stmt.Schema.Fields {
			if field.DBName == "" {
				continue
			}
			if !migrator.HasColumn(model, field.DBName) {
				return fmt.Errorf(
					"%w: missing column %s.%s",
					ErrSchemaValidation,
					stmt.Schema.Table,
					field.DBName,
				)
			}
		}
	}

	return nil
}
