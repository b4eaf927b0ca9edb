// Package orm provides the session factory of the persistence stack: a GORM
// handle built on top of an existing data source, configured with SQL echo,
// a schema management mode and the set of mapped models.
package orm

import (
	"context"
	"database/sql"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/patric-chuzhbe/userstore/internal/config"
	"github.com/patric-chuzhbe/userstore/internal/db/datasource"
	"github.com/patric-chuzhbe/userstore/internal/logger"
)

// SessionFactory hands out ORM sessions bound to one data source.
type SessionFactory struct {
	db         *gorm.DB
	dataSource *datasource.DataSource
	settings   config.ORMSettings
	models     []interface{}
}

type sessionKey struct {
	factory *SessionFactory
}

func dialectorFor(ds *datasource.DataSource) gorm.Dialector {
	if ds.Dialect() == datasource.DialectSQLite {
		return &sqlite.Dialector{Conn: ds.DB()}
	}

	return postgres.New(postgres.Config{Conn: ds.DB()})
}

// New builds a session factory on ds and applies the schema management mode to
// models. It connects eagerly.
func New(
	ctx context.Context,
	ds *datasource.DataSource,
	settings config.ORMSettings,
	models ...interface{},
) (*SessionFactory, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialectorFor(ds), &gorm.Config{
		Logger: logger.NewGormLogger(settings.ShowSQL),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build session factory: %w", err)
	}

	factory := &SessionFactory{
		db:         db,
		dataSource: ds,
		settings:   settings,
		models:     models,
	}

	if err := factory.manageSchema(ctx); err != nil {
		return nil, err
	}

	logger.Log.Debugw("session factory built",
		"dialect", ds.Dialect(),
		"show_sql", settings.ShowSQL,
		"hbm2ddl", settings.DDLAuto,
		"models", len(models),
	)

	return factory, nil
}

// DataSource returns the data source the factory was built on.
func (f *SessionFactory) DataSource() *datasource.DataSource {
	return f.dataSource
}

// Settings returns the ORM behaviour flags.
func (f *SessionFactory) Settings() config.ORMSettings {
	return f.settings
}

// Models returns the mapped models.
func (f *SessionFactory) Models() []interface{} {
	return f.models
}

// OpenSession returns a fresh session outside of any transaction.
func (f *SessionFactory) OpenSession(ctx context.Context) *gorm.DB {
	return f.db.WithContext(ctx)
}

// Begin starts a transaction and returns the session bound to it.
func (f *SessionFactory) Begin(ctx context.Context, opts *sql.TxOptions) (*gorm.DB, error) {
	session := f.db.WithContext(ctx).Begin(opts)
	if session.Error != nil {
		return nil, session.Error
	}

	return session, nil
}

// BindSession returns a context carrying session as the current session of f.
func (f *SessionFactory) BindSession(ctx context.Context, session *gorm.DB) context.Context {
	return context.WithValue(ctx, sessionKey{factory: f}, session)
}

// BoundSession returns the session bound to ctx by BindSession, if any.
func (f *SessionFactory) BoundSession(ctx context.Context) (*gorm.DB, bool) {
	session, ok := ctx.Value(sessionKey{factory: f}).(*gorm.DB)
	return session, ok
}

// CurrentSession returns the transactional session bound to ctx, or a plain
// session when no transaction is in progress.
func (f *SessionFactory) CurrentSession(ctx context.Context) *gorm.DB {
	if session, ok := f.BoundSession(ctx); ok {
		return session.WithContext(ctx)
	}

	return f.OpenSession(ctx)
}

// Close releases the factory. In create-drop mode the mapped tables are
// dropped. The data source stays open.
func (f *SessionFactory) Close(ctx context.Context) error {
	if f.settings.DDLAuto != config.DDLCreateDrop {
		return nil
	}

	if err := f.db.WithContext(ctx).Migrator().DropTable(f.models...); err != nil {
		return fmt.Errorf("failed to drop schema: %w", err)
	}

	return nil
}
