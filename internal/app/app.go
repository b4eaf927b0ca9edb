// Package app initializes the application: it loads configuration,
// configures logging, assembles the persistence graph and builds the
// user service on top of it.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/patric-chuzhbe/userstore/internal/appconfig"
	"github.com/patric-chuzhbe/userstore/internal/config"
	"github.com/patric-chuzhbe/userstore/internal/db/migrations"
	"github.com/patric-chuzhbe/userstore/internal/db/userdao"
	"github.com/patric-chuzhbe/userstore/internal/logger"
	"github.com/patric-chuzhbe/userstore/internal/service"
)

// Log file rotation limits.
const (
	logFileMaxSizeMB  = 10
	logFileMaxBackups = 3
	logFileMaxAgeDays = 28
)

// App encapsulates the configuration, the assembled persistence graph and
// the user service.
type App struct {
	cfg   *config.Config
	graph *appconfig.Context
	users *service.UserService
}

// New initializes a new instance of App by:
// - loading configuration
// - initializing logger
// - assembling data source, session factory and transaction manager
// - building the user DAO and service
func New(ctx context.Context, optionsProto ...config.InitOption) (*App, error) {
	cfg, err := config.New(optionsProto...)
	if err != nil {
		return nil, err
	}

	var logOptions []logger.InitOption
	if cfg.LogFile != "" {
		logOptions = append(
			logOptions,
			logger.WithFile(cfg.LogFile, logFileMaxSizeMB, logFileMaxBackups, logFileMaxAgeDays),
		)
	}
	if err := logger.Init(cfg.LogLevel, logOptions...); err != nil {
		return nil, err
	}

	if missing := cfg.Properties.Missing(config.KeyDBDriver, config.KeyDBURL); len(missing) > 0 {
		logger.Log.Warnw("database properties not set", "keys", missing)
	}

	graph, err := appconfig.Assemble(ctx, cfg.Properties)
	if err != nil {
		return nil, err
	}

	logger.Log.Infow("persistence assembled",
		"driver", graph.DataSource.DriverName(),
		"hbm2ddl", graph.SessionFactory.Settings().DDLAuto,
	)

	return &App{
		cfg:   cfg,
		graph: graph,
		users: service.New(graph.TransactionManager, userdao.New(graph.SessionFactory)),
	}, nil
}

// Config returns the loaded configuration.
func (a *App) Config() *config.Config {
	return a.cfg
}

// Users returns the user service.
func (a *App) Users() *service.UserService {
	return a.users
}

// Ping checks that the database is reachable.
func (a *App) Ping(ctx context.Context) error {
	return a.graph.DataSource.Ping(ctx)
}

// DDLMode returns the effective hibernate.hbm2ddl.auto mode.
func (a *App) DDLMode() string {
	return a.graph.SessionFactory.Settings().DDLAuto
}

// SchemaVersion returns the goose schema version, or 0 when the schema is
// not managed by versioned migrations.
func (a *App) SchemaVersion(ctx context.Context) (int64, error) {
	if a.DDLMode() != config.DDLMigrate {
		return 0, nil
	}

	ds := a.graph.DataSource
	return migrations.Version(ctx, ds.DB(), ds.Dialect())
}

// Close tears down the persistence graph and flushes the logger.
func (a *App) Close(ctx context.Context) error {
	err := a.graph.Close(ctx)

	if syncErr := logger.Sync(); syncErr != nil {
		err = errors.Join(err, fmt.Errorf("logger sync error: %w", syncErr))
	}

	return err
}
