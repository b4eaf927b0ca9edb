// Package commands implements the userstore command-line interface.
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/patric-chuzhbe/userstore/internal/app"
	"github.com/patric-chuzhbe/userstore/internal/config"
)

type rootOptions struct {
	propertiesFile string
	logLevel       string
	logFile        string
	properties     map[string]string
}

func (o *rootOptions) configOptions() []config.InitOption {
	options := []config.InitOption{
		config.WithPropertiesFile(o.propertiesFile),
		config.WithLogLevel(o.logLevel),
		config.WithLogFile(o.logFile),
	}
	for key, value := range o.properties {
		options = append(options, config.WithProperty(key, value))
	}

	return options
}

// withApp builds the application for the duration of fn.
func (o *rootOptions) withApp(ctx context.Context, fn func(application *app.App) error) (err error) {
	application, err := app.New(ctx, o.configOptions()...)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := application.Close(ctx); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	return fn(application)
}

// NewRootCmd returns the userstore root command with every sub-command registered.
func NewRootCmd() *cobra.Command {
	options := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "userstore",
		Short: "Manage stored users",
		Long: `userstore reads database settings from a property file (db.properties by default):

  db.driver               pgx | postgres | sqlite3 (JDBC class names are accepted)
  db.url                  connection URL (jdbc: prefix is accepted)
  db.username             database user
  db.password             database password
  hibernate.show_sql      log every SQL statement
  hibernate.hbm2ddl.auto  none | validate | update | create | create-drop | migrate

Every property can be overridden with --set key=value or the matching
environment variable (DB_DRIVER, DB_URL, ..., HIBERNATE_HBM2DDL_AUTO).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&options.propertiesFile, "properties", "p", "", "property file with database settings")
	flags.StringVarP(&options.logLevel, "log-level", "l", "", "logger level")
	flags.StringVar(&options.logFile, "log-file", "", "additionally write logs to a rotated file")
	flags.StringToStringVar(&options.properties, "set", nil, "override a database property, e.g. --set hibernate.show_sql=true")

	rootCmd.AddCommand(
		newSchemaCmd(options),
		newListCmd(options),
		newGetCmd(options),
		newAddCmd(options),
		newUpdateCmd(options),
		newDeleteCmd(options),
	)

	return rootCmd
}

func printJSON(out io.Writer, value interface{}) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(value); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}

	return nil
}
