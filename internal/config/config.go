// Package config loads the application configuration: the database property
// file, environment overrides and command-line values, in that order of
// increasing priority.
package config

import (
	"errors"
	"io/fs"
	"log"

	env "github.com/caarlos0/env/v6"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds the process-wide settings and the merged database property set.
type Config struct {
	PropertiesFile string `env:"PROPERTIES_FILE" validate:"required"`
	LogLevel       string `env:"LOG_LEVEL" validate:"loglevel"`
	LogFile        string `env:"LOG_FILE"`

	Properties Properties
}

// propertiesFromEnv mirrors the property keys as environment variables.
type propertiesFromEnv struct {
	DBDriver   string `env:"DB_DRIVER"`
	DBURL      string `env:"DB_URL"`
	DBUsername string `env:"DB_USERNAME"`
	DBPassword string `env:"DB_PASSWORD"`
	ShowSQL    string `env:"HIBERNATE_SHOW_SQL"`
	DDLAuto    string `env:"HIBERNATE_HBM2DDL_AUTO"`
}

var defaultConfig = Config{
	PropertiesFile: "db.properties",
	LogLevel:       "info",
	LogFile:        "",
}

type initOptions struct {
	propertiesFile string
	logLevel       string
	logFile        string
	overrides      Properties
	skipDotEnv     bool
}

// InitOption customises New.
type InitOption func(*initOptions)

// WithPropertiesFile sets the property file path with command-line priority.
func WithPropertiesFile(path string) InitOption {
	return func(options *initOptions) {
		options.propertiesFile = path
	}
}

// WithLogLevel sets the log level with command-line priority.
func WithLogLevel(level string) InitOption {
	return func(options *initOptions) {
		options.logLevel = level
	}
}

// WithLogFile sets the log file with command-line priority.
func WithLogFile(path string) InitOption {
	return func(options *initOptions) {
		options.logFile = path
	}
}

// WithProperty overrides a single database property with command-line priority.
func WithProperty(key, value string) InitOption {
	return func(options *initOptions) {
		if options.overrides == nil {
			options.overrides = Properties{}
		}
		options.overrides[key] = value
	}
}

// WithSkipDotEnv disables loading of the .env file.
func WithSkipDotEnv(skip bool) InitOption {
	return func(options *initOptions) {
		options.skipDotEnv = skip
	}
}

func validateLogLevel(fieldLevel validator.FieldLevel) bool {
	value := fieldLevel.Field().String()

	allowedLogLevels := map[string]bool{
		"debug":   true,
		"info":    true,
		"warning": true,
		"warn":    true,
		"error":   true,
		"fatal":   true,
	}

	return allowedLogLevels[value]
}

func validateDDLMode(fieldLevel validator.FieldLevel) bool {
	return IsDDLMode(fieldLevel.Field().String())
}

func newValidator() (*validator.Validate, error) {
	validate := validator.New()

	if err := validate.RegisterValidation("loglevel", validateLogLevel); err != nil {
		return nil, err
	}

	if err := validate.RegisterValidation("ddlmode", validateDDLMode); err != nil {
		return nil, err
	}

	return validate, nil
}

func (c *Config) validate() error {
	validate, err := newValidator()
	if err != nil {
		return err
	}

	if err := validate.Struct(c); err != nil {
		return err
	}

	_, err = c.Properties.ORMSettings()

	return err
}

func applyDefaults(values *Config, defaults Config) {
	if values.PropertiesFile == "" {
		values.PropertiesFile = defaults.PropertiesFile
	}

	if values.LogLevel == "" {
		values.LogLevel = defaults.LogLevel
	}

	if values.LogFile == "" {
		values.LogFile = defaults.LogFile
	}
}

func (e *propertiesFromEnv) applyTo(properties Properties) {
	set := func(key, value string) {
		if value != "" {
			properties[key] = value
		}
	}

	set(KeyDBDriver, e.DBDriver)
	set(KeyDBURL, e.DBURL)
	set(KeyDBUsername, e.DBUsername)
	set(KeyDBPassword, e.DBPassword)
	set(KeyShowSQL, e.ShowSQL)
	set(KeyDDLAuto, e.DDLAuto)
}

// New builds the configuration. Priority: options (command line) > environment >
// property file > defaults. A missing property file is tolerated so that a
// deployment can be configured through the environment alone.
func New(optionsProto ...InitOption) (*Config, error) {
	options := &initOptions{}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	if !options.skipDotEnv {
		if err := godotenv.Load(); err != nil {
			log.Printf("Unable to load .env file: %v", err)
		}
	}

	var values Config
	if err := env.Parse(&values); err != nil {
		return nil, err
	}

	if options.propertiesFile != "" {
		values.PropertiesFile = options.propertiesFile
	}
	if options.logLevel != "" {
		values.LogLevel = options.logLevel
	}
	if options.logFile != "" {
		values.LogFile = options.logFile
	}

	applyDefaults(&values, defaultConfig)

	properties, err := LoadProperties(values.PropertiesFile)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		log.Printf("Property file %s not found, relying on environment", values.PropertiesFile)
		properties = Properties{}
	}

	var fromEnv propertiesFromEnv
	if err := env.Parse(&fromEnv); err != nil {
		return nil, err
	}
	fromEnv.applyTo(properties)

	for key, value := range options.overrides {
		properties[key] = value
	}

	values.Properties = properties

	if err := values.validate(); err != nil {
		return nil, err
	}

	return &values, nil
}
