// Package datasource provides the connection factory of the persistence stack.
// A DataSource is built from the four connection properties and performs no
// connection attempt of its own: a wrong URL or bad credentials surface on the
// first Ping or query.
package datasource

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/patric-chuzhbe/userstore/internal/config"
	"github.com/patric-chuzhbe/userstore/internal/logger"
)

// database/sql driver names.
const (
	DriverPgx      = "pgx"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// SQL dialects, named as goose names them.
const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite3"
)

// ErrUnsupportedDriver is returned for a db.driver value with no registered driver.
var ErrUnsupportedDriver = errors.New("unsupported database driver")

var passwordParam = regexp.MustCompile(`(password\s*=\s*)('(?:\\.|[^'])*'|[^\s&]+)`)

var driverAliases = map[string]string{
	"pgx":                   DriverPgx,
	"postgres":              DriverPostgres,
	"postgresql":            DriverPgx,
	"org.postgresql.Driver": DriverPgx,
	"sqlite":                DriverSQLite,
	"sqlite3":               DriverSQLite,
	"org.sqlite.JDBC":       DriverSQLite,
}

// DataSource is a factory for database connections.
type DataSource struct {
	driverName string
	dsn        string
	database   *sql.DB
}

// ResolveDriver maps a db.driver value, either a Go driver name or a JDBC
// driver class name, onto a registered database/sql driver name.
func ResolveDriver(name string) (string, error) {
	driverName, ok := driverAliases[strings.TrimSpace(name)]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedDriver, name)
	}

	return driverName, nil
}

// New configures a data source from settings. Only the driver is checked here.
func New(settings config.DatabaseSettings) (*DataSource, error) {
	driverName, err := ResolveDriver(settings.Driver)
	if err != nil {
		return nil, err
	}

	dsn := buildDSN(driverName, settings)

	database, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open data source: %w", err)
	}

	if driverName == DriverSQLite {
		// SQLite serialises writers, and an in-memory database lives only as
		// long as its single connection.
		database.SetMaxOpenConns(1)
	}

	logger.Log.Debugw("data source configured",
		"driver", driverName,
		"url", redactURL(settings.URL),
		"username", settings.Username,
	)

	return &DataSource{
		driverName: driverName,
		dsn:        dsn,
		database:   database,
	}, nil
}

// DriverName returns the database/sql driver name in use.
func (d *DataSource) DriverName() string {
	return d.driverName
}

// Dialect returns the SQL dialect spoken by the driver.
func (d *DataSource) Dialect() string {
	if d.driverName == DriverSQLite {
		return DialectSQLite
	}

	return DialectPostgres
}

// DB returns the underlying handle.
func (d *DataSource) DB() *sql.DB {
	return d.database
}

// Ping opens a connection if none is open and verifies it.
func (d *DataSource) Ping(ctx context.Context) error {
	return d.database.PingContext(ctx)
}

// Close closes all connections.
func (d *DataSource) Close() error {
	return d.database.Close()
}

func buildDSN(driverName string, settings config.DatabaseSettings) string {
	rawURL := strings.TrimPrefix(settings.URL, "jdbc:")

	if driverName == DriverSQLite {
		dsn := strings.TrimPrefix(rawURL, "sqlite:")
		if dsn == "" {
			dsn = ":memory:"
		}
		return dsn
	}

	if strings.HasPrefix(rawURL, "postgresql://") || strings.HasPrefix(rawURL, "postgres://") {
		parsed, err := url.Parse(rawURL)
		if err != nil {
			// left for the driver to reject on connect
			return rawURL
		}
		if settings.Username != "" {
			if settings.Password != "" {
				parsed.User = url.UserPassword(settings.Username, settings.Password)
			} else {
				parsed.User = url.User(settings.Username)
			}
		}
		return parsed.String()
	}

	parts := []string{}
	if rawURL != "" {
		parts = append(parts, rawURL)
	}
	if settings.Username != "" {
		parts = append(parts, "user="+quoteKeywordValue(settings.Username))
	}
	if settings.Password != "" {
		parts = append(parts, "password="+quoteKeywordValue(settings.Password))
	}

	return strings.Join(parts, " ")
}

func quoteKeywordValue(value string) string {
	if value != "" && !strings.ContainsAny(value, ` '\`) {
		return value
	}

	escaped := strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(value)

	return "'" + escaped + "'"
}

// redactURL hides passwords in URL user info, query parameters and
// keyword/value connection strings.
func redactURL(rawURL string) string {
	redacted := rawURL

	if strings.Contains(rawURL, "://") {
		prefix := ""
		if strings.HasPrefix(rawURL, "jdbc:") {
			prefix = "jdbc:"
		}
		parsed, err := url.Parse(strings.TrimPrefix(rawURL, prefix))
		if err != nil {
			return rawURL[:strings.Index(rawURL, "://")+3] + "xxxxx"
		}
		redacted = prefix + parsed.Redacted()
	}

	return passwordParam.ReplaceAllString(redacted, "${1}xxxxx")
}
