package config

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/thoas/go-funk"
)

// Property keys understood by the persistence stack.
const (
	KeyDBDriver   = "db.driver"
	KeyDBURL      = "db.url"
	KeyDBUsername = "db.username"
	KeyDBPassword = "db.password"
	KeyShowSQL    = "hibernate.show_sql"
	KeyDDLAuto    = "hibernate.hbm2ddl.auto"
)

// Schema management modes accepted by hibernate.hbm2ddl.auto.
const (
	DDLNone       = "none"
	DDLValidate   = "validate"
	DDLUpdate     = "update"
	DDLCreate     = "create"
	DDLCreateDrop = "create-drop"
	DDLMigrate    = "migrate"
)

var ddlModes = []string{DDLNone, DDLValidate, DDLUpdate, DDLCreate, DDLCreateDrop, DDLMigrate}

// Properties is a flat string-to-string property set, as read from db.properties.
type Properties map[string]string

// LoadProperties reads a key=value property file. Keys may contain dots,
// lines starting with # or ! are comments. Values are taken literally: no
// variable expansion and no trailing comments.
func LoadProperties(path string) (Properties, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	values, err := godotenv.UnmarshalBytes(quotePropertyValues(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse property file %s: %w", path, err)
	}

	return Properties(values), nil
}

// quotePropertyValues rewrites every key=value line so that godotenv reads
// the value verbatim.
func quotePropertyValues(content []byte) []byte {
	var out bytes.Buffer

	scanner := bufio.NewScanner(bytes.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
			continue
		}

		separator := strings.IndexAny(line, "=:")
		if separator < 0 {
			out.WriteString(line)
			out.WriteByte('\n')
			continue
		}

		key := strings.TrimSpace(line[:separator])
		value := strings.TrimSpace(line[separator+1:])

		out.WriteString(key)
		out.WriteByte('=')
		out.WriteString(quotePropertyValue(value))
		out.WriteByte('\n')
	}

	return out.Bytes()
}

func quotePropertyValue(value string) string {
	// Single-quoted values are neither expanded nor unescaped, but cannot hold
	// a single quote or end with a backslash.
	if !strings.Contains(value, "'") && !strings.HasSuffix(value, `\`) {
		return "'" + value + "'"
	}

	return strings.ReplaceAll(value, "$", `\$`)
}

// Get returns the trimmed value stored under key, or an empty string.
func (p Properties) Get(key string) string {
	return strings.TrimSpace(p[key])
}

// GetBool parses the value stored under key. A missing key reads as false.
func (p Properties) GetBool(key string) (bool, error) {
	value := p.Get(key)
	if value == "" {
		return false, nil
	}

	result, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("property %s: %w", key, err)
	}

	return result, nil
}

// Missing returns the sorted subset of keys that have no value.
func (p Properties) Missing(keys ...string) []string {
	missing := funk.FilterString(keys, func(key string) bool {
		return p.Get(key) == ""
	})
	sort.Strings(missing)

	return missing
}

// Clone returns an independent copy of p.
func (p Properties) Clone() Properties {
	result := make(Properties, len(p))
	for key, value := range p {
		result[key] = value
	}

	return result
}

// DatabaseSettings are the connection parameters of a data source.
type DatabaseSettings struct {
	Driver   string
	URL      string
	Username string
	Password string
}

// ORMSettings are the behaviour flags of a session factory.
type ORMSettings struct {
	ShowSQL bool
	DDLAuto string `validate:"ddlmode"`
}

// DatabaseSettings extracts the four connection parameters. No validation is
// done here: a bad URL or credentials surface on first connection.
func (p Properties) DatabaseSettings() DatabaseSettings {
	return DatabaseSettings{
		Driver:   p.Get(KeyDBDriver),
		URL:      p.Get(KeyDBURL),
		Username: p.Get(KeyDBUsername),
		Password: p.Get(KeyDBPassword),
	}
}

// ORMSettings extracts and validates the ORM behaviour flags.
// An empty hibernate.hbm2ddl.auto means DDLNone.
func (p Properties) ORMSettings() (ORMSettings, error) {
	showSQL, err := p.GetBool(KeyShowSQL)
	if err != nil {
		return ORMSettings{}, err
	}

	settings := ORMSettings{
		ShowSQL: showSQL,
		DDLAuto: strings.ToLower(p.Get(KeyDDLAuto)),
	}
	if settings.DDLAuto == "" {
		settings.DDLAuto = DDLNone
	}

	if err := settings.Validate(); err != nil {
		return ORMSettings{}, err
	}

	return settings, nil
}

// Validate checks the schema management mode.
func (s *ORMSettings) Validate() error {
	validate, err := newValidator()
	if err != nil {
		return err
	}

	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("validation failed for ORMSettings: %w", err)
	}

	return nil
}

// IsDDLMode reports whether mode is a known hibernate.hbm2ddl.auto value.
func IsDDLMode(mode string) bool {
	return funk.ContainsString(ddlModes, mode)
}
