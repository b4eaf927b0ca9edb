package config

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testProperties = `# connection
db.driver=org.postgresql.Driver
db.url=jdbc:postgresql://localhost:5432/users
db.username=postgres
db.password=secret

hibernate.show_sql=true
hibernate.hbm2ddl.auto=update
`

func writeTempProperties(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "db.properties")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadProperties(t *testing.T) {
	properties, err := LoadProperties(writeTempProperties(t, testProperties))
	require.NoError(t, err)

	assert.Equal(t, "org.postgresql.Driver", properties.Get(KeyDBDriver))
	assert.Equal(t, "jdbc:postgresql://localhost:5432/users", properties.Get(KeyDBURL))
	assert.Equal(t, "postgres", properties.Get(KeyDBUsername))
	assert.Equal(t, "secret", properties.Get(KeyDBPassword))
	assert.Equal(t, "true", properties.Get(KeyShowSQL))
	assert.Equal(t, "update", properties.Get(KeyDDLAuto))
}

func TestLoadPropertiesKeepsValuesLiteral(t *testing.T) {
	t.Setenv("HOME", "/home/tester")

	content := `! legacy comment
db.password=pa$$w0rd$HOME
db.username=it's${HOME}
db.url : jdbc:postgresql://localhost:5432/users?opt=1#frag
hibernate.hbm2ddl.auto=update # keep schema
db.driver=
`
	properties, err := LoadProperties(writeTempProperties(t, content))
	require.NoError(t, err)

	assert.Equal(t, "pa$$w0rd$HOME", properties.Get(KeyDBPassword))
	assert.Equal(t, "it's${HOME}", properties.Get(KeyDBUsername))
	assert.Equal(t, "jdbc:postgresql://localhost:5432/users?opt=1#frag", properties.Get(KeyDBURL))
	assert.Equal(t, "update # keep schema", properties.Get(KeyDDLAuto))
	assert.Empty(t, properties.Get(KeyDBDriver))
	assert.Len(t, properties, 5)
}

func TestLoadPropertiesMissingFile(t *testing.T) {
	_, err := LoadProperties(filepath.Join(t.TempDir(), "absent.properties"))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestPropertiesMissing(t *testing.T) {
	properties := Properties{
		KeyDBDriver: "pgx",
		KeyDBURL:    "  ",
	}

	assert.Equal(
		t,
		[]string{KeyDBPassword, KeyDBURL},
		properties.Missing(KeyDBURL, KeyDBDriver, KeyDBPassword),
	)
}

func TestORMSettings(t *testing.T) {
	tests := []struct {
		name       string
		properties Properties
		want       ORMSettings
		wantErr    bool
	}{
		{
			name:       "defaults",
			properties: Properties{},
			want:       ORMSettings{ShowSQL: false, DDLAuto: DDLNone},
		},
		{
			name:       "explicit values",
			properties: Properties{KeyShowSQL: "true", KeyDDLAuto: "Create-Drop"},
			want:       ORMSettings{ShowSQL: true, DDLAuto: DDLCreateDrop},
		},
		{
			name:       "bad show_sql",
			properties: Properties{KeyShowSQL: "sometimes"},
			wantErr:    true,
		},
		{
			name:       "unknown ddl mode",
			properties: Properties{KeyDDLAuto: "recreate-everything"},
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings, err := tt.properties.ORMSettings()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, settings)
		})
	}
}

func TestDatabaseSettingsIsLazy(t *testing.T) {
	settings := Properties{KeyDBDriver: "pgx", KeyDBURL: "::not a url::"}.DatabaseSettings()

	assert.Equal(t, "pgx", settings.Driver)
	assert.Equal(t, "::not a url::", settings.URL)
	assert.Empty(t, settings.Username)
}

func TestConfigPropertiesFileOnly(t *testing.T) {
	path := writeTempProperties(t, testProperties)
	t.Setenv("PROPERTIES_FILE", path)

	cfg, err := New(WithSkipDotEnv(true))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "postgres", cfg.Properties.Get(KeyDBUsername))
	assert.Equal(t, "update", cfg.Properties.Get(KeyDDLAuto))
}

func TestConfigPriorityAllSources(t *testing.T) {
	path := writeTempProperties(t, testProperties)
	t.Setenv("PROPERTIES_FILE", path)
	t.Setenv("DB_USERNAME", "env-user")
	t.Setenv("DB_PASSWORD", "env-password")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := New(
		WithSkipDotEnv(true),
		WithProperty(KeyDBPassword, "cli-password"),
		WithLogLevel("error"),
	)
	require.NoError(t, err)

	assert.Equal(t, "error", cfg.LogLevel)                              // CLI > ENV
	assert.Equal(t, "env-user", cfg.Properties.Get(KeyDBUsername))     // ENV > file
	assert.Equal(t, "cli-password", cfg.Properties.Get(KeyDBPassword)) // CLI > ENV > file
	assert.Equal(t, "jdbc:postgresql://localhost:5432/users", cfg.Properties.Get(KeyDBURL))
}

func TestConfigEnvOnly(t *testing.T) {
	t.Setenv("PROPERTIES_FILE", filepath.Join(t.TempDir(), "absent.properties"))
	t.Setenv("DB_DRIVER", "sqlite3")
	t.Setenv("DB_URL", "file::memory:")
	t.Setenv("HIBERNATE_HBM2DDL_AUTO", "create")

	cfg, err := New(WithSkipDotEnv(true))
	require.NoError(t, err)

	assert.Equal(t, "sqlite3", cfg.Properties.Get(KeyDBDriver))
	assert.Equal(t, "file::memory:", cfg.Properties.Get(KeyDBURL))
	assert.Equal(t, "create", cfg.Properties.Get(KeyDDLAuto))
}

func TestConfigRejectsInvalidValues(t *testing.T) {
	t.Setenv("PROPERTIES_FILE", filepath.Join(t.TempDir(), "absent.properties"))

	_, err := New(WithSkipDotEnv(true), WithLogLevel("chatty"))
	assert.Error(t, err)

	_, err = New(WithSkipDotEnv(true), WithProperty(KeyDDLAuto, "drop-everything"))
	assert.Error(t, err)
}
