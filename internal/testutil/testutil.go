// Package testutil provides helpers shared by tests that need a real database.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/userstore/internal/config"
)

// SQLiteProperties returns a property set pointing at a fresh SQLite file in
// a per-test temporary directory.
func SQLiteProperties(t *testing.T, ddlAuto string) config.Properties {
	t.Helper()

	return config.Properties{
		config.KeyDBDriver: "org.sqlite.JDBC",
		config.KeyDBURL:    "jdbc:sqlite:" + filepath.Join(t.TempDir(), "users.db"),
		config.KeyShowSQL:  "false",
		config.KeyDDLAuto:  ddlAuto,
	}
}

// Closer is implemented by the assembled object graph.
type Closer interface {
	Close(ctx context.Context) error
}

// CloseOnCleanup registers c to be closed when the test ends.
func CloseOnCleanup(t *testing.T, c Closer) {
	t.Helper()
	t.Cleanup(func() {
		require.NoError(t, c.Close(context.Background()))
	})
}
