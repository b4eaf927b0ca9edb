//go:build integration
// +build integration

package orm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/userstore/internal/config"
	"github.com/patric-chuzhbe/userstore/internal/db/datasource"
	"github.com/patric-chuzhbe/userstore/internal/db/migrations"
	"github.com/patric-chuzhbe/userstore/internal/testutil"
	"github.com/patric-chuzhbe/userstore/internal/user"
)

func newDataSource(t *testing.T, properties config.Properties) *datasource.DataSource {
	t.Helper()
	ds, err := datasource.New(properties.DatabaseSettings())
	require.NoError(t, err)
	t.Cleanup(func() { _ = ds.Close() })
	return ds
}

func newFactory(t *testing.T, ds *datasource.DataSource, ddlAuto string) (*SessionFactory, error) {
	t.Helper()
	return New(context.Background(), ds, config.ORMSettings{ShowSQL: true, DDLAuto: ddlAuto}, &user.User{})
}

func TestValidateFailsOnEmptyDatabase(t *testing.T) {
	ds := newDataSource(t, testutil.SQLiteProperties(t, config.DDLValidate))

	factory, err := newFactory(t, ds, config.DDLValidate)
	assert.Nil(t, factory)
	assert.ErrorIs(t, err, ErrSchemaValidation)
}

func TestUpdateThenValidate(t *testing.T) {
	ds := newDataSource(t, testutil.SQLiteProperties(t, config.DDLUpdate))

	_, err := newFactory(t, ds, config.DDLUpdate)
	require.NoError(t, err)

	factory, err := newFactory(t, ds, config.DDLValidate)
	require.NoError(t, err)
	assert.True(t, factory.OpenSession(context.Background()).Migrator().HasTable(&user.User{}))
}

func TestCreateDiscardsExistingRows(t *testing.T) {
	ds := newDataSource(t, testutil.SQLiteProperties(t, config.DDLUpdate))

	factory, err := newFactory(t, ds, config.DDLUpdate)
	require.NoError(t, err)
	require.NoError(t, factory.OpenSession(context.Background()).Create(&user.User{FirstName: "Ivan"}).Error)

	factory, err = newFactory(t, ds, config.DDLCreate)
	require.NoError(t, err)

	var count int64
	require.NoError(t, factory.OpenSession(context.Background()).Model(&user.User{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateDropDropsOnClose(t *testing.T) {
	ds := newDataSource(t, testutil.SQLiteProperties(t, config.DDLCreateDrop))

	factory, err := newFactory(t, ds, config.DDLCreateDrop)
	require.NoError(t, err)
	require.True(t, factory.OpenSession(context.Background()).Migrator().HasTable(&user.User{}))

	require.NoError(t, factory.Close(context.Background()))
	assert.False(t, factory.OpenSession(context.Background()).Migrator().HasTable(&user.User{}))
}

func TestMigrateAppliesVersionedSchema(t *testing.T) {
	ds := newDataSource(t, testutil.SQLiteProperties(t, config.DDLMigrate))

	factory, err := newFactory(t, ds, config.DDLMigrate)
	require.NoError(t, err)

	version, err := migrations.Version(context.Background(), ds.DB(), ds.Dialect())
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	usr := &user.User{FirstName: "Ivan", Age: 30}
	require.NoError(t, factory.OpenSession(context.Background()).Create(usr).Error)
	assert.NotZero(t, usr.ID)
}

func TestCurrentSessionFollowsContext(t *testing.T) {
	ds := newDataSource(t, testutil.SQLiteProperties(t, config.DDLUpdate))
	factory, err := newFactory(t, ds, config.DDLUpdate)
	require.NoError(t, err)
	other, err := newFactory(t, ds, config.DDLNone)
	require.NoError(t, err)

	ctx := context.Background()
	_, bound := factory.BoundSession(ctx)
	assert.False(t, bound)

	session, err := factory.Begin(ctx, nil)
	require.NoError(t, err)
	t.Cleanup(func() { session.Rollback() })

	txCtx := factory.BindSession(ctx, session)
	current, bound := factory.BoundSession(txCtx)
	require.True(t, bound)
	assert.Same(t, session, current)

	_, bound = other.BoundSession(txCtx)
	assert.False(t, bound, "a session is bound per factory")
}
