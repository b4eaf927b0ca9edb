// Package appconfig assembles the persistence object graph from a property
// set: data source, then session factory, then transaction manager.
package appconfig

import (
	"context"
	"errors"
	"fmt"

	"github.com/patric-chuzhbe/userstore/internal/config"
	"github.com/patric-chuzhbe/userstore/internal/db/datasource"
	"github.com/patric-chuzhbe/userstore/internal/db/orm"
	"github.com/patric-chuzhbe/userstore/internal/db/transaction"
	"github.com/patric-chuzhbe/userstore/internal/user"
)

// Assembler holds the property set and the mapped models. Its accessors are
// constructors: every call builds a new object.
type Assembler struct {
	properties config.Properties
	models     []interface{}
}

// Context is the assembled object graph.
type Context struct {
	DataSource         *datasource.DataSource
	SessionFactory     *orm.SessionFactory
	TransactionManager *transaction.Manager
}

// NewAssembler returns an assembler mapping the user entity.
func NewAssembler(properties config.Properties) *Assembler {
	return &Assembler{
		properties: properties.Clone(),
		models:     []interface{}{&user.User{}},
	}
}

// DataSource builds a data source from db.driver, db.url, db.username and db.password.
func (a *Assembler) DataSource() (*datasource.DataSource, error) {
	return datasource.New(a.properties.DatabaseSettings())
}

// SessionFactory builds a session factory on ds from hibernate.show_sql and
// hibernate.hbm2ddl.auto.
func (a *Assembler) SessionFactory(ctx context.Context, ds *datasource.DataSource) (*orm.SessionFactory, error) {
	settings, err := a.properties.ORMSettings()
	if err != nil {
		return nil, err
	}

	return orm.New(ctx, ds, settings, a.models...)
}

// TransactionManager builds a transaction manager bound to sf.
func (a *Assembler) TransactionManager(sf *orm.SessionFactory) *transaction.Manager {
	return transaction.New(sf)
}

// Assemble builds the whole graph once, in dependency order.
func (a *Assembler) Assemble(ctx context.Context) (*Context, error) {
	ds, err := a.DataSource()
	if err != nil {
		return nil, fmt.Errorf("data source: %w", err)
	}

	sf, err := a.SessionFactory(ctx, ds)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("session factory: %w", err), ds.Close())
	}

	return &Context{
		DataSource:         ds,
		SessionFactory:     sf,
		TransactionManager: a.TransactionManager(sf),
	}, nil
}

// Assemble is a shorthand for NewAssembler(properties).Assemble(ctx).
func Assemble(ctx context.Context, properties config.Properties) (*Context, error) {
	return NewAssembler(properties).Assemble(ctx)
}

// Close tears the graph down in reverse order.
func (c *Context) Close(ctx context.Context) error {
	return errors.Join(
		c.SessionFactory.Close(ctx),
		c.DataSource.Close(),
	)
}
