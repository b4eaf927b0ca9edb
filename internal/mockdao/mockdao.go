// Package mockdao provides testify-based mock implementations of the
// collaborators of the user service: the user DAO and the transaction manager.
package mockdao

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/patric-chuzhbe/userstore/internal/user"
)

// DaoMock is a testify mock of the user DAO.
type DaoMock struct {
	mock.Mock
}

// Save mocks storing a user.
func (m *DaoMock) Save(ctx context.Context, usr *user.User) error {
	args := m.Called(ctx, usr)
	return args.Error(0)
}

// FindAll mocks listing users.
func (m *DaoMock) FindAll(ctx context.Context) ([]*user.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]*user.User)
	return users, args.Error(1)
}

// FindByID mocks a lookup by ID.
func (m *DaoMock) FindByID(ctx context.Context, id int64) (*user.User, bool, error) {
	args := m.Called(ctx, id)
	usr, _ := args.Get(0).(*user.User)
	return usr, args.Bool(1), args.Error(2)
}

// UpdateUser mocks an update.
func (m *DaoMock) UpdateUser(ctx context.Context, usr *user.User) error {
	args := m.Called(ctx, usr)
	return args.Error(0)
}

// DeleteByID mocks a deletion.
func (m *DaoMock) DeleteByID(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type scopeKey struct{}

// Scope describes the transaction scope a callback was run in.
type Scope struct {
	ReadOnly bool
}

// ScopeFromContext returns the scope TransactionerMock attached to ctx.
func ScopeFromContext(ctx context.Context) (Scope, bool) {
	scope, ok := ctx.Value(scopeKey{}).(Scope)
	return scope, ok
}

// TransactionerMock is a testify mock of the transaction manager. It records
// the requested scope, then runs the callback with the scope attached to the
// context unless an error is configured for the call.
type TransactionerMock struct {
	mock.Mock
}

// ReadOnly mocks opening a read-only scope.
func (m *TransactionerMock) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(context.WithValue(ctx, scopeKey{}, Scope{ReadOnly: true}))
}

// ReadWrite mocks opening a read-write scope.
func (m *TransactionerMock) ReadWrite(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(context.WithValue(ctx, scopeKey{}, Scope{ReadOnly: false}))
}
