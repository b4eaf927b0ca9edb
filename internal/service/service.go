// Package service implements the user service: a facade over the user DAO
// that wraps every call in its own transaction scope. Reads run read-only,
// mutations run read-write. DAO errors are returned unchanged.
package service

import (
	"context"

	"github.com/patric-chuzhbe/userstore/internal/user"
)

type transactioner interface {
	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error

	ReadWrite(ctx context.Context, fn func(ctx context.Context) error) error
}

type userDao interface {
	Save(ctx context.Context, usr *user.User) error

	FindAll(ctx context.Context) ([]*user.User, error)

	FindByID(ctx context.Context, id int64) (*user.User, bool, error)

	UpdateUser(ctx context.Context, usr *user.User) error

	DeleteByID(ctx context.Context, id int64) error
}

// UserService exposes the user operations.
type UserService struct {
	tx  transactioner
	dao userDao
}

// New returns a UserService delegating to dao inside scopes opened by tx.
func New(tx transactioner, dao userDao) *UserService {
	return &UserService{
		tx:  tx,
		dao: dao,
	}
}

// Save stores usr. It is visible to others once the transaction commits.
func (s *UserService) Save(ctx context.Context, usr *user.User) error {
	return s.tx.ReadWrite(ctx, func(ctx context.Context) error {
		return s.dao.Save(ctx, usr)
	})
}

// FindAll returns every stored user.
func (s *UserService) FindAll(ctx context.Context) ([]*user.User, error) {
	var users []*user.User
	err := s.tx.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		users, err = s.dao.FindAll(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	return users, nil
}

// FindByID looks a user up. A missing user is reported by found == false, not by an error.
func (s *UserService) FindByID(ctx context.Context, id int64) (usr *user.User, found bool, err error) {
	err = s.tx.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		usr, found, err = s.dao.FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, false, err
	}

	return usr, found, nil
}

// UpdateUser overwrites the stored user with usr.ID.
func (s *UserService) UpdateUser(ctx context.Context, usr *user.User) error {
	return s.tx.ReadWrite(ctx, func(ctx context.Context) error {
		return s.dao.UpdateUser(ctx, usr)
	})
}

// DeleteByID removes the user with id.
func (s *UserService) DeleteByID(ctx context.Context, id int64) error {
	return s.tx.ReadWrite(ctx, func(ctx context.Context) error {
		return s.dao.DeleteByID(ctx, id)
	})
}
