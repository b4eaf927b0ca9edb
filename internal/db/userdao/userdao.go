// Package userdao provides the GORM-based data-access object for users.
// Every call runs on the session factory's current session, so it joins the
// transaction bound to the context when there is one.
package userdao

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/patric-chuzhbe/userstore/internal/logger"
	"github.com/patric-chuzhbe/userstore/internal/user"
)

// ErrUserNotFound is returned by UpdateUser and DeleteByID for an unknown ID.
var ErrUserNotFound = errors.New("user not found")

type sessionProvider interface {
	CurrentSession(ctx context.Context) *gorm.DB
}

// GormDao stores users through GORM.
type GormDao struct {
	sessions sessionProvider
}

// New returns a DAO drawing sessions from sessions.
func New(sessions sessionProvider) *GormDao {
	return &GormDao{sessions: sessions}
}

// Save inserts usr and sets its ID.
func (d *GormDao) Save(ctx context.Context, usr *user.User) error {
	if err := usr.Validate(); err != nil {
		return err
	}

	if err := d.sessions.CurrentSession(ctx).Create(usr).Error; err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}

	logger.Log.Debugw("user saved", "id", usr.ID)

	return nil
}

// FindAll returns every stored user ordered by ID.
func (d *GormDao) FindAll(ctx context.Context) ([]*user.User, error) {
	var users []*user.User
	if err := d.sessions.CurrentSession(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}

	return users, nil
}

// FindByID returns the user with id. found is false when there is none.
func (d *GormDao) FindByID(ctx context.Context, id int64) (*user.User, bool, error) {
	var usr user.User
	err := d.sessions.CurrentSession(ctx).Where("id = ?", id).First(&usr).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to fetch user %d: %w", id, err)
	}

	return &usr, true, nil
}

// UpdateUser overwrites every column of the stored user with usr.ID.
func (d *GormDao) UpdateUser(ctx context.Context, usr *user.User) error {
	if err := usr.Validate(); err != nil {
		return err
	}

	result := d.sessions.CurrentSession(ctx).
		Model(&user.User{}).
		Where("id = ?", usr.ID).
		Select("*").
		Omit("id").
		Updates(usr)
	if result.Error != nil {
		return fmt.Errorf("failed to update user %d: %w", usr.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("user %d: %w", usr.ID, ErrUserNotFound)
	}

	logger.Log.Debugw("user updated", "id", usr.ID)

	return nil
}

// DeleteByID removes the user with id.
func (d *GormDao) DeleteByID(ctx context.Context, id int64) error {
	result := d.sessions.CurrentSession(ctx).Where("id = ?", id).Delete(&user.User{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete user %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("user %d: %w", id, ErrUserNotFound)
	}

	logger.Log.Debugw("user deleted", "id", id)

	return nil
}
