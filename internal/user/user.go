// Package user defines the user entity persisted by the application
// and its mapping onto the users table.
package user

import (
	"fmt"

	validator "github.com/go-playground/validator/v10"
)

// User represents a stored user record.
type User struct {
	// ID is the unique identifier of the user, assigned by the database on save.
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	FirstName string `gorm:"type:varchar(64);not null" json:"first_name" validate:"required,max=64"`
	LastName  string `gorm:"type:varchar(64)" json:"last_name" validate:"max=64"`
	Email     string `gorm:"type:varchar(255)" json:"email" validate:"omitempty,email,max=255"`
	Age       uint8  `json:"age" validate:"lte=150"`
}

// TableName specifies the table name for GORM.
func (User) TableName() string {
	return "users"
}

var validate = validator.New()

// Validate checks field constraints before the user is written.
func (u *User) Validate() error {
	if err := validate.Struct(u); err != nil {
		return fmt.Errorf("validation failed for User: %w", err)
	}

	return nil
}
