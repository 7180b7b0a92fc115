// Package entity defines the domain entities for the users feature.
package entity

import "time"

// User represents a registered user.
// The plaintext password is never stored; only its bcrypt hash.
type User struct {
	// ID is assigned by the store on creation and never reused.
	ID uint `gorm:"primaryKey"`

	// Name is the display name of the user.
	Name string `gorm:"size:200;not null"`

	// Email must be unique across all users.
	Email string `gorm:"uniqueIndex;size:120;not null"`

	// Badge is an optional free-form label.
	Badge string `gorm:"size:100"`

	// PasswordHash holds the bcrypt hash of the user's password.
	PasswordHash string `gorm:"column:password_hash;size:128"`

	// DateAdded is set once when the user is created.
	DateAdded time.Time `gorm:"column:date_added;not null;autoCreateTime"`
}

// TableName returns the table name for GORM.
func (User) TableName() string {
	return "users"
}
