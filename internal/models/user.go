// Package models contains the persisted entities of the users service and the
// error types shared across its layers.
package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NewID returns a new time-ordered identifier. UUIDv7 text sorts in creation
// order, so ordering by id is ordering by age.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// User represents an account registered through a trusted service.
type User struct {
	ID        string  `gorm:"primaryKey;size:36" json:"id"`
	Username  string  `gorm:"uniqueIndex;not null;size:24" json:"username"`
	Password  string  `gorm:"not null" json:"-"`
	FirstName *string `gorm:"size:18" json:"first_name"`
	LastName  *string `gorm:"size:18" json:"last_name"`
	Avatar    *string `json:"avatar"`
	About     *string `gorm:"type:text" json:"about"`
	Role      string  `gorm:"not null;size:32" json:"role"`

	// IsBanned is only populated by queries that project the derived ban
	// expression; it is never stored.
	IsBanned *bool `gorm:"->;-:migration" json:"is_banned,omitempty"`

	Libraries []Library `gorm:"foreignKey:UserID" json:"libraries,omitempty"`
	Bans      []Ban     `gorm:"foreignKey:UserID" json:"bans,omitempty"`
}

// TableName specifies the table name for GORM.
func (User) TableName() string {
	return "users"
}

// BeforeCreate assigns an identifier when the caller did not.
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == "" {
		u.ID = NewID()
	}
	return nil
}
