package models

import (
	"time"

	"gorm.io/gorm"
)

// Ban stores a moderation ban. A nil EndDate means the ban never expires.
type Ban struct {
	ID      string     `gorm:"primaryKey;size:36" json:"id"`
	UserID  string     `gorm:"not null;size:36;index" json:"user_id"`
	Reason  BanReason  `gorm:"type:varchar(64);not null" json:"reason"`
	Comment string     `gorm:"type:text" json:"comment"`
	EndDate *time.Time `gorm:"index" json:"end_date"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
}

// TableName specifies the table name for GORM.
func (Ban) TableName() string {
	return "bans"
}

// BeforeCreate assigns an identifier when the caller did not.
func (b *Ban) BeforeCreate(_ *gorm.DB) error {
	if b.ID == "" {
		b.ID = NewID()
	}
	return nil
}

// ActiveAt reports whether the ban is in force at t. A ban ending exactly at
// t is no longer active.
func (b *Ban) ActiveAt(t time.Time) bool {
	return b.EndDate == nil || b.EndDate.After(t)
}
