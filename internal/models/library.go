package models

import "gorm.io/gorm"

// Library is one book on a user's reading list. BookID references the books
// service and is opaque here.
type Library struct {
	ID     string        `gorm:"primaryKey;size:36" json:"id"`
	BookID string        `gorm:"not null;index;uniqueIndex:idx_libraries_user_book" json:"book_id"`
	UserID string        `gorm:"not null;size:36;uniqueIndex:idx_libraries_user_book" json:"user_id"`
	Status LibraryStatus `gorm:"type:varchar(16);not null" json:"status"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
}

// TableName specifies the table name for GORM.
func (Library) TableName() string {
	return "libraries"
}

// BeforeCreate assigns an identifier when the caller did not.
func (l *Library) BeforeCreate(_ *gorm.DB) error {
	if l.ID == "" {
		l.ID = NewID()
	}
	return nil
}
