package repository

import (
	"patisson-users/internal/models"

	"gorm.io/gorm"
)

const (
	// DefaultListLimit is applied when a listing does not ask for a page size.
	DefaultListLimit = 10
	// MaxListLimit caps the page size of any listing.
	MaxListLimit = 100
)

// Page is an offset/limit window over an id-ordered listing.
type Page struct {
	Offset int
	Limit  int
}

func (p Page) normalized() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultListLimit
	}
	if p.Limit > MaxListLimit {
		p.Limit = MaxListLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

func (p Page) apply(db *gorm.DB) *gorm.DB {
	p = p.normalized()
	return db.Offset(p.Offset).Limit(p.Limit)
}

// UserFilter selects users for listing. Empty lists do not filter.
type UserFilter struct {
	IDs        []string
	Usernames  []string
	FirstNames []string
	LastNames  []string
	Roles      []string
	IsBanned   *bool
	Page
}

// LibraryFilter selects library entries for listing. Empty lists do not filter.
type LibraryFilter struct {
	IDs      []string
	UserIDs  []string
	BookIDs  []string
	Statuses []models.LibraryStatus
	Page
}

func whereIn[T any](db *gorm.DB, column string, values []T) *gorm.DB {
	if len(values) == 0 {
		return db
	}
	return db.Where(column+" IN ?", values)
}
