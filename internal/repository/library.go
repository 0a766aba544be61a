package repository

import (
	"context"

	"patisson-users/internal/models"

	"gorm.io/gorm"
)

// LibraryRepository defines persistence operations for reading-list entries.
type LibraryRepository interface {
	Exists(ctx context.Context, userID, bookID string) (bool, error)
	Create(ctx context.Context, library *models.Library) error
	List(ctx context.Context, filter LibraryFilter) ([]models.Library, error)
	WithTx(tx *gorm.DB) LibraryRepository
}

type libraryRepository struct {
	db *gorm.DB
}

// NewLibraryRepository returns a new LibraryRepository implementation.
func NewLibraryRepository(db *gorm.DB) LibraryRepository {
	return &libraryRepository{db: db}
}

func (r *libraryRepository) WithTx(tx *gorm.DB) LibraryRepository {
	return &libraryRepository{db: tx}
}

func (r *libraryRepository) Exists(ctx context.Context, userID, bookID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Library{}).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *libraryRepository) Create(ctx context.Context, library *models.Library) error {
	return classifyConstraintError(r.db.WithContext(ctx).Omit("User").Create(library).Error)
}

func (r *libraryRepository) List(ctx context.Context, filter LibraryFilter) ([]models.Library, error) {
	q := r.db.WithContext(ctx).Model(&models.Library{})
	q = whereIn(q, "id", filter.IDs)
	q = whereIn(q, "user_id", filter.UserIDs)
	q = whereIn(q, "book_id", filter.BookIDs)
	q = whereIn(q, "status", filter.Statuses)

	var libraries []models.Library
	if err := filter.apply(q).Order("id ASC").Find(&libraries).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return libraries, nil
}
