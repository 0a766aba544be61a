package repository

import (
	"context"
	"errors"
	"time"

	"patisson-users/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetActiveByID returns the user only when no ban is active at now.
	GetActiveByID(ctx context.Context, id string, now time.Time) (*models.User, error)
	List(ctx context.Context, filter UserFilter, now time.Time) ([]models.User, error)
	WithTx(tx *gorm.DB) UserRepository
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) WithTx(tx *gorm.DB) UserRepository {
	return &userRepository{db: tx}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return classifyConstraintError(r.db.WithContext(ctx).Create(user).Error)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("users.id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) GetActiveByID(ctx context.Context, id string, now time.Time) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("users.id = ?", id).
		Where("NOT (?)", ActiveBanExists(now)).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", id)
		}
		return nil, models.NewInternalError(err)
	}
	banned := false
	user.IsBanned = &banned
	return &user, nil
}

func (r *userRepository) List(ctx context.Context, filter UserFilter, now time.Time) ([]models.User, error) {
	banned := ActiveBanExists(now)

	q := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select("users.*, ? AS is_banned", banned)
	q = whereIn(q, "users.id", filter.IDs)
	q = whereIn(q, "users.username", filter.Usernames)
	q = whereIn(q, "users.first_name", filter.FirstNames)
	q = whereIn(q, "users.last_name", filter.LastNames)
	q = whereIn(q, "users.role", filter.Roles)
	if filter.IsBanned != nil {
		if *filter.IsBanned {
			q = q.Where(banned)
		} else {
			q = q.Where("NOT (?)", banned)
		}
	}

	var users []models.User
	if err := filter.apply(q).Order("users.id ASC").Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}
